package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ium-app/ium-server/internal/ai"
	"github.com/ium-app/ium-server/internal/ai/gemini"
	"github.com/ium-app/ium-server/internal/enrich"
	"github.com/ium-app/ium-server/internal/listing"
	"github.com/ium-app/ium-server/internal/logger"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a single listing interactively and print the result",
	Run: func(_ *cobra.Command, _ []string) {
		runEnrich()
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

// runEnrich asks for the raw listing fields on the terminal, runs the same
// enrichment pipeline the HTTP API uses and prints the JSON result.
func runEnrich() {
	_ = godotenv.Load()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	input := &listing.EnrichInput{
		Title:       promptLine("Title"),
		Description: promptLine("Description"),
		Skills:      splitCSV(promptLine("Skills (comma separated)")),
		Tags:        splitCSV(promptLine("Tags (comma separated)")),
		Category:    promptLine("Category (optional)"),
	}

	ctx := context.Background()
	index := buildIndex(config, zlog)

	var enricher ai.Enricher
	if generator := newGenerator(ctx, config.AI, zlog); generator != nil {
		maxLogLen := 0
		if config.AI != nil && config.AI.Gemini != nil {
			maxLogLen = config.AI.Gemini.MaxLogLength
		}
		enricher = gemini.NewEnricher(generator, index, logger.WithCommonFields(zlog, "gemini", generator.Model()), maxLogLen)
	}

	result := enrich.NewEngine(enricher, index, zlog).Enrich(ctx, input)

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		zlog.Fatal("encoding enrich result", zap.Error(err))
	}
	fmt.Println(string(pretty))
}

func promptLine(label string) string {
	p := promptui.Prompt{Label: label, AllowEdit: true}
	value, err := p.Run()
	if err != nil {
		log.Fatalf("prompt aborted: %v", err)
	}
	return strings.TrimSpace(value)
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
