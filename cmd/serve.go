package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ium-app/ium-server/internal/ai"
	"github.com/ium-app/ium-server/internal/ai/gemini"
	"github.com/ium-app/ium-server/internal/enrich"
	"github.com/ium-app/ium-server/internal/logger"
	"github.com/ium-app/ium-server/internal/match"
	"github.com/ium-app/ium-server/internal/secrets"
	"github.com/ium-app/ium-server/internal/server"
	"github.com/ium-app/ium-server/internal/store"
	"github.com/ium-app/ium-server/internal/vocab"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the matching and enrichment HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address, overrides server.listen")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional; environment wins over an absent .env file.
	_ = godotenv.Load()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting the ium-server", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zlog.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	index := buildIndex(config, zlog)

	var (
		scorer   ai.PairScorer
		enricher ai.Enricher
		prober   ai.Prober
	)
	if generator := newGenerator(ctx, config.AI, zlog); generator != nil {
		maxLogLen := 0
		if config.AI != nil && config.AI.Gemini != nil {
			maxLogLen = config.AI.Gemini.MaxLogLength
		}
		aiLogger := logger.WithCommonFields(zlog, "gemini", generator.Model())
		scorer = gemini.NewScorer(generator, aiLogger, maxLogLen)
		enricher = gemini.NewEnricher(generator, index, aiLogger, maxLogLen)
		prober = generator
	}

	handler := server.NewHandler(
		match.New(scorer, zlog),
		enrich.NewEngine(enricher, index, zlog),
		store.NewFileStore(config.Data.StoreFile),
		prober,
		config.Data.CorpusFile,
		config.Server.CORSOrigins,
		zlog,
	)

	srv := server.New(config.Server.Listen, handler, zlog)
	if err := srv.Run(ctx); err != nil {
		zlog.Fatal("http server failed", zap.Error(err))
	}
}

// buildIndex loads the corpus and derives the vocabulary pools. A missing or
// unparsable corpus degrades to an empty index instead of failing startup.
func buildIndex(config *Config, zlog *zap.Logger) *vocab.Index {
	corpus, err := vocab.LoadCorpus(config.Data.CorpusFile)
	if err != nil {
		zlog.Warn("corpus unavailable, starting with an empty vocabulary",
			zap.String("corpus_file", config.Data.CorpusFile),
			zap.Error(err),
		)
		return vocab.NewIndex(nil)
	}

	index := vocab.NewIndex(corpus)
	zlog.Info("vocabulary index built",
		zap.Int("categories", len(index.Categories)),
		zap.Int("tags", len(index.Tags)),
		zap.Int("skills", len(index.Skills)),
	)
	return index
}

// newGenerator builds the Gemini generator when the AI block is enabled.
// Configuration absence is not an error; the heuristic paths cover scoring
// and enrichment.
func newGenerator(ctx context.Context, cfg *AIConfig, zlog *zap.Logger) *gemini.Generator {
	if cfg == nil || !cfg.Enabled {
		zlog.Info("ai is not configured, using heuristic scoring only")
		return nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		zlog.Warn("unsupported ai provider, using heuristic scoring only", zap.String("provider", cfg.Provider))
		return nil
	}

	if cfg.Gemini == nil {
		zlog.Warn("gemini configuration is missing, using heuristic scoring only")
		return nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		zlog.Warn("loading gemini api key failed, using heuristic scoring only",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
		return nil
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		zlog.Warn("creating gemini client failed, using heuristic scoring only", zap.Error(err))
		return nil
	}

	zlog.Info("gemini configured", logger.CommonFields("gemini", generator.Model())...)
	return generator
}
