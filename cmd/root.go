package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "ium-server"
)

// Config is the application configuration unmarshaled from the viper config
// file.
type Config struct {
	Server *ServerConfig `mapstructure:"server"`
	Data   *DataConfig   `mapstructure:"data"`
	AI     *AIConfig     `mapstructure:"ai"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors-origins"`
}

// DataConfig points at the corpus file and the match store file.
type DataConfig struct {
	CorpusFile string `mapstructure:"corpus-file"`
	StoreFile  string `mapstructure:"store-file"`
}

// AIConfig enables model-assisted scoring and enrichment.
type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig stores Gemini provider configuration.
type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "ium-server matches community need and give listings and enriches their metadata",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is "+app+".yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// Config file is optional; defaults and environment cover the rest.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Data == nil {
		config.Data = &DataConfig{}
	}
	if config.Data.CorpusFile == "" {
		config.Data.CorpusFile = "data/data.json"
	}
	if config.Data.StoreFile == "" {
		config.Data.StoreFile = "data/matches.json"
	}

	return config, nil
}
