package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "provider-matcher"
)

type Config struct {
	Dataset   string           `mapstructure:"dataset"`
	Filtering *FilteringConfig `mapstructure:"filtering"`
	Scoring   *ScoringConfig   `mapstructure:"scoring"`
}

type FilteringConfig struct {
	Disabled []DisabledFilter `mapstructure:"disabled"`
}

type DisabledFilter struct {
	Name   string `mapstructure:"name"`
	Reason string `mapstructure:"reason"`
}

type ScoringConfig struct {
	// Strategy is either "rubric" (default) or "assisted".
	Strategy string    `mapstructure:"strategy"`
	AI       *AIConfig `mapstructure:"ai"`
}

type AIConfig struct {
	Weight float64       `mapstructure:"weight"`
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "provider-matcher ranks service providers for incoming service requests",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("dataset", "PROVIDER_MATCHER_DATASET"); err != nil {
		log.Fatalf("binding PROVIDER_MATCHER_DATASET environment variable: %v", err)
	}
	if err := viper.BindEnv("scoring.ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is provider-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("dataset", "", "dataset file with services, requestors, providers and requests")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("dataset", rootCmd.PersistentFlags().Lookup("dataset"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	// .env is optional; it usually carries GEMINI_API_KEY.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without a config file flags and environment are enough, but an explicit
	// or broken file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}
