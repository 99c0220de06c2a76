package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
	"github.com/abhictrl/Reflexion-Interviewer/internal/ai/gemini"
	"github.com/abhictrl/Reflexion-Interviewer/internal/ai/nvidia"
	"github.com/abhictrl/Reflexion-Interviewer/internal/logger"
	"github.com/abhictrl/Reflexion-Interviewer/internal/secrets"
)

const (
	app = "reflexion-interviewer"
)

type Config struct {
	Server  *ServerConfig  `mapstructure:"server"`
	AI      *AIConfig      `mapstructure:"ai"`
	Session *SessionConfig `mapstructure:"session"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Nvidia   *NvidiaConfig `mapstructure:"nvidia"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type NvidiaConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep-interval"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "reflexion-interviewer runs AI-driven technical interview sessions and scores the results",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is reflexion-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is consumed by the serve and interview commands only.
	if serveCmd.CalledAs() == "" && interviewCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing default config is fine: the AI key can come from the
		// environment. An explicitly requested or unparseable file is not.
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

func newLogger() *zap.Logger {
	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return zl
}

// buildCompleter constructs the configured text-generation backend. NVIDIA is
// the default provider.
func buildCompleter(ctx context.Context, cfg *AIConfig, zl *zap.Logger) (ai.Completer, error) {
	if cfg == nil {
		cfg = &AIConfig{}
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", "nvidia":
		nv := cfg.Nvidia
		if nv == nil {
			nv = &NvidiaConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "nvidia api key",
			Value: nv.APIKey,
			File:  nv.APIKeyFile,
			Env:   "NVIDIA_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.nvidia.api-key-file or NVIDIA_API_KEY)", err)
		}

		return nvidia.New(nvidia.Config{
			Endpoint:   nv.Endpoint,
			Model:      nv.Model,
			APIKey:     apiKey,
			MaxRetries: nv.MaxRetries,
		}, zl)
	case "gemini":
		gm := cfg.Gemini
		if gm == nil {
			gm = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: gm.APIKey,
			File:  gm.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		return gemini.New(ctx, gemini.Config{
			APIKey:     apiKey,
			Model:      gm.Model,
			MaxRetries: gm.MaxRetries,
		}, zl)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
