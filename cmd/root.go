package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/achrafdevl/talentbridge/internal/wizard"
)

const (
	app       = "talentbridge"
	envPrefix = "TALENTBRIDGE"
)

type Config struct {
	Backend     *BackendConfig  `mapstructure:"backend"`
	Wizard      *WizardConfig   `mapstructure:"wizard"`
	Download    *DownloadConfig `mapstructure:"download"`
	HistoryFile string          `mapstructure:"history-file"`
	AI          *AIConfig       `mapstructure:"ai"`
}

type BackendConfig struct {
	URL       string        `mapstructure:"url"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user-agent"`
}

type WizardConfig struct {
	MinimumSimilarity int           `mapstructure:"minimum-similarity"`
	ProgressStep      int           `mapstructure:"progress-step"`
	ProgressCap       int           `mapstructure:"progress-cap"`
	ProgressInterval  time.Duration `mapstructure:"progress-interval"`
	SettleDelay       time.Duration `mapstructure:"settle-delay"`
	ClearOnBack       bool          `mapstructure:"clear-on-back"`
}

type DownloadConfig struct {
	Dir      string `mapstructure:"dir"`
	Filename string `mapstructure:"filename"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentbridge tailors a CV to a job offer with the talentbridge backend",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentbridge.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	// The version command works without any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if err := configure(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// configure prepares v for reading: defaults, environment overrides and the config file.
// A missing default config file is fine; a missing explicit one is not.
func configure(v *viper.Viper, file string) error {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

// setDefaults registers every key, which also lets AutomaticEnv override keys missing from the file.
func setDefaults(v *viper.Viper) {
	processing := wizard.DefaultProcessingConfig()

	v.SetDefault("log-file", "")
	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.token-file", "")
	v.SetDefault("backend.timeout", 2*time.Minute)
	v.SetDefault("backend.user-agent", "")

	v.SetDefault("wizard.minimum-similarity", processing.MinimumSimilarity)
	v.SetDefault("wizard.progress-step", processing.ProgressStep)
	v.SetDefault("wizard.progress-cap", processing.ProgressCap)
	v.SetDefault("wizard.progress-interval", processing.ProgressInterval)
	v.SetDefault("wizard.settle-delay", processing.SettleDelay)
	v.SetDefault("wizard.clear-on-back", false)

	v.SetDefault("download.dir", ".")
	v.SetDefault("download.filename", wizard.DefaultFilename)

	v.SetDefault("history-file", "")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-log-length", 0)
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}
	if config.Backend == nil {
		config.Backend = &BackendConfig{}
	}
	if config.Wizard == nil {
		config.Wizard = &WizardConfig{}
	}
	if config.Download == nil {
		config.Download = &DownloadConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.url must be an http(s) url, got %q", c.Backend.URL)
	}

	if m := c.Wizard.MinimumSimilarity; m < 0 || m > 100 {
		return fmt.Errorf("wizard.minimum-similarity must be between 0 and 100, got %d", m)
	}
	if p := c.Wizard.ProgressCap; p < 1 || p > 99 {
		return fmt.Errorf("wizard.progress-cap must be between 1 and 99, got %d", p)
	}

	return nil
}

func (c *Config) processing() wizard.ProcessingConfig {
	return wizard.ProcessingConfig{
		MinimumSimilarity: c.Wizard.MinimumSimilarity,
		ProgressStep:      c.Wizard.ProgressStep,
		ProgressCap:       c.Wizard.ProgressCap,
		ProgressInterval:  c.Wizard.ProgressInterval,
		SettleDelay:       c.Wizard.SettleDelay,
	}
}

func (c *Config) download() wizard.DownloadConfig {
	return wizard.DownloadConfig{
		Dir:      c.Download.Dir,
		Filename: c.Download.Filename,
	}
}
