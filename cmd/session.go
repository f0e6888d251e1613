package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/backend"
	"github.com/achrafdevl/talentbridge/internal/history"
	"github.com/achrafdevl/talentbridge/internal/logger"
	"github.com/achrafdevl/talentbridge/internal/secrets"
)

// session holds what every command needs: logger, config, backend client and history.
type session struct {
	logger  *zap.Logger
	config  *Config
	backend *backend.Client
	history *history.Store
}

func newSession() *session {
	logger, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: viper.GetString("log-file"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting with config",
		zap.String("version", version),
		zap.String("backend_url", config.Backend.URL),
		zap.Int("minimum_similarity", config.Wizard.MinimumSimilarity),
		zap.String("download_dir", config.Download.Dir),
		zap.Bool("clear_on_back", config.Wizard.ClearOnBack),
		zap.Bool("ai_enabled", config.AI.Enabled),
	)

	token, err := secrets.LoadOptional(secrets.Source{
		Name:  "backend token",
		Value: config.Backend.Token,
		File:  config.Backend.TokenFile,
	})
	if err != nil {
		logger.Fatal(
			"loading backend token",
			zap.Error(err),
			zap.String("hint", "set TALENTBRIDGE_BACKEND_TOKEN_FILE or the 'backend.token-file' key in the configuration file"),
		)
	}

	client := backend.New(logger, config.Backend.URL, token)
	if config.Backend.Timeout > 0 {
		client.HTTPClient.Timeout = config.Backend.Timeout
	}
	if config.Backend.UserAgent != "" {
		client.UserAgent = config.Backend.UserAgent
	}

	return &session{
		logger:  logger,
		config:  config,
		backend: client,
		history: openHistory(config.HistoryFile, logger),
	}
}

// openHistory returns nil when no history location can be determined.
func openHistory(path string, logger *zap.Logger) *history.Store {
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			logger.Warn("history is disabled", zap.Error(err))
			return nil
		}
	}
	return history.New(path)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
