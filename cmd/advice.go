package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/ai"
	"github.com/achrafdevl/talentbridge/internal/ai/gemini"
	"github.com/achrafdevl/talentbridge/internal/document"
	"github.com/achrafdevl/talentbridge/internal/secrets"
	"github.com/achrafdevl/talentbridge/internal/wizard"
)

// newAdviseFunc returns nil when the advisor is disabled.
func newAdviseFunc(ctx context.Context, cfg *AIConfig, offer *wizard.OfferStage, cv *wizard.CVStage, logger *zap.Logger) (wizard.AdviseFunc, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	advisor, err := newAdvisor(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return adviseWith(advisor, offer.LastInput, cv.LastFile, logger), nil
}

func newAdvisor(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Advisor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when the advisor is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or TALENTBRIDGE_AI_GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewAdvisor(generator, cfg.Gemini.MaxLogLength, logger), nil
}

// adviseWith reads the last uploaded offer and CV and asks advisor about the rejection.
func adviseWith(advisor ai.Advisor, lastOffer func() wizard.OfferInput, lastCV func() string, logger *zap.Logger) wizard.AdviseFunc {
	return func(ctx context.Context, rejection *wizard.RejectionError) (string, error) {
		cvText, err := document.ExtractText(lastCV())
		if err != nil {
			return "", fmt.Errorf("reading cv: %w", err)
		}

		advice, err := advisor.Advise(ctx, ai.Material{
			Score:   rejection.Score,
			Minimum: rejection.Minimum,
			Skipped: rejection.Skipped,
			Offer:   offerText(lastOffer(), logger),
			CV:      cvText,
		})
		if err != nil {
			return "", err
		}

		return advice.Text(), nil
	}
}

// offerText joins whatever is known about the offer. An unreadable offer file is skipped.
func offerText(in wizard.OfferInput, logger *zap.Logger) string {
	parts := make([]string, 0, 3)
	if title := strings.TrimSpace(in.Title); title != "" {
		parts = append(parts, title)
	}

	if in.File != "" {
		text, err := document.ExtractText(in.File)
		if err != nil {
			logger.Debug("offer file not readable for the advisor", zap.String("path", in.File), zap.Error(err))
		} else {
			parts = append(parts, text)
		}
	}

	if text := strings.TrimSpace(in.Text); text != "" {
		parts = append(parts, text)
	}

	return strings.Join(parts, "\n\n")
}
