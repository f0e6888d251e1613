package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/ai"
	"github.com/achrafdevl/talentbridge/internal/logger"
	"github.com/achrafdevl/talentbridge/internal/utils"
)

const (
	provider            = "gemini"
	defaultMaxLogLength = 200
	// maxMaterialLength bounds each document placed in the prompt, in runes.
	maxMaterialLength = 20000
	noOffer           = "(not available)"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

// Advisor asks Gemini how a rejected CV could get closer to the offer.
type Advisor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAdvisor(generator contentGenerator, maxLogLength int, log *zap.Logger) *Advisor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Advisor{
		generator: generator,
		logger:    logger.WithFields(log, logger.AIFields(provider, generator.Model())...),
		maxLogLen: maxLogLength,
	}
}

func (a *Advisor) Advise(ctx context.Context, material ai.Material) (*ai.Advice, error) {
	if strings.TrimSpace(material.CV) == "" {
		return nil, errors.New("cv text is required")
	}

	prompt := buildPrompt(material)

	a.logger.Debug("gemini generate content request",
		zap.Int("similarity", material.Score),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	advice, err := parseResponse(raw)
	if err != nil {
		// The model ignored the format; its prose is still worth showing.
		a.logger.Debug("falling back to raw advice", zap.Error(err))
		return &ai.Advice{Summary: strings.TrimSpace(raw), Raw: raw}, nil
	}

	advice.Raw = raw
	return advice, nil
}

func buildPrompt(m ai.Material) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Offer:\n{{OFFER}}\n\nCV:\n{{CV}}\n\nSimilarity {{SCORE}}% of {{MINIMUM}}%.\n\nJSON Response:"
	}

	offer := strings.TrimSpace(m.Offer)
	if offer == "" {
		offer = noOffer
	}

	replacer := strings.NewReplacer(
		"{{SCORE}}", strconv.Itoa(m.Score),
		"{{MINIMUM}}", strconv.Itoa(m.Minimum),
		"{{OFFER}}", utils.TruncateForLog(offer, maxMaterialLength),
		"{{CV}}", utils.TruncateForLog(m.CV, maxMaterialLength),
	)
	return replacer.Replace(template)
}

func parseResponse(raw string) (*ai.Advice, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	advice := &ai.Advice{Summary: coerceString(data["summary"])}

	if tips, ok := data["tips"].([]any); ok {
		for _, tip := range tips {
			if s := coerceString(tip); s != "" {
				advice.Tips = append(advice.Tips, s)
			}
		}
	}

	if advice.Summary == "" && len(advice.Tips) == 0 {
		return nil, errors.New("gemini response has no summary or tips")
	}

	return advice, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
