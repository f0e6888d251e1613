package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/achrafdevl/talentbridge/internal/backend"
	"github.com/achrafdevl/talentbridge/internal/logger"
	"github.com/achrafdevl/talentbridge/internal/utils"
)

const (
	defaultMinimumSimilarity = 60
	defaultProgressStep      = 6
	defaultProgressCap       = 90
	defaultProgressInterval  = 500 * time.Millisecond
	defaultSettleDelay       = 600 * time.Millisecond
)

// Analyzer scores a CV against an offer and generates the tailored document.
type Analyzer interface {
	Similarity(ctx context.Context, cvID, jobID string) (*backend.Similarity, error)
	Generate(ctx context.Context, cvID, jobID string) (*backend.Generation, error)
}

// AdviseFunc produces improvement tips for a rejected CV.
type AdviseFunc func(ctx context.Context, rejection *RejectionError) (string, error)

type ProcessingConfig struct {
	// MinimumSimilarity is the inclusive percentage a CV needs before generation is attempted.
	MinimumSimilarity int
	ProgressStep      int
	ProgressCap       int
	ProgressInterval  time.Duration
	// SettleDelay keeps the finished progress bar on screen before the result shows.
	SettleDelay time.Duration
}

func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		MinimumSimilarity: defaultMinimumSimilarity,
		ProgressStep:      defaultProgressStep,
		ProgressCap:       defaultProgressCap,
		ProgressInterval:  defaultProgressInterval,
		SettleDelay:       defaultSettleDelay,
	}
}

// ProcessingStage scores the CV and, when it is good enough, generates the tailored document.
type ProcessingStage struct {
	analyzer Analyzer
	prompter Prompter
	view     View
	config   ProcessingConfig
	logger   *zap.Logger

	advise   AdviseFunc
	recorder Recorder
}

func NewProcessingStage(analyzer Analyzer, prompter Prompter, view View, config ProcessingConfig, logger *zap.Logger) *ProcessingStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ProgressCap <= 0 || config.ProgressCap >= 100 {
		config.ProgressCap = defaultProgressCap
	}
	return &ProcessingStage{
		analyzer: analyzer,
		prompter: prompter,
		view:     view,
		config:   config,
		logger:   logger,
	}
}

// WithAdvisor shows advice from fn after a rejection.
func (s *ProcessingStage) WithAdvisor(fn AdviseFunc) *ProcessingStage {
	s.advise = fn
	return s
}

// WithRecorder records every successful generation.
func (s *ProcessingStage) WithRecorder(r Recorder) *ProcessingStage {
	s.recorder = r
	return s
}

func (s *ProcessingStage) Step() Step { return StepProcessing }

func (s *ProcessingStage) Run(ctx context.Context, state State) (Outcome, error) {
	generatedID, err := s.Process(ctx, state.CVID, state.JobID)
	if err == nil {
		return Next(generatedID), nil
	}
	if ctx.Err() != nil {
		return Outcome{}, ctx.Err()
	}

	s.view.Error(Describe(err))

	var rejection *RejectionError
	if errors.As(err, &rejection) && s.advise != nil {
		s.showAdvice(ctx, rejection)
	}

	if _, err := s.prompter.Select("Analysis stopped", []string{ChoiceBack}); err != nil {
		return Outcome{}, err
	}
	return Back(), nil
}

// Process runs similarity scoring and, if the score clears the threshold, generation.
// The progress meter is stopped before Process returns on every path.
func (s *ProcessingStage) Process(ctx context.Context, cvID, jobID string) (string, error) {
	if cvID == "" || jobID == "" {
		return "", ErrMissingIdentifier
	}

	meter := newProgressMeter(s.view, s.config.ProgressStep, s.config.ProgressCap)
	defer meter.Stop()
	meter.Reset()

	g, gctx := errgroup.WithContext(ctx)
	tickCtx, stopTicker := context.WithCancel(gctx)
	defer stopTicker()

	g.Go(func() error {
		meter.Run(tickCtx, s.config.ProgressInterval)
		return nil
	})

	var generatedID string
	g.Go(func() error {
		defer stopTicker()

		id, err := s.analyze(gctx, meter, cvID, jobID)
		if err != nil {
			return err
		}
		generatedID = id
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", err
	}

	return generatedID, nil
}

func (s *ProcessingStage) analyze(ctx context.Context, meter *progressMeter, cvID, jobID string) (string, error) {
	log := s.logger.With(logger.WizardFields(jobID, cvID, "")...)

	similarity, err := s.analyzer.Similarity(ctx, cvID, jobID)
	if err != nil {
		return "", fmt.Errorf("similarity: %w", err)
	}

	score := similarity.Percent()
	log.Info("similarity computed",
		zap.Int("similarity", score),
		zap.Int("minimum", s.config.MinimumSimilarity),
	)

	if score < s.config.MinimumSimilarity {
		return "", &RejectionError{Score: score, Minimum: s.config.MinimumSimilarity}
	}

	generation, err := s.analyzer.Generate(ctx, cvID, jobID)
	if err != nil {
		return "", fmt.Errorf("generation: %w", err)
	}

	if generation.Skipped() {
		if generation.Similarity != nil {
			score = backend.Percent(*generation.Similarity)
		}
		log.Info("generation skipped by backend", zap.Int("similarity", score))
		return "", &RejectionError{Score: score, Minimum: s.config.MinimumSimilarity, Skipped: true}
	}

	if generation.GeneratedID == "" {
		return "", &backend.ContractError{Endpoint: "generate", Field: "generated_id"}
	}

	meter.Complete()
	log.Info("tailored cv generated", zap.String(logger.FieldGeneratedID, generation.GeneratedID))

	if err := utils.WaitFor(ctx, s.config.SettleDelay); err != nil {
		return "", err
	}

	if s.recorder != nil {
		err := s.recorder.RecordGeneration(Generated{
			JobID:       jobID,
			CVID:        cvID,
			GeneratedID: generation.GeneratedID,
			Similarity:  score,
		})
		if err != nil {
			log.Warn("recording generation failed", zap.Error(err))
		}
	}

	return generation.GeneratedID, nil
}

func (s *ProcessingStage) showAdvice(ctx context.Context, rejection *RejectionError) {
	advice, err := s.advise(ctx, rejection)
	if err != nil {
		s.logger.Warn("advisor failed", zap.Error(err))
		return
	}
	if advice != "" {
		s.view.Info(advice)
	}
}
