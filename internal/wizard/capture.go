package wizard

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/backend"
)

// OfferInput is what the user provides for a job offer.
type OfferInput struct {
	Title string
	File  string
	Text  string
}

// Validate checks the input locally, without touching the backend.
func (in OfferInput) Validate() error {
	file := strings.TrimSpace(in.File)
	if file == "" && strings.TrimSpace(in.Text) == "" {
		return ErrEmptyOffer
	}
	if file != "" {
		return checkFile(file)
	}
	return nil
}

type JobUploader interface {
	UploadJob(ctx context.Context, offer backend.JobOffer) (*backend.JobUpload, error)
}

type CVUploader interface {
	UploadCV(ctx context.Context, path string) (*backend.CVUpload, error)
}

// OfferStage captures the job offer and uploads it.
type OfferStage struct {
	uploader  JobUploader
	prompter  Prompter
	view      View
	logger    *zap.Logger
	uploading atomic.Bool

	mu   sync.Mutex
	last OfferInput
}

func NewOfferStage(uploader JobUploader, prompter Prompter, view View, logger *zap.Logger) *OfferStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferStage{uploader: uploader, prompter: prompter, view: view, logger: logger}
}

func (s *OfferStage) Step() Step { return StepOffer }

func (s *OfferStage) Run(ctx context.Context, _ State) (Outcome, error) {
	for {
		input, err := s.prompter.Offer()
		if err != nil {
			return Outcome{}, err
		}

		jobID, err := s.Submit(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			s.view.Error(Describe(err))
			continue
		}

		s.view.Info("Job offer uploaded.")
		return Next(jobID), nil
	}
}

// Submit validates and uploads the offer, returning the job id.
func (s *OfferStage) Submit(ctx context.Context, input OfferInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}

	if !s.uploading.CompareAndSwap(false, true) {
		return "", ErrUploadInProgress
	}
	defer s.uploading.Store(false)

	upload, err := s.uploader.UploadJob(ctx, backend.JobOffer{
		Title: input.Title,
		File:  input.File,
		Text:  input.Text,
	})
	if err != nil {
		s.logger.Warn("job offer upload failed", zap.Error(err))
		return "", fmt.Errorf("upload job offer: %w", err)
	}

	s.mu.Lock()
	s.last = input
	s.mu.Unlock()

	s.logger.Info("job offer uploaded", zap.String("job_id", upload.JobID))
	return upload.JobID, nil
}

// Uploading reports whether an upload is in flight.
func (s *OfferStage) Uploading() bool { return s.uploading.Load() }

// LastInput returns the most recently uploaded offer.
func (s *OfferStage) LastInput() OfferInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// CVStage captures the CV file and uploads it.
type CVStage struct {
	uploader  CVUploader
	prompter  Prompter
	view      View
	logger    *zap.Logger
	uploading atomic.Bool

	mu   sync.Mutex
	last string
}

func NewCVStage(uploader CVUploader, prompter Prompter, view View, logger *zap.Logger) *CVStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CVStage{uploader: uploader, prompter: prompter, view: view, logger: logger}
}

func (s *CVStage) Step() Step { return StepCV }

func (s *CVStage) Run(ctx context.Context, _ State) (Outcome, error) {
	for {
		path, err := s.prompter.CVFile()
		if err != nil {
			return Outcome{}, err
		}

		cvID, err := s.Submit(ctx, path)
		if err == nil {
			s.view.Info("CV uploaded.")
			return Next(cvID), nil
		}
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}

		s.view.Error(Describe(err))

		choice, err := s.prompter.Select("CV upload failed", []string{ChoiceRetry, ChoiceBack})
		if err != nil {
			return Outcome{}, err
		}
		if choice == ChoiceBack {
			return Back(), nil
		}
	}
}

// Submit validates and uploads the CV, returning the CV id.
func (s *CVStage) Submit(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrEmptyCV
	}
	if err := checkFile(path); err != nil {
		return "", err
	}

	if !s.uploading.CompareAndSwap(false, true) {
		return "", ErrUploadInProgress
	}
	defer s.uploading.Store(false)

	upload, err := s.uploader.UploadCV(ctx, path)
	if err != nil {
		s.logger.Warn("cv upload failed", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("upload cv: %w", err)
	}

	s.mu.Lock()
	s.last = path
	s.mu.Unlock()

	s.logger.Info("cv uploaded", zap.String("cv_id", upload.CVID), zap.String("filename", upload.Filename))
	return upload.CVID, nil
}

// Uploading reports whether an upload is in flight.
func (s *CVStage) Uploading() bool { return s.uploading.Load() }

// LastFile returns the most recently uploaded CV path.
func (s *CVStage) LastFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileError{Path: path, Reason: "file does not exist"}
		}
		return &FileError{Path: path, Reason: err.Error()}
	}
	if !info.Mode().IsRegular() {
		return &FileError{Path: path, Reason: "not a regular file"}
	}
	if info.Size() == 0 {
		return &FileError{Path: path, Reason: "file is empty"}
	}
	return nil
}
