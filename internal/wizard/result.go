package wizard

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/backend"
)

// DefaultFilename is the download name pattern; %s is replaced by the generated id.
const DefaultFilename = "tailored_cv_%s.docx"

type Downloader interface {
	Download(ctx context.Context, generatedID string) (*backend.Document, error)
}

type DownloadConfig struct {
	Dir      string
	Filename string
}

// ResultStage offers the generated document for download.
type ResultStage struct {
	downloader Downloader
	prompter   Prompter
	view       View
	config     DownloadConfig
	logger     *zap.Logger
	recorder   Recorder
}

func NewResultStage(downloader Downloader, prompter Prompter, view View, config DownloadConfig, logger *zap.Logger) *ResultStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultStage{
		downloader: downloader,
		prompter:   prompter,
		view:       view,
		config:     config,
		logger:     logger,
	}
}

// WithRecorder records where each download was saved.
func (s *ResultStage) WithRecorder(r Recorder) *ResultStage {
	s.recorder = r
	return s
}

func (s *ResultStage) Step() Step { return StepResult }

func (s *ResultStage) Run(ctx context.Context, state State) (Outcome, error) {
	label := fmt.Sprintf("Tailored CV %s is ready", state.GeneratedID)

	for {
		choice, err := s.prompter.Select(label, []string{ChoiceDownload, ChoiceRestart, ChoiceExit})
		if err != nil {
			return Outcome{}, err
		}

		switch choice {
		case ChoiceDownload:
			path, err := s.Download(ctx, state.GeneratedID)
			if err != nil {
				if ctx.Err() != nil {
					return Outcome{}, ctx.Err()
				}
				s.view.Error(Describe(err))
				continue
			}
			s.view.Info("Saved to " + path)
		case ChoiceRestart:
			return Restart(), nil
		case ChoiceExit:
			return Exit(), nil
		default:
			return Outcome{}, fmt.Errorf("unknown choice %q", choice)
		}
	}
}

// Download saves the generated document and returns its path.
func (s *ResultStage) Download(ctx context.Context, generatedID string) (string, error) {
	path, err := SaveDocument(ctx, s.downloader, s.config, generatedID, s.logger)
	if err != nil {
		s.logger.Warn("download failed", zap.String("generated_id", generatedID), zap.Error(err))
		return "", err
	}

	s.logger.Info("document saved", zap.String("generated_id", generatedID), zap.String("path", path))

	if s.recorder != nil {
		if err := s.recorder.RecordDownload(generatedID, path); err != nil {
			s.logger.Warn("recording download failed", zap.Error(err))
		}
	}

	return path, nil
}

// SaveDocument downloads the document into cfg.Dir. The file appears only once it is complete.
func SaveDocument(ctx context.Context, downloader Downloader, cfg DownloadConfig, generatedID string, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	doc, err := downloader.Download(ctx, generatedID)
	if err != nil {
		return "", err
	}
	defer doc.Body.Close()

	log.Debug("document received",
		zap.String("generated_id", generatedID),
		zap.String("content_type", doc.ContentType),
		zap.String("backend_filename", doc.Filename),
		zap.Int64("size", doc.Size),
	)

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".talentbridge-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, doc.Body)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("write document: %w", err)
	}
	if doc.Size > 0 && written != doc.Size {
		tmp.Close()
		return "", fmt.Errorf("write document: got %d of %d bytes", written, doc.Size)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	target := filepath.Join(dir, Filename(cfg.Filename, generatedID))
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}

	return target, nil
}

// Filename renders the download name for id. A pattern without %s gets the id appended.
// The name never starts with a dot, so it cannot resolve to "." or "..".
func Filename(pattern, id string) string {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultFilename
	}

	id = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, id)

	var name string
	if strings.Contains(pattern, "%s") {
		name = strings.ReplaceAll(pattern, "%s", id)
	} else {
		ext := filepath.Ext(pattern)
		name = strings.TrimSuffix(pattern, ext) + "_" + id + ext
	}

	trimmed := strings.TrimLeft(name, ".")
	if n := len(name) - len(trimmed); n > 0 {
		name = strings.Repeat("_", n) + trimmed
	}
	if name == "" {
		name = "_"
	}
	return name
}
