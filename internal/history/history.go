// Package history keeps a YAML record of generated documents.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/achrafdevl/talentbridge/internal/wizard"
)

const (
	appDir   = "talentbridge"
	fileName = "history.yaml"
)

var ErrNotFound = errors.New("no such generation in history")

type Entry struct {
	GeneratedID string    `yaml:"generated_id"`
	JobID       string    `yaml:"job_id"`
	CVID        string    `yaml:"cv_id"`
	Similarity  int       `yaml:"similarity"`
	CreatedAt   time.Time `yaml:"created_at"`
	File        string    `yaml:"file,omitempty"`
}

type document struct {
	Entries []*Entry `yaml:"entries"`
}

// Store appends wizard results to a YAML file. The whole file is rewritten on each change.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func New(path string) *Store {
	return &Store{path: path, now: func() time.Time { return time.Now().UTC() }}
}

// DefaultPath is history.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

func (s *Store) Path() string { return s.path }

// Entries returns all recorded generations, oldest first. A missing file is an empty history.
func (s *Store) Entries() ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// Last returns the most recent generation.
func (s *Store) Last() (*Entry, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries[len(entries)-1], nil
}

func (s *Store) FindByID(generatedID string) (*Entry, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.GeneratedID == generatedID {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, generatedID)
}

func (s *Store) RecordGeneration(g wizard.Generated) error {
	return s.update(func(doc *document) error {
		doc.Entries = append(doc.Entries, &Entry{
			GeneratedID: g.GeneratedID,
			JobID:       g.JobID,
			CVID:        g.CVID,
			Similarity:  g.Similarity,
			CreatedAt:   s.now(),
		})
		return nil
	})
}

// RecordDownload stores where the document for generatedID was saved.
func (s *Store) RecordDownload(generatedID, path string) error {
	return s.update(func(doc *document) error {
		for i := len(doc.Entries) - 1; i >= 0; i-- {
			if doc.Entries[i].GeneratedID == generatedID {
				doc.Entries[i].File = path
				return nil
			}
		}
		doc.Entries = append(doc.Entries, &Entry{
			GeneratedID: generatedID,
			CreatedAt:   s.now(),
			File:        path,
		})
		return nil
	})
}

func (s *Store) update(fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *Store) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{}, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return &document{}, nil
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *Store) write(doc *document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
