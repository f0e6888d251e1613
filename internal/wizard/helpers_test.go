package wizard

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/achrafdevl/talentbridge/internal/backend"
)

// recordingView keeps everything a stage displays.
type recordingView struct {
	mu       sync.Mutex
	infos    []string
	errors   []string
	progress []int
}

func (v *recordingView) Info(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.infos = append(v.infos, msg)
}

func (v *recordingView) Error(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, msg)
}

func (v *recordingView) Progress(percent int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.progress = append(v.progress, percent)
}

func (v *recordingView) Errors() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.errors...)
}

func (v *recordingView) Infos() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.infos...)
}

func (v *recordingView) Updates() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]int(nil), v.progress...)
}

// scriptedPrompter replays canned answers and fails with ErrAborted once they run out.
type scriptedPrompter struct {
	offers  []OfferInput
	files   []string
	choices []string
	labels  []string
}

func (p *scriptedPrompter) Offer() (OfferInput, error) {
	if len(p.offers) == 0 {
		return OfferInput{}, ErrAborted
	}
	in := p.offers[0]
	p.offers = p.offers[1:]
	return in, nil
}

func (p *scriptedPrompter) CVFile() (string, error) {
	if len(p.files) == 0 {
		return "", ErrAborted
	}
	f := p.files[0]
	p.files = p.files[1:]
	return f, nil
}

func (p *scriptedPrompter) Select(label string, _ []string) (string, error) {
	p.labels = append(p.labels, label)
	if len(p.choices) == 0 {
		return "", ErrAborted
	}
	c := p.choices[0]
	p.choices = p.choices[1:]
	return c, nil
}

// stubAnalyzer answers similarity and generation requests from fixed values.
type stubAnalyzer struct {
	mu              sync.Mutex
	similarity      float64
	similarityErr   error
	generation      *backend.Generation
	generationErr   error
	similarityCalls int
	generateCalls   int
	// block, when set, makes Similarity wait for ctx cancellation.
	block   bool
	entered chan struct{}
}

func (a *stubAnalyzer) Similarity(ctx context.Context, _, _ string) (*backend.Similarity, error) {
	a.mu.Lock()
	a.similarityCalls++
	a.mu.Unlock()

	if a.block {
		if a.entered != nil {
			close(a.entered)
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if a.similarityErr != nil {
		return nil, a.similarityErr
	}
	return &backend.Similarity{Score: a.similarity}, nil
}

func (a *stubAnalyzer) Generate(context.Context, string, string) (*backend.Generation, error) {
	a.mu.Lock()
	a.generateCalls++
	a.mu.Unlock()

	if a.generationErr != nil {
		return nil, a.generationErr
	}
	return a.generation, nil
}

func (a *stubAnalyzer) calls() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.similarityCalls, a.generateCalls
}

type stubUploader struct {
	jobID string
	cvID  string
	err   error

	jobCalls int
	cvCalls  int
	offers   []backend.JobOffer

	// release, when set, holds uploads until it is closed.
	release chan struct{}
	entered chan struct{}
}

func (u *stubUploader) wait() {
	if u.entered != nil {
		u.entered <- struct{}{}
	}
	if u.release != nil {
		<-u.release
	}
}

func (u *stubUploader) UploadJob(_ context.Context, offer backend.JobOffer) (*backend.JobUpload, error) {
	u.jobCalls++
	u.offers = append(u.offers, offer)
	u.wait()
	if u.err != nil {
		return nil, u.err
	}
	return &backend.JobUpload{JobID: u.jobID}, nil
}

func (u *stubUploader) UploadCV(_ context.Context, path string) (*backend.CVUpload, error) {
	u.cvCalls++
	u.wait()
	if u.err != nil {
		return nil, u.err
	}
	return &backend.CVUpload{CVID: u.cvID, Filename: filepath.Base(path)}, nil
}

type stubDownloader struct {
	body        string
	contentType string
	filename    string
	size        int64
	err         error
	calls       int
}

func (d *stubDownloader) Download(context.Context, string) (*backend.Document, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return &backend.Document{
		Body:        io.NopCloser(strings.NewReader(d.body)),
		ContentType: d.contentType,
		Filename:    d.filename,
		Size:        d.size,
	}, nil
}

type memoryRecorder struct {
	generated []Generated
	downloads map[string]string
	err       error
}

func (r *memoryRecorder) RecordGeneration(g Generated) error {
	r.generated = append(r.generated, g)
	return r.err
}

func (r *memoryRecorder) RecordDownload(id, path string) error {
	if r.downloads == nil {
		r.downloads = map[string]string{}
	}
	r.downloads[id] = path
	return r.err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

var errBoom = errors.New("boom")

// fastConfig keeps the processing tests quick.
func fastConfig() ProcessingConfig {
	cfg := DefaultProcessingConfig()
	cfg.ProgressInterval = time.Millisecond
	cfg.SettleDelay = time.Millisecond
	return cfg
}
