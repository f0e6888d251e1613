package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/achrafdevl/talentbridge/internal/ai"
	"github.com/achrafdevl/talentbridge/internal/backend"
	"github.com/achrafdevl/talentbridge/internal/history"
	"github.com/achrafdevl/talentbridge/internal/wizard"
)

type stubAdvisor struct {
	advice   *ai.Advice
	err      error
	material ai.Material
}

func (s *stubAdvisor) Advise(_ context.Context, m ai.Material) (*ai.Advice, error) {
	s.material = m
	if s.err != nil {
		return nil, s.err
	}
	return s.advice, nil
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestAdviseWith(t *testing.T) {
	cv := writeTemp(t, "cv.txt", "Go developer, five years")
	offer := writeTemp(t, "offer.md", "Kubernetes required")
	advisor := &stubAdvisor{advice: &ai.Advice{Summary: "Add Kubernetes.", Tips: []string{"Mention Helm"}}}

	advise := adviseWith(advisor,
		func() wizard.OfferInput { return wizard.OfferInput{Title: "Platform engineer", File: offer} },
		func() string { return cv },
		zap.NewNop(),
	)

	text, err := advise(context.Background(), &wizard.RejectionError{Score: 45, Minimum: 60, Skipped: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Add Kubernetes.\n  - Mention Helm" {
		t.Fatalf("unexpected advice: %q", text)
	}

	got := advisor.material
	if got.Score != 45 || got.Minimum != 60 || !got.Skipped {
		t.Fatalf("unexpected scores: %+v", got)
	}
	if got.CV != "Go developer, five years" {
		t.Fatalf("unexpected cv text: %q", got.CV)
	}
	if got.Offer != "Platform engineer\n\nKubernetes required" {
		t.Fatalf("unexpected offer text: %q", got.Offer)
	}
}

func TestAdviseWithUnreadableCV(t *testing.T) {
	advisor := &stubAdvisor{advice: &ai.Advice{Summary: "unused"}}

	advise := adviseWith(advisor,
		func() wizard.OfferInput { return wizard.OfferInput{Text: "offer"} },
		func() string { return filepath.Join(t.TempDir(), "cv.odt") },
		zap.NewNop(),
	)

	if _, err := advise(context.Background(), &wizard.RejectionError{Score: 10, Minimum: 60}); err == nil {
		t.Fatalf("expected error for unsupported cv")
	}
	if advisor.material.CV != "" {
		t.Fatalf("advisor must not be called without cv text")
	}
}

func TestOfferTextSkipsUnreadableFile(t *testing.T) {
	text := offerText(wizard.OfferInput{File: filepath.Join(t.TempDir(), "missing.pdf"), Text: " pasted "}, zap.NewNop())
	if text != "pasted" {
		t.Fatalf("unexpected offer text: %q", text)
	}
}

func TestNewAdviseFuncDisabled(t *testing.T) {
	advise, err := newAdviseFunc(context.Background(), &AIConfig{}, nil, nil, zap.NewNop())
	if err != nil || advise != nil {
		t.Fatalf("expected no advisor, got %v, %v", advise != nil, err)
	}
}

func TestNewAdvisorErrors(t *testing.T) {
	if _, err := newAdvisor(context.Background(), &AIConfig{Enabled: true, Provider: "openai", Gemini: &GeminiConfig{}}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}

	_, err := newAdvisor(context.Background(), &AIConfig{Enabled: true, Gemini: &GeminiConfig{}}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "gemini api key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestResolveGeneratedID(t *testing.T) {
	store := history.New(filepath.Join(t.TempDir(), "history.yaml"))

	if _, err := resolveGeneratedID(nil, true, store); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty history, got %v", err)
	}

	if err := store.RecordGeneration(wizard.Generated{GeneratedID: "gen-1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.RecordGeneration(wizard.Generated{GeneratedID: "gen-2"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		last    bool
		store   *history.Store
		want    string
		wantErr bool
	}{
		{name: "explicit id", args: []string{"abc123"}, want: "abc123"},
		{name: "last", last: true, store: store, want: "gen-2"},
		{name: "both", args: []string{"abc123"}, last: true, store: store, wantErr: true},
		{name: "neither", wantErr: true},
		{name: "last without history", last: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveGeneratedID(tt.args, tt.last, tt.store)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLookupGeneration(t *testing.T) {
	store := history.New(filepath.Join(t.TempDir(), "history.yaml"))
	if err := store.RecordGeneration(wizard.Generated{GeneratedID: "gen-1", JobID: "job-1", CVID: "cv-1", Similarity: 77}); err != nil {
		t.Fatalf("record: %v", err)
	}

	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	entry := lookupGeneration(store, "gen-1", log)
	if entry == nil || entry.JobID != "job-1" || entry.Similarity != 77 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if logs.FilterMessage("downloading recorded generation").Len() != 1 {
		t.Fatalf("expected recorded generation to be logged")
	}

	if entry := lookupGeneration(store, "gen-9", log); entry != nil {
		t.Fatalf("expected no entry for unknown id, got %+v", entry)
	}
	if logs.FilterMessage("generated id is not in history").Len() != 1 {
		t.Fatalf("expected a warning for unknown id")
	}

	if entry := lookupGeneration(nil, "gen-1", log); entry != nil {
		t.Fatalf("expected nil without history")
	}
}

func TestPrintHistory(t *testing.T) {
	var out bytes.Buffer

	entries := []*history.Entry{
		{GeneratedID: "gen-1", JobID: "job-1", CVID: "cv-1", Similarity: 72, CreatedAt: time.Now(), File: "/tmp/a.docx"},
		{GeneratedID: "gen-2", JobID: "job-2", CVID: "cv-2", Similarity: 64, CreatedAt: time.Now()},
	}
	if err := printHistory(&out, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "CREATED") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "gen-1") || !strings.Contains(lines[1], "72%") || !strings.Contains(lines[1], "/tmp/a.docx") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[2]), "-") {
		t.Fatalf("expected placeholder for missing file: %q", lines[2])
	}
}

func TestBuildWizard(t *testing.T) {
	v := &Config{
		Backend:  &BackendConfig{URL: "http://localhost:8000"},
		Wizard:   &WizardConfig{MinimumSimilarity: 60, ProgressStep: 6, ProgressCap: 90, ClearOnBack: true},
		Download: &DownloadConfig{Dir: t.TempDir()},
		AI:       &AIConfig{},
	}
	s := &session{
		logger:  zap.NewNop(),
		config:  v,
		backend: backend.New(zap.NewNop(), v.Backend.URL, ""),
		history: history.New(filepath.Join(t.TempDir(), "history.yaml")),
	}

	controller, err := buildWizard(context.Background(), s, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !controller.ClearOnBack {
		t.Fatalf("expected clear-on-back to be applied")
	}
	if controller.Stage().Step() != wizard.StepOffer {
		t.Fatalf("expected wizard to start at the offer step")
	}
}

func TestPrintVersion(t *testing.T) {
	withModule := func(v string) func() (*debug.BuildInfo, bool) {
		return func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Main: debug.Module{Version: v}}, true
		}
	}
	noInfo := func() (*debug.BuildInfo, bool) { return nil, false }

	tests := []struct {
		name      string
		version   string
		buildInfo func() (*debug.BuildInfo, bool)
		want      string
	}{
		{name: "ldflags", version: "1.2.0", buildInfo: withModule("v0.9.0"), want: "talentbridge version: 1.2.0\n"},
		{name: "go install", version: "unknown", buildInfo: withModule("v0.9.0"), want: "talentbridge version: v0.9.0\n"},
		{name: "local build", version: "unknown", buildInfo: withModule("(devel)"), want: "talentbridge version: unknown\n"},
		{name: "no build info", version: "unknown", buildInfo: noInfo, want: "talentbridge version: unknown\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printVersion(&out, tt.version, tt.buildInfo)
			if out.String() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, out.String())
			}
		})
	}
}
