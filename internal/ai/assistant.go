package ai

import (
	"context"
	"strings"
)

// Material is what an advisor knows about a rejected CV.
type Material struct {
	Score   int
	Minimum int
	// Skipped is set when the backend refused generation rather than the local threshold.
	Skipped bool
	Offer   string
	CV      string
}

// Advice is a short explanation of the gap plus concrete edits to the CV.
type Advice struct {
	Summary string
	Tips    []string
	Raw     string
}

// Text renders the advice for the terminal.
func (a *Advice) Text() string {
	if a == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.Summary)
	for _, tip := range a.Tips {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - ")
		b.WriteString(tip)
	}
	return b.String()
}

type Advisor interface {
	Advise(ctx context.Context, material Material) (*Advice, error)
}
