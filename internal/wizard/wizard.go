// Package wizard sequences the CV tailoring flow: job offer, CV, analysis and result.
package wizard

import (
	"context"
	"fmt"
)

// Step identifies one of the four wizard stages.
type Step int

const (
	StepOffer Step = iota + 1
	StepCV
	StepProcessing
	StepResult
)

func (s Step) String() string {
	switch s {
	case StepOffer:
		return "offer"
	case StepCV:
		return "cv"
	case StepProcessing:
		return "processing"
	case StepResult:
		return "result"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// State is what the controller knows about the current run.
// Stages receive a copy and never change it directly.
type State struct {
	Current     Step
	JobID       string
	CVID        string
	GeneratedID string
}

// Action tells the controller what a stage wants next.
type Action int

const (
	ActionNext Action = iota
	ActionBack
	ActionRestart
	ActionExit
)

// Outcome is reported by a stage when it is done. ID carries the identifier the next step needs.
type Outcome struct {
	Action Action
	ID     string
}

func Next(id string) Outcome { return Outcome{Action: ActionNext, ID: id} }
func Back() Outcome          { return Outcome{Action: ActionBack} }
func Restart() Outcome       { return Outcome{Action: ActionRestart} }
func Exit() Outcome          { return Outcome{Action: ActionExit} }

// Stage is a single wizard screen. Run returns once the user is done with it.
type Stage interface {
	Step() Step
	Run(ctx context.Context, state State) (Outcome, error)
}

// Menu entries offered by the stages.
const (
	ChoiceRetry    = "Retry"
	ChoiceBack     = "Back"
	ChoiceDownload = "Download"
	ChoiceRestart  = "Start over"
	ChoiceExit     = "Exit"
)

// Prompter collects input from the user. Implementations return ErrAborted when the user quits.
type Prompter interface {
	Offer() (OfferInput, error)
	CVFile() (string, error)
	Select(label string, items []string) (string, error)
}

// View displays stage output.
type View interface {
	Info(msg string)
	Error(msg string)
	Progress(percent int)
}

// Generated describes a finished generation.
type Generated struct {
	JobID       string
	CVID        string
	GeneratedID string
	Similarity  int
}

// Recorder keeps track of generated documents across runs.
type Recorder interface {
	RecordGeneration(g Generated) error
	RecordDownload(generatedID, path string) error
}
