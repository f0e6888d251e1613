package wizard

import (
	"errors"
	"fmt"

	"github.com/achrafdevl/talentbridge/internal/backend"
)

var (
	// ErrAborted is returned by a Prompter when the user quits the wizard.
	ErrAborted = errors.New("wizard aborted")

	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrEmptyOffer        = errors.New("provide a job offer file or paste its text")
	ErrEmptyCV           = errors.New("provide a CV file")
	ErrUploadInProgress  = errors.New("an upload is already in progress")
	ErrMissingIdentifier = errors.New("cv and job identifiers are required")
)

// FileError reports a local file that cannot be uploaded.
type FileError struct {
	Path   string
	Reason string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// RejectionError is the expected outcome of a CV that does not match the offer well enough.
// Skipped is set when the backend made the call rather than the local threshold check.
type RejectionError struct {
	Score   int
	Minimum int
	Skipped bool
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("similarity %d%% is below the required minimum of %d%%", e.Score, e.Minimum)
}

// Describe turns an error into the message shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var (
		rejection *RejectionError
		contract  *backend.ContractError
		status    *backend.StatusError
		file      *FileError
	)

	switch {
	case errors.As(err, &rejection):
		return "CV rejected: " + rejection.Error()
	case errors.As(err, &contract):
		return "unexpected backend response: " + contract.Error()
	case errors.As(err, &status):
		if status.Detail != "" {
			return fmt.Sprintf("backend error (%d): %s", status.Code, status.Detail)
		}
		return fmt.Sprintf("backend error: %s", status.Status)
	case errors.As(err, &file):
		return "invalid file " + file.Error()
	case errors.Is(err, ErrEmptyOffer), errors.Is(err, ErrEmptyCV), errors.Is(err, ErrUploadInProgress):
		return err.Error()
	default:
		return "request failed: " + err.Error()
	}
}
