// Package console renders the wizard in a terminal.
package console

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/achrafdevl/talentbridge/internal/wizard"
)

const (
	labelTitle     = "Job title (optional)"
	labelOfferFile = "Job offer file (leave empty to paste the text)"
	labelOfferText = "Job offer text"
	labelCVFile    = "CV file"
)

// Prompter asks the user for wizard input with promptui.
// Nil Stdin/Stdout fall back to the process terminal.
type Prompter struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func NewPrompter() *Prompter {
	return &Prompter{}
}

func (p *Prompter) Offer() (wizard.OfferInput, error) {
	title, err := p.ask(labelTitle)
	if err != nil {
		return wizard.OfferInput{}, err
	}

	file, err := p.ask(labelOfferFile)
	if err != nil {
		return wizard.OfferInput{}, err
	}

	input := wizard.OfferInput{Title: title, File: ExpandPath(file)}
	if input.File != "" {
		return input, nil
	}

	input.Text, err = p.ask(labelOfferText)
	if err != nil {
		return wizard.OfferInput{}, err
	}

	return input, nil
}

func (p *Prompter) CVFile() (string, error) {
	path, err := p.ask(labelCVFile)
	if err != nil {
		return "", err
	}
	return ExpandPath(path), nil
}

func (p *Prompter) Select(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label:  label,
		Items:  items,
		Stdin:  p.Stdin,
		Stdout: p.Stdout,
	}

	_, choice, err := prompt.Run()
	if err != nil {
		return "", mapError(err)
	}
	return choice, nil
}

func (p *Prompter) ask(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:  label,
		Stdin:  p.Stdin,
		Stdout: p.Stdout,
	}

	value, err := prompt.Run()
	if err != nil {
		return "", mapError(err)
	}
	return strings.TrimSpace(value), nil
}

// mapError turns promptui's quit signals into wizard.ErrAborted.
func mapError(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF), errors.Is(err, promptui.ErrAbort):
		return wizard.ErrAborted
	default:
		return err
	}
}

// ExpandPath resolves a leading ~ and strips the quotes terminals add to dropped files.
func ExpandPath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, `"'`)
	if path == "" {
		return ""
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	return path
}
