package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/achrafdevl/talentbridge/internal/logger"
)

// Controller owns the wizard state and runs one stage at a time.
type Controller struct {
	state  State
	stages map[Step]Stage
	logger *zap.Logger

	// ClearOnBack drops identifiers produced at or after the step being returned to.
	// Off by default: going back keeps everything until it is overwritten.
	ClearOnBack bool
}

// NewController wires one stage per step. Every step must be covered exactly once.
func NewController(logger *zap.Logger, stages ...Stage) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	byStep := make(map[Step]Stage, len(stages))
	for _, stage := range stages {
		if stage == nil {
			return nil, errors.New("nil stage")
		}
		step := stage.Step()
		if _, ok := byStep[step]; ok {
			return nil, fmt.Errorf("duplicate stage for step %s", step)
		}
		byStep[step] = stage
	}

	for step := StepOffer; step <= StepResult; step++ {
		if _, ok := byStep[step]; !ok {
			return nil, fmt.Errorf("missing stage for step %s", step)
		}
	}

	return &Controller{
		state:  State{Current: StepOffer},
		stages: byStep,
		logger: logger,
	}, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Stage returns the only stage shown for the current step.
func (c *Controller) Stage() Stage {
	return c.stages[c.state.Current]
}

// HandleJobNext stores the job id and moves from the offer to the CV step.
func (c *Controller) HandleJobNext(jobID string) error {
	if err := c.expect(StepOffer, jobID); err != nil {
		return err
	}
	c.state.JobID = jobID
	c.advance()
	return nil
}

// HandleCVNext stores the CV id and moves on to processing.
func (c *Controller) HandleCVNext(cvID string) error {
	if err := c.expect(StepCV, cvID); err != nil {
		return err
	}
	c.state.CVID = cvID
	c.advance()
	return nil
}

// HandleGenerationNext stores the generated document id and shows the result.
func (c *Controller) HandleGenerationNext(generatedID string) error {
	if err := c.expect(StepProcessing, generatedID); err != nil {
		return err
	}
	c.state.GeneratedID = generatedID
	c.advance()
	return nil
}

// HandleBack moves one step back, never below the offer step.
func (c *Controller) HandleBack() {
	if c.state.Current <= StepOffer {
		c.state.Current = StepOffer
		return
	}

	c.state.Current--

	if c.ClearOnBack {
		switch c.state.Current {
		case StepOffer:
			c.state.JobID = ""
			fallthrough
		case StepCV:
			c.state.CVID = ""
			fallthrough
		case StepProcessing:
			c.state.GeneratedID = ""
		}
	}

	c.logger.Debug("wizard step back", zap.Stringer(logger.FieldStep, c.state.Current))
}

// HandleRestart forgets every identifier and returns to the offer step.
func (c *Controller) HandleRestart() {
	c.state = State{Current: StepOffer}
	c.logger.Debug("wizard restarted")
}

// Run drives the stages until the user exits, the context ends or a stage fails.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		stage := c.Stage()
		c.logger.Debug("entering wizard stage",
			append(logger.WizardFields(c.state.JobID, c.state.CVID, c.state.GeneratedID),
				zap.Stringer(logger.FieldStep, c.state.Current))...,
		)

		outcome, err := stage.Run(ctx, c.state)
		if err != nil {
			if errors.Is(err, ErrAborted) {
				c.logger.Info("wizard aborted", zap.Stringer(logger.FieldStep, c.state.Current))
				return nil
			}
			return fmt.Errorf("%s stage: %w", c.state.Current, err)
		}

		done, err := c.apply(outcome)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (c *Controller) apply(outcome Outcome) (bool, error) {
	switch outcome.Action {
	case ActionNext:
		return false, c.next(outcome.ID)
	case ActionBack:
		c.HandleBack()
	case ActionRestart:
		c.HandleRestart()
	case ActionExit:
		c.logger.Info("wizard finished", logger.WizardFields(c.state.JobID, c.state.CVID, c.state.GeneratedID)...)
		return true, nil
	default:
		return false, fmt.Errorf("unknown wizard action %d", outcome.Action)
	}
	return false, nil
}

func (c *Controller) next(id string) error {
	switch c.state.Current {
	case StepOffer:
		return c.HandleJobNext(id)
	case StepCV:
		return c.HandleCVNext(id)
	case StepProcessing:
		return c.HandleGenerationNext(id)
	default:
		return fmt.Errorf("%w: no step after %s", ErrInvalidTransition, c.state.Current)
	}
}

func (c *Controller) expect(step Step, id string) error {
	if c.state.Current != step {
		return fmt.Errorf("%w: expected step %s, at %s", ErrInvalidTransition, step, c.state.Current)
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty identifier at step %s", ErrInvalidTransition, step)
	}
	return nil
}

func (c *Controller) advance() {
	c.state.Current++
	c.logger.Debug("wizard step forward", zap.Stringer(logger.FieldStep, c.state.Current))
}
