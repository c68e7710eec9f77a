// Package wizard holds the visitor-side onboarding state machine:
// welcome → collecting → agreement → submitting → submitted.
package wizard

import (
	"errors"
	"fmt"
	"maps"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/schema"
)

type Step string

const (
	StepWelcome    Step = "welcome"
	StepCollecting Step = "collecting"
	StepAgreement  Step = "agreement"
	StepSubmitting Step = "submitting"
	StepSubmitted  Step = "submitted"
)

// Steps lists the visible steps in order, for the step indicator.
var Steps = []Step{StepWelcome, StepCollecting, StepAgreement, StepSubmitted}

var (
	ErrBusy              = errors.New("submission already in progress")
	ErrFinished          = errors.New("onboarding already submitted")
	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrAgreementRequired = errors.New("agreement must be accepted")
)

// Wizard is one visitor's progress through a funnel. It is persisted between
// requests, so every field is exported and JSON-tagged.
type Wizard struct {
	Step        Step                 `json:"step"`
	Responses   map[string]any       `json:"responses"`
	Agreed      bool                 `json:"agreed"`
	Errors      apperror.FieldErrors `json:"errors,omitempty"`
	SubmitError string               `json:"submit_error,omitempty"`
}

// New returns a wizard on the welcome step.
func New() *Wizard {
	return &Wizard{Step: StepWelcome, Responses: map[string]any{}}
}

// Locked reports whether inputs must be disabled.
func (w *Wizard) Locked() bool {
	return w.Step == StepSubmitting || w.Step == StepSubmitted
}

func (w *Wizard) guard(from ...Step) error {
	switch w.Step {
	case StepSubmitting:
		return ErrBusy
	case StepSubmitted:
		return ErrFinished
	}
	for _, s := range from {
		if w.Step == s {
			return nil
		}
	}
	return fmt.Errorf("%w from %s", ErrInvalidTransition, w.Step)
}

func (w *Wizard) Start() error {
	if err := w.guard(StepWelcome); err != nil {
		return err
	}
	w.Step = StepCollecting
	return nil
}

// Back moves one step towards welcome. Collected values are kept.
func (w *Wizard) Back() error {
	if err := w.guard(StepCollecting, StepAgreement); err != nil {
		return err
	}
	if w.Step == StepAgreement {
		w.Step = StepCollecting
	} else {
		w.Step = StepWelcome
	}
	w.Errors = nil
	w.SubmitError = ""
	return nil
}

// Collect merges the posted values of fields into the accumulated responses
// and advances to the agreement when every required field is filled. On
// partial input it returns apperror.FieldErrors and stays on collecting.
func (w *Wizard) Collect(fields []model.FieldDescriptor, posted map[string][]string) error {
	if err := w.guard(StepCollecting); err != nil {
		return err
	}
	if w.Responses == nil {
		w.Responses = map[string]any{}
	}
	maps.Copy(w.Responses, schema.Normalize(fields, posted))

	if errs := schema.Validate(fields, w.Responses); errs != nil {
		w.Errors = errs
		return errs
	}
	w.Errors = nil
	w.Step = StepAgreement
	return nil
}

func (w *Wizard) SetAgreement(agreed bool) error {
	if err := w.guard(StepAgreement); err != nil {
		return err
	}
	w.Agreed = agreed
	return nil
}

// BeginSubmit locks the wizard and returns a copy of the flat response
// mapping. Acceptance is only required when the funnel has an agreement.
func (w *Wizard) BeginSubmit(agreementTemplate string) (map[string]any, error) {
	if err := w.guard(StepAgreement); err != nil {
		return nil, err
	}
	if agreementTemplate != "" && !w.Agreed {
		w.SubmitError = ErrAgreementRequired.Error()
		return nil, ErrAgreementRequired
	}
	w.Step = StepSubmitting
	w.SubmitError = ""
	return maps.Clone(w.Responses), nil
}

func (w *Wizard) CompleteSubmit() error {
	if w.Step != StepSubmitting {
		if w.Step == StepSubmitted {
			return ErrFinished
		}
		return fmt.Errorf("%w from %s", ErrInvalidTransition, w.Step)
	}
	w.Step = StepSubmitted
	return nil
}

// FailSubmit returns to the agreement step with every value intact so the
// visitor can retry.
func (w *Wizard) FailSubmit(msg string) error {
	if w.Step != StepSubmitting {
		return fmt.Errorf("%w from %s", ErrInvalidTransition, w.Step)
	}
	w.Step = StepAgreement
	w.SubmitError = msg
	return nil
}
