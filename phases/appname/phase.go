package appname

import (
	"context"
	"strings"

	"github.com/BrianJOC/env-bootstrap/phases"
	"github.com/BrianJOC/env-bootstrap/utils/validate"
)

const (
	phaseID = "app_name"

	// InputName is the application name answer.
	InputName = "name"

	// ContextKeyAppName holds the lower-cased application name.
	ContextKeyAppName = "app:name"
)

var nameInput = phases.InputDefinition{
	ID:          InputName,
	Label:       "Your application name",
	Description: "Letters only. Used to derive default virtual hosts such as {name}.localhost.",
	Kind:        phases.InputKindText,
	Required:    true,
}

// Phase asks for the application name.
type Phase struct{}

// New creates the application name phase.
func New() *Phase {
	return &Phase{}
}

func (p *Phase) Metadata() phases.PhaseMetadata {
	return phases.PhaseMetadata{
		ID:          phaseID,
		Title:       "Application",
		Description: "Name the application being bootstrapped.",
	}
}

func (p *Phase) Run(_ context.Context, phaseCtx *phases.Context) error {
	name, err := phases.RequireInput(phaseCtx, phaseID, nameInput, validate.Alpha)
	if err != nil {
		return err
	}
	phaseCtx.Set(ContextKeyAppName, strings.ToLower(name))
	return nil
}

// FromContext returns the application name stored by the phase.
func FromContext(phaseCtx *phases.Context) (string, error) {
	val, ok := phaseCtx.Get(ContextKeyAppName)
	if !ok {
		return "", phases.ValidationError{Reason: "application name phase must complete first"}
	}
	name, ok := val.(string)
	if !ok || name == "" {
		return "", phases.ValidationError{Reason: "invalid application name in context"}
	}
	return name, nil
}

// Seed stores answers so the phase can run without prompting.
func Seed(phaseCtx *phases.Context, name string) {
	phases.SetInput(phaseCtx, phaseID, InputName, name)
}
