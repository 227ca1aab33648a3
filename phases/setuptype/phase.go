package setuptype

import (
	"context"
	"fmt"

	"github.com/BrianJOC/env-bootstrap/phases"
	"github.com/BrianJOC/env-bootstrap/phases/appname"
	"github.com/BrianJOC/env-bootstrap/pkg/topology"
)

const (
	phaseID = "setup_type"

	// InputSetup holds the selected setup key.
	InputSetup = "setup"

	// ContextKeySetupType holds the chosen topology.SetupType.
	ContextKeySetupType = "setup:type"
)

// Phase offers the default topologies and the custom option.
type Phase struct{}

// New creates the setup type phase.
func New() *Phase {
	return &Phase{}
}

func (p *Phase) Metadata() phases.PhaseMetadata {
	return phases.PhaseMetadata{
		ID:          phaseID,
		Title:       "Setup Type",
		Description: "Pick a default topology or define your own environments.",
	}
}

func (p *Phase) Run(_ context.Context, phaseCtx *phases.Context) error {
	app, err := appname.FromContext(phaseCtx)
	if err != nil {
		return err
	}
	value, err := phases.RequireInput(phaseCtx, phaseID, setupDefinition(app), nil)
	if err != nil {
		return err
	}
	phaseCtx.Set(ContextKeySetupType, topology.ParseSetupType(value))
	return nil
}

// FromContext returns the setup type chosen earlier in the session.
func FromContext(phaseCtx *phases.Context) (topology.SetupType, error) {
	val, ok := phaseCtx.Get(ContextKeySetupType)
	if !ok {
		return 0, phases.ValidationError{Reason: "setup type phase must complete first"}
	}
	setup, ok := val.(topology.SetupType)
	if !ok {
		return 0, phases.ValidationError{Reason: "invalid setup type in context"}
	}
	return setup, nil
}

// Seed stores the answer so the phase can run without prompting.
func Seed(phaseCtx *phases.Context, setup topology.SetupType) {
	phases.SetInput(phaseCtx, phaseID, InputSetup, setup.Key())
}

func setupDefinition(app string) phases.InputDefinition {
	options := make([]phases.InputOption, 0, len(topology.SetupTypes()))
	for _, s := range topology.SetupTypes() {
		options = append(options, phases.InputOption{Value: s.Key(), Label: s.Label()})
	}
	return phases.InputDefinition{
		ID:          InputSetup,
		Label:       fmt.Sprintf("Your setup type for %s", app),
		Description: "We provide a bunch of default setups which fit most cases. By choosing the custom option, you may define your own environments.",
		Kind:        phases.InputKindSelect,
		Required:    true,
		Options:     options,
	}
}
