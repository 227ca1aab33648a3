package environments

import (
	"context"
	"fmt"
	"slices"

	"github.com/BrianJOC/env-bootstrap/phases"
	"github.com/BrianJOC/env-bootstrap/phases/appname"
	"github.com/BrianJOC/env-bootstrap/phases/setuptype"
	"github.com/BrianJOC/env-bootstrap/pkg/topology"
	"github.com/BrianJOC/env-bootstrap/utils/registry"
	"github.com/BrianJOC/env-bootstrap/utils/validate"
)

const (
	phaseID = "environments"

	// Per-environment input fields; see InputID.
	InputType         = "type"
	InputName         = "name"
	InputHost         = "host"
	InputOrchestrator = "orchestrator"
	InputCI           = "ci"
	InputAnother      = "another"

	// ContextKeyPayload holds the *topology.Payload once every environment is collected.
	ContextKeyPayload = "environments:payload"
	// ContextKeySummary holds a []string snapshot of the records collected so far.
	ContextKeySummary = "environments:summary"

	optionOther = "other"
	imageSuffix = "_image"
)

const (
	typeHelp         = "We organize environments into three categories:\n - development: your local environment\n - test: a remote environment where you're pushing some features to test\n - production: a remote environment for staging/production purpose"
	nameHelp         = "A unique identifier for your environment.\nFor instance, a development environment might be called dev."
	hostHelp         = "The base virtual host will determine on which URL your web services will be accessible.\nFor instance, if your base virtual host is foo.localhost, a web service may be accessible through {service sub domain}.foo.localhost."
	orchestratorHelp = "The orchestrator is a tool which will manage your containers."
	ciHelp           = "The CI provider builds your images and deploys them to this environment."
	imageHelp        = "No registry entry selected. Provide a generic image reference, e.g. registry.example.com/team/%s:latest."
)

// InputID returns the input identifier of field for the environment at index.
func InputID(index int, field string) string {
	return fmt.Sprintf("env_%d_%s", index, field)
}

// Phase collects environments into a topology.Payload, either from the
// canonical defaults or from a repeatable custom entry loop.
type Phase struct {
	registry *registry.Registry
}

// New creates the environments phase. A nil registry uses registry.Default.
func New(reg *registry.Registry) *Phase {
	if reg == nil {
		reg = registry.Default()
	}
	return &Phase{registry: reg}
}

func (p *Phase) Metadata() phases.PhaseMetadata {
	return phases.PhaseMetadata{
		ID:          phaseID,
		Title:       "Environments",
		Description: "Describe each environment, its base virtual host, orchestrator and CI provider.",
	}
}

// Run rebuilds the payload from the stored answers on every attempt, so a
// rejected answer never reaches the payload.
func (p *Phase) Run(_ context.Context, phaseCtx *phases.Context) error {
	app, err := appname.FromContext(phaseCtx)
	if err != nil {
		return err
	}
	setup, err := setuptype.FromContext(phaseCtx)
	if err != nil {
		return err
	}
	phaseCtx.Delete(ContextKeyPayload)

	payload := topology.NewPayload()
	if setup == topology.SetupCustom {
		err = p.collectCustom(phaseCtx, payload, app)
	} else {
		err = p.collectDefaults(phaseCtx, payload, app, setup)
	}
	storeSummary(phaseCtx, payload)
	if err != nil {
		return err
	}
	phaseCtx.Set(ContextKeyPayload, payload)
	return nil
}

// FromContext returns the payload collected by the phase.
func FromContext(phaseCtx *phases.Context) (*topology.Payload, error) {
	val, ok := phaseCtx.Get(ContextKeyPayload)
	if !ok {
		return nil, phases.ValidationError{Reason: "environments phase must complete first"}
	}
	payload, ok := val.(*topology.Payload)
	if !ok || payload == nil {
		return nil, phases.ValidationError{Reason: "invalid payload in context"}
	}
	return payload, nil
}

// Summary returns the latest summary snapshot, if any.
func Summary(phaseCtx *phases.Context) []string {
	val, ok := phaseCtx.Get(ContextKeySummary)
	if !ok {
		return nil
	}
	lines, _ := val.([]string)
	return lines
}

func (p *Phase) collectDefaults(phaseCtx *phases.Context, payload *topology.Payload, app string, setup topology.SetupType) error {
	for idx, env := range topology.DefaultPlan(setup) {
		host, err := requireHost(phaseCtx, payload, idx, env.Type, env.Name, app)
		if err != nil {
			return err
		}
		var ci topology.Ref
		if env.Type.RequiresCI() {
			ci, err = p.resolve(phaseCtx, idx, topology.CategoryCI, env.Type, env.Name)
			if err != nil {
				return err
			}
		}
		rec, err := env.Record(host, ci)
		if err != nil {
			return err
		}
		payload.MustAdd(rec)
	}
	return nil
}

func (p *Phase) collectCustom(phaseCtx *phases.Context, payload *topology.Payload, app string) error {
	for idx := 0; ; idx++ {
		if err := p.collectEnvironment(phaseCtx, payload, app, idx); err != nil {
			return err
		}
		storeSummary(phaseCtx, payload)
		more, err := phases.RequireConfirm(phaseCtx, phaseID, phases.InputDefinition{
			ID:          InputID(idx, InputAnother),
			Label:       "Do you want to add another environment?",
			Description: fmt.Sprintf("%d environment(s) defined so far.", payload.Len()),
			Required:    true,
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func (p *Phase) collectEnvironment(phaseCtx *phases.Context, payload *topology.Payload, app string, idx int) error {
	typeValue, err := phases.RequireInput(phaseCtx, phaseID, typeDefinition(idx), nil)
	if err != nil {
		return err
	}
	typ, err := topology.ParseEnvironmentType(typeValue)
	if err != nil {
		return err
	}

	name, err := phases.RequireInput(phaseCtx, phaseID, phases.InputDefinition{
		ID:          InputID(idx, InputName),
		Label:       fmt.Sprintf("Your %s environment name", typ),
		Description: nameHelp,
		Kind:        phases.InputKindText,
		Required:    true,
	}, topology.NameValidator(payload))
	if err != nil {
		return err
	}

	host, err := requireHost(phaseCtx, payload, idx, typ, name, app)
	if err != nil {
		return err
	}

	orchestrator, err := p.resolve(phaseCtx, idx, topology.CategoryOrchestrator, typ, name)
	if err != nil {
		return err
	}

	var opts []topology.RecordOption
	if typ.RequiresCI() {
		ci, err := p.resolve(phaseCtx, idx, topology.CategoryCI, typ, name)
		if err != nil {
			return err
		}
		opts = append(opts, topology.WithCIProvider(ci))
	}

	env, err := topology.NewEnvironmentDescriptor(typ, name, host)
	if err != nil {
		return err
	}
	rec, err := topology.NewBootstrapRecord(env, orchestrator, opts...)
	if err != nil {
		return err
	}
	payload.MustAdd(rec)
	return nil
}

func requireHost(phaseCtx *phases.Context, payload *topology.Payload, idx int, typ topology.EnvironmentType, name, app string) (string, error) {
	def := phases.InputDefinition{
		ID:          InputID(idx, InputHost),
		Label:       fmt.Sprintf("Your base virtual host for your %s environment %s", typ, name),
		Description: hostHelp,
		Kind:        phases.InputKindText,
		Required:    true,
	}
	if proposal, ok := topology.DefaultHost(payload, typ, name, app); ok {
		def.Default = proposal
	}
	return phases.RequireInput(phaseCtx, phaseID, def, topology.HostValidator(payload))
}

func (p *Phase) resolve(phaseCtx *phases.Context, idx int, category topology.Category, typ topology.EnvironmentType, name string) (topology.Ref, error) {
	field, label, help := categoryText(category)
	target := fmt.Sprintf("%s environment %s", typ, name)

	lookup := topology.LookupFunc(func(category topology.Category) (topology.Ref, bool, error) {
		items := p.registry.Items(category)
		if len(items) == 0 {
			return "", false, nil
		}
		options := make([]phases.InputOption, 0, len(items)+1)
		for _, item := range items {
			options = append(options, phases.InputOption{Value: item.ID, Label: item.Name, Description: item.Description})
		}
		options = append(options, phases.InputOption{Value: optionOther, Label: "Other", Description: "Use a generic image reference"})
		value, err := phases.RequireInput(phaseCtx, phaseID, phases.InputDefinition{
			ID:          InputID(idx, field),
			Label:       fmt.Sprintf("Your %s for your %s", label, target),
			Description: help,
			Kind:        phases.InputKindSelect,
			Required:    true,
			Options:     options,
		}, nil)
		if err != nil {
			return "", false, err
		}
		if value == optionOther {
			return "", false, nil
		}
		return topology.Ref(value), true, nil
	})

	fallback := topology.FallbackFunc(func(category topology.Category) (topology.Ref, error) {
		value, err := phases.RequireInput(phaseCtx, phaseID, phases.InputDefinition{
			ID:          InputID(idx, field+imageSuffix),
			Label:       fmt.Sprintf("Image for the %s of your %s", label, target),
			Description: fmt.Sprintf(imageHelp, category),
			Kind:        phases.InputKindText,
			Required:    true,
		}, validate.ImageReference)
		if err != nil {
			return "", err
		}
		return topology.Ref(value), nil
	})

	return topology.Resolve(lookup, fallback, category)
}

func categoryText(category topology.Category) (field, label, help string) {
	if category == topology.CategoryCI {
		return InputCI, "CI provider", ciHelp
	}
	return InputOrchestrator, "orchestrator", orchestratorHelp
}

func typeDefinition(idx int) phases.InputDefinition {
	types := topology.EnvironmentTypes()
	options := make([]phases.InputOption, 0, len(types))
	for _, t := range types {
		options = append(options, phases.InputOption{Value: string(t), Label: t.Label()})
	}
	return phases.InputDefinition{
		ID:          InputID(idx, InputType),
		Label:       "Your environment type",
		Description: typeHelp,
		Kind:        phases.InputKindSelect,
		Required:    true,
		Options:     options,
	}
}

func storeSummary(phaseCtx *phases.Context, payload *topology.Payload) {
	phaseCtx.Set(ContextKeySummary, slices.Collect(payload.Summarize()))
}
