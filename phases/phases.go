// Package phases runs the wizard as an ordered list of phases. A phase that
// needs an answer from the operator returns an InputRequestError; the Manager
// asks its InputHandler, stores the answer and runs the phase again.
package phases

import "context"

// Phase represents a single step of the wizard.
type Phase interface {
	Metadata() PhaseMetadata
	Run(ctx context.Context, phaseCtx *Context) error
}

// PhaseMetadata contains descriptive information used by presentation layers.
type PhaseMetadata struct {
	ID          string
	Title       string
	Description string
	Tags        []string
}

// Observer receives lifecycle callbacks for each phase.
type Observer interface {
	PhaseStarted(meta PhaseMetadata)
	PhaseCompleted(meta PhaseMetadata, err error)
}

// InputHandler resolves InputRequestError instances by collecting values from the operator.
type InputHandler interface {
	RequestInput(phase PhaseMetadata, input InputDefinition, reason string) (any, error)
}

// InputHandlerFunc adapts a function into an InputHandler.
type InputHandlerFunc func(phase PhaseMetadata, input InputDefinition, reason string) (any, error)

// RequestInput implements InputHandler.
func (f InputHandlerFunc) RequestInput(phase PhaseMetadata, input InputDefinition, reason string) (any, error) {
	return f(phase, input, reason)
}

// InputDefinition describes one question put to the operator.
type InputDefinition struct {
	ID          string
	Label       string
	Description string
	Kind        InputKind
	Required    bool
	Options     []InputOption
	// Default is offered when the operator submits an empty answer. An empty
	// string means no default is available.
	Default string
}

// InputKind identifies how an input should be rendered.
type InputKind string

const (
	InputKindText    InputKind = "text"
	InputKindSelect  InputKind = "select"
	InputKindConfirm InputKind = "confirm"
)

// InputOption represents a selectable value.
type InputOption struct {
	Value       string
	Label       string
	Description string
}

// Confirm answers.
const (
	ConfirmYes = "yes"
	ConfirmNo  = "no"
)

// ConfirmOptions are the options rendered for InputKindConfirm.
func ConfirmOptions() []InputOption {
	return []InputOption{
		{Value: ConfirmYes, Label: "Yes"},
		{Value: ConfirmNo, Label: "No"},
	}
}

// HasOption reports whether value is one of the definition's options.
func (d InputDefinition) HasOption(value string) bool {
	options := d.Options
	if d.Kind == InputKindConfirm && len(options) == 0 {
		options = ConfirmOptions()
	}
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
