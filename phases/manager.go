package phases

import (
	"context"
	"errors"
)

// Manager runs phases in order, answering their input requests through the
// configured InputHandler.
type Manager struct {
	phases       []Phase
	observers    []Observer
	inputHandler InputHandler
}

// ManagerOption mutates manager configuration.
type ManagerOption func(*Manager)

// WithObserver registers an observer to receive lifecycle events.
func WithObserver(obs Observer) ManagerOption {
	return func(m *Manager) {
		if obs == nil {
			return
		}
		m.observers = append(m.observers, obs)
	}
}

// WithInputHandler registers the handler that collects answers.
func WithInputHandler(handler InputHandler) ManagerOption {
	return func(m *Manager) {
		if handler == nil {
			return
		}
		m.inputHandler = handler
	}
}

// NewManager constructs an empty Manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// Register appends phases, returning an error on empty or duplicate IDs.
func (m *Manager) Register(phases ...Phase) error {
	for _, p := range phases {
		if p == nil {
			continue
		}
		meta := p.Metadata()
		if meta.ID == "" {
			return ValidationError{Reason: "phase id must not be empty"}
		}
		if m.hasPhase(meta.ID) {
			return DuplicatePhaseError{ID: meta.ID}
		}
		m.phases = append(m.phases, p)
	}
	return nil
}

// Phases returns the registered phases in execution order.
func (m *Manager) Phases() []Phase {
	out := make([]Phase, len(m.phases))
	copy(out, m.phases)
	return out
}

// Run executes all registered phases sequentially.
func (m *Manager) Run(ctx context.Context, phaseCtx *Context) error {
	return m.RunFrom(ctx, phaseCtx, 0)
}

// RunFrom executes phases starting at index start. Values produced by
// earlier phases are expected to be present in phaseCtx already.
func (m *Manager) RunFrom(ctx context.Context, phaseCtx *Context, start int) error {
	if phaseCtx == nil {
		phaseCtx = NewContext()
	}
	if start < 0 {
		start = 0
	}
	for idx := start; idx < len(m.phases); idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		phase := m.phases[idx]
		meta := phase.Metadata()
		m.notifyStart(meta)
		err := m.executePhase(ctx, phaseCtx, phase, meta)
		m.notifyComplete(meta, err)
		if err != nil {
			return PhaseExecutionError{Phase: meta, Err: err}
		}
	}
	return nil
}

func (m *Manager) executePhase(ctx context.Context, phaseCtx *Context, phase Phase, meta PhaseMetadata) error {
	for {
		err := phase.Run(ctx, phaseCtx)
		if err == nil {
			return nil
		}
		var inputErr InputRequestError
		if !errors.As(err, &inputErr) || m.inputHandler == nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		value, handlerErr := m.inputHandler.RequestInput(meta, inputErr.Input, inputErr.Reason)
		if handlerErr != nil {
			return handlerErr
		}
		SetInput(phaseCtx, inputErr.PhaseID, inputErr.Input.ID, value)
	}
}

func (m *Manager) hasPhase(id string) bool {
	for _, p := range m.phases {
		if p.Metadata().ID == id {
			return true
		}
	}
	return false
}

func (m *Manager) notifyStart(meta PhaseMetadata) {
	for _, obs := range m.observers {
		obs.PhaseStarted(meta)
	}
}

func (m *Manager) notifyComplete(meta PhaseMetadata, err error) {
	for _, obs := range m.observers {
		obs.PhaseCompleted(meta, err)
	}
}
