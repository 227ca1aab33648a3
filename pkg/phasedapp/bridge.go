package phasedapp

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BrianJOC/env-bootstrap/phases"
)

type phaseStartedMsg struct {
	meta phases.PhaseMetadata
}

type phaseCompletedMsg struct {
	meta phases.PhaseMetadata
	err  error
}

type phasesFinishedMsg struct {
	err error
}

type inputRequestMsg struct {
	meta   phases.PhaseMetadata
	input  phases.InputDefinition
	reason string
}

type inputResponse struct {
	value any
	err   error
}

// bridge carries manager callbacks into the Bubble Tea loop. Every send
// gives up once the run context ends or the program shuts down, so a
// manager goroutine never outlives the UI.
type bridge struct {
	runCtx    context.Context
	events    chan tea.Msg
	requests  chan inputRequestMsg
	responses chan inputResponse
	done      chan struct{}
	closeOnce sync.Once
}

func newBridge(runCtx context.Context) *bridge {
	return &bridge{
		runCtx:    runCtx,
		events:    make(chan tea.Msg),
		requests:  make(chan inputRequestMsg),
		responses: make(chan inputResponse),
		done:      make(chan struct{}),
	}
}

func (b *bridge) close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *bridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

func (b *bridge) PhaseStarted(meta phases.PhaseMetadata) {
	b.send(phaseStartedMsg{meta: meta})
}

func (b *bridge) PhaseCompleted(meta phases.PhaseMetadata, err error) {
	b.send(phaseCompletedMsg{meta: meta, err: err})
}

func (b *bridge) RequestInput(meta phases.PhaseMetadata, input phases.InputDefinition, reason string) (any, error) {
	select {
	case b.requests <- inputRequestMsg{meta: meta, input: input, reason: reason}:
	case <-b.runCtx.Done():
		return nil, b.runCtx.Err()
	case <-b.done:
		return nil, ErrInputCancelled
	}
	select {
	case resp := <-b.responses:
		return resp.value, resp.err
	case <-b.runCtx.Done():
		return nil, b.runCtx.Err()
	case <-b.done:
		return nil, ErrInputCancelled
	}
}

// respond must only be called while a request is outstanding.
func (b *bridge) respond(value any, err error) {
	select {
	case b.responses <- inputResponse{value: value, err: err}:
	case <-b.runCtx.Done():
	case <-b.done:
	}
}

func waitPhaseEventCmd(b *bridge) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}

func waitInputRequestCmd(b *bridge) tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-b.requests:
			return req
		case <-b.done:
			return nil
		}
	}
}

func runManagerCmd(runCtx context.Context, b *bridge, manager *phases.Manager, phaseCtx *phases.Context) tea.Cmd {
	return func() tea.Msg {
		err := manager.Run(runCtx, phaseCtx)
		select {
		case <-b.done:
			return nil
		default:
		}
		return phasesFinishedMsg{err: err}
	}
}
