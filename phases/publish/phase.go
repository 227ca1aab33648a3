package publish

import (
	"context"
	"fmt"

	"github.com/BrianJOC/env-bootstrap/phases"
	"github.com/BrianJOC/env-bootstrap/phases/appname"
	"github.com/BrianJOC/env-bootstrap/phases/environments"
	"github.com/BrianJOC/env-bootstrap/pkg/topology"
	"github.com/BrianJOC/env-bootstrap/utils/eventpayload"
)

const (
	phaseID = "publish"

	// ContextKeyEvent holds the eventpayload.Event that was written.
	ContextKeyEvent = "publish:event"
)

// Publisher hands the finalized payload to downstream tooling.
type Publisher interface {
	Write(ctx context.Context, p *topology.Payload, appName string) (eventpayload.Event, error)
}

// Phase finalizes the collected payload and publishes it as a BOOTSTRAP event.
type Phase struct {
	publisher Publisher
}

// New creates the publish phase.
func New(publisher Publisher) *Phase {
	return &Phase{publisher: publisher}
}

func (p *Phase) Metadata() phases.PhaseMetadata {
	return phases.PhaseMetadata{
		ID:          phaseID,
		Title:       "Publish",
		Description: "Freeze the environment list and emit the bootstrap payload.",
		Tags:        []string{"output"},
	}
}

func (p *Phase) Run(ctx context.Context, phaseCtx *phases.Context) error {
	if p.publisher == nil {
		return phases.ValidationError{Reason: "no publisher configured"}
	}
	app, err := appname.FromContext(phaseCtx)
	if err != nil {
		return err
	}
	payload, err := environments.FromContext(phaseCtx)
	if err != nil {
		return err
	}
	if payload.Len() == 0 {
		return phases.ValidationError{Reason: "no environments to publish"}
	}

	payload.Finalize()
	ev, err := p.publisher.Write(ctx, payload, app)
	if err != nil {
		return fmt.Errorf("publish %s payload: %w", eventpayload.EventName, err)
	}
	phaseCtx.Set(ContextKeyEvent, ev)
	return nil
}

// EventFromContext returns the published event, if any.
func EventFromContext(phaseCtx *phases.Context) (eventpayload.Event, bool) {
	val, ok := phaseCtx.Get(ContextKeyEvent)
	if !ok {
		return eventpayload.Event{}, false
	}
	ev, ok := val.(eventpayload.Event)
	return ev, ok
}
