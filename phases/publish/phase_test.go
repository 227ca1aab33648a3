package publish

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BrianJOC/env-bootstrap/phases"
	"github.com/BrianJOC/env-bootstrap/phases/appname"
	"github.com/BrianJOC/env-bootstrap/phases/environments"
	"github.com/BrianJOC/env-bootstrap/pkg/topology"
	"github.com/BrianJOC/env-bootstrap/utils/eventpayload"
)

func TestPhaseFinalizesAndWritesPayload(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer, err := eventpayload.NewWriter(&buf,
		eventpayload.WithIDGenerator(func() string { return "evt-1" }),
		eventpayload.WithClock(func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)

	ctx, payload := readyContext(t)
	require.NoError(t, New(writer).Run(context.Background(), ctx))

	require.True(t, payload.Finalized())
	require.ErrorIs(t, payload.Add(record(t, "qa", "qa.acme.com")), topology.ErrFinalized)

	ev, ok := EventFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "evt-1", ev.ID)
	require.Equal(t, "acme", ev.Application)
	require.Len(t, ev.Environments, 1)
	require.Contains(t, buf.String(), "event: BOOTSTRAP")
	require.Contains(t, buf.String(), "base_virtual_host: acme.localhost")
}

func TestPhaseWrapsPublisherFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	ctx, _ := readyContext(t)
	err := New(publisherFunc(func(context.Context, *topology.Payload, string) (eventpayload.Event, error) {
		return eventpayload.Event{}, boom
	})).Run(context.Background(), ctx)

	require.ErrorIs(t, err, boom)
	_, ok := EventFromContext(ctx)
	require.False(t, ok)
}

func TestPhaseRejectsEmptyPayload(t *testing.T) {
	t.Parallel()

	ctx := phases.NewContext()
	ctx.Set(appname.ContextKeyAppName, "acme")
	ctx.Set(environments.ContextKeyPayload, topology.NewPayload())

	err := New(publisherFunc(nil)).Run(context.Background(), ctx)
	var valErr phases.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestPhaseRequiresPublisher(t *testing.T) {
	t.Parallel()

	ctx, _ := readyContext(t)
	err := New(nil).Run(context.Background(), ctx)
	var valErr phases.ValidationError
	require.ErrorAs(t, err, &valErr)
}

type publisherFunc func(context.Context, *topology.Payload, string) (eventpayload.Event, error)

func (f publisherFunc) Write(ctx context.Context, p *topology.Payload, app string) (eventpayload.Event, error) {
	return f(ctx, p, app)
}

func readyContext(t *testing.T) (*phases.Context, *topology.Payload) {
	t.Helper()
	payload := topology.NewPayload()
	require.NoError(t, payload.Add(record(t, "dev", "acme.localhost")))

	ctx := phases.NewContext()
	ctx.Set(appname.ContextKeyAppName, "acme")
	ctx.Set(environments.ContextKeyPayload, payload)
	return ctx, payload
}

func record(t *testing.T, name, host string) topology.BootstrapRecord {
	t.Helper()
	env, err := topology.NewEnvironmentDescriptor(topology.Development, name, host)
	require.NoError(t, err)
	rec, err := topology.NewBootstrapRecord(env, topology.OrchestratorDockerCompose)
	require.NoError(t, err)
	return rec
}
