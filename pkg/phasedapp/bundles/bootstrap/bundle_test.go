package bootstrap

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrianJOC/env-bootstrap/phases"
	"github.com/BrianJOC/env-bootstrap/phases/appname"
	"github.com/BrianJOC/env-bootstrap/phases/environments"
	"github.com/BrianJOC/env-bootstrap/phases/publish"
	"github.com/BrianJOC/env-bootstrap/phases/setuptype"
	"github.com/BrianJOC/env-bootstrap/pkg/phasedapp"
	"github.com/BrianJOC/env-bootstrap/pkg/topology"
	"github.com/BrianJOC/env-bootstrap/utils/eventpayload"
)

func TestBundleRunsHeadlessWithSeededAnswers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer, err := eventpayload.NewWriter(&buf, eventpayload.WithFormat(eventpayload.FormatJSON))
	require.NoError(t, err)

	list, err := Bundle(nil, writer)
	require.NoError(t, err)
	require.Len(t, list, 4)

	ctx := phases.NewContext()
	appname.Seed(ctx, "Acme")
	setuptype.Seed(ctx, topology.SetupDevelopment)

	manager := phases.NewManager(phases.WithInputHandler(phases.InputHandlerFunc(
		func(_ phases.PhaseMetadata, input phases.InputDefinition, _ string) (any, error) {
			return input.Default, nil
		},
	)))
	require.NoError(t, manager.Register(list...))
	require.NoError(t, manager.Run(context.Background(), ctx))

	ev, ok := publish.EventFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "acme", ev.Application)
	require.Equal(t, "acme.localhost", ev.Environments[0].BaseVirtualHost)
	require.Contains(t, buf.String(), `"event": "BOOTSTRAP"`)
	require.Equal(t, []string{
		"Development environment dev: base virtual host acme.localhost, orchestrator docker-compose, no CI provider",
	}, Summary(ctx))
}

func TestBundleWithoutOutputPhase(t *testing.T) {
	t.Parallel()

	list, err := Bundle(nil, nil)
	require.NoError(t, err)

	collect := phasedapp.SelectPhases(list, phasedapp.Not(phasedapp.WithTag("output")))
	require.Len(t, collect, 3)
	require.Equal(t, "environments", collect[2].Metadata().ID)

	ctx := phases.NewContext()
	appname.Seed(ctx, "shop")
	setuptype.Seed(ctx, topology.SetupDevelopment)
	phases.SetInput(ctx, "environments", environments.InputID(0, environments.InputHost), "shop.localhost")

	manager := phases.NewManager()
	require.NoError(t, manager.Register(collect...))
	require.NoError(t, manager.Run(context.Background(), ctx))

	payload, err := environments.FromContext(ctx)
	require.NoError(t, err)
	require.False(t, payload.Finalized())
}
