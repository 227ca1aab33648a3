package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/BrianJOC/env-bootstrap/phases"
	"github.com/BrianJOC/env-bootstrap/phases/appname"
	"github.com/BrianJOC/env-bootstrap/phases/publish"
	"github.com/BrianJOC/env-bootstrap/phases/setuptype"
	"github.com/BrianJOC/env-bootstrap/pkg/phasedapp/bundles/bootstrap"
	"github.com/BrianJOC/env-bootstrap/pkg/topology"
	"github.com/BrianJOC/env-bootstrap/utils/eventpayload"
	"github.com/BrianJOC/env-bootstrap/utils/registry"
)

func TestRunHeadlessPrintsSummaryAndPayload(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	err := run(context.Background(), options{
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		app:        "Acme",
		setup:      "dev-test-prod",
		headless:   true,
		format:     "yaml",
	}, &stdout)
	require.NoError(t, err)

	out := stdout.String()
	require.Contains(t, out, "Development environment dev: base virtual host acme.localhost, orchestrator docker-compose, no CI provider")
	require.Contains(t, out, "Production environment prod: base virtual host acme.com, orchestrator kubernetes, CI provider gitlab-ci")

	var ev eventpayload.Event
	payload := out[bytes.Index(stdout.Bytes(), []byte("id:")):]
	require.NoError(t, yaml.Unmarshal([]byte(payload), &ev))
	require.Len(t, ev.Environments, 3)
	require.Equal(t, "test.acme.com", ev.Environments[1].BaseVirtualHost)
}

func TestRunHeadlessWritesFileFromConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "out", "bootstrap.json")
	cfgPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: json\ndefault_ci: jenkins\noutput: "+output+"\n"), 0o644))

	var stdout bytes.Buffer
	err := run(context.Background(), options{configPath: cfgPath, app: "shop", setup: "dev-test", headless: true}, &stdout)
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "CI provider jenkins")
	require.Contains(t, stdout.String(), "payload written to")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Contains(t, string(data), `"ci_provider": "jenkins"`)
}

func TestRunHeadlessDryRunSkipsPayload(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	err := run(context.Background(), options{
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		app:        "acme",
		setup:      "dev",
		headless:   true,
		dryRun:     true,
	}, &stdout)
	require.NoError(t, err)
	require.NotContains(t, stdout.String(), "BOOTSTRAP")
	require.Contains(t, stdout.String(), "acme.localhost")
}

func TestRunHeadlessValidatesFlags(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	require.Error(t, run(context.Background(), options{configPath: missing, headless: true, setup: "dev"}, &bytes.Buffer{}))
	require.Error(t, run(context.Background(), options{configPath: missing, headless: true, app: "acme", setup: "custom"}, &bytes.Buffer{}))
	require.Error(t, run(context.Background(), options{configPath: missing, headless: true, app: "acme-1", setup: "dev"}, &bytes.Buffer{}))
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), options{
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		format:     "toml",
		headless:   true,
		app:        "acme",
		setup:      "dev",
	}, &bytes.Buffer{})
	var formatErr eventpayload.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestRestartedRunEmitsSingleEvent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	issued := 0
	writer, err := eventpayload.NewWriter(&buf, eventpayload.WithIDGenerator(func() string {
		issued++
		return fmt.Sprintf("evt-%d", issued)
	}))
	require.NoError(t, err)

	list, err := bootstrap.Bundle(registry.Default(), writer.Deferred())
	require.NoError(t, err)

	// Each restart runs the same phases against a fresh context.
	var last *phases.Context
	for _, app := range []string{"first", "second"} {
		pc := phases.NewContext()
		appname.Seed(pc, app)
		setuptype.Seed(pc, topology.SetupDevelopment)
		manager := phases.NewManager(phases.WithInputHandler(phases.InputHandlerFunc(
			func(_ phases.PhaseMetadata, input phases.InputDefinition, _ string) (any, error) {
				return input.Default, nil
			},
		)))
		require.NoError(t, manager.Register(list...))
		require.NoError(t, manager.Run(context.Background(), pc))
		last = pc
	}
	require.Zero(t, buf.Len())

	require.NoError(t, emitEvent(context.Background(), writer, last))
	require.Equal(t, 1, strings.Count(buf.String(), "event: BOOTSTRAP"))

	var ev eventpayload.Event
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &ev))
	require.Equal(t, "evt-2", ev.ID)
	require.Equal(t, "second", ev.Application)
	require.Len(t, ev.Environments, 1)
}

func TestEmitEventSkipsRunWithoutPublish(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer, err := eventpayload.NewWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, emitEvent(context.Background(), writer, phases.NewContext()))
	require.NoError(t, emitEvent(context.Background(), writer, nil))
	require.Zero(t, buf.Len())

	pc := phases.NewContext()
	pc.Set(publish.ContextKeyEvent, eventpayload.Event{ID: "evt-1", Name: eventpayload.EventName, Application: "acme"})
	require.NoError(t, emitEvent(context.Background(), writer, pc))
	require.Contains(t, buf.String(), "application: acme")
}
