package phases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerRunsPhasesSequentially(t *testing.T) {
	t.Parallel()

	var order []string
	manager := NewManager()
	require.NoError(t, manager.Register(
		recordingPhase("app_name", &order),
		recordingPhase("setup_type", &order),
	))
	require.NoError(t, manager.Run(context.Background(), NewContext()))
	require.Equal(t, []string{"app_name", "setup_type"}, order)
}

func TestManagerRunFromSkipsLeadingPhases(t *testing.T) {
	t.Parallel()

	var order []string
	manager := NewManager()
	require.NoError(t, manager.Register(
		recordingPhase("app_name", &order),
		recordingPhase("setup_type", &order),
		recordingPhase("environments", &order),
	))
	require.NoError(t, manager.RunFrom(context.Background(), nil, 1))
	require.Equal(t, []string{"setup_type", "environments"}, order)
	require.Len(t, manager.Phases(), 3)
}

func TestManagerStopsOnError(t *testing.T) {
	t.Parallel()

	failErr := errors.New("boom")
	manager := NewManager()
	require.NoError(t, manager.Register(&fakePhase{
		meta: PhaseMetadata{ID: "publish"},
		run:  func(context.Context, *Context) error { return failErr },
	}))

	err := manager.Run(context.Background(), nil)
	var execErr PhaseExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "publish", execErr.Phase.ID)
	require.ErrorIs(t, err, failErr)
}

func TestManagerStopsWhenContextCancelled(t *testing.T) {
	t.Parallel()

	var order []string
	manager := NewManager()
	require.NoError(t, manager.Register(recordingPhase("app_name", &order)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, manager.Run(ctx, nil), context.Canceled)
	require.Empty(t, order)
}

func TestManagerObserverNotifications(t *testing.T) {
	t.Parallel()

	var started, completed []string
	observer := ObserverFunc{
		OnStart:    func(meta PhaseMetadata) { started = append(started, meta.ID) },
		OnComplete: func(meta PhaseMetadata, err error) { completed = append(completed, meta.ID) },
	}

	manager := NewManager(WithObserver(observer))
	require.NoError(t, manager.Register(&fakePhase{
		meta: PhaseMetadata{ID: "app_name"},
		run:  func(context.Context, *Context) error { return nil },
	}))
	require.NoError(t, manager.Run(context.Background(), nil))

	require.Equal(t, []string{"app_name"}, started)
	require.Equal(t, []string{"app_name"}, completed)
}

func TestManagerDetectsDuplicates(t *testing.T) {
	t.Parallel()

	manager := NewManager()
	err := manager.Register(&fakePhase{meta: PhaseMetadata{ID: "app_name"}}, &fakePhase{meta: PhaseMetadata{ID: "app_name"}})
	require.IsType(t, DuplicatePhaseError{}, err)

	err = manager.Register(&fakePhase{})
	require.IsType(t, ValidationError{}, err)
}

func TestManagerRepromptsUntilInputAccepted(t *testing.T) {
	t.Parallel()

	def := InputDefinition{ID: "name", Label: "Application name", Kind: InputKindText, Required: true}
	phase := &fakePhase{
		meta: PhaseMetadata{ID: "app_name"},
		run: func(_ context.Context, c *Context) error {
			_, err := RequireInput(c, "app_name", def, func(v string) error {
				if v != "acme" {
					return fmt.Errorf("%q is not acme", v)
				}
				return nil
			})
			return err
		},
	}

	answers := []string{"acme-1", "acme"}
	var reasons []string
	handler := InputHandlerFunc(func(meta PhaseMetadata, input InputDefinition, reason string) (any, error) {
		require.Equal(t, "app_name", meta.ID)
		require.Equal(t, "name", input.ID)
		reasons = append(reasons, reason)
		answer := answers[0]
		answers = answers[1:]
		return answer, nil
	})

	manager := NewManager(WithInputHandler(handler))
	require.NoError(t, manager.Register(phase))
	require.NoError(t, manager.Run(context.Background(), NewContext()))
	require.Equal(t, []string{"", `"acme-1" is not acme`}, reasons)
}

func TestManagerInputHandlerError(t *testing.T) {
	t.Parallel()

	phase := &fakePhase{
		meta: PhaseMetadata{ID: "app_name"},
		run: func(context.Context, *Context) error {
			return InputRequestError{PhaseID: "app_name", Input: InputDefinition{ID: "name"}}
		},
	}

	manager := NewManager(WithInputHandler(InputHandlerFunc(func(PhaseMetadata, InputDefinition, string) (any, error) {
		return nil, fmt.Errorf("user cancelled")
	})))

	require.NoError(t, manager.Register(phase))
	err := manager.Run(context.Background(), NewContext())
	var execErr PhaseExecutionError
	require.ErrorAs(t, err, &execErr)
	require.ErrorContains(t, execErr, "user cancelled")
}

func TestManagerPropagatesInputRequestWithoutHandler(t *testing.T) {
	t.Parallel()

	phase := &fakePhase{
		meta: PhaseMetadata{ID: "app_name"},
		run: func(context.Context, *Context) error {
			return InputRequestError{PhaseID: "app_name", Input: InputDefinition{ID: "name"}}
		},
	}

	manager := NewManager()
	require.NoError(t, manager.Register(phase))
	err := manager.Run(context.Background(), NewContext())
	var inputErr InputRequestError
	require.ErrorAs(t, err, &inputErr)
}

func TestLogObserverWritesEvents(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	obs := NewLogObserver(logger)

	meta := PhaseMetadata{ID: "publish"}
	obs.PhaseStarted(meta)
	obs.PhaseCompleted(meta, errors.New("disk full"))

	out := buf.String()
	require.Contains(t, out, "phase started")
	require.Contains(t, out, "phase failed")
	require.Contains(t, out, "disk full")
	require.Contains(t, out, "duration=")
}

func recordingPhase(id string, order *[]string) Phase {
	return &fakePhase{
		meta: PhaseMetadata{ID: id},
		run: func(context.Context, *Context) error {
			*order = append(*order, id)
			return nil
		},
	}
}

type fakePhase struct {
	meta PhaseMetadata
	run  func(context.Context, *Context) error
}

func (p *fakePhase) Metadata() PhaseMetadata {
	return p.meta
}

func (p *fakePhase) Run(ctx context.Context, c *Context) error {
	return p.run(ctx, c)
}
