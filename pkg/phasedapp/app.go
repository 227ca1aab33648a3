// Package phasedapp hosts a phases.Manager inside a Bubble Tea program. The
// manager runs on its own goroutine; lifecycle events and input requests are
// bridged to the UI over channels.
package phasedapp

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BrianJOC/env-bootstrap/phases"
)

var (
	// ErrNoPhases indicates no phases were supplied when constructing an App.
	ErrNoPhases = errors.New("phasedapp: at least one phase must be registered")
	// ErrProgramRunning reports that Start was invoked while the program is already running.
	ErrProgramRunning = errors.New("phasedapp: program already running")
	// ErrInputCancelled is returned to the running phase when the operator
	// dismisses a prompt.
	ErrInputCancelled = errors.New("phasedapp: input cancelled")
	// ErrIncomplete is reported by Result when the operator quit before the
	// pipeline finished.
	ErrIncomplete = errors.New("phasedapp: pipeline did not complete")
)

// SummaryFunc renders the lines shown in the summary panel. It is called
// from the UI goroutine and must only read from the context.
type SummaryFunc func(*phases.Context) []string

// Config controls how an App should be assembled.
type Config struct {
	Title          string
	Phases         []phases.Phase
	ManagerOptions []phases.ManagerOption
	ProgramOptions []tea.ProgramOption
	Summary        SummaryFunc
	Seed           func(*phases.Context)
}

// Option mutates Config during construction.
type Option func(*Config)

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(cfg *Config) {
		if cfg != nil && title != "" {
			cfg.Title = title
		}
	}
}

// WithPhases sets the ordered phases the app should execute.
func WithPhases(phases ...phases.Phase) Option {
	return func(cfg *Config) {
		if cfg == nil {
			return
		}
		cfg.Phases = append(cfg.Phases, phases...)
	}
}

// WithManagerOptions appends custom manager options.
func WithManagerOptions(opts ...phases.ManagerOption) Option {
	return func(cfg *Config) {
		if cfg == nil {
			return
		}
		cfg.ManagerOptions = append(cfg.ManagerOptions, opts...)
	}
}

// WithProgramOptions appends tea.Program options.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(cfg *Config) {
		if cfg == nil {
			return
		}
		cfg.ProgramOptions = append(cfg.ProgramOptions, opts...)
	}
}

// WithSummary sets the function feeding the summary panel.
func WithSummary(fn SummaryFunc) Option {
	return func(cfg *Config) {
		if cfg != nil {
			cfg.Summary = fn
		}
	}
}

// WithSeed pre-populates every fresh context, e.g. with answers passed on
// the command line.
func WithSeed(seed func(*phases.Context)) Option {
	return func(cfg *Config) {
		if cfg != nil {
			cfg.Seed = seed
		}
	}
}

// App hosts the Bubble Tea-driven phase runner.
type App struct {
	cfg      Config
	mu       sync.Mutex
	program  *tea.Program
	inFlight bool
	result   *phases.Context
	runErr   error
}

// New constructs an App from the provided options.
func New(opts ...Option) (*App, error) {
	cfg := Config{Title: "Environment Bootstrap"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if len(cfg.Phases) == 0 {
		return nil, ErrNoPhases
	}
	return &App{cfg: cfg}, nil
}

// Start runs the TUI until the operator quits.
func (a *App) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return ErrProgramRunning
	}
	a.inFlight = true
	a.mu.Unlock()

	m, err := newModel(ctx, a.cfg)
	if err != nil {
		a.mu.Lock()
		a.inFlight = false
		a.mu.Unlock()
		return err
	}
	program := tea.NewProgram(m, a.cfg.ProgramOptions...)

	a.mu.Lock()
	a.program = program
	a.mu.Unlock()

	final, runErr := program.Run()
	m.shutdown()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.program = nil
	a.inFlight = false
	if fm, ok := final.(*model); ok {
		a.result = fm.phaseCtx
		a.runErr = fm.done
		if !fm.finished {
			a.runErr = ErrIncomplete
		}
	}
	return runErr
}

// Stop signals the running TUI program (if any) to exit.
func (a *App) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.program == nil {
		return nil
	}
	a.program.Quit()
	return nil
}

// Result returns the context of the last pipeline run and its outcome. The
// context is nil until Start has returned.
func (a *App) Result() (*phases.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, a.runErr
}
