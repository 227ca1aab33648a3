// Package eventpayload serializes a finalized topology payload into the
// BOOTSTRAP event document consumed by downstream automation.
package eventpayload

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/BrianJOC/env-bootstrap/pkg/topology"
)

// EventName identifies the event carrying the topology.
const EventName = "BOOTSTRAP"

// Supported formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Event is the document handed to downstream tooling.
type Event struct {
	ID           string        `yaml:"id" json:"id"`
	Name         string        `yaml:"event" json:"event"`
	Application  string        `yaml:"application" json:"application"`
	CreatedAt    time.Time     `yaml:"created_at" json:"created_at"`
	Environments []Environment `yaml:"environments" json:"environments"`
}

// Environment is one record of the payload.
type Environment struct {
	Type            string `yaml:"type" json:"type"`
	Name            string `yaml:"name" json:"name"`
	BaseVirtualHost string `yaml:"base_virtual_host" json:"base_virtual_host"`
	Orchestrator    string `yaml:"orchestrator" json:"orchestrator"`
	CIProvider      string `yaml:"ci_provider,omitempty" json:"ci_provider,omitempty"`
}

// Option configures a Writer.
type Option func(*Writer)

// WithFormat selects yaml or json output.
func WithFormat(format string) Option {
	return func(w *Writer) {
		w.format = strings.ToLower(strings.TrimSpace(format))
	}
}

// WithOutputPath writes the event to a file instead of the configured io.Writer.
func WithOutputPath(path string) Option {
	return func(w *Writer) {
		w.path = strings.TrimSpace(path)
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}

// WithIDGenerator overrides event ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(w *Writer) {
		if gen != nil {
			w.newID = gen
		}
	}
}

// Writer encodes events to a stream or file.
type Writer struct {
	out    io.Writer
	path   string
	format string
	now    func() time.Time
	newID  func() string
}

// NewWriter returns a Writer targeting out (used when no output path is set).
func NewWriter(out io.Writer, opts ...Option) (*Writer, error) {
	w := &Writer{
		out:    out,
		format: FormatYAML,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.format == "" {
		w.format = FormatYAML
	}
	if w.format != FormatYAML && w.format != FormatJSON {
		return nil, FormatError{Format: w.format}
	}
	return w, nil
}

// Build converts the payload into an Event without writing it.
func (w *Writer) Build(p *topology.Payload, appName string) Event {
	ev := Event{
		ID:           w.newID(),
		Name:         EventName,
		Application:  appName,
		CreatedAt:    w.now().UTC(),
		Environments: []Environment{},
	}
	for _, rec := range p.Records() {
		env := rec.Environment()
		item := Environment{
			Type:            string(env.Type()),
			Name:            env.Name(),
			BaseVirtualHost: env.BaseVirtualHost(),
			Orchestrator:    rec.Orchestrator().String(),
		}
		if ci, ok := rec.CIProvider(); ok {
			item.CIProvider = ci.String()
		}
		ev.Environments = append(ev.Environments, item)
	}
	return ev
}

// Write encodes the payload and returns the event that was written.
func (w *Writer) Write(ctx context.Context, p *topology.Payload, appName string) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	ev := w.Build(p, appName)
	if err := w.Emit(ctx, ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Emit encodes an already built event to the output file or stream.
func (w *Writer) Emit(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := w.encode(ev)
	if err != nil {
		return WriteError{Target: w.target(), Err: err}
	}
	if w.path != "" {
		if err := writeFile(w.path, data); err != nil {
			return WriteError{Target: w.path, Err: err}
		}
		return nil
	}
	if w.out == nil {
		return nil
	}
	if _, err := w.out.Write(data); err != nil {
		return WriteError{Target: w.target(), Err: err}
	}
	return nil
}

// Deferred returns a publisher that only builds events. The caller emits the
// final one with Emit once no further runs can replace it.
func (w *Writer) Deferred() *Deferred {
	return &Deferred{w: w}
}

// Deferred builds events through a Writer without encoding them.
type Deferred struct {
	w *Writer
}

// Write builds the event for the payload; nothing is written.
func (d *Deferred) Write(ctx context.Context, p *topology.Payload, appName string) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	return d.w.Build(p, appName), nil
}

func (w *Writer) encode(ev Event) ([]byte, error) {
	if w.format == FormatJSON {
		data, err := json.MarshalIndent(ev, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return yaml.Marshal(ev)
}

func (w *Writer) target() string {
	if w.path != "" {
		return w.path
	}
	return "stream"
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
