package phasedapp

import (
	"strings"

	"github.com/BrianJOC/env-bootstrap/phases"
)

// Builder composes an ordered phase list, remembering the first invalid or
// duplicate phase it sees.
type Builder struct {
	list []phases.Phase
	seen map[string]struct{}
	err  error
}

// NewBuilder constructs an empty Builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// Add appends phases, skipping nils. After the first error further calls
// are ignored.
func (b *Builder) Add(list ...phases.Phase) *Builder {
	for _, phase := range list {
		if b.err != nil {
			return b
		}
		if phase == nil {
			continue
		}
		id := phase.Metadata().ID
		if id == "" {
			b.err = phases.ValidationError{Reason: "phase id must not be empty"}
			return b
		}
		if _, dup := b.seen[id]; dup {
			b.err = phases.DuplicatePhaseError{ID: id}
			return b
		}
		b.seen[id] = struct{}{}
		b.list = append(b.list, phase)
	}
	return b
}

// Build returns the accumulated phases or the captured error.
func (b *Builder) Build() ([]phases.Phase, error) {
	if b.err != nil {
		return nil, b.err
	}
	return append([]phases.Phase(nil), b.list...), nil
}

// PhaseFilter matches phases based on metadata.
type PhaseFilter func(phases.PhaseMetadata) bool

// WithTag matches phases carrying tag, ignoring case.
func WithTag(tag string) PhaseFilter {
	return func(meta phases.PhaseMetadata) bool {
		for _, t := range meta.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(filter PhaseFilter) PhaseFilter {
	return func(meta phases.PhaseMetadata) bool {
		return !filter(meta)
	}
}

// SelectPhases returns the phases satisfying every filter, in order.
func SelectPhases(list []phases.Phase, filters ...PhaseFilter) []phases.Phase {
	var out []phases.Phase
outer:
	for _, phase := range list {
		if phase == nil {
			continue
		}
		meta := phase.Metadata()
		for _, filter := range filters {
			if filter != nil && !filter(meta) {
				continue outer
			}
		}
		out = append(out, phase)
	}
	return out
}
