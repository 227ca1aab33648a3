package topology

import (
	"errors"
	"fmt"
	"iter"

	"github.com/BrianJOC/env-bootstrap/utils/validate"
)

// ErrFinalized is returned when adding to a payload that was already handed off.
var ErrFinalized = errors.New("topology: payload is finalized")

// ContractViolation is the panic value raised when a caller breaks an
// invariant it promised to uphold, such as adding a record whose uniqueness
// it had already checked.
type ContractViolation struct {
	Op  string
	Err error
}

func (e ContractViolation) Error() string {
	return fmt.Sprintf("topology: contract violation in %s: %v", e.Op, e.Err)
}

func (e ContractViolation) Unwrap() error {
	return e.Err
}

// Payload is the ordered set of bootstrap records collected in one session.
// No two records share an environment name or base virtual host.
//
// A Payload is owned by a single caller and is not safe for concurrent use.
type Payload struct {
	records   []BootstrapRecord
	finalized bool
}

// NewPayload returns an empty payload.
func NewPayload() *Payload {
	return &Payload{}
}

// Add appends rec, rejecting it when its name or host is already taken.
// A rejected record leaves the payload unchanged.
func (p *Payload) Add(rec BootstrapRecord) error {
	if p.finalized {
		return ErrFinalized
	}
	env := rec.Environment()
	if p.NameExists(env.Name()) {
		return validate.DuplicateError{
			Value:   env.Name(),
			Message: fmt.Sprintf("Environment %q does already exist!", env.Name()),
		}
	}
	if p.VirtualHostExists(env.BaseVirtualHost()) {
		return validate.DuplicateError{
			Value:   env.BaseVirtualHost(),
			Message: fmt.Sprintf("Base virtual host %q does already exist!", env.BaseVirtualHost()),
		}
	}
	p.records = append(p.records, rec)
	return nil
}

// MustAdd is Add for callers that validated uniqueness beforehand; any
// failure is reported as a ContractViolation panic.
func (p *Payload) MustAdd(rec BootstrapRecord) {
	if err := p.Add(rec); err != nil {
		panic(ContractViolation{Op: "Payload.MustAdd", Err: err})
	}
}

// NameExists reports whether an environment with this name was already added.
func (p *Payload) NameExists(name string) bool {
	for _, rec := range p.records {
		if rec.env.name == name {
			return true
		}
	}
	return false
}

// VirtualHostExists reports whether this base virtual host was already added.
func (p *Payload) VirtualHostExists(host string) bool {
	for _, rec := range p.records {
		if rec.env.host == host {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (p *Payload) Len() int {
	return len(p.records)
}

// Records returns a copy of the records in insertion order.
func (p *Payload) Records() []BootstrapRecord {
	out := make([]BootstrapRecord, len(p.records))
	copy(out, p.records)
	return out
}

// Finalize marks the payload read-only.
func (p *Payload) Finalize() {
	p.finalized = true
}

// Finalized reports whether Finalize was called.
func (p *Payload) Finalized() bool {
	return p.finalized
}

// Summarize yields one human-readable line per record in insertion order.
// The sequence reflects the payload at iteration time and may be ranged
// over repeatedly.
func (p *Payload) Summarize() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, rec := range p.records {
			if !yield(SummaryLine(rec)) {
				return
			}
		}
	}
}

// SummaryLine renders a single record for display.
func SummaryLine(rec BootstrapRecord) string {
	env := rec.Environment()
	ci := "no CI provider"
	if ref, ok := rec.CIProvider(); ok {
		ci = "CI provider " + ref.String()
	}
	return fmt.Sprintf("%s environment %s: base virtual host %s, orchestrator %s, %s",
		env.Type().Label(), env.Name(), env.BaseVirtualHost(), rec.Orchestrator(), ci)
}
