package topology

import (
	"strings"

	"github.com/BrianJOC/env-bootstrap/utils/validate"
)

// Ref identifies an orchestrator or CI provider, either a registry item ID
// or a generic image reference.
type Ref string

func (r Ref) String() string { return string(r) }

// BootstrapRecord binds an environment to its orchestrator and optional CI provider.
type BootstrapRecord struct {
	env          EnvironmentDescriptor
	orchestrator Ref
	ciProvider   *Ref
}

// RecordOption customises record construction.
type RecordOption func(*BootstrapRecord)

// WithCIProvider attaches a CI provider reference. Empty references are ignored.
func WithCIProvider(ref Ref) RecordOption {
	return func(r *BootstrapRecord) {
		ref = Ref(strings.TrimSpace(string(ref)))
		if ref == "" {
			return
		}
		r.ciProvider = &ref
	}
}

// NewBootstrapRecord builds a record; the orchestrator reference is required.
func NewBootstrapRecord(env EnvironmentDescriptor, orchestrator Ref, opts ...RecordOption) (BootstrapRecord, error) {
	orchestrator = Ref(strings.TrimSpace(string(orchestrator)))
	if orchestrator == "" {
		return BootstrapRecord{}, validate.FormatError{Reason: "orchestrator reference must not be empty"}
	}
	if env.name == "" {
		return BootstrapRecord{}, validate.FormatError{Reason: "environment descriptor is not initialised"}
	}
	rec := BootstrapRecord{env: env, orchestrator: orchestrator}
	for _, opt := range opts {
		if opt != nil {
			opt(&rec)
		}
	}
	return rec, nil
}

func (r BootstrapRecord) Environment() EnvironmentDescriptor { return r.env }
func (r BootstrapRecord) Orchestrator() Ref                  { return r.orchestrator }

// CIProvider returns the CI provider reference, if any.
func (r BootstrapRecord) CIProvider() (Ref, bool) {
	if r.ciProvider == nil {
		return "", false
	}
	return *r.ciProvider, true
}
