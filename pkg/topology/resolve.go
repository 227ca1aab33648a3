package topology

import (
	"strings"

	"github.com/BrianJOC/env-bootstrap/utils/validate"
)

// Category groups registry items.
type Category string

const (
	CategoryOrchestrator Category = "orchestrator"
	CategoryCI           Category = "ci"
)

// Lookup asks the item registry for a selection. ok is false when nothing
// was selected, which is not an error.
type Lookup interface {
	Lookup(category Category) (ref Ref, ok bool, err error)
}

// LookupFunc adapts a function into a Lookup.
type LookupFunc func(category Category) (Ref, bool, error)

// Lookup implements Lookup.
func (f LookupFunc) Lookup(category Category) (Ref, bool, error) {
	return f(category)
}

// Fallback supplies a generic image reference when the registry yields nothing.
type Fallback interface {
	Image(category Category) (Ref, error)
}

// FallbackFunc adapts a function into a Fallback.
type FallbackFunc func(category Category) (Ref, error)

// Image implements Fallback.
func (f FallbackFunc) Image(category Category) (Ref, error) {
	return f(category)
}

// Resolve chains the registry lookup into the generic image fallback.
// Collaborator errors are returned unchanged.
func Resolve(lookup Lookup, fallback Fallback, category Category) (Ref, error) {
	if lookup != nil {
		ref, ok, err := lookup.Lookup(category)
		if err != nil {
			return "", err
		}
		if ok {
			if ref = Ref(strings.TrimSpace(string(ref))); ref != "" {
				return ref, nil
			}
		}
	}
	if fallback == nil {
		return "", validate.FormatError{Reason: "no " + string(category) + " selected and no image fallback available"}
	}
	ref, err := fallback.Image(category)
	if err != nil {
		return "", err
	}
	ref = Ref(strings.TrimSpace(string(ref)))
	if ref == "" {
		return "", validate.FormatError{Reason: string(category) + " image reference must not be empty"}
	}
	return ref, nil
}
