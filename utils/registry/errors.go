package registry

import "fmt"

// DuplicateItemError occurs when two items in the same category share an ID.
type DuplicateItemError struct {
	Category string
	ID       string
}

func (e DuplicateItemError) Error() string {
	return fmt.Sprintf("registry: %s item %q defined more than once", e.Category, e.ID)
}

// ValidationError captures malformed registry entries.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("registry validation failed: %s", e.Reason)
}

// LoadError wraps failures reading or decoding a registry file.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("load registry %s: %v", e.Path, e.Err)
}

func (e LoadError) Unwrap() error {
	return e.Err
}
