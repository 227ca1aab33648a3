package validate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat matches every FormatError via errors.Is.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrDuplicateValue matches every DuplicateError via errors.Is.
	ErrDuplicateValue = errors.New("duplicate value")
)

// FormatError reports a candidate that fails a syntactic check.
type FormatError struct {
	Value  string
	Reason string
}

func (e FormatError) Error() string {
	if e.Value == "" {
		return e.Reason
	}
	return fmt.Sprintf("%q %s", e.Value, e.Reason)
}

func (e FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// DuplicateError reports a candidate that collides with an existing value.
type DuplicateError struct {
	Value   string
	Message string
}

func (e DuplicateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%q already exists", e.Value)
}

func (e DuplicateError) Is(target error) bool {
	return target == ErrDuplicateValue
}
