// Package validate holds the string predicates used while collecting
// wizard answers.
package validate

import (
	"fmt"
	"strings"
)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

// Validator checks a candidate answer and returns nil when it is acceptable.
type Validator func(candidate string) error

// NotEmpty rejects blank candidates.
func NotEmpty(candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return FormatError{Reason: "value must not be empty"}
	}
	return nil
}

// Alpha accepts non-empty strings made only of ASCII letters.
func Alpha(candidate string) error {
	if candidate == "" {
		return FormatError{Reason: "value must not be empty"}
	}
	for _, r := range candidate {
		if !isASCIILetter(r) {
			return FormatError{Value: candidate, Reason: "must contain only letters (a-z, A-Z)"}
		}
	}
	return nil
}

// DomainName accepts conventional domain names such as foo.localhost or
// qa.shop.com. Single-label names like localhost are allowed.
func DomainName(candidate string) error {
	if candidate == "" {
		return FormatError{Reason: "domain name must not be empty"}
	}
	if len(candidate) > maxDomainLength {
		return FormatError{Value: candidate, Reason: fmt.Sprintf("is longer than %d characters", maxDomainLength)}
	}
	for _, label := range strings.Split(candidate, ".") {
		if err := checkLabel(label); err != nil {
			return FormatError{Value: candidate, Reason: err.Error()}
		}
	}
	return nil
}

// ImageReference accepts a generic container image reference such as
// registry.example.com/team/app:1.2. Only emptiness and whitespace are checked.
func ImageReference(candidate string) error {
	if candidate == "" {
		return FormatError{Reason: "image reference must not be empty"}
	}
	if strings.ContainsAny(candidate, " \t\n") {
		return FormatError{Value: candidate, Reason: "must not contain whitespace"}
	}
	return nil
}

// Unique rejects candidates for which exists reports true. The message
// template receives the candidate as its only argument.
func Unique(exists func(string) bool, messageTemplate string) Validator {
	return func(candidate string) error {
		if exists == nil || !exists(candidate) {
			return nil
		}
		msg := ""
		if messageTemplate != "" {
			msg = fmt.Sprintf(messageTemplate, candidate)
		}
		return DuplicateError{Value: candidate, Message: msg}
	}
}

// Merge runs validators in order and returns the first failure.
func Merge(validators ...Validator) Validator {
	return func(candidate string) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(candidate); err != nil {
				return err
			}
		}
		return nil
	}
}

func checkLabel(label string) error {
	switch {
	case label == "":
		return labelError("contains an empty label")
	case len(label) > maxLabelLength:
		return labelError(fmt.Sprintf("has a label longer than %d characters", maxLabelLength))
	case label[0] == '-' || label[len(label)-1] == '-':
		return labelError("has a label starting or ending with a hyphen")
	}
	for _, r := range label {
		if !isASCIILetter(r) && !(r >= '0' && r <= '9') && r != '-' {
			return labelError("contains characters other than letters, digits and hyphens")
		}
	}
	return nil
}

type labelError string

func (e labelError) Error() string { return string(e) }

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
