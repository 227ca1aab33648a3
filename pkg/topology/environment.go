// Package topology models the deployment topology collected by the wizard:
// environments, the records binding them to an orchestrator and CI provider,
// and the payload that keeps those records unique.
package topology

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/BrianJOC/env-bootstrap/utils/validate"
)

// EnvironmentType is the closed set of environment categories.
type EnvironmentType string

const (
	Development EnvironmentType = "development"
	Test        EnvironmentType = "test"
	Production  EnvironmentType = "production"
)

var environmentTypes = []EnvironmentType{Development, Test, Production}

// EnvironmentTypes lists every environment type in display order.
func EnvironmentTypes() []EnvironmentType {
	out := make([]EnvironmentType, len(environmentTypes))
	copy(out, environmentTypes)
	return out
}

// ParseEnvironmentType converts user input into an EnvironmentType.
func ParseEnvironmentType(value string) (EnvironmentType, error) {
	candidate := EnvironmentType(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range environmentTypes {
		if t == candidate {
			return t, nil
		}
	}
	return "", validate.FormatError{Value: value, Reason: "is not a known environment type"}
}

var titleCase = cases.Title(language.English)

// Label returns the capitalised display name of the type.
func (t EnvironmentType) Label() string {
	return titleCase.String(string(t))
}

// RequiresCI reports whether environments of this type expect a CI provider.
func (t EnvironmentType) RequiresCI() bool {
	return t != Development
}

// EnvironmentDescriptor describes one environment. It is immutable once built.
type EnvironmentDescriptor struct {
	typ  EnvironmentType
	name string
	host string
}

// NewEnvironmentDescriptor validates the name and base virtual host format.
// Uniqueness is checked by the Payload when the record is added.
func NewEnvironmentDescriptor(typ EnvironmentType, name, baseVirtualHost string) (EnvironmentDescriptor, error) {
	parsed, err := ParseEnvironmentType(string(typ))
	if err != nil {
		return EnvironmentDescriptor{}, err
	}
	if err := validate.Alpha(name); err != nil {
		return EnvironmentDescriptor{}, err
	}
	if err := validate.DomainName(baseVirtualHost); err != nil {
		return EnvironmentDescriptor{}, err
	}
	return EnvironmentDescriptor{typ: parsed, name: name, host: baseVirtualHost}, nil
}

func (d EnvironmentDescriptor) Type() EnvironmentType   { return d.typ }
func (d EnvironmentDescriptor) Name() string            { return d.name }
func (d EnvironmentDescriptor) BaseVirtualHost() string { return d.host }

func (d EnvironmentDescriptor) String() string {
	return fmt.Sprintf("%s environment %s (%s)", d.typ, d.name, d.host)
}
