package topology

import (
	"fmt"
	"strings"

	"github.com/BrianJOC/env-bootstrap/utils/validate"
)

// ProposeHost computes the conventional base virtual host for an environment.
func ProposeHost(typ EnvironmentType, name, appName string) string {
	appName = strings.ToLower(appName)
	switch typ {
	case Development:
		return fmt.Sprintf("%s.localhost", appName)
	case Test:
		return fmt.Sprintf("%s.%s.com", name, appName)
	default:
		return fmt.Sprintf("%s.com", appName)
	}
}

// DefaultHost returns the proposed host, or false when it is already taken
// in p and the user has to type one explicitly.
func DefaultHost(p *Payload, typ EnvironmentType, name, appName string) (string, bool) {
	proposal := ProposeHost(typ, name, appName)
	if p != nil && p.VirtualHostExists(proposal) {
		return "", false
	}
	return proposal, true
}

// NameValidator checks environment names against p.
func NameValidator(p *Payload) validate.Validator {
	return validate.Merge(
		validate.Alpha,
		validate.Unique(p.NameExists, "Environment %q does already exist!"),
	)
}

// HostValidator checks base virtual hosts against p.
func HostValidator(p *Payload) validate.Validator {
	return validate.Merge(
		validate.DomainName,
		validate.Unique(p.VirtualHostExists, "Base virtual host %q does already exist!"),
	)
}
