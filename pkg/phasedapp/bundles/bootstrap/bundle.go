package bootstrap

import (
	"github.com/BrianJOC/env-bootstrap/phases"
	"github.com/BrianJOC/env-bootstrap/phases/appname"
	"github.com/BrianJOC/env-bootstrap/phases/environments"
	"github.com/BrianJOC/env-bootstrap/phases/publish"
	"github.com/BrianJOC/env-bootstrap/phases/setuptype"
	"github.com/BrianJOC/env-bootstrap/pkg/phasedapp"
	"github.com/BrianJOC/env-bootstrap/utils/registry"
)

// Bundle returns the wizard phases in execution order. The publish phase is
// tagged "output" so callers can drop it with phasedapp.SelectPhases.
func Bundle(reg *registry.Registry, publisher publish.Publisher) ([]phases.Phase, error) {
	return phasedapp.NewBuilder().
		Add(
			appname.New(),
			setuptype.New(),
			environments.New(reg),
			publish.New(publisher),
		).
		Build()
}

// Summary feeds the summary panel from the environments snapshot.
func Summary(pc *phases.Context) []string {
	return environments.Summary(pc)
}
