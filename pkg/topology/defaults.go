package topology

import "fmt"

// Orchestrators used by the canonical setups.
const (
	OrchestratorDockerCompose Ref = "docker-compose"
	OrchestratorKubernetes    Ref = "kubernetes"
)

// SetupType selects between the canonical topologies and a custom one.
type SetupType int

const (
	SetupDevelopment SetupType = iota
	SetupDevelopmentTest
	SetupDevelopmentTestProduction
	SetupCustom
)

var setupLabels = map[SetupType]string{
	SetupDevelopment:               "Docker Compose for your development environment",
	SetupDevelopmentTest:           "Docker Compose for your development environment and Kubernetes for your test environment",
	SetupDevelopmentTestProduction: "Docker Compose for your development environment and Kubernetes for your test and production environments",
	SetupCustom:                    "Custom",
}

var setupKeys = map[SetupType]string{
	SetupDevelopment:               "dev",
	SetupDevelopmentTest:           "dev-test",
	SetupDevelopmentTestProduction: "dev-test-prod",
	SetupCustom:                    "custom",
}

// SetupTypes lists the choices in display order.
func SetupTypes() []SetupType {
	return []SetupType{SetupDevelopment, SetupDevelopmentTest, SetupDevelopmentTestProduction, SetupCustom}
}

// Label is the text shown to the user.
func (s SetupType) Label() string {
	if label, ok := setupLabels[s]; ok {
		return label
	}
	return setupLabels[SetupCustom]
}

// Key is the short identifier used for inputs and flags.
func (s SetupType) Key() string {
	if key, ok := setupKeys[s]; ok {
		return key
	}
	return setupKeys[SetupCustom]
}

func (s SetupType) String() string { return s.Key() }

// ParseSetupType accepts a key or a label. Unknown values map to SetupCustom,
// the same as an unrecognised menu answer.
func ParseSetupType(value string) SetupType {
	for _, s := range SetupTypes() {
		if value == s.Key() || value == s.Label() {
			return s
		}
	}
	return SetupCustom
}

// CanonicalEnvironment is one environment of a default setup. Its
// orchestrator is fixed by policy.
type CanonicalEnvironment struct {
	Type         EnvironmentType
	Name         string
	Orchestrator Ref
}

var (
	canonicalDev  = CanonicalEnvironment{Type: Development, Name: "dev", Orchestrator: OrchestratorDockerCompose}
	canonicalTest = CanonicalEnvironment{Type: Test, Name: "test", Orchestrator: OrchestratorKubernetes}
	canonicalProd = CanonicalEnvironment{Type: Production, Name: "prod", Orchestrator: OrchestratorKubernetes}
)

// DefaultPlan returns the canonical environments of a default setup, in
// insertion order. SetupCustom has no plan.
func DefaultPlan(setup SetupType) []CanonicalEnvironment {
	switch setup {
	case SetupDevelopment:
		return []CanonicalEnvironment{canonicalDev}
	case SetupDevelopmentTest:
		return []CanonicalEnvironment{canonicalDev, canonicalTest}
	case SetupDevelopmentTestProduction:
		return []CanonicalEnvironment{canonicalDev, canonicalTest, canonicalProd}
	default:
		return nil
	}
}

// Record builds the record for a canonical environment with the given host
// and CI provider. The CI provider is dropped for development environments.
func (c CanonicalEnvironment) Record(host string, ci Ref) (BootstrapRecord, error) {
	env, err := NewEnvironmentDescriptor(c.Type, c.Name, host)
	if err != nil {
		return BootstrapRecord{}, err
	}
	var opts []RecordOption
	if c.Type.RequiresCI() {
		opts = append(opts, WithCIProvider(ci))
	}
	return NewBootstrapRecord(env, c.Orchestrator, opts...)
}

// CIResolver resolves the CI provider for a canonical environment.
type CIResolver func(env CanonicalEnvironment) (Ref, error)

// AddDefaults appends the canonical environments of setup to p without
// prompting, accepting every proposed host.
func AddDefaults(p *Payload, appName string, setup SetupType, resolveCI CIResolver) error {
	plan := DefaultPlan(setup)
	if plan == nil {
		return fmt.Errorf("topology: setup %q has no default environments", setup.Key())
	}
	for _, c := range plan {
		host, ok := DefaultHost(p, c.Type, c.Name, appName)
		if !ok {
			return fmt.Errorf("topology: default host for %s is already taken", c.Name)
		}
		var ci Ref
		if c.Type.RequiresCI() && resolveCI != nil {
			ref, err := resolveCI(c)
			if err != nil {
				return err
			}
			ci = ref
		}
		rec, err := c.Record(host, ci)
		if err != nil {
			return err
		}
		if err := p.Add(rec); err != nil {
			return err
		}
	}
	return nil
}
