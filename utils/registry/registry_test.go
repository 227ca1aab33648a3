package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrianJOC/env-bootstrap/pkg/topology"
)

func TestDefaultCatalogue(t *testing.T) {
	t.Parallel()

	r := Default()
	orchestrators := r.Items(topology.CategoryOrchestrator)
	require.Len(t, orchestrators, 2)
	require.Equal(t, "docker-compose", orchestrators[0].ID)
	require.Equal(t, "kubernetes", orchestrators[1].ID)

	_, ok := r.Get(topology.CategoryCI, "gitlab-ci")
	require.True(t, ok)
	_, ok = r.Get(topology.CategoryOrchestrator, "gitlab-ci")
	require.False(t, ok)
}

func TestNewRejectsInvalidItems(t *testing.T) {
	t.Parallel()

	_, err := New([]Item{{ID: " "}}, nil)
	require.IsType(t, ValidationError{}, err)

	_, err = New(nil, []Item{{ID: "jenkins"}, {ID: "jenkins"}})
	require.IsType(t, DuplicateItemError{}, err)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "registry.yaml")
	content := `
orchestrators:
  - id: kubernetes
    name: K8s
    description: Managed cluster
  - id: nomad
ci_providers:
  - id: drone
    name: Drone CI
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := Load(path)
	require.NoError(t, err)

	orchestrators := r.Items(topology.CategoryOrchestrator)
	require.Len(t, orchestrators, 3)
	require.Equal(t, "K8s", orchestrators[1].Name)
	require.Equal(t, "nomad", orchestrators[2].ID)
	require.Equal(t, "nomad", orchestrators[2].Name)

	item, ok := r.Get(topology.CategoryCI, "drone")
	require.True(t, ok)
	require.Equal(t, "Drone CI", item.Name)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var loadErr LoadError
	require.ErrorAs(t, err, &loadErr)
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "dup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ci_providers:\n  - id: a\n  - id: a\n"), 0o600))
	_, err = Load(path)
	require.IsType(t, DuplicateItemError{}, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("orchestrators: [\n"), 0o600))
	_, err = Load(bad)
	require.ErrorAs(t, err, &loadErr)
}

func TestItemsReturnsCopy(t *testing.T) {
	t.Parallel()

	r := Default()
	items := r.Items(topology.CategoryCI)
	items[0].ID = "mutated"
	_, ok := r.Get(topology.CategoryCI, "gitlab-ci")
	require.True(t, ok)
}
