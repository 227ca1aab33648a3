// Package registry is the catalogue of orchestrators and CI providers the
// wizard offers before falling back to a generic image reference.
package registry

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BrianJOC/env-bootstrap/pkg/topology"
)

// Item is a selectable orchestrator or CI provider.
type Item struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Registry holds items per category in display order.
type Registry struct {
	items map[topology.Category][]Item
}

type file struct {
	Orchestrators []Item `yaml:"orchestrators"`
	CIProviders   []Item `yaml:"ci_providers"`
}

var defaultOrchestrators = []Item{
	{ID: string(topology.OrchestratorDockerCompose), Name: "Docker Compose", Description: "Runs containers on a single host; suited to local development."},
	{ID: string(topology.OrchestratorKubernetes), Name: "Kubernetes", Description: "Schedules containers on a cluster."},
}

var defaultCIProviders = []Item{
	{ID: "gitlab-ci", Name: "GitLab CI", Description: "Builds and deploys images from GitLab pipelines."},
	{ID: "github-actions", Name: "GitHub Actions", Description: "Builds and deploys images from GitHub workflows."},
	{ID: "jenkins", Name: "Jenkins", Description: "Self-hosted automation server."},
}

// Default returns the built-in catalogue.
func Default() *Registry {
	r, err := New(defaultOrchestrators, defaultCIProviders)
	if err != nil {
		panic("registry: invalid built-in catalogue: " + err.Error())
	}
	return r
}

// New builds a registry, rejecting empty or duplicate IDs.
func New(orchestrators, ciProviders []Item) (*Registry, error) {
	r := &Registry{items: make(map[topology.Category][]Item)}
	if err := r.add(topology.CategoryOrchestrator, orchestrators...); err != nil {
		return nil, err
	}
	if err := r.add(topology.CategoryCI, ciProviders...); err != nil {
		return nil, err
	}
	return r, nil
}

// Load reads a YAML registry file and merges it over the defaults. Items
// whose ID matches a built-in entry replace it in place.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, LoadError{Path: path, Err: err}
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, LoadError{Path: path, Err: err}
	}
	if err := checkDuplicates(topology.CategoryOrchestrator, f.Orchestrators); err != nil {
		return nil, err
	}
	if err := checkDuplicates(topology.CategoryCI, f.CIProviders); err != nil {
		return nil, err
	}
	return New(merge(defaultOrchestrators, f.Orchestrators), merge(defaultCIProviders, f.CIProviders))
}

// Items lists the entries of a category.
func (r *Registry) Items(category topology.Category) []Item {
	if r == nil {
		return nil
	}
	src := r.items[category]
	out := make([]Item, len(src))
	copy(out, src)
	return out
}

// Get finds an item by ID within a category.
func (r *Registry) Get(category topology.Category, id string) (Item, bool) {
	if r == nil {
		return Item{}, false
	}
	for _, item := range r.items[category] {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

func (r *Registry) add(category topology.Category, items ...Item) error {
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			return ValidationError{Reason: string(category) + " item id must not be empty"}
		}
		if _, exists := r.Get(category, item.ID); exists {
			return DuplicateItemError{Category: string(category), ID: item.ID}
		}
		if item.Name == "" {
			item.Name = item.ID
		}
		r.items[category] = append(r.items[category], item)
	}
	return nil
}

func checkDuplicates(category topology.Category, items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if _, ok := seen[id]; ok {
			return DuplicateItemError{Category: string(category), ID: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}

func merge(base, overrides []Item) []Item {
	out := append([]Item{}, base...)
outer:
	for _, o := range overrides {
		for i := range out {
			if out[i].ID == strings.TrimSpace(o.ID) {
				out[i] = o
				continue outer
			}
		}
		out = append(out, o)
	}
	return out
}
