// Package registry catalogs the generators plume can run.
//
// Each generator is declared by a generator.yml manifest sitting next
// to its template bundle. LoadDir builds a registry from a bundle
// filesystem (usually the embedded one), validating every manifest up
// front so a broken bundle fails at startup, not mid-generation.
package registry

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/simonhull/firebird-suite/plume/internal/insert"
	"github.com/simonhull/firebird-suite/plume/internal/template"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file that marks a directory as a generator
// bundle.
const ManifestName = "generator.yml"

// Generator describes one registered generator: where its template
// bundle lives and which insertion points it applies after
// materializing.
type Generator struct {
	Name        string
	Description string
	FS          fs.FS
	Root        string // bundle root within FS
	Points      []insert.Point
}

// Registry manages registered generators.
type Registry struct {
	mu   sync.RWMutex
	gens map[string]*Generator
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{gens: make(map[string]*Generator)}
}

// Register adds a generator to the registry.
func (r *Registry) Register(g *Generator) error {
	if g == nil {
		return fmt.Errorf("cannot register nil generator")
	}
	if g.Name == "" {
		return fmt.Errorf("cannot register generator with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.gens[g.Name]; exists {
		return fmt.Errorf("generator '%s' is already registered", g.Name)
	}

	r.gens[g.Name] = g
	return nil
}

// Get retrieves a generator by name.
func (r *Registry) Get(name string) (*Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.gens[name]
	return g, ok
}

// Names returns all registered generator names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.gens))
	for name := range r.gens {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// All returns all registered generators sorted by name.
func (r *Registry) All() []*Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gens := make([]*Generator, 0, len(r.gens))
	for _, g := range r.gens {
		gens = append(gens, g)
	}

	sort.Slice(gens, func(i, j int) bool { return gens[i].Name < gens[j].Name })
	return gens
}

// Size returns the number of registered generators.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.gens)
}

// manifest mirrors generator.yml.
type manifest struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Insertions  []manifestPoint `yaml:"insertions"`
}

type manifestPoint struct {
	Target    string `yaml:"target"`
	Strategy  string `yaml:"strategy"`
	Anchor    string `yaml:"anchor"`
	EndMarker string `yaml:"end_marker"`
	Fragment  string `yaml:"fragment"`
	When      string `yaml:"when"`
}

// LoadDir builds a registry from every <dir>/<name>/generator.yml in
// fsys. Each generator's templates live under <dir>/<name>/templates.
func LoadDir(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading generator bundles: %w", err)
	}

	reg := New()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		g, err := loadBundle(fsys, path.Join(dir, entry.Name()), entry.Name())
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", entry.Name(), err)
		}
		if err := reg.Register(g); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func loadBundle(fsys fs.FS, bundle, dirName string) (*Generator, error) {
	data, err := fs.ReadFile(fsys, path.Join(bundle, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if err := m.validate(dirName); err != nil {
		return nil, err
	}

	root := path.Join(bundle, "templates")
	if _, err := fs.Stat(fsys, root); err != nil {
		return nil, fmt.Errorf("missing templates directory: %w", err)
	}

	points := make([]insert.Point, len(m.Insertions))
	for i, p := range m.Insertions {
		points[i] = insert.Point{
			Target:    p.Target,
			Strategy:  insert.Strategy(p.Strategy),
			Anchor:    p.Anchor,
			EndMarker: p.EndMarker,
			Fragment:  p.Fragment,
			When:      p.When,
		}
	}

	return &Generator{
		Name:        m.Name,
		Description: m.Description,
		FS:          fsys,
		Root:        root,
		Points:      points,
	}, nil
}

func (m manifest) validate(dirName string) error {
	if m.Name == "" {
		return fmt.Errorf("manifest missing name")
	}
	if m.Name != dirName {
		return fmt.Errorf("manifest name %q does not match directory %q", m.Name, dirName)
	}

	for i, p := range m.Insertions {
		if err := p.validate(); err != nil {
			return fmt.Errorf("insertion %d: %w", i+1, err)
		}
	}
	return nil
}

func (p manifestPoint) validate() error {
	if p.Target == "" {
		return fmt.Errorf("missing target")
	}
	s := insert.Strategy(p.Strategy)
	if !s.Known() {
		return fmt.Errorf("unknown strategy %q", p.Strategy)
	}
	if p.Anchor == "" {
		return fmt.Errorf("missing anchor")
	}
	if s == insert.AppendToList && p.EndMarker == "" {
		return fmt.Errorf("strategy %s requires end_marker", s)
	}
	if s != insert.AppendToList && p.EndMarker != "" {
		return fmt.Errorf("end_marker only applies to %s", insert.AppendToList)
	}
	if strings.TrimSpace(p.Fragment) == "" {
		return fmt.Errorf("missing fragment")
	}
	if p.When != "" {
		cond, err := template.ParseCondition(p.When)
		if err != nil {
			return fmt.Errorf("when: %w", err)
		}
		if probs := cond.Problems(); len(probs) > 0 {
			return fmt.Errorf("when: %s", strings.Join(probs, "; "))
		}
	}
	return nil
}
