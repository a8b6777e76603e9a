// Package registry holds the static test and data-source definitions a run
// is resolved against.
package registry

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateTest is returned when two entries share a name
var ErrDuplicateTest = errors.New("duplicate test name")

// CredentialsKey is the reserved TestData key filled by the default-data provider
const CredentialsKey = "userCredentials"

// Kind identifies how a data source is read
type Kind string

const (
	KindExcel Kind = "excel"
	KindJSON  Kind = "json"
	KindYAML  Kind = "yaml"
	KindEnv   Kind = "env"
	KindSQL   Kind = "sql"
)

// FileBased reports whether the source location is a file path that
// must exist before reading
func (k Kind) FileBased() bool {
	switch k {
	case KindExcel, KindJSON, KindYAML, KindEnv:
		return true
	}
	return false
}

// Entry is one registered test
type Entry struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Unit        string         `yaml:"unit" json:"unit"`
	Depends     []string       `yaml:"depends,omitempty" json:"depends,omitempty"`
	Tags        []string       `yaml:"tags,omitempty" json:"tags,omitempty"`
	DataSources []string       `yaml:"dataSources,omitempty" json:"dataSources,omitempty"`
	Params      map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// HasTag reports whether the entry carries tag
func (e *Entry) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// DataSource describes a named origin of test input
type DataSource struct {
	Name     string `yaml:"-" json:"-"`
	Kind     Kind   `yaml:"kind" json:"kind"`
	Path     string `yaml:"path" json:"path"`
	Sheet    string `yaml:"sheet,omitempty" json:"sheet,omitempty"`
	Schema   string `yaml:"schema,omitempty" json:"schema,omitempty"`
	Fallback any    `yaml:"fallback,omitempty" json:"fallback,omitempty"`
}

// TestData maps data-source names (and reserved keys) to loaded values.
// A fresh TestData is built for every test attempt.
type TestData map[string]any

// Keys returns the data keys in sorted order
func (d TestData) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Registry is built once at startup and never mutated afterwards
type Registry struct {
	order   []string
	tests   map[string]*Entry
	sources map[string]*DataSource
}

// New builds a registry. Test order is kept as declared.
func New(tests []Entry, sources map[string]DataSource) (*Registry, error) {
	r := &Registry{
		order:   make([]string, 0, len(tests)),
		tests:   make(map[string]*Entry, len(tests)),
		sources: make(map[string]*DataSource, len(sources)),
	}

	for i := range tests {
		e := tests[i]
		if e.Name == "" {
			return nil, fmt.Errorf("test at index %d has no name", i)
		}
		if _, exists := r.tests[e.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTest, e.Name)
		}
		e.Depends = slices.Clone(e.Depends)
		e.Tags = slices.Clone(e.Tags)
		e.DataSources = slices.Clone(e.DataSources)
		r.tests[e.Name] = &e
		r.order = append(r.order, e.Name)
	}

	for name, src := range sources {
		src.Name = name
		r.sources[name] = &src
	}

	return r, nil
}

// Test returns the entry registered under name
func (r *Registry) Test(name string) (*Entry, bool) {
	e, ok := r.tests[name]
	return e, ok
}

// Source returns the data source registered under name
func (r *Registry) Source(name string) (*DataSource, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// Names returns every test name in declaration order
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Tagged returns, in declaration order, the names of tests carrying tag
func (r *Registry) Tagged(tag string) []string {
	var names []string
	for _, name := range r.order {
		if r.tests[name].HasTag(tag) {
			names = append(names, name)
		}
	}
	return names
}

// SourceNames returns every data-source name, sorted
func (r *Registry) SourceNames() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered tests
func (r *Registry) Len() int {
	return len(r.order)
}
