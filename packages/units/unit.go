package units

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
)

// ErrUnknownUnit is returned when no factory is registered under a name
var ErrUnknownUnit = errors.New("unknown unit")

// Result is the outcome reported by a unit. Error carries the failure
// reason when Success is false.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Passed builds a successful result
func Passed(msg string) Result {
	return Result{Success: true, Message: msg}
}

// Failed builds a failed result
func Failed(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Unit is one executable test
type Unit interface {
	Run(ctx context.Context, data registry.TestData) (Result, error)
}

// UnitFunc adapts a function to the Unit interface
type UnitFunc func(ctx context.Context, data registry.TestData) (Result, error)

func (f UnitFunc) Run(ctx context.Context, data registry.TestData) (Result, error) {
	return f(ctx, data)
}

// Factory builds a unit from a test entry's params
type Factory func(params map[string]any) (Unit, error)

// Registry maps unit names to factories. Registration happens at startup;
// lookups afterwards are read-only.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered unit names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New instantiates the unit registered under name
func (r *Registry) New(name string, params map[string]any) (Unit, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, name)
	}
	if params == nil {
		params = map[string]any{}
	}
	u, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("creating %s unit: %w", name, err)
	}
	return u, nil
}
