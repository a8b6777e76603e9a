package resolver

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/abdul-hamid-achik/suiterun/packages/logger"
)

// ErrCircularDependency is returned when a prerequisite chain revisits a test
var ErrCircularDependency = errors.New("circular dependency")

type Resolver struct {
	reg *registry.Registry
	log logger.Logger
}

func New(reg *registry.Registry, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop{}
	}
	return &Resolver{reg: reg, log: log}
}

// Resolve returns requested plus all transitive prerequisites, each exactly
// once, prerequisites first. Unknown names are kept with a warning so the
// runner can count them as failed.
func (r *Resolver) Resolve(requested []string) ([]string, error) {
	s := &state{
		r:       r,
		placed:  make(map[string]bool),
		onStack: make(map[string]bool),
	}

	for _, name := range requested {
		if err := s.visit(name, ""); err != nil {
			return nil, err
		}
	}

	return s.order, nil
}

type state struct {
	r       *Resolver
	order   []string
	placed  map[string]bool
	onStack map[string]bool
	stack   []string
}

func (s *state) visit(name, requiredBy string) error {
	if s.placed[name] {
		return nil
	}

	if s.onStack[name] {
		start := slices.Index(s.stack, name)
		path := append(slices.Clone(s.stack[start:]), name)
		return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(path, " -> "))
	}

	entry, ok := s.r.reg.Test(name)
	if !ok {
		msg := fmt.Sprintf("Test not found: %s", name)
		if requiredBy != "" {
			msg += fmt.Sprintf(" (required by %s)", requiredBy)
		}
		s.r.log.Log(msg, logger.LevelWarn)
		s.place(name)
		return nil
	}

	s.onStack[name] = true
	s.stack = append(s.stack, name)

	for _, dep := range entry.Depends {
		if err := s.visit(dep, name); err != nil {
			return err
		}
	}

	s.stack = s.stack[:len(s.stack)-1]
	delete(s.onStack, name)
	s.place(name)
	return nil
}

func (s *state) place(name string) {
	s.placed[name] = true
	s.order = append(s.order, name)
}
