package resolver

import (
	"fmt"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
)

// Problem is a single configuration defect found by Validate
type Problem struct {
	Test    string
	Message string
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s: %s", p.Test, p.Message)
}

// Validate checks every registry entry for unknown prerequisites, unknown
// data sources, unregistered units and dependency cycles. hasUnit may be nil
// to skip the unit check.
func Validate(reg *registry.Registry, hasUnit func(string) bool) []Problem {
	var problems []Problem

	for _, name := range reg.Names() {
		entry, _ := reg.Test(name)

		if entry.Unit == "" {
			problems = append(problems, Problem{Test: name, Message: "no unit declared"})
		} else if hasUnit != nil && !hasUnit(entry.Unit) {
			problems = append(problems, Problem{Test: name, Message: fmt.Sprintf("unit %q is not registered", entry.Unit)})
		}

		for _, dep := range entry.Depends {
			if _, ok := reg.Test(dep); !ok {
				problems = append(problems, Problem{Test: name, Message: fmt.Sprintf("depends on unknown test %q", dep)})
			}
		}

		for _, src := range entry.DataSources {
			if _, ok := reg.Source(src); !ok {
				problems = append(problems, Problem{Test: name, Message: fmt.Sprintf("uses unknown data source %q", src)})
			}
		}
	}

	seen := make(map[string]bool)
	for _, name := range reg.Names() {
		if _, err := New(reg, nil).Resolve([]string{name}); err != nil {
			msg := err.Error()
			if !seen[msg] {
				seen[msg] = true
				problems = append(problems, Problem{Test: name, Message: msg})
			}
		}
	}

	return problems
}
