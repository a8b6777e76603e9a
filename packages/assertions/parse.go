package assertions

import (
	"fmt"
	"sort"
)

// Parse reads the "expect" unit parameter. Accepted forms are a list of
// {subject, op, value} maps, or a map of subject to expected value, which is
// shorthand for equals.
func Parse(raw any) ([]Expectation, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]Expectation, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expect[%d]: expected a map, got %T", i, item)
			}
			exp, err := fromMap(m)
			if err != nil {
				return nil, fmt.Errorf("expect[%d]: %w", i, err)
			}
			out = append(out, exp)
		}
		return out, nil
	case map[string]any:
		subjects := make([]string, 0, len(v))
		for k := range v {
			subjects = append(subjects, k)
		}
		sort.Strings(subjects)

		out := make([]Expectation, 0, len(v))
		for _, s := range subjects {
			out = append(out, Expectation{Subject: s, Op: "equals", Value: v[s]})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expect: unsupported form %T", raw)
	}
}

func fromMap(m map[string]any) (Expectation, error) {
	subject, _ := m["subject"].(string)
	if subject == "" {
		return Expectation{}, fmt.Errorf("missing subject")
	}
	op, _ := m["op"].(string)
	if op == "" {
		op = "equals"
	}
	return Expectation{Subject: subject, Op: op, Value: m["value"]}, nil
}
