package units

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/suiterun/packages/core/env"
	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
)

// params reads typed values out of a unit's parameter map
type params map[string]any

func (p params) str(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (p params) required(key string) (string, error) {
	s := p.str(key)
	if s == "" {
		return "", fmt.Errorf("missing required param %q", key)
	}
	return s, nil
}

func (p params) integer(key string, def int) (int, error) {
	switch v := p[key].(type) {
	case nil:
		return def, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("param %q: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("param %q: expected a number, got %T", key, v)
	}
}

// duration accepts Go duration strings ("5s") or milliseconds
func (p params) duration(key string) (time.Duration, error) {
	switch v := p[key].(type) {
	case nil:
		return 0, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("param %q: %w", key, err)
		}
		return d, nil
	default:
		ms, err := p.integer(key, 0)
		if err != nil {
			return 0, err
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
}

func (p params) stringMap(key string) (map[string]string, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("param %q: expected a map, got %T", key, raw)
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

func (p params) sub(key string) (params, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("param %q: expected a map, got %T", key, raw)
	}
	return params(m), nil
}

// resolve expands {{...}} templates in every param against the test data
func (p params) resolve(data registry.TestData) (params, []string) {
	r := env.NewResolver()
	r.SetVariables(data)

	var unresolved []string
	r.SetWarnFunc(func(format string, args ...any) {
		unresolved = append(unresolved, fmt.Sprintf(format, args...))
	})

	resolved, _ := r.ResolveValue(map[string]any(p)).(map[string]any)
	return params(resolved), unresolved
}

// dataJSON encodes the test data for units that hand it to other processes
func dataJSON(data registry.TestData) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encoding test data: %w", err)
	}
	return string(b), nil
}
