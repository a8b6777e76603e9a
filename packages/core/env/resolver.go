package env

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/suiterun/packages/builtin"
)

var templatePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc receives warnings such as unresolved variables
type WarnFunc func(format string, args ...any)

// Resolver expands {{...}} templates. It is not safe for concurrent use.
type Resolver struct {
	variables map[string]any
	funcs     *builtin.Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		funcs:     builtin.NewRegistry(),
	}
}

// SetWarnFunc sets the function called on unresolved expressions
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	if r.warnFunc != nil {
		r.warnFunc(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.variables[name] = value
}

// Lookup returns the variable at a dotted path. Map keys and slice indexes
// are both addressed by path segments.
func (r *Resolver) Lookup(path string) (any, bool) {
	if v, ok := r.variables[path]; ok {
		return v, true
	}

	parts := strings.Split(path, ".")
	cur, ok := r.variables[parts[0]]
	if !ok {
		return nil, false
	}

	for _, part := range parts[1:] {
		cur, ok = step(cur, part)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func step(cur any, part string) (any, bool) {
	v := reflect.ValueOf(cur)
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := v.MapIndex(reflect.ValueOf(part).Convert(v.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 || idx >= v.Len() {
			return nil, false
		}
		return v.Index(idx).Interface(), true
	}
	return nil, false
}

// evaluate resolves one expression without the surrounding braces
func (r *Resolver) evaluate(expr string) (any, bool) {
	expr = strings.TrimSpace(expr)

	if name, ok := strings.CutPrefix(expr, "$"); ok {
		if val, set := os.LookupEnv(name); set {
			return val, true
		}
		r.warn("unresolved environment variable: $%s", name)
		return nil, false
	}

	if strings.Contains(expr, "(") {
		val, ok, err := r.funcs.Call(expr)
		if err != nil {
			r.warn("function call %s failed: %v", expr, err)
			return nil, false
		}
		if !ok {
			r.warn("unresolved function call: %s", expr)
			return nil, false
		}
		return val, true
	}

	if val, ok := r.Lookup(expr); ok {
		return val, true
	}

	r.warn("unresolved variable: %s", expr)
	return nil, false
}

// Resolve replaces every template in input. Unresolved templates are left as is.
func (r *Resolver) Resolve(input string) string {
	return templatePattern.ReplaceAllStringFunc(input, func(match string) string {
		val, ok := r.evaluate(match[2 : len(match)-2])
		if !ok {
			return match
		}
		return stringify(val)
	})
}

// ResolveValue resolves templates inside strings, maps and slices.
// A string made of a single template keeps the resolved value's type.
func (r *Resolver) ResolveValue(v any) any {
	switch val := v.(type) {
	case string:
		if m := templatePattern.FindStringSubmatchIndex(val); m != nil && m[0] == 0 && m[1] == len(val) {
			if resolved, ok := r.evaluate(val[m[2]:m[3]]); ok {
				return resolved
			}
			return val
		}
		return r.Resolve(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = r.ResolveValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.ResolveValue(item)
		}
		return out
	default:
		return v
	}
}

// UnresolvedVariables lists the template expressions in input that cannot be resolved
func (r *Resolver) UnresolvedVariables(input string) []string {
	saved := r.warnFunc
	r.warnFunc = nil
	defer func() { r.warnFunc = saved }()

	var missing []string
	for _, m := range templatePattern.FindAllStringSubmatch(input, -1) {
		if _, ok := r.evaluate(m[1]); !ok {
			missing = append(missing, strings.TrimSpace(m[1]))
		}
	}
	return missing
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}
