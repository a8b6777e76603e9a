package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ReadJSON decodes a JSON file. A non-empty selector is a gjson path.
func ReadJSON(_ context.Context, path, selector string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(content) {
		return nil, fmt.Errorf("invalid JSON in %s", path)
	}
	return selectJSON(content, selector)
}

// ReadYAML decodes a YAML file. A non-empty selector is a gjson path applied
// to the document's JSON form.
func ReadYAML(_ context.Context, path, selector string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("YAML in %s has no JSON form: %w", path, err)
	}
	return selectJSON(asJSON, selector)
}

// ReadEnv reads a .env file into a map. A non-empty selector returns that
// single variable.
func ReadEnv(_ context.Context, path, selector string) (any, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if selector != "" {
		v, ok := vars[selector]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, selector)
		}
		return v, nil
	}

	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out, nil
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// NormalizePath turns bracket indexes into gjson dot notation,
// e.g. "items[0].tags[1]" becomes "items.0.tags.1"
func NormalizePath(path string) string {
	path = bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(path, ".")
}

func selectJSON(content []byte, selector string) (any, error) {
	if selector == "" {
		return gjson.ParseBytes(content).Value(), nil
	}
	result := gjson.GetBytes(content, NormalizePath(selector))
	if !result.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return result.Value(), nil
}
