package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv parses a .env file and returns its key-value pairs without
// touching the process environment.
func LoadDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read env file %s: %w", path, err)
	}
	return vars, nil
}

// LoadAndExportDotEnv parses a .env file and exports each variable that is
// not already set, so shell units and hooks inherit it.
func LoadAndExportDotEnv(path string) (map[string]string, error) {
	vars, err := LoadDotEnv(path)
	if err != nil {
		return nil, err
	}

	for k, v := range vars {
		if _, set := os.LookupEnv(k); !set {
			_ = os.Setenv(k, v) // only fails for invalid key names
		}
	}

	return vars, nil
}

// Lookup reads variables from the process environment, falling back to the
// values of a .env file.
type Lookup struct {
	file map[string]string
}

// NewLookup wraps the variables read from a .env file. fileVars may be nil.
func NewLookup(fileVars map[string]string) Lookup {
	return Lookup{file: fileVars}
}

// Get returns the value of key, or "" when neither source defines it
func (l Lookup) Get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return l.file[key]
}

// Prefixed returns the variables whose name starts with prefix, keyed by the
// rest of the name. Names equal to the prefix are skipped.
func (l Lookup) Prefixed(prefix string) map[string]any {
	result := make(map[string]any)
	add := func(key, value string) {
		if rest, found := strings.CutPrefix(key, prefix); found && rest != "" {
			result[rest] = value
		}
	}

	for k, v := range l.file {
		add(k, v)
	}
	for _, e := range os.Environ() {
		if key, value, ok := strings.Cut(e, "="); ok {
			add(key, value)
		}
	}
	return result
}
