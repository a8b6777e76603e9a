// Package defaults prepares the baseline test data every test receives,
// starting with the user credentials.
package defaults

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/suiterun/packages/builtin"
	"github.com/abdul-hamid-achik/suiterun/packages/core/env"
	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
)

// Environment variables that pin the generated credentials
const (
	EnvUserEmail    = "SUITERUN_USER_EMAIL"
	EnvUserPassword = "SUITERUN_USER_PASSWORD"
	EnvUserName     = "SUITERUN_USER_NAME"

	// DefaultEnvPrefix exposes SUITERUN_DATA_<key> variables as data keys
	DefaultEnvPrefix = "SUITERUN_DATA_"
)

type Provider struct {
	templates map[string]any
	envFile   string
	envPrefix string
	funcs     *builtin.Registry
}

type Option func(*Provider)

// WithTemplates adds extra default keys. String values may use {{...}}
// templates, including references to userCredentials.
func WithTemplates(t map[string]any) Option {
	return func(p *Provider) {
		p.templates = t
	}
}

// WithEnvFile reads credential overrides from a .env file. Variables already
// present in the process environment take precedence.
func WithEnvFile(path string) Option {
	return func(p *Provider) {
		p.envFile = path
	}
}

// WithEnvPrefix changes the prefix of environment variables copied into the data
func WithEnvPrefix(prefix string) Option {
	return func(p *Provider) {
		p.envPrefix = prefix
	}
}

func New(opts ...Option) *Provider {
	p := &Provider{
		envPrefix: DefaultEnvPrefix,
		funcs:     builtin.NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PrepareDefaults builds a fresh baseline mapping. Every call generates new
// credentials unless they are pinned through the environment.
func (p *Provider) PrepareDefaults(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var fileVars map[string]string
	if p.envFile != "" {
		vars, err := env.LoadDotEnv(p.envFile)
		if err != nil {
			return nil, fmt.Errorf("loading default data: %w", err)
		}
		fileVars = vars
	}
	lookup := env.NewLookup(fileVars)

	creds, err := p.credentials(lookup)
	if err != nil {
		return nil, fmt.Errorf("generating credentials: %w", err)
	}

	data := lookup.Prefixed(p.envPrefix)
	data[registry.CredentialsKey] = creds

	if len(p.templates) == 0 {
		return data, nil
	}

	resolver := env.NewResolver()
	resolver.SetVariables(data)

	var unresolved []string
	resolver.SetWarnFunc(func(format string, args ...any) {
		unresolved = append(unresolved, fmt.Sprintf(format, args...))
	})

	for key, tmpl := range p.templates {
		data[key] = resolver.ResolveValue(tmpl)
	}
	if len(unresolved) > 0 {
		return nil, fmt.Errorf("default data templates: %s", strings.Join(unresolved, "; "))
	}

	return data, nil
}

func (p *Provider) credentials(lookup env.Lookup) (map[string]any, error) {
	creds := map[string]any{}

	fields := []struct {
		key, envVar, generator string
	}{
		{"email", EnvUserEmail, "randomEmail()"},
		{"password", EnvUserPassword, "randomPassword(16)"},
		{"name", EnvUserName, "randomName()"},
	}

	for _, f := range fields {
		if v := lookup.Get(f.envVar); v != "" {
			creds[f.key] = v
			continue
		}
		v, _, err := p.funcs.Call(f.generator)
		if err != nil {
			return nil, err
		}
		creds[f.key] = v
	}

	return creds, nil
}
