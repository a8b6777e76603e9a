package units

import (
	"github.com/abdul-hamid-achik/suiterun/packages/auth/oauth2"
	"github.com/abdul-hamid-achik/suiterun/packages/http"
)

// Names of the built-in units
const (
	ShellUnit = "shell"
	HTTPUnit  = "http"
	SQLUnit   = "sql"
)

type builtinOptions struct {
	baseDir string
	client  *http.Client
	tokens  *oauth2.TokenCache
}

type BuiltinOption func(*builtinOptions)

// WithBaseDir anchors relative paths used by units (working directories,
// sqlite files, schema files)
func WithBaseDir(dir string) BuiltinOption {
	return func(o *builtinOptions) {
		o.baseDir = dir
	}
}

func WithHTTPClient(c *http.Client) BuiltinOption {
	return func(o *builtinOptions) {
		o.client = c
	}
}

// RegisterBuiltins registers the shell, http and sql units
func RegisterBuiltins(r *Registry, opts ...BuiltinOption) {
	o := &builtinOptions{
		tokens: oauth2.NewTokenCache(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = http.NewClient()
	}

	r.Register(ShellUnit, NewShellFactory(o.baseDir))
	r.Register(HTTPUnit, NewHTTPFactory(o.client, o.tokens, o.baseDir))
	r.Register(SQLUnit, NewSQLFactory(o.baseDir))
}
