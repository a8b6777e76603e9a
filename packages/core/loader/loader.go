package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/abdul-hamid-achik/suiterun/packages/data"
	"github.com/abdul-hamid-achik/suiterun/packages/logger"
)

// DefaultsProvider produces the baseline data every load starts from
type DefaultsProvider interface {
	PrepareDefaults(ctx context.Context) (map[string]any, error)
}

type Loader struct {
	reg      *registry.Registry
	defaults DefaultsProvider
	readers  data.Readers
	baseDir  string
	log      logger.Logger
}

type Option func(*Loader)

// WithReaders replaces the per-kind readers
func WithReaders(r data.Readers) Option {
	return func(l *Loader) {
		l.readers = r
	}
}

// WithBaseDir resolves relative source and schema paths against dir
func WithBaseDir(dir string) Option {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

func New(reg *registry.Registry, defaults DefaultsProvider, opts ...Option) *Loader {
	l := &Loader{
		reg:      reg,
		defaults: defaults,
		readers:  data.DefaultReaders(),
		log:      logger.Nop{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the baseline data plus one entry per requested data source
// registered in the registry. Unknown names are skipped with a warning.
func (l *Loader) Load(ctx context.Context, names []string) (registry.TestData, error) {
	baseline, err := l.defaults.PrepareDefaults(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing default data: %w", err)
	}

	td := make(registry.TestData, len(baseline)+len(names))
	for k, v := range baseline {
		td[k] = v
	}

	for _, name := range names {
		src, ok := l.reg.Source(name)
		if !ok {
			l.log.Log(fmt.Sprintf("Data source not found: %s", name), logger.LevelWarn)
			continue
		}
		td[name] = l.loadSource(ctx, src)
	}

	return td, nil
}

func (l *Loader) loadSource(ctx context.Context, src *registry.DataSource) any {
	reader, ok := l.readers[src.Kind]
	if !ok {
		l.log.Log(fmt.Sprintf("Unsupported data source kind %q for %s, using fallback data", src.Kind, src.Name), logger.LevelWarn)
		return fallback(src)
	}

	location := src.Path
	if src.Kind.FileBased() {
		location = l.resolvePath(src.Path)
		if _, err := os.Stat(location); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				l.log.Log(fmt.Sprintf("Data file not found: %s, using fallback data", location), logger.LevelWarn)
			} else {
				l.log.Log(fmt.Sprintf("Error loading data for %s: %v", src.Name, err), logger.LevelError)
			}
			return fallback(src)
		}
	}

	value, err := l.read(ctx, reader, location, src.Sheet)
	if err != nil {
		l.log.Log(fmt.Sprintf("Error loading data for %s: %v", src.Name, err), logger.LevelError)
		return fallback(src)
	}

	if src.Schema != "" {
		if err := data.ValidateSchema(l.resolvePath(src.Schema), value); err != nil {
			l.log.Log(fmt.Sprintf("Data for %s does not match %s: %v", src.Name, src.Schema, err), logger.LevelError)
			return fallback(src)
		}
	}

	return value
}

// read calls the reader and turns a panic into an error
func (l *Loader) read(ctx context.Context, reader data.Reader, location, selector string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reader panicked: %v", r)
		}
	}()
	return reader.Read(ctx, location, selector)
}

func (l *Loader) resolvePath(path string) string {
	if filepath.IsAbs(path) || l.baseDir == "" {
		return path
	}
	return filepath.Join(l.baseDir, path)
}

// fallback returns a copy of the declared fallback so one test cannot
// modify what the next one receives
func fallback(src *registry.DataSource) any {
	return clone(src.Fallback)
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = clone(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = clone(item)
		}
		return out
	default:
		return v
	}
}
