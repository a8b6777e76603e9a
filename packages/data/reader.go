package data

import (
	"context"
	"errors"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
)

// ErrNoMatch is returned when a selector matches nothing in the source
var ErrNoMatch = errors.New("selector matched nothing")

// Reader loads the value behind one data source. Selector meaning depends on
// the kind: a sheet name, a gjson path, an env key or a SQL query.
type Reader interface {
	Read(ctx context.Context, path, selector string) (any, error)
}

// ReaderFunc adapts a function to the Reader interface
type ReaderFunc func(ctx context.Context, path, selector string) (any, error)

func (f ReaderFunc) Read(ctx context.Context, path, selector string) (any, error) {
	return f(ctx, path, selector)
}

// Readers maps a kind to its reader
type Readers map[registry.Kind]Reader

// DefaultReaders returns a reader for every built-in kind
func DefaultReaders() Readers {
	return Readers{
		registry.KindExcel: NewExcelReader(),
		registry.KindJSON:  ReaderFunc(ReadJSON),
		registry.KindYAML:  ReaderFunc(ReadYAML),
		registry.KindEnv:   ReaderFunc(ReadEnv),
		registry.KindSQL:   ReaderFunc(ReadSQL),
	}
}
