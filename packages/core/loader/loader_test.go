package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/abdul-hamid-achik/suiterun/packages/data"
	"github.com/abdul-hamid-achik/suiterun/packages/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDefaults struct {
	values map[string]any
	err    error
	calls  int
}

func (s *staticDefaults) PrepareDefaults(context.Context) (map[string]any, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func baseline() *staticDefaults {
	return &staticDefaults{values: map[string]any{
		registry.CredentialsKey: map[string]any{"email": "qa@example.test", "password": "pw"},
	}}
}

func newRegistry(t *testing.T, sources map[string]registry.DataSource) *registry.Registry {
	t.Helper()
	reg, err := registry.New(nil, sources)
	require.NoError(t, err)
	return reg
}

func TestLoad_Baseline(t *testing.T) {
	l := New(newRegistry(t, nil), baseline())

	td, err := l.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{registry.CredentialsKey}, td.Keys())
}

func TestLoad_BaselineFailure(t *testing.T) {
	defaults := &staticDefaults{err: errors.New("vault unavailable")}
	l := New(newRegistry(t, nil), defaults)

	_, err := l.Load(context.Background(), []string{"users"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault unavailable")
}

func TestLoad_Sources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(`{"users": [{"email": "a@example.com"}]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"users": [`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("BASE_URL=http://localhost\n"), 0644))

	reg := newRegistry(t, map[string]registry.DataSource{
		"users":   {Kind: registry.KindJSON, Path: "users.json", Sheet: "users", Fallback: "unused"},
		"broken":  {Kind: registry.KindJSON, Path: "broken.json", Fallback: []any{"fallback"}},
		"missing": {Kind: registry.KindJSON, Path: "nope.json", Fallback: map[string]any{"id": 1}},
		"sheet":   {Kind: registry.KindExcel, Path: "does-not-exist.xlsx", Sheet: "Users", Fallback: []any{map[string]any{"email": "f@example.com"}}},
		"app":     {Kind: registry.KindEnv, Path: "app.env", Sheet: "BASE_URL"},
		"remote":  {Kind: "graphql", Path: "http://example.com", Fallback: "remote fallback"},
	})

	log := &logger.Memory{}
	l := New(reg, baseline(), WithBaseDir(dir), WithLogger(log))

	td, err := l.Load(context.Background(), []string{"users", "broken", "missing", "sheet", "app", "remote", "ghost"})
	require.NoError(t, err)

	assert.Equal(t, []any{map[string]any{"email": "a@example.com"}}, td["users"])
	assert.Equal(t, []any{"fallback"}, td["broken"])
	assert.Equal(t, map[string]any{"id": 1}, td["missing"])
	assert.Equal(t, []any{map[string]any{"email": "f@example.com"}}, td["sheet"])
	assert.Equal(t, "http://localhost", td["app"])
	assert.Equal(t, "remote fallback", td["remote"])

	assert.NotContains(t, td, "ghost")
	assert.Contains(t, td, registry.CredentialsKey)
	assert.Len(t, td, 7)

	assert.Equal(t, 1, log.Count(logger.LevelError), "malformed content")
	assert.Equal(t, 4, log.Count(logger.LevelWarn), "two missing files, unknown kind, unknown source")
}

func TestLoad_MissingExcelFallsBack(t *testing.T) {
	reg := newRegistry(t, map[string]registry.DataSource{
		"accounts": {Kind: registry.KindExcel, Path: filepath.Join(t.TempDir(), "accounts.xlsx"), Fallback: "fallback"},
	})
	log := &logger.Memory{}

	td, err := New(reg, baseline(), WithLogger(log)).Load(context.Background(), []string{"accounts"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", td["accounts"])
	require.Len(t, log.Messages(logger.LevelWarn), 1)
	assert.Contains(t, log.Messages(logger.LevelWarn)[0], "using fallback data")
}

func TestLoad_Schema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte(`{"email": 42}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.schema.json"), []byte(`{
		"type": "object",
		"properties": {"email": {"type": "string"}}
	}`), 0644))

	reg := newRegistry(t, map[string]registry.DataSource{
		"user": {Kind: registry.KindJSON, Path: "user.json", Schema: "user.schema.json", Fallback: map[string]any{"email": "ok@example.com"}},
	})
	log := &logger.Memory{}

	td, err := New(reg, baseline(), WithBaseDir(dir), WithLogger(log)).Load(context.Background(), []string{"user"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": "ok@example.com"}, td["user"])
	assert.Equal(t, 1, log.Count(logger.LevelError))
}

func TestLoad_ReaderPanics(t *testing.T) {
	reg := newRegistry(t, map[string]registry.DataSource{
		"db": {Kind: registry.KindSQL, Path: "sqlite::memory:", Sheet: "SELECT 1", Fallback: "fallback"},
	})
	readers := data.Readers{
		registry.KindSQL: data.ReaderFunc(func(context.Context, string, string) (any, error) {
			panic("driver exploded")
		}),
	}
	log := &logger.Memory{}

	td, err := New(reg, baseline(), WithReaders(readers), WithLogger(log)).Load(context.Background(), []string{"db"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", td["db"])
	assert.Equal(t, 1, log.Count(logger.LevelError))
}

func TestLoad_FreshDataPerCall(t *testing.T) {
	reg := newRegistry(t, map[string]registry.DataSource{
		"cart": {Kind: registry.KindJSON, Path: "missing.json", Fallback: map[string]any{"items": []any{"a"}}},
	})
	defaults := baseline()
	l := New(reg, defaults, WithBaseDir(t.TempDir()))

	first, err := l.Load(context.Background(), []string{"cart"})
	require.NoError(t, err)
	first["cart"].(map[string]any)["items"] = []any{"mutated"}
	first["extra"] = true

	second, err := l.Load(context.Background(), []string{"cart"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"items": []any{"a"}}, second["cart"])
	assert.NotContains(t, second, "extra")
	assert.Equal(t, 2, defaults.calls)
}
