package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/abdul-hamid-achik/suiterun/packages/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelReader_Read(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Users": {
			{"email", " role ", ""},
			{"a@example.com", "admin", "ignored"},
			{},
			{"b@example.com", " viewer "},
		},
	})

	got, err := NewExcelReader().Read(context.Background(), path, "Users")
	require.NoError(t, err)

	assert.Equal(t, []map[string]any{
		{"email": "a@example.com", "role": "admin"},
		{"email": "b@example.com", "role": "viewer"},
	}, got)
}

func TestExcelReader_DefaultSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Products": {{"sku"}, {"A-1"}},
	})

	got, err := NewExcelReader().Read(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"sku": "A-1"}}, got)
}

func TestExcelReader_Errors(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{"Users": {{"email"}}})

	t.Run("missing sheet", func(t *testing.T) {
		_, err := NewExcelReader().Read(context.Background(), path, "Nope")
		assert.Error(t, err)
	})

	t.Run("not a workbook", func(t *testing.T) {
		bad := writeFile(t, "bad.xlsx", "not a zip")
		_, err := NewExcelReader().Read(context.Background(), bad, "")
		assert.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		got, err := NewExcelReader().Read(context.Background(), path, "Users")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestReadJSON(t *testing.T) {
	path := writeFile(t, "users.json", `{"users": [{"name": "alice", "tags": ["a", "b"]}], "count": 1}`)
	ctx := context.Background()

	tests := []struct {
		name     string
		selector string
		want     any
	}{
		{"whole document", "", map[string]any{
			"users": []any{map[string]any{"name": "alice", "tags": []any{"a", "b"}}},
			"count": float64(1),
		}},
		{"dot path", "users.0.name", "alice"},
		{"bracket path", "users[0].tags[1]", "b"},
		{"number", "count", float64(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadJSON(ctx, path, tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("no match", func(t *testing.T) {
		_, err := ReadJSON(ctx, path, "users.5")
		assert.True(t, errors.Is(err, ErrNoMatch))
	})

	t.Run("malformed", func(t *testing.T) {
		bad := writeFile(t, "bad.json", `{"users": [`)
		_, err := ReadJSON(ctx, bad, "")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadJSON(ctx, filepath.Join(t.TempDir(), "nope.json"), "")
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestReadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
checkout:
  currency: EUR
  items:
    - sku: A-1
      qty: 2
`)
	ctx := context.Background()

	got, err := ReadYAML(ctx, path, "checkout.items.0.qty")
	require.NoError(t, err)
	assert.Equal(t, float64(2), got)

	got, err = ReadYAML(ctx, path, "")
	require.NoError(t, err)
	doc, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, doc, "checkout")

	bad := writeFile(t, "bad.yaml", "checkout: [unclosed")
	_, err = ReadYAML(ctx, bad, "")
	assert.Error(t, err)
}

func TestReadEnv(t *testing.T) {
	path := writeFile(t, "staging.env", "BASE_URL=https://staging.example.com\nTOKEN=abc\n")
	ctx := context.Background()

	got, err := ReadEnv(ctx, path, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"BASE_URL": "https://staging.example.com", "TOKEN": "abc"}, got)

	got, err = ReadEnv(ctx, path, "TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = ReadEnv(ctx, path, "MISSING")
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestReadSQL(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixtures.db")
	ctx := context.Background()

	client, err := db.Open(ctx, "sqlite://"+dbPath)
	require.NoError(t, err)
	_, err = client.Exec(ctx, "CREATE TABLE users (email TEXT); INSERT INTO users VALUES ('a@example.com')")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	got, err := ReadSQL(ctx, "sqlite://"+dbPath, "SELECT email FROM users")
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"email": "a@example.com"}}, got)

	_, err = ReadSQL(ctx, "sqlite://"+dbPath, "")
	assert.Error(t, err)

	_, err = ReadSQL(ctx, "postgres://nowhere/db", "SELECT 1")
	assert.Error(t, err)
}

func TestValidateSchema(t *testing.T) {
	schema := writeFile(t, "user.schema.json", `{
		"type": "object",
		"required": ["email"],
		"properties": {"email": {"type": "string"}}
	}`)

	assert.NoError(t, ValidateSchema(schema, map[string]any{"email": "a@example.com"}))

	err := ValidateSchema(schema, map[string]any{"name": "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")

	err = ValidateSchema(filepath.Join(t.TempDir(), "missing.json"), map[string]any{})
	assert.Error(t, err)
}

func TestDefaultReaders(t *testing.T) {
	readers := DefaultReaders()
	for _, kind := range []registry.Kind{registry.KindExcel, registry.KindJSON, registry.KindYAML, registry.KindEnv, registry.KindSQL} {
		assert.Contains(t, readers, kind)
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "0.id", NormalizePath("[0].id"))
	assert.Equal(t, "items.0.tags.1", NormalizePath("items[0].tags[1]"))
	assert.Equal(t, "user.name", NormalizePath("user.name"))
}
