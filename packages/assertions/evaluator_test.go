package assertions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func bodySource(status int, body string) Source {
	doc := gjson.Parse(body)
	return SourceFunc(func(subject string) (any, error) {
		switch subject {
		case "status":
			return status, nil
		case "body":
			return doc.Value(), nil
		case "broken":
			return nil, errors.New("boom")
		}
		return JSONValue(doc, subject), nil
	})
}

func TestEvaluator_Status(t *testing.T) {
	e := NewEvaluator(bodySource(200, `{}`))

	result := e.Evaluate(Expectation{Subject: "status", Op: "equals", Value: 200})
	assert.True(t, result.Passed)
	assert.Equal(t, 200, result.Actual)

	result = e.Evaluate(Expectation{Subject: "status", Op: "notEquals", Value: 404})
	assert.True(t, result.Passed)

	result = e.Evaluate(Expectation{Subject: "status", Op: "equals", Value: "200"})
	assert.True(t, result.Passed, "string and number compare by value")
}

func TestEvaluator_Operators(t *testing.T) {
	src := bodySource(200, `{
		"user": {"name": "John", "age": 30, "email": "john@example.com"},
		"items": [{"id": 1, "price": 5}, {"id": 2, "price": 7}],
		"tags": ["a", "b"],
		"active": true,
		"missing": null
	}`)
	e := NewEvaluator(src)

	tests := []struct {
		name   string
		exp    Expectation
		passed bool
	}{
		{"nested equals", Expectation{"user.name", "equals", "John"}, true},
		{"numeric equals int", Expectation{"user.age", "equals", 30}, true},
		{"numeric mismatch", Expectation{"user.age", "equals", 31}, false},
		{"bracket path", Expectation{"items[1].id", "equals", 2}, true},
		{"greater than", Expectation{"user.age", ">", 18}, true},
		{"less or equal", Expectation{"user.age", "<=", 29}, false},
		{"non numeric compare", Expectation{"user.name", ">", 1}, false},
		{"contains", Expectation{"user.email", "contains", "@example"}, true},
		{"not contains", Expectation{"user.email", "notContains", "@example"}, false},
		{"starts with", Expectation{"user.name", "startsWith", "Jo"}, true},
		{"ends with", Expectation{"user.name", "endsWith", "hn"}, true},
		{"matches", Expectation{"user.email", "matches", "/^[a-z]+@/"}, true},
		{"invalid regex", Expectation{"user.email", "matches", "("}, false},
		{"exists", Expectation{"user", "exists", nil}, true},
		{"not exists", Expectation{"user.phone", "notExists", nil}, true},
		{"null does not exist", Expectation{"missing", "exists", nil}, false},
		{"length array", Expectation{"items", "length", 2}, true},
		{"length string", Expectation{"user.name", "length", "4"}, true},
		{"length of number", Expectation{"user.age", "length", 2}, false},
		{"includes", Expectation{"tags", "includes", "b"}, true},
		{"not includes", Expectation{"tags", "notIncludes", "z"}, true},
		{"in", Expectation{"user.name", "in", []any{"Jane", "John"}}, true},
		{"not in", Expectation{"user.name", "notIn", []any{"John"}}, false},
		{"type object", Expectation{"user", "type", "object"}, true},
		{"type boolean", Expectation{"active", "type", "boolean"}, true},
		{"type array", Expectation{"tags", "type", "array"}, true},
		{"each equals", Expectation{"tags", "each", "a"}, false},
		{"each operator", Expectation{"items", "each", map[string]any{"op": "exists"}}, true},
		{"unknown operator", Expectation{"user", "sortOf", 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.Evaluate(tt.exp)
			assert.Equal(t, tt.passed, result.Passed, result.Message)
		})
	}
}

func TestEvaluator_Each(t *testing.T) {
	e := NewEvaluator(SourceFunc(func(string) (any, error) {
		return []any{float64(5), float64(7)}, nil
	}))

	result := e.Evaluate(Expectation{Subject: "prices", Op: "each", Value: map[string]any{"op": ">", "value": 4}})
	assert.True(t, result.Passed)

	result = e.Evaluate(Expectation{Subject: "prices", Op: "each", Value: map[string]any{"op": ">", "value": 6}})
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "item[0]")
}

func TestEvaluator_SourceError(t *testing.T) {
	result := NewEvaluator(bodySource(200, `{}`)).Evaluate(Expectation{Subject: "broken", Op: "exists"})
	assert.False(t, result.Passed)
	assert.Equal(t, "boom", result.Message)
}

func TestEvaluator_Schema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte(`{
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "integer"}}
	}`), 0644))

	e := NewEvaluator(bodySource(200, `{"user": {"id": 1}, "bad": {"name": "x"}}`), WithBaseDir(dir))

	assert.True(t, e.Evaluate(Expectation{Subject: "user", Op: "schema", Value: "user.json"}).Passed)

	result := e.Evaluate(Expectation{Subject: "bad", Op: "schema", Value: "user.json"})
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "schema validation failed")
}

func TestEvaluator_RowSlices(t *testing.T) {
	rows := []map[string]any{{"email": "a@example.com"}, {"email": "b@example.com"}}
	e := NewEvaluator(SourceFunc(func(string) (any, error) { return rows, nil }))

	assert.True(t, e.Evaluate(Expectation{Subject: "rows", Op: "length", Value: 2}).Passed)
	assert.True(t, e.Evaluate(Expectation{Subject: "rows", Op: "type", Value: "array"}).Passed)
	assert.True(t, e.Evaluate(Expectation{Subject: "rows", Op: "each", Value: map[string]any{"op": "exists"}}).Passed)
}

func TestEvaluateAll_Failures(t *testing.T) {
	results := EvaluateAll(bodySource(500, `{"ok": false}`), []Expectation{
		{Subject: "status", Op: "equals", Value: 200},
		{Subject: "ok", Op: "equals", Value: false},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Passed)
	assert.True(t, results[1].Passed)
	assert.Equal(t, "status equals: expected 200, got 500", Failures(results))
	assert.Empty(t, Failures(results[1:]))
}

func TestParse(t *testing.T) {
	t.Run("list form", func(t *testing.T) {
		exps, err := Parse([]any{
			map[string]any{"subject": "status", "value": 201},
			map[string]any{"subject": "body.id", "op": "exists"},
		})
		require.NoError(t, err)
		assert.Equal(t, []Expectation{
			{Subject: "status", Op: "equals", Value: 201},
			{Subject: "body.id", Op: "exists"},
		}, exps)
	})

	t.Run("map shorthand", func(t *testing.T) {
		exps, err := Parse(map[string]any{"status": 200, "body.ok": true})
		require.NoError(t, err)
		assert.Equal(t, []Expectation{
			{Subject: "body.ok", Op: "equals", Value: true},
			{Subject: "status", Op: "equals", Value: 200},
		}, exps)
	})

	t.Run("nil", func(t *testing.T) {
		exps, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, exps)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Parse([]any{"status"})
		assert.Error(t, err)

		_, err = Parse([]any{map[string]any{"op": "exists"}})
		assert.Error(t, err)

		_, err = Parse("status")
		assert.Error(t, err)
	})
}

func TestExpectation_String(t *testing.T) {
	assert.Equal(t, "status equals 200", Expectation{Subject: "status", Op: "equals", Value: 200}.String())
	assert.Equal(t, "body.id exists", Expectation{Subject: "body.id", Op: "exists"}.String())
}
