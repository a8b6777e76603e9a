package units

import (
	"context"
	"errors"
	"testing"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("noop", func(map[string]any) (Unit, error) {
		return UnitFunc(func(context.Context, registry.TestData) (Result, error) {
			return Passed("ok"), nil
		}), nil
	})
	r.Register("broken", func(map[string]any) (Unit, error) {
		return nil, errors.New("bad params")
	})

	assert.True(t, r.Has("noop"))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, []string{"broken", "noop"}, r.Names())

	u, err := r.New("noop", nil)
	require.NoError(t, err)
	res, err := u.Run(context.Background(), registry.TestData{})
	require.NoError(t, err)
	assert.True(t, res.Success)

	_, err = r.New("missing", nil)
	assert.True(t, errors.Is(err, ErrUnknownUnit))

	_, err = r.New("broken", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad params")
}

func TestRegisterBuiltins(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)
	assert.Equal(t, []string{HTTPUnit, SQLUnit, ShellUnit}, r.Names())
}

func TestResultHelpers(t *testing.T) {
	assert.Equal(t, Result{Success: true, Message: "done"}, Passed("done"))
	assert.Equal(t, Result{Error: "got 3"}, Failed("got %d", 3))
}

func TestParams(t *testing.T) {
	p := params{
		"name":    "checkout",
		"count":   float64(3),
		"text":    "7",
		"bad":     "x",
		"timeout": "1500ms",
		"ms":      250,
		"headers": map[string]any{"X-Id": 1},
	}

	assert.Equal(t, "checkout", p.str("name"))
	assert.Equal(t, "3", p.str("count"))
	assert.Empty(t, p.str("missing"))

	_, err := p.required("missing")
	assert.Error(t, err)

	n, err := p.integer("count", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = p.integer("text", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	n, err = p.integer("missing", 9)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	_, err = p.integer("bad", 0)
	assert.Error(t, err)

	d, err := p.duration("timeout")
	require.NoError(t, err)
	assert.Equal(t, "1.5s", d.String())
	d, err = p.duration("ms")
	require.NoError(t, err)
	assert.Equal(t, "250ms", d.String())

	h, err := p.stringMap("headers")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X-Id": "1"}, h)
	_, err = p.stringMap("name")
	assert.Error(t, err)
}

func TestParams_Resolve(t *testing.T) {
	p := params{
		"url":   "https://api.test/users/{{users.0.id}}",
		"body":  map[string]any{"email": "{{userCredentials.email}}"},
		"count": 2,
	}
	data := registry.TestData{
		registry.CredentialsKey: map[string]any{"email": "qa@example.test"},
		"users":                 []any{map[string]any{"id": float64(42)}},
	}

	resolved, unresolved := p.resolve(data)
	assert.Empty(t, unresolved)
	assert.Equal(t, "https://api.test/users/42", resolved["url"])
	assert.Equal(t, map[string]any{"email": "qa@example.test"}, resolved["body"])
	assert.Equal(t, 2, resolved["count"])

	_, unresolved = params{"url": "{{nope}}"}.resolve(data)
	assert.Len(t, unresolved, 1)
}
