package builtin

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, r *Registry, expr string) any {
	t.Helper()
	v, ok, err := r.Call(expr)
	require.True(t, ok, "expected %s to be a known call", expr)
	require.NoError(t, err)
	return v
}

func TestRegistry_Call_NotAFunction(t *testing.T) {
	r := NewRegistry()

	for _, expr := range []string{"userCredentials.email", "$HOME", "unknownFn()", ""} {
		_, ok, err := r.Call(expr)
		assert.False(t, ok, expr)
		assert.NoError(t, err, expr)
	}
}

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry()

	t.Run("uuid", func(t *testing.T) {
		v := call(t, r, "uuid()")
		_, err := uuid.Parse(v.(string))
		assert.NoError(t, err)
	})

	t.Run("random in range", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			v := call(t, r, "random(5, 7)").(int)
			assert.GreaterOrEqual(t, v, 5)
			assert.LessOrEqual(t, v, 7)
		}
	})

	t.Run("random bad args", func(t *testing.T) {
		_, ok, err := r.Call("random(a, 3)")
		assert.True(t, ok)
		assert.Error(t, err)

		_, _, err = r.Call("random(9, 3)")
		assert.Error(t, err)
	})

	t.Run("randomString length", func(t *testing.T) {
		assert.Len(t, call(t, r, "randomString(12)"), 12)
		assert.Len(t, call(t, r, "randomString()"), 16)
	})

	t.Run("randomEmail", func(t *testing.T) {
		v := call(t, r, "randomEmail()").(string)
		assert.Regexp(t, regexp.MustCompile(`^qa\.[a-z0-9]{8}@[a-z]{6}\.test$`), v)

		v = call(t, r, `randomEmail("example.org")`).(string)
		assert.True(t, strings.HasSuffix(v, "@example.org"))
	})

	t.Run("randomPassword has every class", func(t *testing.T) {
		v := call(t, r, "randomPassword(10)").(string)
		assert.Len(t, v, 10)
		assert.Regexp(t, `[A-Z]`, v)
		assert.Regexp(t, `[a-z]`, v)
		assert.Regexp(t, `[0-9]`, v)
		assert.Regexp(t, `[!@#$%^&*\-_]`, v)

		_, _, err := r.Call("randomPassword(3)")
		assert.Error(t, err)
	})

	t.Run("randomName", func(t *testing.T) {
		v := call(t, r, "randomName()").(string)
		assert.Len(t, strings.Fields(v), 2)
	})

	t.Run("encoders", func(t *testing.T) {
		assert.Equal(t, "aGVsbG8=", call(t, r, `base64("hello")`))
		assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", call(t, r, "sha256(hello)"))
		assert.Equal(t, "a+b%26c", call(t, r, `urlEncode("a b&c")`))
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("SUITERUN_BUILTIN_TEST", "value")
		assert.Equal(t, "value", call(t, r, "env(SUITERUN_BUILTIN_TEST)"))
		assert.Equal(t, "fallback", call(t, r, `env(SUITERUN_BUILTIN_UNSET, "fallback")`))

		_, _, err := r.Call("env()")
		assert.Error(t, err)
	})
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("answer", func([]string) (any, error) { return 42, nil })

	assert.Equal(t, 42, call(t, r, "answer()"))
	assert.Contains(t, r.Names(), "answer")
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a", []string{"a"}},
		{"a, b", []string{"a", "b"}},
		{`"x, y", z`, []string{"x, y", "z"}},
		{`'single'`, []string{"single"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseArgs(tt.in), tt.in)
	}
}
