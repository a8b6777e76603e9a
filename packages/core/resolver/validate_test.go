package resolver

import (
	"testing"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("clean registry", func(t *testing.T) {
		reg, err := registry.New([]registry.Entry{
			{Name: "a", Unit: "shell", DataSources: []string{"users"}},
			{Name: "b", Unit: "http", Depends: []string{"a"}},
		}, map[string]registry.DataSource{"users": {Kind: registry.KindJSON, Path: "u.json"}})
		require.NoError(t, err)

		problems := Validate(reg, func(string) bool { return true })
		assert.Empty(t, problems)
	})

	t.Run("reports each defect", func(t *testing.T) {
		reg, err := registry.New([]registry.Entry{
			{Name: "a", Unit: "browser"},
			{Name: "b", Depends: []string{"nope"}, DataSources: []string{"ghost"}, Unit: "shell"},
			{Name: "c", Unit: "shell", Depends: []string{"c"}},
			{Name: "d"},
		}, nil)
		require.NoError(t, err)

		problems := Validate(reg, func(u string) bool { return u == "shell" })

		var messages []string
		for _, p := range problems {
			messages = append(messages, p.Error())
		}
		assert.Contains(t, messages, `a: unit "browser" is not registered`)
		assert.Contains(t, messages, `b: depends on unknown test "nope"`)
		assert.Contains(t, messages, `b: uses unknown data source "ghost"`)
		assert.Contains(t, messages, "c: circular dependency: c -> c")
		assert.Contains(t, messages, "d: no unit declared")
	})
}
