package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethodTags(t *testing.T) {
	doc := `/**
 * @method static int count(string $a, $b = null)
 * @method Foo|null find(int &$id, string ...$names)
 * @method reset()
 * @method void untouched
 */`

	tags := parseMethodTags(doc)
	require.Len(t, tags, 4)

	assert.Equal(t, methodTag{
		Static: true,
		Type:   "int",
		Name:   "count",
		Parameters: []parameterTag{
			{Type: "string", Name: "a"},
			{Name: "b", DefaultValue: "null", HasDefaultValue: true},
		},
	}, tags[0])

	assert.False(t, tags[1].Static)
	assert.Equal(t, "Foo|null", tags[1].Type)
	assert.Equal(t, []parameterTag{
		{Type: "int", ByReference: true, Name: "id"},
		{Type: "string", Variadic: true, Name: "names"},
	}, tags[1].Parameters)

	assert.Equal(t, methodTag{Name: "reset"}, tags[2])
	assert.Equal(t, methodTag{Type: "void", Name: "untouched"}, tags[3])
}

func TestParseParametersSkipsGarbage(t *testing.T) {
	params := parseParameters("int $ok, not a parameter, $last = 'x'")
	require.Len(t, params, 2)
	assert.Equal(t, "ok", params[0].Name)
	assert.Equal(t, "last", params[1].Name)
	assert.Equal(t, "'x'", params[1].DefaultValue)
	assert.Nil(t, parseParameters(""))
}
