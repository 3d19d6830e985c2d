package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSchema(t *testing.T, schema string, cfg Config) {
	t.Helper()
	g, err := Parse([]byte(schema), cfg)
	require.NoError(t, err)
	require.NotNil(t, g)
	require.Equal(t, "root", g.Rules[g.RootRuleID].Name)
}

func TestParsePrimitives(t *testing.T) {
	for _, tc := range []struct {
		name   string
		schema string
	}{
		{"string", `{"type": "string"}`},
		{"integer", `{"type": "integer"}`},
		{"number", `{"type": "number"}`},
		{"boolean", `{"type": "boolean"}`},
		{"null", `{"type": "null"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			parseSchema(t, tc.schema, DefaultConfig())
		})
	}
}

func TestParseEnumAndConst(t *testing.T) {
	g, err := Parse([]byte(`{"enum": ["a", "b", 1]}`), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, g)

	g, err = Parse([]byte(`{"const": "fixed"}`), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestConvertEnumQuotesStrings(t *testing.T) {
	c := newConverter(nil, DefaultConfig())
	frag := c.convertEnum([]any{"a", float64(1), true, nil})
	assert.Contains(t, frag, `"\"a\""`)
	assert.Contains(t, frag, `"1"`)
	assert.Contains(t, frag, `"true"`)
	assert.Contains(t, frag, `"null"`)
}

func TestObjectRequiredAndOptional(t *testing.T) {
	schema := `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"nickname": {"type": "string"}
		},
		"required": ["name"]
	}`
	g, err := Parse([]byte(schema), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestObjectAllOptionalHasNoLeadingSeparator(t *testing.T) {
	// Regression test: an object with zero required properties must not
	// prepend a stray item separator before its first optional property.
	c := newConverter(map[string]any{}, DefaultConfig())
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
			"b": map[string]any{"type": "string"},
		},
	}
	ref := c.convertObject(schema, "root", 0)
	assert.Equal(t, "root_object_1", ref)
	require.Len(t, c.rules, 1)
	body := c.rules[0]
	// The first optional entry ("a", alphabetically first) must not be
	// preceded by the item separator right after the opening brace.
	assert.NotContains(t, body, `"{" (", "`)
	assert.Contains(t, body, `"\"a\""`)
}

func TestObjectWithAdditionalPropertiesOnly(t *testing.T) {
	c := newConverter(map[string]any{}, DefaultConfig())
	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": true,
	}
	ref := c.convertObject(schema, "root", 0)
	require.Len(t, c.rules, 1)
	assert.Contains(t, c.rules[0], ref)
	assert.Contains(t, c.rules[0], stringBodyRule)
}

func TestArrayPrefixAndItems(t *testing.T) {
	schema := `{
		"type": "array",
		"prefixItems": [{"type": "string"}, {"type": "integer"}],
		"items": {"type": "boolean"}
	}`
	g, err := Parse([]byte(schema), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestArrayUnconstrainedAllowsAnyValue(t *testing.T) {
	g, err := Parse([]byte(`{"type": "array"}`), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestRefResolution(t *testing.T) {
	schema := `{
		"$defs": {"Point": {"type": "object", "properties": {"x": {"type": "integer"}}, "required": ["x"]}},
		"type": "object",
		"properties": {"p": {"$ref": "#/$defs/Point"}},
		"required": ["p"]
	}`
	g, err := Parse([]byte(schema), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestUnsupportedRefFallsBackToAny(t *testing.T) {
	c := newConverter(map[string]any{}, DefaultConfig())
	ref := c.convertRef("#/$defs/Missing")
	assert.Equal(t, basicAnyRule, ref)
}

func TestAnyOfAndOneOf(t *testing.T) {
	for _, kw := range []string{"anyOf", "oneOf"} {
		schema := `{"` + kw + `": [{"type": "string"}, {"type": "integer"}]}`
		g, err := Parse([]byte(schema), DefaultConfig())
		require.NoError(t, err)
		require.NotNil(t, g)
	}
}

func TestStrictModeRejectsTupleTail(t *testing.T) {
	c := newConverter(map[string]any{}, Config{StrictMode: true})
	schema := map[string]any{
		"type":        "array",
		"prefixItems": []any{map[string]any{"type": "string"}},
	}
	ref := c.convertArray(schema, "root", 0)
	require.Len(t, c.rules, 1)
	assert.NotContains(t, c.rules[0], basicAnyRule)
	_ = ref
}

func TestNonStrictModeAllowsTupleTail(t *testing.T) {
	c := newConverter(map[string]any{}, Config{StrictMode: false})
	schema := map[string]any{
		"type":        "array",
		"prefixItems": []any{map[string]any{"type": "string"}},
	}
	ref := c.convertArray(schema, "root", 0)
	require.Len(t, c.rules, 1)
	assert.Contains(t, c.rules[0], basicAnyRule)
	_ = ref
}

func TestBuiltin(t *testing.T) {
	g, err := Builtin()
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "value", g.Rules[g.RootRuleID].Name)
}

func TestInvalidJSONErrors(t *testing.T) {
	_, err := Parse([]byte(`not json`), DefaultConfig())
	require.Error(t, err)
}
