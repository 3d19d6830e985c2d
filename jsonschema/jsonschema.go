package jsonschema

import (
	"encoding/json"

	"github.com/ava12/gramatch/ebnf"
	"github.com/ava12/gramatch/ir"
)

// Parse lowers a JSON Schema document (schema) to an ir.Grammar, per
// spec.md §4.3: decode with encoding/json into a generic map, emit EBNF
// rule text (ToEBNF), then defer entirely to ebnf.Parse so this package
// never builds an ir.Grammar directly.
func Parse(schema []byte, cfg Config) (*ir.Grammar, error) {
	var root map[string]any
	if err := json.Unmarshal(schema, &root); err != nil {
		return nil, invalidJSONError(err.Error())
	}
	text := ToEBNF(root, cfg)
	return ebnf.Parse("jsonschema", []byte(text))
}
