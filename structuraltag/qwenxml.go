package structuraltag

import (
	"encoding/json"
	"sort"

	"github.com/ava12/gramatch/jsonschema"
)

// convertQwenXML lowers a QwenXMLParameter's JSON-Schema object to Qwen's
// `<parameter=name>value</parameter>` function-call argument encoding, one
// optional block per property in schema-declared (sorted) order. Unlike
// convertObject's JSON lowering, no "optional suffix" ordering constraint is
// needed: an XML tag carries its own name, so properties may be omitted
// independently and in any order without the grammar losing track of which
// value belongs to which property.
func (c *converter) convertQwenXML(schema json.RawMessage) (int32, error) {
	var root map[string]any
	if err := json.Unmarshal(schema, &root); err != nil {
		return 0, invalidQwenXMLSchemaError(err.Error())
	}
	props, _ := root["properties"].(map[string]any)

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) == 0 {
		return c.b.EmptyStr(), nil
	}

	parts := make([]int32, len(keys))
	for i, k := range keys {
		propSchema, err := json.Marshal(props[k])
		if err != nil {
			return 0, invalidQwenXMLSchemaError(err.Error())
		}
		sub, err := jsonschema.Parse(propSchema, jsonschema.DefaultConfig())
		if err != nil {
			return 0, err
		}
		ruleID := c.b.Import(sub)

		begin := c.b.ByteString([]byte("<parameter=" + k + ">"))
		value := c.b.RuleRef(ruleID)
		end := c.b.ByteString([]byte("</parameter>"))
		block := c.b.Sequence(begin, value, end)
		parts[i] = c.b.RepeatRange(block, 0, 1)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return c.b.Sequence(parts...), nil
}
