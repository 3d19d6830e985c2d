package jsonschema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// converter walks a JSON Schema document emitting one EBNF rule per named
// sub-schema it visits, grounded on spec.md §4.3's "lower to EBNF text,
// then defer to the EBNF parser" design.
type converter struct {
	cfg   Config
	root  map[string]any
	rules []string // fully rendered "name ::= (...)\n" lines, in emission order
	seen  map[string]string
	n     int
}

func newConverter(root map[string]any, cfg Config) *converter {
	return &converter{cfg: cfg.resolve(), root: root, seen: map[string]string{}}
}

func (c *converter) freshName(hint string) string {
	c.n++
	if hint == "" {
		hint = "schema"
	}
	return fmt.Sprintf("%s_%d", sanitizeName(hint), c.n)
}

func sanitizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "schema"
	}
	return sb.String()
}

func (c *converter) emit(name, body string) {
	c.rules = append(c.rules, name+" ::= ("+body+")\n")
}

// ToEBNF lowers root's top-level schema into complete EBNF grammar text,
// whose first ("root") rule is the entry point ebnf.Parse treats as the
// grammar's root (per ebnf's own "first declared rule" convention).
func ToEBNF(root map[string]any, cfg Config) string {
	c := newConverter(root, cfg)
	bodyRef := c.convert(root, "root", 0)
	// Ensure "root" is literally the first emitted rule, even if convert
	// resolved straight to a reusable cached rule (e.g. a trivial $ref).
	header := "root ::= (" + bodyRef + ")\n"
	return header + basicAnyEBNF + strings.Join(c.rules, "")
}

// convert returns an expression fragment (a rule reference, or an inline
// literal/group) usable directly inside a caller's rule body.
func (c *converter) convert(schema any, hint string, depth int) string {
	m, ok := schema.(map[string]any)
	if !ok {
		return basicAnyRule
	}
	if ref, ok := m["$ref"].(string); ok {
		return c.convertRef(ref)
	}
	if len(m) == 0 {
		return basicAnyRule
	}

	if enumVals, ok := m["enum"].([]any); ok {
		return c.convertEnum(enumVals)
	}
	if constVal, ok := m["const"]; ok {
		return quoteLit(jsonLiteral(constVal))
	}
	if anyOf, ok := m["anyOf"].([]any); ok {
		return c.convertUnion(anyOf, hint, depth)
	}
	if oneOf, ok := m["oneOf"].([]any); ok {
		return c.convertUnion(oneOf, hint, depth)
	}

	switch t, _ := m["type"].(string); t {
	case "string":
		return quoteLit("\"") + " " + stringBodyRule + " " + quoteLit("\"")
	case "integer":
		return integerRule
	case "number":
		return numberRule
	case "boolean":
		return "(" + quoteLit("true") + " | " + quoteLit("false") + ")"
	case "null":
		return quoteLit("null")
	case "array":
		return c.convertArray(m, hint, depth)
	case "object":
		return c.convertObject(m, hint, depth)
	default:
		return basicAnyRule
	}
}

func (c *converter) convertRef(ref string) string {
	// Only same-document refs ("#/$defs/Name" or "#/definitions/Name") are
	// supported, per spec.md §4.3.
	const defsPrefix = "#/$defs/"
	const definitionsPrefix = "#/definitions/"
	var name string
	var bucket map[string]any
	switch {
	case strings.HasPrefix(ref, defsPrefix):
		name = ref[len(defsPrefix):]
		bucket, _ = c.root["$defs"].(map[string]any)
	case strings.HasPrefix(ref, definitionsPrefix):
		name = ref[len(definitionsPrefix):]
		bucket, _ = c.root["definitions"].(map[string]any)
	default:
		return basicAnyRule
	}
	if cached, ok := c.seen[ref]; ok {
		return cached
	}
	sub, ok := bucket[name]
	if !ok {
		return basicAnyRule
	}
	ruleName := c.freshName(name)
	c.seen[ref] = ruleName
	body := c.convert(sub, name, 0)
	c.emit(ruleName, body)
	return ruleName
}

func (c *converter) convertEnum(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = quoteLit(jsonLiteral(v))
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func (c *converter) convertUnion(alts []any, hint string, depth int) string {
	parts := make([]string, len(alts))
	for i, alt := range alts {
		parts[i] = c.convert(alt, fmt.Sprintf("%s_alt%d", hint, i), depth)
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func (c *converter) convertArray(m map[string]any, hint string, depth int) string {
	ruleName := c.freshName(hint + "_array")
	nl := c.newlineLit(depth + 1)
	nlClose := c.newlineLit(depth)
	sep := quoteLit(c.cfg.ItemSeparator)

	var prefix []any
	if p, ok := m["prefixItems"].([]any); ok {
		prefix = p
	}
	_, hasItems := m["items"]
	var itemRef string
	switch {
	case hasItems:
		itemRef = c.convert(m["items"], hint+"_item", depth+1)
	case len(prefix) == 0:
		// No prefixItems and no items: an unconstrained array of any
		// JSON values, the array analogue of "unsupported keywords pass
		// through as basic_any" (spec.md §4.3).
		itemRef = basicAnyRule
	case !c.cfg.StrictMode:
		// Tuple form with a permissive tail: extra trailing elements of
		// any shape are allowed once unevaluatedItems=false isn't enforced.
		itemRef = basicAnyRule
	}
	// A strict-mode tuple with no "items" keyword closes after prefixItems.

	var parts []string
	for i, p := range prefix {
		ref := c.convert(p, fmt.Sprintf("%s_tuple%d", hint, i), depth+1)
		if i == 0 {
			parts = append(parts, nl+" "+ref)
		} else {
			parts = append(parts, sep+" "+nl+" "+ref)
		}
	}
	if itemRef != "" {
		if len(parts) == 0 {
			parts = append(parts, nl+" "+itemRef)
			parts = append(parts, "("+sep+" "+nl+" "+itemRef+")*")
		} else {
			parts = append(parts, "("+sep+" "+nl+" "+itemRef+")*")
		}
	}

	body := quoteLit("[")
	if len(parts) > 0 {
		body += " (" + strings.Join(parts, " ") + ")?"
	}
	body += " " + nlClose + " " + quoteLit("]")
	c.emit(ruleName, body)
	return ruleName
}

func (c *converter) convertObject(m map[string]any, hint string, depth int) string {
	ruleName := c.freshName(hint + "_object")

	props, _ := m["properties"].(map[string]any)
	var requiredSet = map[string]bool{}
	if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				requiredSet[s] = true
			}
		}
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	// Required properties first (grammar-imposed fixed order), then
	// optional ones — see DESIGN.md: this repo's jsonschema lowering
	// requires properties in a fixed order and only supports "optional
	// suffix" skipping (once one optional property is omitted, every
	// later one in the grammar's order must be omitted too), not
	// arbitrary independent omission of any subset.
	var ordered []string
	for _, k := range keys {
		if requiredSet[k] {
			ordered = append(ordered, k)
		}
	}
	for _, k := range keys {
		if !requiredSet[k] {
			ordered = append(ordered, k)
		}
	}

	nl := c.newlineLit(depth + 1)
	nlClose := c.newlineLit(depth)
	sep := quoteLit(c.cfg.ItemSeparator)
	kv := quoteLit(c.cfg.KVSeparator)

	pair := func(k string) string {
		ref := c.convert(props[k], hint+"_"+k, depth+1)
		return quoteLit(jsonLiteral(k)) + " " + kv + " " + ref
	}

	numRequired := 0
	for _, k := range ordered {
		if requiredSet[k] {
			numRequired++
		}
	}

	// entries holds one text fragment per member slot, required ones
	// first; allowsAdditionalProperties appends one more (optional,
	// repeatable) slot for arbitrary trailing properties.
	entries := make([]string, len(ordered))
	for i, k := range ordered {
		entries[i] = pair(k)
	}
	if c.allowsAdditionalProperties(m) {
		extraKey := quoteLit("\"") + " " + stringBodyRule + " " + quoteLit("\"")
		extraPair := extraKey + " " + kv + " " + basicAnyRule
		entries = append(entries, extraPair+" ("+sep+" "+nl+" "+extraPair+")*")
	}

	// Build the member list right-to-left: every required slot is
	// mandatory in the chain (entries[0:numRequired]); everything after is
	// wrapped as an optional suffix, exactly the way normalize.lowerRepeat
	// right-nests a bounded quantifier's tail. The very first slot overall
	// (index 0, whichever kind it is) carries only the indent/newline with
	// no separator; every later slot is preceded by the item separator.
	lead := func(i int) string {
		if i == 0 {
			return nl
		}
		return sep + " " + nl
	}

	tail := ""
	for i := len(entries) - 1; i >= numRequired; i-- {
		piece := lead(i) + " " + entries[i]
		if tail != "" {
			piece += " " + tail
		}
		tail = "(" + piece + ")?"
	}

	var head []string
	for i := 0; i < numRequired; i++ {
		head = append(head, lead(i)+" "+entries[i])
	}

	members := strings.TrimSpace(strings.Join(head, " ") + " " + tail)

	body := quoteLit("{")
	if members != "" {
		body += " (" + members + ")? " + nlClose
	} else {
		body += " " + nlClose
	}
	body += " " + quoteLit("}")

	c.emit(ruleName, body)
	return ruleName
}

func (c *converter) allowsAdditionalProperties(m map[string]any) bool {
	if ap, ok := m["additionalProperties"]; ok {
		if b, ok := ap.(bool); ok {
			return b
		}
		return true // a schema value: permissive, basic_any is a superset
	}
	return !c.cfg.StrictMode
}

func (c *converter) newlineLit(depth int) string {
	s := c.cfg.newline(depth)
	if s == "" {
		return ""
	}
	return quoteLit(s)
}

// jsonLiteral renders v as the exact JSON text it must appear as in
// generated output (quotes and escaping included for strings).
func jsonLiteral(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
