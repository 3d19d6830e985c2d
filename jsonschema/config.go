// Package jsonschema lowers a JSON Schema document to the EBNF textual
// surface (spec.md §4.3) and defers to ebnf.Parse, rather than building an
// ir.Grammar directly: every formatting decision (indent, separators) is
// easiest to express as literal bytes in generated grammar text, and
// reusing ebnf.Parse means jsonschema inherits its error taxonomy and
// canonical-form output for free instead of duplicating a second builder
// path.
package jsonschema

import "strings"

// Config mirrors spec.md §4.3's closed configuration set for JSON-Schema
// lowering.
type Config struct {
	// Indent is the number of spaces per nesting level; nil means "none"
	// (single-line output).
	Indent *int

	// ItemSeparator and KVSeparator default to (", ", ": ") when Indent is
	// nil, or (",", ": ") when Indent is set, unless explicitly overridden.
	ItemSeparator string
	KVSeparator   string

	// StrictMode, when true, enforces unevaluatedProperties=false and
	// unevaluatedItems=false in the emitted grammar: objects/arrays with no
	// explicit additionalProperties/additionalItems schema reject extra
	// members. When false, schemas with no explicit keyword allow
	// arbitrary trailing members of basic_any shape.
	StrictMode bool
}

// DefaultConfig returns spec.md §4.3's defaults: no indent, ", "/": "
// separators, strict mode on.
func DefaultConfig() Config {
	return Config{StrictMode: true}
}

// resolve fills in separator defaults per the indent setting, matching
// spec.md §4.3 exactly: compact separators with no indent, tight separators
// once an indent is requested (mirroring how Python's json.dumps shifts its
// own default separators the same way once indent is set).
func (c Config) resolve() Config {
	if c.ItemSeparator == "" && c.KVSeparator == "" {
		if c.Indent == nil {
			c.ItemSeparator, c.KVSeparator = ", ", ": "
		} else {
			c.ItemSeparator, c.KVSeparator = ",", ": "
		}
	}
	return c
}

// newline returns the raw bytes (a literal newline plus indent*depth
// spaces) that should separate members at the given nesting depth, or ""
// when Indent is nil. Callers pass this through quoteLit before splicing it
// into generated EBNF text.
func (c Config) newline(depth int) string {
	if c.Indent == nil {
		return ""
	}
	return "\n" + strings.Repeat(" ", depth*(*c.Indent))
}
