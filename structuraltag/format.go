// Package structuraltag lowers a structural-tag format tree (a closed,
// discriminated union describing the shape of constrained free-form output:
// tool calls, reasoning blocks, and the like) into an ir.Grammar, per
// spec.md §4.4. It is the Go analogue of
// original_source/python/xgrammar/structural_tag.py's pydantic
// discriminated union, expressed as a closed sum type rather than the
// teacher's generic sibling-linked tree package (tree.Element is bound to
// lexer tokens and built parse results, the wrong shape for a small fixed
// schema with no parse-time construction).
package structuraltag

import "encoding/json"

// Format is the marker interface every structural-tag node implements.
// Every variant is used by pointer so the analyzer can key per-node state
// by identity.
type Format interface {
	formatNode()
}

// ConstString matches exactly Value.
type ConstString struct {
	Value string
}

// JSONSchema matches any JSON value satisfying Schema.
type JSONSchema struct {
	Schema json.RawMessage
}

// Regex matches the ECMA-262 subset documented in package rx.
type Regex struct {
	Pattern string
}

// EBNF matches the provided grammar text's root rule.
type EBNF struct {
	Grammar string
}

// AnyText matches any byte sequence not containing any of Excludes; when
// reachable in a bounded context the analyzer infers an additional implicit
// terminator from the enclosing Tag.
type AnyText struct {
	Excludes []string
}

// QwenXMLParameter renders Schema (a JSON-Schema object) as repeated
// `<parameter=name>value</parameter>` blocks, one per property.
type QwenXMLParameter struct {
	Schema json.RawMessage
}

// Sequence concatenates Elements in order; only the last may be unbounded.
type Sequence struct {
	Elements []Format
}

// Or alternates between Elements; all must share the same boundedness.
type Or struct {
	Elements []Format
}

// Tag matches Begin, then Content, then one of End (End is never empty).
type Tag struct {
	Begin   string
	Content Format
	End     []string
}

// TriggeredTags interleaves free text with tags dispatched the instant one
// of Triggers is seen in the input stream; lowers to a root TagDispatch.
type TriggeredTags struct {
	Triggers       []string
	Tags           []*Tag
	AtLeastOne     bool
	StopAfterFirst bool
	Excludes       []string
}

// TagsWithSeparator matches `(tag (sep tag)*)?`, the quantifier controlled
// by AtLeastOne/StopAfterFirst.
type TagsWithSeparator struct {
	Tags           []*Tag
	Separator      string
	AtLeastOne     bool
	StopAfterFirst bool
}

func (*ConstString) formatNode()       {}
func (*JSONSchema) formatNode()        {}
func (*Regex) formatNode()             {}
func (*EBNF) formatNode()              {}
func (*AnyText) formatNode()           {}
func (*QwenXMLParameter) formatNode()  {}
func (*Sequence) formatNode()          {}
func (*Or) formatNode()                {}
func (*Tag) formatNode()               {}
func (*TriggeredTags) formatNode()     {}
func (*TagsWithSeparator) formatNode() {}
