package jsonschema

import (
	"github.com/ava12/gramatch/ebnf"
	"github.com/ava12/gramatch/ir"
)

// builtinJSONGrammarText is the JSON superset grammar every unsupported
// schema keyword falls back to, adapted from the GBNF-constant convention
// other JSON-constrained-decoding filters ship (see
// _examples/other_examples/e0ffb1e6_..._grammar_filter.go.go's
// NewJSONGrammarFilter/NewJSONObjectGrammarFilter: a ready parsed constant
// grammar exposed as a one-call convenience) rewritten into this repo's own
// EBNF surface rather than GBNF syntax.
const builtinJSONGrammarText = `value ::= (basic_object | basic_array | basic_string | basic_number | basic_boolean | basic_null)
basic_any ::= (value)
basic_object ::= ("{" (basic_ws "\"" basic_string_chars "\"" basic_ws ":" basic_ws value ("," basic_ws "\"" basic_string_chars "\"" basic_ws ":" basic_ws value)*)? basic_ws "}")
basic_array ::= ("[" (basic_ws value (basic_ws "," basic_ws value)*)? basic_ws "]")
basic_string ::= ("\"" basic_string_chars "\"")
basic_string_chars ::= ([^"\\\x00-\x1f]*)
basic_number ::= (basic_integer ("." [0-9]+)? (("e" | "E") ("+" | "-")? [0-9]+)?)
basic_integer ::= ("-"? ("0" | [1-9] [0-9]*))
basic_boolean ::= ("true" | "false")
basic_null ::= ("null")
basic_ws ::= ([ \t\n\r]*)
`

const (
	basicAnyRule   = "basic_any"
	stringBodyRule = "basic_string_chars"
	integerRule    = "basic_integer"
	numberRule     = "basic_number"
)

// basicAnyEBNF is the builtin grammar text spliced into every generated
// document after its "root" rule, so any basicAnyRule / stringBodyRule /
// integerRule / numberRule reference used while lowering the schema
// resolves.
const basicAnyEBNF = builtinJSONGrammarText

// Builtin parses and returns the ready-made JSON superset grammar on its
// own, for GrammarCompiler.CompileBuiltinJSONGrammar (spec.md §6.4,
// SPEC_FULL.md §D.1): a grammar accepting any well-formed JSON value with
// no schema constraints at all.
func Builtin() (*ir.Grammar, error) {
	return ebnf.Parse("builtin_json", []byte(builtinJSONGrammarText))
}
