/*
Package gramatch constrains LLM token generation to a formal grammar.

It compiles a grammar intermediate representation (see subpackage ir)
down, together with a tokenizer's decoded vocabulary, into a per-rule-
position token-mask cache (subpackage compile), and runs that artifact
through a token-aware pushdown matcher (subpackage match) that accepts
committed token ids and fills admissibility bitmasks (subpackage
bitmask) for the next decoding step.

Consists of subpackages:
  - ir: tagged expression arena, rule table, JSON/EBNF serialization;
  - ebnf: parses EBNF-with-extensions grammar text into ir.Grammar;
  - rx: lowers a JS-style regex into ir.Grammar;
  - jsonschema: lowers a JSON Schema into EBNF text (then ebnf.Parse);
  - structuraltag: lowers a structural-tag format tree into ir.Grammar;
  - normalize: canonicalizing IR->IR pass pipeline;
  - compile: builds the adaptive per-rule-position token-mask cache;
  - match: the NPDA matcher with bounded backtracking;
  - tokenizer: immutable decoded-vocabulary record consumed by compile;
  - bitmask: packed admissibility bitmask layout and apply kernel;
  - source, lexer: source file/queue and regex-driven lexical analyzer,
    shared by ebnf and rx for line/column tracking.

Typical usage is:

1. Obtain a grammar IR, either by parsing EBNF/regex/JSON-Schema/
structural-tag text, or by constructing it directly.

2. Compile it against a tokenizer.Info using compile.GrammarCompiler,
producing a compile.CompiledGrammar.

3. Create a match.Matcher for the compiled grammar and feed it committed
token ids; ask it for bitmask.Row values between tokens.
*/
package gramatch

import (
	"fmt"
)

// Kind classifies an Error per the error taxonomy: parse errors carry a
// source location, usage errors never do, and so on.
type Kind int

const (
	// KindParse: EBNF/regex/JSON-Schema/structural-tag input is malformed.
	KindParse Kind = iota
	// KindStructuralTag: analyzer/converter rejection (mixed bounded/
	// unbounded, ambiguous triggers, missing placeholder values).
	KindStructuralTag
	// KindVersion: a serialized artifact's version tag does not match.
	KindVersion
	// KindUsage: API misuse; the failing call aborts, state is unchanged.
	KindUsage
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindStructuralTag:
		return "structural-tag"
	case KindVersion:
		return "version"
	case KindUsage:
		return "usage"
	default:
		return "unknown"
	}
}

// Error classes used by subpackages, each class contains up to 999 error codes:
const (
	EbnfErrors          = 1000  // used by ebnf
	LexicalErrors       = 2000  // used by lexer
	RegexErrors         = 3000  // used by rx
	JSONSchemaErrors    = 4000  // used by jsonschema
	StructuralTagErrors = 5000  // used by structuraltag
	NormalizeErrors     = 6000  // used by normalize
	CompileErrors       = 7000  // used by compile
	MatchErrors         = 8000  // used by match
	SerializeErrors     = 9000  // used by ir
	BitmaskErrors       = 9500  // used by bitmask
)

// Error is the error type used by gramatch subpackages.
type Error struct {
	// Kind classifies the error per the error taxonomy (spec ERROR HANDLING DESIGN).
	Kind Kind

	// Code contains non-zero error code, unique per reporting subpackage.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos and lexer.Token implement this interface.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(kind Kind, code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	}
	return &Error{kind, code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(kind Kind, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(kind, code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(kind Kind, pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(kind, code, msg, pos.SourceName(), pos.Line(), pos.Col())
}
