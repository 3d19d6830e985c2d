package compile

import (
	"github.com/ava12/gramatch/ebnf"
	"github.com/ava12/gramatch/jsonschema"
	"github.com/ava12/gramatch/rx"
	"github.com/ava12/gramatch/structuraltag"
	"github.com/ava12/gramatch/tokenizer"
)

// The methods below are GrammarCompiler's library surface per spec.md §6.4:
// one entry point per grammar source, each lowering to an *ir.Grammar via
// the matching front-end package and then running the normal Compile path.

// CompileJSONSchema lowers a JSON Schema document to a grammar accepting
// only documents conforming to it.
func (c *GrammarCompiler) CompileJSONSchema(schema []byte, cfg jsonschema.Config, tok *tokenizer.Info) (*CompiledGrammar, error) {
	g, err := jsonschema.Parse(schema, cfg)
	if err != nil {
		return nil, err
	}
	return c.Compile(g, tok)
}

// CompileGrammarText parses EBNF grammar text (spec.md §4.2) and compiles
// the result.
func (c *GrammarCompiler) CompileGrammarText(name string, ebnfText []byte, tok *tokenizer.Info) (*CompiledGrammar, error) {
	g, err := ebnf.Parse(name, ebnfText)
	if err != nil {
		return nil, err
	}
	return c.Compile(g, tok)
}

// CompileRegex parses a regular expression (spec.md §4.1) and compiles the
// result.
func (c *GrammarCompiler) CompileRegex(name, pattern string, tok *tokenizer.Info) (*CompiledGrammar, error) {
	g, err := rx.Parse(name, pattern)
	if err != nil {
		return nil, err
	}
	return c.Compile(g, tok)
}

// CompileStructuralTag lowers a structural-tag format tree (spec.md §4.4)
// and compiles the result.
func (c *GrammarCompiler) CompileStructuralTag(f structuraltag.Format, tok *tokenizer.Info) (*CompiledGrammar, error) {
	g, err := structuraltag.Convert(f)
	if err != nil {
		return nil, err
	}
	return c.Compile(g, tok)
}

// CompileBuiltinJSONGrammar compiles the ready-made JSON superset grammar
// (SPEC_FULL.md §D.1), accepting any well-formed JSON value.
func (c *GrammarCompiler) CompileBuiltinJSONGrammar(tok *tokenizer.Info) (*CompiledGrammar, error) {
	g, err := jsonschema.Builtin()
	if err != nil {
		return nil, err
	}
	return c.Compile(g, tok)
}
