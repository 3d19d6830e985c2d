package compile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava12/gramatch/tokenizer"
)

func TestCompileGrammarTextWiresEBNFFrontend(t *testing.T) {
	tok := sampleTokenizer()
	c := NewGrammarCompiler(Options{})
	cg, err := c.CompileGrammarText("greeting", []byte(`root ::= "hi"`), tok)
	require.NoError(t, err)
	require.NotNil(t, cg.Grammar)
	require.NotNil(t, cg.Cache)
}

func TestCompileBuiltinJSONGrammarWiresJSONSchemaFrontend(t *testing.T) {
	tok := sampleTokenizer()
	c := NewGrammarCompiler(Options{})
	cg, err := c.CompileBuiltinJSONGrammar(tok)
	require.NoError(t, err)
	require.NotNil(t, cg.Grammar)
}
