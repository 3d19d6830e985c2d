package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/gramatch/compile"
	"github.com/ava12/gramatch/ir"
	"github.com/ava12/gramatch/tokenizer"
)

// "ab" literal, single branch.
func literalGrammar() *ir.Grammar {
	b := ir.NewBuilder()
	lit := b.ByteString([]byte("ab"))
	root := b.AddRule("root")
	b.SetBody(root, lit)
	return b.Build(root)
}

// root ::= "cat" | "car"
func branchingGrammar() *ir.Grammar {
	b := ir.NewBuilder()
	cat := b.ByteString([]byte("cat"))
	car := b.ByteString([]byte("car"))
	choice := b.Choice(cat, car)
	root := b.AddRule("root")
	b.SetBody(root, choice)
	return b.Build(root)
}

func dispatchGrammar() *ir.Grammar {
	b := ir.NewBuilder()
	inner := b.AddRule("tag")
	b.SetBody(inner, b.ByteString([]byte("X</a>")))
	dispatch := b.TagDispatch(ir.TagDispatchData{
		Tags:              []ir.TagDispatchRule{{Trigger: "<a>", RuleID: inner}},
		LoopAfterDispatch: false,
	})
	root := b.AddRule("root")
	b.SetBody(root, dispatch)
	return b.Build(root)
}

func compileFor(t *testing.T, g *ir.Grammar, tok *tokenizer.Info) *compile.CompiledGrammar {
	t.Helper()
	c := compile.NewGrammarCompiler(compile.Options{})
	cg, err := c.Compile(g, tok)
	require.NoError(t, err)
	return cg
}

func TestMatcherAcceptsLiteralByteByByte(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("a"), []byte("b"), []byte("c")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, literalGrammar(), tok), tok, nil, true, 4)

	require.NoError(t, m.AcceptToken(0)) // "a"
	assert.False(t, m.IsTerminated())
	require.NoError(t, m.AcceptToken(1)) // "b"
	assert.True(t, m.IsTerminated())

	err := m.AcceptToken(2) // "c": grammar is exhausted
	assert.Error(t, err)
}

func TestMatcherRejectsWrongByte(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("a"), []byte("z")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, literalGrammar(), tok), tok, nil, true, 4)
	err := m.AcceptToken(1) // "z" does not match "ab"
	require.Error(t, err)
}

func TestMatcherFillNextTokenBitmaskNarrowsOnBranch(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("ca"), []byte("t"), []byte("r")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, branchingGrammar(), tok), tok, nil, false, 4)

	row := m.FillNextTokenBitmask()
	assert.True(t, row.IsSet(0)) // "ca" is a valid prefix of both "cat" and "car"
	assert.False(t, row.IsSet(1))
	assert.False(t, row.IsSet(2))

	require.NoError(t, m.AcceptToken(0)) // "ca"
	row = m.FillNextTokenBitmask()
	assert.True(t, row.IsSet(1))  // "t" completes "cat"
	assert.True(t, row.IsSet(2))  // "r" completes "car"
}

func TestMatcherRollbackUndoesAcceptedToken(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("c"), []byte("a"), []byte("t"), []byte("r")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, branchingGrammar(), tok), tok, nil, false, 4)

	require.NoError(t, m.AcceptToken(0)) // "c"
	require.NoError(t, m.AcceptToken(1)) // "a"
	require.NoError(t, m.Rollback(1))

	// back to just "c" accepted: both "t" afterwards in "cat" and the "r" of
	// "car" still require the "a" byte next, not a bare "t" or "r".
	row := m.FillNextTokenBitmask()
	assert.True(t, row.IsSet(1)) // "a"
	assert.False(t, row.IsSet(2))
	assert.False(t, row.IsSet(3))
}

func TestMatcherRollbackOutOfRangeErrors(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("a")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, literalGrammar(), tok), tok, nil, true, 4)
	err := m.Rollback(1)
	assert.Error(t, err)
}

func TestMatcherStopTokenRequiresAcceptingState(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("a"), []byte("b")}, tokenizer.RAW, nil, []int32{1}, false)
	m := NewMatcher(compileFor(t, literalGrammar(), tok), tok, nil, true, 4)
	err := m.AcceptToken(1) // stop token before grammar is satisfied
	assert.Error(t, err)
}

func TestMatcherDispatchTriggerEntersTaggedRule(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("<a>"), []byte("X</a>"), []byte("z")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, dispatchGrammar(), tok), tok, nil, true, 4)

	require.NoError(t, m.DebugAcceptString("<a>"))
	assert.False(t, m.IsTerminated())
	require.NoError(t, m.DebugAcceptString("X</a>"))
	assert.True(t, m.IsTerminated())
}

func TestFindJumpForwardStringReturnsForcedLiteral(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("a")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, literalGrammar(), tok), tok, nil, true, 4)
	assert.Equal(t, "ab", m.FindJumpForwardString())
}

func TestFindJumpForwardStringEmptyOnBranch(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("c")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, branchingGrammar(), tok), tok, nil, false, 4)
	assert.Equal(t, "", m.FindJumpForwardString())
}

func TestMatcherResetReturnsToInitialFrontier(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("a"), []byte("b")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, literalGrammar(), tok), tok, nil, true, 4)

	require.NoError(t, m.AcceptToken(0)) // "a"
	assert.False(t, m.IsTerminated())

	m.Reset()
	assert.False(t, m.IsTerminated())
	assert.Equal(t, "ab", m.FindJumpForwardString())

	err := m.Rollback(1)
	assert.Error(t, err) // history was cleared by Reset
}

func TestMatcherDispatchTriggerTerminatesWholeGrammar(t *testing.T) {
	tok := tokenizer.New([][]byte{[]byte("<a>"), []byte("X</a>"), []byte("z")}, tokenizer.RAW, nil, nil, false)
	m := NewMatcher(compileFor(t, dispatchGrammar(), tok), tok, nil, true, 4)

	require.NoError(t, m.AcceptToken(0)) // "<a>"
	require.NoError(t, m.AcceptToken(1)) // "X</a>": dispatch target fully consumed, root exhausted
	assert.True(t, m.IsTerminated())

	err := m.AcceptToken(2)
	assert.Error(t, err) // grammar already fully satisfied, no further bytes admissible
}
