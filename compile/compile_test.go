package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/gramatch/ir"
	"github.com/ava12/gramatch/tokenizer"
)

func choiceGrammar() *ir.Grammar {
	b := ir.NewBuilder()
	a := b.ByteString([]byte("a"))
	bb := b.ByteString([]byte("b"))
	choice := b.Choice(a, bb)
	root := b.AddRule("root")
	b.SetBody(root, choice)
	return b.Build(root)
}

func sampleTokenizer() *tokenizer.Info {
	return tokenizer.New([][]byte{[]byte("a"), []byte("b"), []byte("ab")}, tokenizer.RAW, nil, nil, false)
}

func TestAdaptiveCacheMasksOnlyMatchingBranch(t *testing.T) {
	g := choiceGrammar()
	tok := sampleTokenizer()
	cache := NewAdaptiveCache(g, tok)
	cache.Precompute(allPositions(g), 2)

	pos := ir.Position{RuleID: g.RootRuleID, BranchIndex: 0, AtomIndex: 0}
	row, uncertain := cache.MaskAt(pos)

	assert.True(t, row.IsSet(0))  // "a"
	assert.False(t, row.IsSet(1)) // "b"
	assert.False(t, row.IsSet(2)) // "ab" overruns this position's single-byte atom
	assert.Empty(t, uncertain)
}

func TestAdaptiveCachePrecomputeIsIdempotentlyQueryable(t *testing.T) {
	g := choiceGrammar()
	tok := sampleTokenizer()
	cache := NewAdaptiveCache(g, tok)
	cache.Precompute(allPositions(g), 2)

	pos := ir.Position{RuleID: g.RootRuleID, BranchIndex: 1, AtomIndex: 0}
	row1, _ := cache.MaskAt(pos)
	row2, _ := cache.MaskAt(pos) // read-only lookup, never recomputes
	assert.Equal(t, row1, row2)
}

func TestAdaptiveCacheTracksUncertainTokensSeparately(t *testing.T) {
	// root ::= rule{2,3}; rule ::= "a" | [bc]{4,} -- spec.md §8's own
	// "Repetition bounds" scenario: the first position inside rule's body
	// completes the whole rule on a single "a" byte, which npda.StartAt's
	// caller-less trial stack can only report as Pending, not Accept.
	b := ir.NewBuilder()
	rule := b.AddRule("rule")
	root := b.AddRule("root")
	a := b.ByteString([]byte("a"))
	bc := b.CharClass([]ir.CharRange{{Lo: 'b', Hi: 'c'}}, false)
	rep := b.RepeatRange(bc, 4, -1)
	ruleChoice := b.Choice(a, rep)
	b.SetBody(rule, ruleChoice)
	ruleRef := b.RuleRef(rule)
	ruleRep := b.RepeatRange(ruleRef, 2, 3)
	b.SetBody(root, ruleRep)
	g := b.Build(root)

	tok := sampleTokenizer()
	cache := NewAdaptiveCache(g, tok)
	cache.Precompute(allPositions(g), 2)

	pos := ir.Position{RuleID: rule, BranchIndex: 0, AtomIndex: 0}
	_, uncertain := cache.MaskAt(pos)
	assert.Contains(t, uncertain, int32(0)) // "a" exhausts rule, caller context needed
}

func TestGrammarCompilerCompilesOnce(t *testing.T) {
	g := choiceGrammar()
	tok := sampleTokenizer()
	c := NewGrammarCompiler(Options{})

	result1, err := c.Compile(g, tok)
	require.NoError(t, err)
	result2, err := c.Compile(g, tok)
	require.NoError(t, err)
	assert.Same(t, result1, result2)
}

func TestGrammarCompilerDefaultsWorkers(t *testing.T) {
	c := NewGrammarCompiler(Options{})
	assert.Equal(t, 8, cap(c.sem))
}
