package ebnf

import (
	"testing"

	"github.com/ava12/gramatch"
	"github.com/ava12/gramatch/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleChoice(t *testing.T) {
	g, err := Parse("t", []byte(`root ::= ("a" | "b")`))
	require.NoError(t, err)
	require.Equal(t, int32(0), g.RootRuleID)
	require.Len(t, g.Rules, 1)

	body := g.Rules[0].BodyID
	require.Equal(t, ir.Choice, g.Kind(body))
	children := g.Children(body)
	require.Len(t, children, 2)
	assert.Equal(t, []byte("a"), g.ByteStringBytes(children[0]))
	assert.Equal(t, []byte("b"), g.ByteStringBytes(children[1]))
}

func TestParseSequenceAndRuleRef(t *testing.T) {
	g, err := Parse("t", []byte(`
root ::= ("x" mid)
mid ::= ("y")
`))
	require.NoError(t, err)
	require.Len(t, g.Rules, 2)

	body := g.Rules[0].BodyID
	require.Equal(t, ir.Sequence, g.Kind(body))
	children := g.Children(body)
	require.Len(t, children, 2)
	assert.Equal(t, []byte("x"), g.ByteStringBytes(children[0]))
	assert.Equal(t, ir.RuleRef, g.Kind(children[1]))
	assert.Equal(t, int32(1), g.RuleRefID(children[1]))
}

func TestParseForwardReference(t *testing.T) {
	g, err := Parse("t", []byte(`
root ::= (a b)
a ::= ("a")
b ::= ("b")
`))
	require.NoError(t, err)
	require.Len(t, g.Rules, 3)
	assert.Equal(t, "a", g.Rules[1].Name)
	assert.Equal(t, "b", g.Rules[2].Name)
}

func TestParseCharClassAndNegation(t *testing.T) {
	g, err := Parse("t", []byte(`root ::= ([0-9a-fA-F]+ [^x]?)`))
	require.NoError(t, err)

	body := g.Rules[0].BodyID
	children := g.Children(body)
	require.Len(t, children, 2)

	child0, min0, max0 := g.RepeatRangeParts(children[0])
	assert.Equal(t, int32(1), min0)
	assert.Equal(t, int32(-1), max0)
	ranges, negated := g.CharClassRanges(child0)
	assert.False(t, negated)
	assert.Equal(t, []ir.CharRange{{Lo: '0', Hi: '9'}, {Lo: 'A', Hi: 'F'}, {Lo: 'a', Hi: 'f'}}, ranges)

	child1, min1, max1 := g.RepeatRangeParts(children[1])
	assert.Equal(t, int32(0), min1)
	assert.Equal(t, int32(1), max1)
	_, negated1 := g.CharClassRanges(child1)
	assert.True(t, negated1)
}

func TestParseQuantifiers(t *testing.T) {
	g, err := Parse("t", []byte(`root ::= ("a"{2,5} "b"{3} "c"{4,})`))
	require.NoError(t, err)
	children := g.Children(g.Rules[0].BodyID)
	require.Len(t, children, 3)

	_, min0, max0 := g.RepeatRangeParts(children[0])
	assert.Equal(t, int32(2), min0)
	assert.Equal(t, int32(5), max0)

	_, min1, max1 := g.RepeatRangeParts(children[1])
	assert.Equal(t, int32(3), min1)
	assert.Equal(t, int32(3), max1)

	_, min2, max2 := g.RepeatRangeParts(children[2])
	assert.Equal(t, int32(4), min2)
	assert.Equal(t, int32(-1), max2)
}

func TestParseEscapes(t *testing.T) {
	g, err := Parse("t", []byte(`root ::= ("\n\t\"\\\x41é")`))
	require.NoError(t, err)
	bytes := g.ByteStringBytes(g.Rules[0].BodyID)
	assert.Equal(t, []byte("\n\t\"\\Aé"), bytes)
}

func TestParseLookahead(t *testing.T) {
	g, err := Parse("t", []byte(`root ::= ("a") (="b")`))
	require.NoError(t, err)
	require.GreaterOrEqual(t, g.Rules[0].LookaheadID, int32(0))
	assert.Equal(t, []byte("b"), g.ByteStringBytes(g.Rules[0].LookaheadID))
}

func TestParseTagDispatch(t *testing.T) {
	g, err := Parse("t", []byte(`
root ::= TagDispatch(("<a>", a), ("<b>", b), stop_eos=true, stop_str=("</s>"), loop_after_dispatch=false, excludes=("x", "y"))
a ::= ("a")
b ::= ("b")
`))
	require.NoError(t, err)

	body := g.Rules[0].BodyID
	require.Equal(t, ir.TagDispatch, g.Kind(body))
	data := g.TagDispatchData(body)
	require.Len(t, data.Tags, 2)
	assert.Equal(t, "<a>", data.Tags[0].Trigger)
	assert.Equal(t, int32(1), data.Tags[0].RuleID)
	assert.Equal(t, "<b>", data.Tags[1].Trigger)
	assert.True(t, data.StopEos)
	assert.Equal(t, []string{"</s>"}, data.StopStrings)
	assert.False(t, data.LoopAfterDispatch)
	assert.Equal(t, []string{"x", "y"}, data.Excludes)
}

func TestParseMissingRootRule(t *testing.T) {
	_, err := Parse("t", []byte(``))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, MissingRootRuleError, gerr.Code)
}

func TestParseDuplicateRule(t *testing.T) {
	_, err := Parse("t", []byte(`
root ::= ("a")
root ::= ("b")
`))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, DuplicateRuleError, gerr.Code)
}

func TestParseUndefinedRule(t *testing.T) {
	_, err := Parse("t", []byte(`root ::= (missing)`))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, UndefinedRuleError, gerr.Code)
}

func TestParseConsecutiveQuantifiers(t *testing.T) {
	_, err := Parse("t", []byte(`root ::= ("a"**)`))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, ConsecutiveQuantifierError, gerr.Code)
}

func TestParseNewlineInCharClass(t *testing.T) {
	_, err := Parse("t", []byte("root ::= ([a\nb])"))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, NewlineInCharClassError, gerr.Code)
}

func TestParseCharClassRangeOrder(t *testing.T) {
	_, err := Parse("t", []byte(`root ::= ([9-0])`))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, CharClassRangeOrderError, gerr.Code)
}

func TestParseInvalidEscape(t *testing.T) {
	_, err := Parse("t", []byte(`root ::= ("\q")`))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, InvalidEscapeError, gerr.Code)
}

func TestParseTagDispatchEmptyTrigger(t *testing.T) {
	_, err := Parse("t", []byte(`
root ::= TagDispatch(("", a))
a ::= ("a")
`))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, EmptyTriggerError, gerr.Code)
}

func TestParseTagDispatchRootTarget(t *testing.T) {
	_, err := Parse("t", []byte(`root ::= TagDispatch(("<a>", root))`))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, TagDispatchRootTargetError, gerr.Code)
}

func TestParseErrorCarriesPosition(t *testing.T) {
	_, err := Parse("myfile.ebnf", []byte("root ::= (missing)"))
	require.Error(t, err)
	gerr := err.(*gramatch.Error)
	assert.Equal(t, gramatch.KindParse, gerr.Kind)
	assert.Equal(t, "myfile.ebnf", gerr.SourceName)
	assert.Equal(t, 1, gerr.Line)
}

func TestWriteEBNFRoundTrip(t *testing.T) {
	g, err := Parse("t", []byte(`
root ::= ("ab" [0-9]* mid)
mid ::= ("z"?)
`))
	require.NoError(t, err)

	text := ir.WriteEBNF(g)
	g2, err := Parse("t2", []byte(text))
	require.NoError(t, err)

	text2 := ir.WriteEBNF(g2)
	assert.Equal(t, text, text2)
}
