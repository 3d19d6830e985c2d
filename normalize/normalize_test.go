package normalize

import (
	"testing"

	"github.com/ava12/gramatch/ebnf"
	"github.com/ava12/gramatch/ir"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ir.Grammar {
	t.Helper()
	g, err := ebnf.Parse("t", []byte(src))
	require.NoError(t, err)
	return g
}

func TestExpandRepeatsBoundedRange(t *testing.T) {
	g := mustParse(t, `root ::= ("a"{2,3})`)
	out := ExpandRepeats(g)
	require.NotEqual(t, ir.RepeatRange, out.Kind(out.Rules[0].BodyID))
	assertNoRepeatRange(t, out)
}

func TestExpandRepeatsUnboundedSynthesizesHelperRule(t *testing.T) {
	g := mustParse(t, `root ::= ("a"+)`)
	out := ExpandRepeats(g)
	require.Greater(t, len(out.Rules), 1, "unbounded repeat should synthesize a helper rule")
	assertNoRepeatRange(t, out)
}

func TestExpandRepeatsCharClassStarFastPath(t *testing.T) {
	g := mustParse(t, `root ::= ([a-z]*)`)
	out := ExpandRepeats(g)
	require.Equal(t, ir.CharClassStar, out.Kind(out.Rules[0].BodyID))
	require.Len(t, out.Rules, 1, "class* must not synthesize a helper rule")
}

func assertNoRepeatRange(t *testing.T, g *ir.Grammar) {
	t.Helper()
	for _, k := range g.Arena.Kinds {
		require.NotEqual(t, ir.RepeatRange, k)
	}
}

func TestNormalizeCanonicalFormNoNestedChoiceInSequence(t *testing.T) {
	g := mustParse(t, `root ::= ("x" ("a" | "b") "y")`)
	g = ExpandRepeats(g)
	out := Normalize(g)

	body := out.Rules[0].BodyID
	require.Equal(t, ir.Sequence, out.Kind(body))
	for _, c := range out.Children(body) {
		require.NotEqual(t, ir.Choice, out.Kind(c), "nested choice must be hoisted to a rule ref")
	}
	require.Greater(t, len(out.Rules), 1, "hoisting should synthesize a helper rule")
}

func TestPipelineIdempotent(t *testing.T) {
	g := mustParse(t, `
root ::= (("ab"{1,3} | [0-9]+) mid)
mid ::= ("z"*)
`)
	once := Run(g)
	twice := Run(once)
	require.Equal(t, ir.WriteEBNF(once), ir.WriteEBNF(twice))
}

func TestEliminateDeadCodeDropsUnreachableRule(t *testing.T) {
	g := mustParse(t, `
root ::= ("a")
unused ::= ("b")
`)
	out := EliminateDeadCode(g)
	require.Len(t, out.Rules, 1)
	require.Equal(t, "root", out.Rules[0].Name)
}

func TestInlineRulesSingleReference(t *testing.T) {
	g := mustParse(t, `
root ::= (mid "z")
mid ::= ("y")
`)
	out := InlineRules(g)
	out = EliminateDeadCode(out)
	require.Len(t, out.Rules, 1)
	body := out.Rules[0].BodyID
	require.Equal(t, ir.Sequence, out.Kind(body))
	children := out.Children(body)
	require.Equal(t, ir.ByteString, out.Kind(children[0]))
	require.Equal(t, []byte("y"), out.ByteStringBytes(children[0]))
}

func TestInlineRulesSkipsRecursiveRule(t *testing.T) {
	g := mustParse(t, `
root ::= (rec)
rec ::= ("a" rec | "b")
`)
	out := InlineRules(g)
	out = EliminateDeadCode(out)
	require.Len(t, out.Rules, 2, "recursive rule must survive inlining")
}

func TestComputeAllowEmpty(t *testing.T) {
	g := mustParse(t, `
root ::= ("a"? mid)
mid ::= ([a-z]*)
`)
	g = ExpandRepeats(g)
	out := ComputeAllowEmpty(g)
	require.True(t, out.Rules[1].AllowEmpty, "mid ::= [a-z]* must be allow-empty")
	require.True(t, out.AllowEmptyRuleIDs[1])
}

func TestFuseByteStrings(t *testing.T) {
	g := mustParse(t, `root ::= ("a" "b" "c")`)
	g = Normalize(g)
	out := FuseByteStrings(g)
	body := out.Rules[0].BodyID
	require.Equal(t, ir.ByteString, out.Kind(body))
	require.Equal(t, []byte("abc"), out.ByteStringBytes(body))
}
