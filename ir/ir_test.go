package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSample() *Grammar {
	b := NewBuilder()
	root := b.AddRule("root")
	lit := b.ByteString([]byte("ab"))
	cc := b.CharClass([]CharRange{{'0', '9'}}, false)
	seq := b.Sequence(lit, cc)
	b.SetBody(root, seq)
	return b.Build(root)
}

func TestBuilderRoundTrip(t *testing.T) {
	g := buildSample()
	require.Equal(t, 1, len(g.Rules))
	require.Equal(t, "root", g.Rules[0].Name)

	body := g.Rules[0].BodyID
	require.Equal(t, Sequence, g.Kind(body))
	children := g.Children(body)
	require.Len(t, children, 2)

	require.Equal(t, ByteString, g.Kind(children[0]))
	require.Equal(t, []byte("ab"), g.ByteStringBytes(children[0]))

	require.Equal(t, CharClass, g.Kind(children[1]))
	ranges, negated := g.CharClassRanges(children[1])
	require.False(t, negated)
	require.Equal(t, []CharRange{{'0', '9'}}, ranges)
}

func TestCanonicalizeRangesMergesAdjacentAndOverlapping(t *testing.T) {
	in := []CharRange{{'a', 'c'}, {'d', 'f'}, {'b', 'e'}, {'x', 'z'}}
	out := CanonicalizeRanges(in)
	require.Equal(t, []CharRange{{'a', 'f'}, {'x', 'z'}}, out)
}

func TestNegate(t *testing.T) {
	ranges := []CharRange{{5, 10}, {20, 30}}
	out := Negate(ranges, 40)
	require.Equal(t, []CharRange{{0, 4}, {11, 19}, {31, 40}}, out)
}

func TestContainsRune(t *testing.T) {
	ranges := []CharRange{{5, 10}, {20, 30}}
	require.True(t, ContainsRune(ranges, 7))
	require.True(t, ContainsRune(ranges, 20))
	require.False(t, ContainsRune(ranges, 15))
	require.False(t, ContainsRune(ranges, 31))
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	g := buildSample()
	data, err := Serialize(g)
	require.NoError(t, err)

	g2, err := Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, g.Rules, g2.Rules)
	require.Equal(t, g.Arena, g2.Arena)
	require.Equal(t, g.RootRuleID, g2.RootRuleID)
}

func TestDeserializeVersionError(t *testing.T) {
	_, err := Deserialize([]byte(`{"__VERSION__":"v1","rules_":[],"grammar_expr_data_":{"indptr_":[0]}}`))
	require.Error(t, err)
}

func TestWriteEBNF(t *testing.T) {
	g := buildSample()
	text := WriteEBNF(g)
	require.Contains(t, text, `root ::= ("ab" [0-9])`)
}
