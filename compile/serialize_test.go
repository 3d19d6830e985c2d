package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/gramatch/ir"
)

func TestSerializeDeserializeRoundTrips(t *testing.T) {
	g := choiceGrammar()
	tok := sampleTokenizer()
	c := NewGrammarCompiler(Options{})
	cg, err := c.Compile(g, tok)
	require.NoError(t, err)

	data, err := Serialize(cg)
	require.NoError(t, err)

	restored, err := Deserialize(data, tok)
	require.NoError(t, err)

	pos := ir.Position{RuleID: cg.Grammar.RootRuleID, BranchIndex: 0, AtomIndex: 0}
	wantRow, wantUncertain := cg.Cache.MaskAt(pos)
	gotRow, gotUncertain := restored.Cache.MaskAt(pos)
	assert.Equal(t, wantRow, gotRow)
	assert.Equal(t, wantUncertain, gotUncertain)
	assert.Equal(t, cg.Grammar.RootRuleID, restored.Grammar.RootRuleID)
}

func TestDeserializeRejectsWrongVersion(t *testing.T) {
	_, err := Deserialize([]byte(`{"__VERSION__":"v99"}`), sampleTokenizer())
	require.Error(t, err)
}

func TestDeserializeRejectsMissingVersion(t *testing.T) {
	_, err := Deserialize([]byte(`{}`), sampleTokenizer())
	require.Error(t, err)
}
