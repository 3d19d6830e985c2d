package normalize

import "github.com/ava12/gramatch/ir"

// Pipeline runs the seven normalizer passes in the fixed order spec.md §4.5
// prescribes. Running it twice on its own output must be a no-op (spec.md §8
// invariant 4); see pipeline_test.go for the round-trip check.
type Pipeline struct{}

// Run applies every pass in order and returns the canonicalized grammar.
func (Pipeline) Run(g *ir.Grammar) *ir.Grammar {
	g = ExpandRepeats(g)
	g = Normalize(g)
	g = FuseByteStrings(g)
	g = InlineRules(g)
	g = EliminateDeadCode(g)
	g = AttachLookaheads(g)
	g = ComputeAllowEmpty(g)
	return g
}

// Run is a package-level convenience wrapping Pipeline{}.Run.
func Run(g *ir.Grammar) *ir.Grammar {
	return Pipeline{}.Run(g)
}
