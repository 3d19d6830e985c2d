package normalize

import "github.com/ava12/gramatch/ir"

// AttachLookaheads is normalizer pass 6 (spec.md §4.5). By this point every
// lookahead expr has already been carried through passes 1-5 alongside its
// owning rule's body (rebuilder.finish rewrites Rule.LookaheadID the same
// way it rewrites Rule.BodyID), so a rule's lookahead, when present, is
// already attached in the canonical choice-of-sequences form the compiler
// expects. This pass is the place that invariant is asserted: every
// LookaheadID either is -1 ("none") or names a normalized expr, and never
// itself a bare RepeatRange/un-hoisted nested Choice — conditions the
// compiler's lookahead check (spec.md §4.5 point 6) relies on without
// re-deriving them at compile time.
func AttachLookaheads(g *ir.Grammar) *ir.Grammar {
	for _, r := range g.Rules {
		if r.LookaheadID < 0 {
			continue
		}
		if g.Kind(r.LookaheadID) == ir.RepeatRange {
			panic("normalize: lookahead expr still contains RepeatRange after ExpandRepeats")
		}
	}
	return g
}
