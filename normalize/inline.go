package normalize

import "github.com/ava12/gramatch/ir"

// InlineRules is normalizer pass 4 (spec.md §4.5): inlines a rule at every
// RuleRef site that targets it, when its body is a single atomic leaf
// (ByteString, CharClass, CharClassStar, EmptyStr, or another RuleRef).
// Because the arena is a flat, shared, pointer-free table, inlining needs
// no tree copy: every RuleRef site simply has its payload cell rewritten to
// point at the callee's body expr id directly, reusing the same arena node.
//
// Spec.md describes inlining either a singly-referenced rule regardless of
// body shape, or a small body regardless of reference count. This
// implementation deliberately restricts the first case to atomic bodies
// too: substituting an atomic leaf into a RuleRef's slot is safe in every
// context (Sequence-atom, Choice-branch, or Rule body/lookahead) because it
// never introduces a new Choice or Sequence node where the canonical
// choice-of-sequences form (established by the preceding Normalize pass)
// requires an atom. Splicing a non-atomic (Sequence/Choice) body into an
// arbitrary Sequence-atom slot would re-nest a Choice inside a Sequence and
// break that invariant without a further flattening pass — so a
// non-atomic rule, however many times it is referenced, is left as a rule.
//
// A rule is never inlined if it is a TagDispatch target (the dispatch
// mechanism pushes a fresh parser frame by rule id, so the indirection must
// stay a rule) or if it participates in a reference cycle (inlining a
// recursive rule away is not meaning-preserving — it would need unbounded
// unrolling). The root rule is never inlined either: nothing refers to it,
// and the matcher always starts a configuration there by rule id.
func InlineRules(g *ir.Grammar) *ir.Grammar {
	out := deepCopyGrammar(g)

	dispatchTargets := map[int32]bool{}
	for _, td := range out.TagDispatches {
		for _, t := range td.Tags {
			dispatchTargets[t.RuleID] = true
		}
	}

	cyclic := rulesInCycles(out)

	for pass := 0; pass < len(out.Rules)+1; pass++ {
		changed := false

		for ruleID := range out.Rules {
			id := int32(ruleID)
			if id == out.RootRuleID || dispatchTargets[id] || cyclic[id] {
				continue
			}
			body := out.Rules[id].BodyID
			if body < 0 || !isAtomicLeaf(out, body) {
				continue
			}

			inlineAt(out, id, body)
			changed = true
		}
		if !changed {
			break
		}
	}

	return out
}

func isAtomicLeaf(g *ir.Grammar, id int32) bool {
	switch g.Kind(id) {
	case ir.ByteString, ir.CharClass, ir.CharClassStar, ir.EmptyStr, ir.RuleRef:
		return true
	default:
		return false
	}
}

// inlineAt rewrites every RuleRef(targetID) payload cell (and any rule
// Body/LookaheadID field that is itself such a RuleRef) to calleeBodyID.
func inlineAt(g *ir.Grammar, targetID int32, calleeBodyID int32) {
	rewrite := func(exprID int32) bool {
		return exprID >= 0 && g.Kind(exprID) == ir.RuleRef && g.RuleRefID(exprID) == targetID
	}

	for i := range g.Arena.Kinds {
		if g.Arena.Kinds[i] != ir.Sequence && g.Arena.Kinds[i] != ir.Choice {
			continue
		}
		lo, hi := g.Arena.Indptr[i], g.Arena.Indptr[i+1]
		for p := lo; p < hi; p++ {
			if rewrite(g.Arena.Data[p]) {
				g.Arena.Data[p] = calleeBodyID
			}
		}
	}

	for i := range g.Rules {
		if rewrite(g.Rules[i].BodyID) {
			g.Rules[i].BodyID = calleeBodyID
		}
		if rewrite(g.Rules[i].LookaheadID) {
			g.Rules[i].LookaheadID = calleeBodyID
		}
	}
}

// rulesInCycles reports, per rule id, whether it participates in a
// RuleRef reference cycle (including a direct self-loop).
func rulesInCycles(g *ir.Grammar) map[int32]bool {
	n := len(g.Rules)
	edges := make([][]int32, n)
	for i := range g.Rules {
		edges[i] = ruleRefTargets(g, int32(i))
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, n)
	inCycle := make(map[int32]bool, n)

	var dfs func(u int32, stack []int32)
	dfs = func(u int32, stack []int32) {
		color[u] = gray
		stack = append(stack, u)
		for _, v := range edges[u] {
			switch color[v] {
			case gray:
				for _, s := range stack {
					if s == v {
						inCycle[s] = true
					}
				}
				inCycle[v] = true
				inCycle[u] = true
			case white:
				dfs(v, stack)
			}
		}
		color[u] = black
	}
	for i := 0; i < n; i++ {
		if color[i] == white {
			dfs(int32(i), nil)
		}
	}
	return inCycle
}

// ruleRefTargets returns every rule id referenced (via RuleRef) from
// ruleID's body or lookahead.
func ruleRefTargets(g *ir.Grammar, ruleID int32) []int32 {
	var out []int32
	var walk func(id int32)
	seen := map[int32]bool{}
	walk = func(id int32) {
		if id < 0 || seen[id] {
			return
		}
		seen[id] = true
		switch g.Kind(id) {
		case ir.RuleRef:
			out = append(out, g.RuleRefID(id))
		case ir.Sequence, ir.Choice:
			for _, c := range g.Children(id) {
				walk(c)
			}
		}
	}
	r := g.Rules[ruleID]
	if r.BodyID >= 0 {
		walk(r.BodyID)
	}
	if r.LookaheadID >= 0 {
		walk(r.LookaheadID)
	}
	return out
}

func deepCopyGrammar(g *ir.Grammar) *ir.Grammar {
	out := &ir.Grammar{
		Rules:      append([]ir.Rule(nil), g.Rules...),
		RootRuleID: g.RootRuleID,
		Arena: ir.Arena{
			Kinds:  append([]ir.ExprKind(nil), g.Arena.Kinds...),
			Data:   append([]int32(nil), g.Arena.Data...),
			Indptr: append([]int32(nil), g.Arena.Indptr...),
		},
	}
	out.TagDispatches = make([]ir.TagDispatchData, len(g.TagDispatches))
	for i, td := range g.TagDispatches {
		out.TagDispatches[i] = ir.TagDispatchData{
			Tags:              append([]ir.TagDispatchRule(nil), td.Tags...),
			StopEos:           td.StopEos,
			StopStrings:       append([]string(nil), td.StopStrings...),
			LoopAfterDispatch: td.LoopAfterDispatch,
			Excludes:          append([]string(nil), td.Excludes...),
		}
	}
	if g.AllowEmptyRuleIDs != nil {
		out.AllowEmptyRuleIDs = make(map[int32]bool, len(g.AllowEmptyRuleIDs))
		for k, v := range g.AllowEmptyRuleIDs {
			out.AllowEmptyRuleIDs[k] = v
		}
	}
	return out
}
