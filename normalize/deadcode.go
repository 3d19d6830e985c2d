package normalize

import (
	"github.com/ava12/gramatch/internal/ints"
	"github.com/ava12/gramatch/ir"
)

// EliminateDeadCode is normalizer pass 5 (spec.md §4.5): removes every rule
// unreachable from the root, where reachability is the transitive closure
// of RuleRef targets in a rule's body/lookahead plus TagDispatch dispatch
// targets (spec.md is explicit that TagDispatch edges count). Rule ids are
// renumbered to stay dense; every RuleRef payload cell and TagDispatch
// target is rewritten to match.
func EliminateDeadCode(g *ir.Grammar) *ir.Grammar {
	reachable := reachableRules(g)

	oldToNew := make(map[int32]int32, len(g.Rules))
	order := make([]int32, 0, len(g.Rules))
	for i := range g.Rules {
		id := int32(i)
		if reachable.Contains(int(id)) {
			oldToNew[id] = int32(len(order))
			order = append(order, id)
		}
	}

	out := deepCopyGrammar(g)

	for i := range out.Arena.Kinds {
		if out.Arena.Kinds[i] != ir.RuleRef {
			continue
		}
		old := out.RuleRefID(int32(i))
		if nv, ok := oldToNew[old]; ok {
			out.Arena.Data[out.Arena.Indptr[i]] = nv
		}
	}
	for i := range out.TagDispatches {
		for j := range out.TagDispatches[i].Tags {
			old := out.TagDispatches[i].Tags[j].RuleID
			if nv, ok := oldToNew[old]; ok {
				out.TagDispatches[i].Tags[j].RuleID = nv
			}
		}
	}

	newRules := make([]ir.Rule, len(order))
	for newID, oldID := range order {
		newRules[newID] = out.Rules[oldID]
	}
	out.Rules = newRules
	out.RootRuleID = oldToNew[g.RootRuleID]

	if g.AllowEmptyRuleIDs != nil {
		remapped := make(map[int32]bool, len(g.AllowEmptyRuleIDs))
		for old, ok := range g.AllowEmptyRuleIDs {
			if !ok {
				continue
			}
			if nv, present := oldToNew[old]; present {
				remapped[nv] = true
			}
		}
		out.AllowEmptyRuleIDs = remapped
	}

	return out
}

// reachableRules runs the transitive-closure BFS over internal/ints' own
// worklist types: Set for the visited membership test, Queue for the
// worklist itself, rather than a plain map/slice pair.
func reachableRules(g *ir.Grammar) *ints.Set {
	visited := ints.NewSet(int(g.RootRuleID))
	worklist := ints.NewQueue(int(g.RootRuleID))

	for !worklist.IsEmpty() {
		id := int32(worklist.Head())

		for _, t := range ruleRefTargets(g, id) {
			if !visited.Contains(int(t)) {
				visited.Add(int(t))
				worklist.Append(int(t))
			}
		}

		body := g.Rules[id].BodyID
		if body >= 0 && g.Kind(body) == ir.TagDispatch {
			for _, tag := range g.TagDispatchData(body).Tags {
				if !visited.Contains(int(tag.RuleID)) {
					visited.Add(int(tag.RuleID))
					worklist.Append(int(tag.RuleID))
				}
			}
		}
	}
	return visited
}
