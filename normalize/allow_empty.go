package normalize

import "github.com/ava12/gramatch/ir"

// ComputeAllowEmpty is normalizer pass 7 (spec.md §4.5): computes, by least
// fixpoint over the rule reference graph, the set of rules whose language
// contains the empty string. The matcher uses this to take an epsilon
// transition at a position whose remaining atoms are all allow-empty rules.
func ComputeAllowEmpty(g *ir.Grammar) *ir.Grammar {
	out := deepCopyGrammar(g)
	n := len(out.Rules)
	allow := make([]bool, n)

	for {
		changed := false
		for i := range out.Rules {
			body := out.Rules[i].BodyID
			if body < 0 {
				continue
			}
			if v := canBeEmpty(out, body, allow); v != allow[i] {
				allow[i] = v
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	out.AllowEmptyRuleIDs = make(map[int32]bool)
	for i, v := range allow {
		out.Rules[i].AllowEmpty = v
		if v {
			out.AllowEmptyRuleIDs[int32(i)] = true
		}
	}
	return out
}

func canBeEmpty(g *ir.Grammar, id int32, allow []bool) bool {
	switch g.Kind(id) {
	case ir.EmptyStr:
		return true
	case ir.ByteString:
		return len(g.ByteStringBytes(id)) == 0
	case ir.CharClass:
		return false
	case ir.CharClassStar:
		return true
	case ir.RuleRef:
		return allow[g.RuleRefID(id)]
	case ir.Sequence:
		for _, c := range g.Children(id) {
			if !canBeEmpty(g, c, allow) {
				return false
			}
		}
		return true
	case ir.Choice:
		for _, c := range g.Children(id) {
			if canBeEmpty(g, c, allow) {
				return true
			}
		}
		return false
	case ir.RepeatRange:
		child, min, _ := g.RepeatRangeParts(id)
		return min == 0 || canBeEmpty(g, child, allow)
	case ir.TagDispatch:
		// A dispatch section always consumes at least the bytes of whichever
		// trigger/stop string fires (or runs forever); it is never trivially
		// nullable.
		return false
	default:
		return false
	}
}
