package normalize

import "github.com/ava12/gramatch/ir"

// ExpandRepeats is normalizer pass 1 (spec.md §4.5): lowers every
// RepeatRange(child, min, max) into explicit sequences/choices, introducing
// a synthetic right-recursive helper rule for an unbounded tail (max == -1)
// and a nested optional tail for a bounded one. The common "class*"/"class+"
// shape is special-cased to CharClassStar, the fast-path leaf spec.md §3.1
// carves out explicitly instead of a synthetic rule.
func ExpandRepeats(g *ir.Grammar) *ir.Grammar {
	rb := newRebuilder(g)
	var expand func(ownerName string, id int32) int32
	expand = func(ownerName string, id int32) int32 {
		switch g.Kind(id) {
		case ir.Sequence:
			children := g.Children(id)
			out := make([]int32, len(children))
			for i, c := range children {
				out[i] = expand(ownerName, c)
			}
			return rb.b.Sequence(out...)
		case ir.Choice:
			children := g.Children(id)
			out := make([]int32, len(children))
			for i, c := range children {
				out[i] = expand(ownerName, c)
			}
			return rb.b.Choice(out...)
		case ir.RepeatRange:
			child, min, max := g.RepeatRangeParts(id)
			if g.Kind(child) == ir.CharClass && max == -1 {
				ranges, negated := g.CharClassRanges(child)
				star := rb.b.CharClassStar(ranges, negated)
				if min == 0 {
					return star
				}
				parts := make([]int32, 0, min+1)
				for i := int32(0); i < min; i++ {
					parts = append(parts, rb.b.CharClass(ranges, negated))
				}
				parts = append(parts, star)
				return rb.b.Sequence(parts...)
			}
			newChild := expand(ownerName, child)
			return rb.lowerRepeat(ownerName, newChild, min, max)
		case ir.TagDispatch:
			return rb.copyTagDispatch(id)
		default:
			return rb.copyLeaf(id)
		}
	}

	return rb.finish(func(ruleID int32, bodyID int32) int32 {
		return expand(g.Rules[ruleID].Name, bodyID)
	})
}

// lowerRepeat rewrites a single RepeatRange(newChild, min, max) into its
// sequence/choice expansion. newChild must already live in rb.b's arena.
func (rb *rebuilder) lowerRepeat(ownerName string, newChild int32, min, max int32) int32 {
	if min == 0 && max == 0 {
		return rb.b.EmptyStr()
	}

	if max == -1 {
		helperID := rb.addRule(rb.freshRuleName(ownerName, "rep"))
		tailRef := rb.b.RuleRef(helperID)
		helperBody := rb.b.Choice(rb.b.Sequence(newChild, tailRef), rb.b.EmptyStr())
		rb.b.SetBody(helperID, helperBody)

		if min == 0 {
			return rb.b.RuleRef(helperID)
		}
		parts := make([]int32, 0, min+1)
		for i := int32(0); i < min; i++ {
			parts = append(parts, newChild)
		}
		parts = append(parts, rb.b.RuleRef(helperID))
		return rb.b.Sequence(parts...)
	}

	// Bounded: min copies, then a right-nested optional tail for the
	// remaining (max-min) optional repetitions.
	tail := rb.b.EmptyStr()
	for i := int32(0); i < max-min; i++ {
		tail = rb.b.Choice(rb.b.EmptyStr(), rb.b.Sequence(newChild, tail))
	}
	if min == 0 {
		return tail
	}
	parts := make([]int32, 0, min+1)
	for i := int32(0); i < min; i++ {
		parts = append(parts, newChild)
	}
	if max > min {
		parts = append(parts, tail)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return rb.b.Sequence(parts...)
}
