// Package normalize implements the seven-pass IR->IR canonicalization
// pipeline of spec.md §4.5: expanding bounded repeats, rewriting every rule
// body into choice-of-sequences form, fusing adjacent byte strings, inlining
// singly-referenced rules, dropping unreachable rules, attaching lookaheads,
// and computing the allow-empty rule set. Passes compose in Pipeline.Run;
// each one is also exported standalone for testing and for callers that only
// need part of the pipeline.
package normalize

import (
	"fmt"

	"github.com/ava12/gramatch/ir"
)

// rebuilder is shared scaffolding for passes that rewrite every rule body
// through a fresh ir.Builder: it pre-registers one rule slot per existing
// rule (so RuleRef ids stay stable across the rewrite) and hands out fresh
// synthetic rule names for hoisted sub-terms.
type rebuilder struct {
	old      *ir.Grammar
	b        *ir.Builder
	synth    map[string]int32
}

func newRebuilder(g *ir.Grammar) *rebuilder {
	b := ir.NewBuilder()
	for _, r := range g.Rules {
		b.AddRule(r.Name)
	}
	return &rebuilder{old: g, b: b, synth: map[string]int32{}}
}

// freshRuleName returns a unique "<owner>_<n>" name, matching the teacher-
// style synthetic naming spec.md §4.5 calls for.
func (rb *rebuilder) freshRuleName(owner, tag string) string {
	base := fmt.Sprintf("%s_%s", owner, tag)
	n := rb.synth[base]
	rb.synth[base]++
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s%d", base, n)
}

// addRule reserves a new rule slot in the rebuilt grammar and returns its id.
func (rb *rebuilder) addRule(name string) int32 {
	return rb.b.AddRule(name)
}

// copyLeaf copies an atomic expr (ByteString, CharClass, CharClassStar,
// RuleRef, EmptyStr) into rb.b, remapping nothing: rule ids are stable
// across a rebuild because every old rule got a same-index slot up front.
func (rb *rebuilder) copyLeaf(id int32) int32 {
	g := rb.old
	switch g.Kind(id) {
	case ir.ByteString:
		return rb.b.ByteString(g.ByteStringBytes(id))
	case ir.CharClass:
		ranges, negated := g.CharClassRanges(id)
		return rb.b.CharClass(ranges, negated)
	case ir.CharClassStar:
		ranges, negated := g.CharClassRanges(id)
		return rb.b.CharClassStar(ranges, negated)
	case ir.RuleRef:
		return rb.b.RuleRef(g.RuleRefID(id))
	case ir.EmptyStr:
		return rb.b.EmptyStr()
	default:
		panic(fmt.Sprintf("copyLeaf: not an atomic expr kind %v", g.Kind(id)))
	}
}

// copyTagDispatch copies a TagDispatch expr (and its out-of-arena payload)
// into rb.b unchanged; TagDispatch targets are rule ids, stable across the
// rebuild the same way RuleRef ids are.
func (rb *rebuilder) copyTagDispatch(id int32) int32 {
	old := rb.old.TagDispatchData(id)
	data := ir.TagDispatchData{
		Tags:              append([]ir.TagDispatchRule(nil), old.Tags...),
		StopEos:           old.StopEos,
		StopStrings:       append([]string(nil), old.StopStrings...),
		LoopAfterDispatch: old.LoopAfterDispatch,
		Excludes:          append([]string(nil), old.Excludes...),
	}
	return rb.b.TagDispatch(data)
}

// copyExprDeep performs a structural deep copy of an arbitrary expr tree
// (used where a pass doesn't otherwise need to transform the subtree, e.g.
// copying a rule's lookahead body verbatim into the rebuilt arena).
func (rb *rebuilder) copyExprDeep(id int32) int32 {
	g := rb.old
	switch g.Kind(id) {
	case ir.Sequence:
		children := g.Children(id)
		out := make([]int32, len(children))
		for i, c := range children {
			out[i] = rb.copyExprDeep(c)
		}
		return rb.b.Sequence(out...)
	case ir.Choice:
		children := g.Children(id)
		out := make([]int32, len(children))
		for i, c := range children {
			out[i] = rb.copyExprDeep(c)
		}
		return rb.b.Choice(out...)
	case ir.RepeatRange:
		child, min, max := g.RepeatRangeParts(id)
		return rb.b.RepeatRange(rb.copyExprDeep(child), min, max)
	case ir.TagDispatch:
		return rb.copyTagDispatch(id)
	default:
		return rb.copyLeaf(id)
	}
}

// finish rewrites every rule's body/lookahead through step, then builds the
// new grammar with the same root id (rebuilds never change RootRuleID; only
// EliminateDeadCode, which doesn't use rebuilder, renumbers rules).
func (rb *rebuilder) finish(step func(ruleID int32, bodyID int32) int32) *ir.Grammar {
	g := rb.old
	for i, r := range g.Rules {
		ruleID := int32(i)
		if r.BodyID >= 0 {
			rb.b.SetBody(ruleID, step(ruleID, r.BodyID))
		}
		if r.LookaheadID >= 0 {
			rb.b.SetLookahead(ruleID, step(ruleID, r.LookaheadID))
		}
	}
	out := rb.b.Build(g.RootRuleID)
	out.AllowEmptyRuleIDs = g.AllowEmptyRuleIDs
	for i := range out.Rules {
		out.Rules[i].AllowEmpty = g.Rules[i].AllowEmpty
	}
	return out
}
