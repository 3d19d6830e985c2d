package normalize

import "github.com/ava12/gramatch/ir"

// Normalize is normalizer pass 2 (spec.md §4.5): rewrites every rule body
// (and lookahead) into the canonical choice-of-sequences form the compiler
// and matcher assume — a Choice whose every alternative is a Sequence of
// atomic leaves, flattened one level deep, with no nested Choice/Sequence
// left inside an alternative. A Choice or Sequence that would otherwise
// nest inside an alternative's atom list is hoisted into a synthetic rule
// (spec.md's "<rule>_<n>" naming) and replaced by a RuleRef to it, rather
// than distributed out — distributing would multiply the expansion's size
// with every nested alternation. Must run after ExpandRepeats: it assumes
// no RepeatRange nodes remain.
func Normalize(g *ir.Grammar) *ir.Grammar {
	rb := newRebuilder(g)
	n := &normalizer{g: g, rb: rb}

	return rb.finish(func(ruleID int32, bodyID int32) int32 {
		n.owner = g.Rules[ruleID].Name
		if g.Kind(bodyID) == ir.TagDispatch {
			return rb.copyTagDispatch(bodyID)
		}
		return n.flattenTop(bodyID)
	})
}

type normalizer struct {
	g     *ir.Grammar
	rb    *rebuilder
	owner string
}

// flattenTop canonicalizes id as a rule body (or any reentrant hoisted
// sub-choice): the result is a Choice of flattened sequences, or — when
// there is exactly one alternative — that sequence/atom directly.
func (n *normalizer) flattenTop(id int32) int32 {
	if n.g.Kind(id) != ir.Choice {
		return n.flattenSeq(id)
	}

	var branches []int32
	for _, c := range n.g.Children(id) {
		if n.g.Kind(c) == ir.Choice {
			sub := n.flattenTop(c)
			branches = append(branches, n.branchesOf(sub)...)
		} else {
			branches = append(branches, n.flattenSeq(c))
		}
	}
	if len(branches) == 1 {
		return branches[0]
	}
	return n.rb.b.Choice(branches...)
}

// branchesOf reads back the alternatives of an already-rebuilt expr (a
// Choice's children, or itself as the sole alternative).
func (n *normalizer) branchesOf(id int32) []int32 {
	if n.rb.b.Kind(id) == ir.Choice {
		return n.rb.b.Children(id)
	}
	return []int32{id}
}

// flattenSeq canonicalizes id as one alternative: a Sequence of atomic
// leaves (splicing nested Sequences, hoisting nested Choices).
func (n *normalizer) flattenSeq(id int32) int32 {
	atoms := n.flattenAtoms(id)
	switch len(atoms) {
	case 0:
		return n.rb.b.EmptyStr()
	case 1:
		return atoms[0]
	default:
		return n.rb.b.Sequence(atoms...)
	}
}

// flattenAtoms returns the atomic steps id contributes to the enclosing
// sequence position, splicing a nested Sequence and hoisting a nested
// Choice into a fresh rule reference.
func (n *normalizer) flattenAtoms(id int32) []int32 {
	switch n.g.Kind(id) {
	case ir.Sequence:
		var out []int32
		for _, c := range n.g.Children(id) {
			out = append(out, n.flattenAtoms(c)...)
		}
		return out
	case ir.Choice:
		return []int32{n.hoistChoice(id)}
	case ir.EmptyStr:
		return nil
	case ir.TagDispatch:
		return []int32{n.rb.copyTagDispatch(id)}
	default:
		return []int32{n.rb.copyLeaf(id)}
	}
}

// hoistChoice moves a nested Choice out of an atom position into its own
// synthetic rule, returning a RuleRef to it.
func (n *normalizer) hoistChoice(id int32) int32 {
	helperID := n.rb.addRule(n.rb.freshRuleName(n.owner, "choice"))
	body := n.flattenTop(id)
	n.rb.b.SetBody(helperID, body)
	return n.rb.b.RuleRef(helperID)
}
