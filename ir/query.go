package ir

// Branches returns the alternatives of a rule body (or any sub-expr) in its
// canonical choice-of-sequences reading: the children of a Choice node, or
// the node itself as the sole alternative when it isn't a Choice. Used by
// normalize, compile, and match, all of which only ever care about "the set
// of alternatives at this point", not whether a Choice wrapper is literally
// present — normalize collapses a single-alternative Choice rather than
// keep a degenerate wrapper node around.
func Branches(g *Grammar, exprID int32) []int32 {
	if exprID < 0 {
		return nil
	}
	if g.Kind(exprID) == Choice {
		return g.Children(exprID)
	}
	return []int32{exprID}
}

// SeqAtoms returns the atomic steps of one alternative in sequence order:
// the children of a Sequence node, none for EmptyStr, or the node itself as
// a single-step sequence otherwise.
func SeqAtoms(g *Grammar, exprID int32) []int32 {
	switch g.Kind(exprID) {
	case Sequence:
		return g.Children(exprID)
	case EmptyStr:
		return nil
	default:
		return []int32{exprID}
	}
}

// Position identifies a point inside a rule body's canonical choice-of-
// sequences form: which alternative, and how far into that alternative's
// atom list. AtomIndex == len(atoms) means "past the last atom", i.e. the
// branch is exhausted and the caller's frame should advance.
type Position struct {
	RuleID      int32
	BranchIndex int32
	AtomIndex   int32
}

// BranchAtoms returns the atom list for one branch of ruleID's body.
func BranchAtoms(g *Grammar, ruleID int32) func(branchIndex int32) []int32 {
	body := g.Rules[ruleID].BodyID
	branches := Branches(g, body)
	return func(branchIndex int32) []int32 {
		return SeqAtoms(g, branches[branchIndex])
	}
}

// NumBranches returns the number of alternatives in ruleID's body.
func NumBranches(g *Grammar, ruleID int32) int32 {
	body := g.Rules[ruleID].BodyID
	return int32(len(Branches(g, body)))
}

// AtomAt returns the atom expr id at a Position, and whether the position
// is past the end of its branch (in which case the returned id is -1).
func AtomAt(g *Grammar, pos Position) (atomID int32, atEnd bool) {
	atoms := BranchAtoms(g, pos.RuleID)(pos.BranchIndex)
	if int(pos.AtomIndex) >= len(atoms) {
		return -1, true
	}
	return atoms[pos.AtomIndex], false
}
