// Package npda implements the byte-level pushdown automaton shared by
// compile (static per-position vocabulary classification) and match
// (runtime token acceptance): given a grammar in canonical choice-of-
// sequences form, expand epsilon transitions (rule-ref pushes, frame pops,
// CharClassStar's self-loop) into a frontier of states actually waiting to
// consume a byte, then step that frontier across incoming bytes one at a
// time. Grounded on the teacher's parser.resolve/branch.go shape: a set of
// live alternatives, explicit (not call-stack) stack frames, pruned on
// dead ends.
package npda

import (
	"unicode/utf8"

	"github.com/ava12/gramatch/ir"
)

// Frame is one stack entry: a live position inside a rule's chosen branch.
// ByteOffset tracks progress through a ByteString atom's literal; it is
// unused (left 0) while AtomIndex names any other atom kind.
type Frame struct {
	RuleID      int32
	BranchIndex int32
	AtomIndex   int32
	ByteOffset  int32
}

// Stack is a configuration's call stack, outermost frame first.
type Stack []Frame

func (s Stack) top() Frame { return s[len(s)-1] }

func (s Stack) withTop(f Frame) Stack {
	out := make(Stack, len(s))
	copy(out, s)
	out[len(out)-1] = f
	return out
}

func (s Stack) popAndAdvance() (Stack, bool) {
	if len(s) == 1 {
		return nil, false
	}
	caller := s[:len(s)-1]
	c := caller.top()
	c.AtomIndex++
	c.ByteOffset = 0
	return caller.withTop(c), true
}

// Live is a stack paused at a consuming atom (ByteString or CharClass/
// CharClassStar), ready to be stepped by the next byte. RuneBuf accumulates
// partially-decoded UTF-8 bytes for a CharClass/CharClassStar atom; it is
// nil while the atom is a ByteString (whose offset lives in the top frame).
type Live struct {
	Stack   Stack
	RuneBuf []byte
}

// Dispatch is a stack paused inside a TagDispatch node's free-text section.
type Dispatch struct {
	Stack  Stack
	ExprID int32 // the TagDispatch expr id
}

// Frontier is the result of epsilon-closing one or more stacks: the states
// actually waiting to consume the next byte, plus whether any epsilon path
// reaches a terminal condition.
type Frontier struct {
	Live       []Live
	Dispatch   []Dispatch
	Accept     bool // an epsilon path emptied the stack entirely (root exhausted: valid end of input)
	Pending    bool // an epsilon path exhausted a non-root frame with nothing below it in this stack: needs caller context this walk doesn't have
}

// Initial returns the frontier of the matcher's start state: one
// configuration per alternative of the root rule's body.
func Initial(g *ir.Grammar) Frontier {
	n := ir.NumBranches(g, g.RootRuleID)
	var fr Frontier
	for b := int32(0); b < n; b++ {
		fr = fr.merge(Close(g, Stack{{RuleID: g.RootRuleID, BranchIndex: b, AtomIndex: 0}}))
	}
	return fr
}

// StartAt returns the frontier of a single static position with an empty
// call stack (no caller) — the starting point compile.go uses to classify
// a (rule_id, position) cache slot independent of parser context.
func StartAt(g *ir.Grammar, pos ir.Position) Frontier {
	return Close(g, Stack{{RuleID: pos.RuleID, BranchIndex: pos.BranchIndex, AtomIndex: pos.AtomIndex}})
}

func (fr Frontier) merge(other Frontier) Frontier {
	fr.Live = append(fr.Live, other.Live...)
	fr.Dispatch = append(fr.Dispatch, other.Dispatch...)
	fr.Accept = fr.Accept || other.Accept
	fr.Pending = fr.Pending || other.Pending
	return fr
}

// Close expands every epsilon transition reachable from stack: RuleRef
// pushes (fanning out across the callee's branches), atom-exhaustion pops,
// and CharClassStar's "stop here" alternative. It terminates because every
// push strictly grows the stack depth bound by the grammar's static
// nesting (cyclic rule refs always cross at least one consuming atom
// between re-entries in a canonical grammar, since a rule that could
// epsilon-loop to itself with no consumption is rejected by
// normalize.ComputeAllowEmpty's "no bare left recursion" shape upstream).
func Close(g *ir.Grammar, s Stack) Frontier {
	var fr Frontier
	top := s.top()
	atomID, atEnd := ir.AtomAt(g, ir.Position{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex})

	if atEnd {
		if len(s) == 1 {
			if top.RuleID == g.RootRuleID {
				fr.Accept = true
			} else {
				fr.Pending = true
			}
			return fr
		}
		next, ok := s.popAndAdvance()
		if !ok {
			fr.Pending = true
			return fr
		}
		return Close(g, next)
	}

	switch g.Kind(atomID) {
	case ir.RuleRef:
		target := g.RuleRefID(atomID)
		n := ir.NumBranches(g, target)
		for b := int32(0); b < n; b++ {
			pushed := append(append(Stack(nil), s...), Frame{RuleID: target, BranchIndex: b, AtomIndex: 0})
			fr = fr.merge(Close(g, pushed))
		}
		return fr

	case ir.EmptyStr:
		next := s.withTop(Frame{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex + 1})
		return Close(g, next)

	case ir.ByteString, ir.CharClass:
		fr.Live = append(fr.Live, Live{Stack: s})
		return fr

	case ir.CharClassStar:
		// Two parallel epsilon outcomes: keep waiting here for another
		// class member, or take zero repetitions and advance past it.
		fr.Live = append(fr.Live, Live{Stack: s})
		next := s.withTop(Frame{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex + 1})
		return fr.merge(Close(g, next))

	case ir.TagDispatch:
		fr.Dispatch = append(fr.Dispatch, Dispatch{Stack: s, ExprID: atomID})
		return fr

	default:
		// Sequence/Choice/RepeatRange do not appear as atoms after
		// normalize; treat defensively as a dead end.
		return fr
	}
}

// StepByte advances one live state by a single byte, returning the
// resulting frontier (possibly empty, possibly fanning into several
// states once an atom completes and the next position is epsilon-closed).
func StepByte(g *ir.Grammar, l Live, b byte) Frontier {
	top := l.Stack.top()
	atomID, _ := ir.AtomAt(g, ir.Position{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex})

	switch g.Kind(atomID) {
	case ir.ByteString:
		lit := g.ByteStringBytes(atomID)
		if int(top.ByteOffset) >= len(lit) || lit[top.ByteOffset] != b {
			return Frontier{}
		}
		if int(top.ByteOffset)+1 < len(lit) {
			next := l.Stack.withTop(Frame{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex, ByteOffset: top.ByteOffset + 1})
			return Frontier{Live: []Live{{Stack: next}}}
		}
		advanced := l.Stack.withTop(Frame{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex + 1})
		return Close(g, advanced)

	case ir.CharClass, ir.CharClassStar:
		buf := append(append([]byte(nil), l.RuneBuf...), b)
		if !utf8.FullRune(buf) {
			if len(buf) >= utf8.UTFMax {
				return Frontier{} // malformed, never completes
			}
			return Frontier{Live: []Live{{Stack: l.Stack, RuneBuf: buf}}}
		}
		r, size := utf8.DecodeRune(buf)
		if size != len(buf) || r == utf8.RuneError {
			return Frontier{}
		}
		ranges, negated := g.CharClassRanges(atomID)
		in := ir.ContainsRune(ranges, r)
		if negated {
			in = !in
		}
		if !in {
			return Frontier{}
		}
		if g.Kind(atomID) == ir.CharClassStar {
			// Consumed one repetition; re-close from the same position so
			// the frontier again offers both "wait here for another
			// repetition" and "stop now, advance past the atom".
			return Close(g, l.Stack)
		}
		advanced := l.Stack.withTop(Frame{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex + 1})
		return Close(g, advanced)

	default:
		return Frontier{}
	}
}
