// Package ir defines the grammar intermediate representation: a flat,
// pointer-free expression arena plus a rule table. Every front-end
// (ebnf, rx, jsonschema, structuraltag) builds a Grammar through Builder;
// normalize canonicalizes it; compile and match consume the canonical form.
package ir

// ExprKind tags the variant stored at a given arena offset.
type ExprKind int32

const (
	ByteString ExprKind = iota
	CharClass
	CharClassStar
	RuleRef
	Sequence
	Choice
	EmptyStr
	TagDispatch
	RepeatRange
)

func (k ExprKind) String() string {
	switch k {
	case ByteString:
		return "ByteString"
	case CharClass:
		return "CharClass"
	case CharClassStar:
		return "CharClassStar"
	case RuleRef:
		return "RuleRef"
	case Sequence:
		return "Sequence"
	case Choice:
		return "Choice"
	case EmptyStr:
		return "EmptyStr"
	case TagDispatch:
		return "TagDispatch"
	case RepeatRange:
		return "RepeatRange"
	default:
		return "?"
	}
}

// CharRange is a closed, inclusive codepoint range [Lo, Hi].
type CharRange struct {
	Lo, Hi int32
}

// TagDispatchRule maps a single trigger string to the rule it dispatches into.
type TagDispatchRule struct {
	Trigger string `json:"trigger"`
	RuleID  int32  `json:"rule_id"`
}

// TagDispatchData holds the closed payload of a TagDispatch node. It is kept
// out of the integer arena (unlike every other expr kind) because its
// triggers/stop strings are themselves byte strings of varying length; the
// arena only stores an index into Grammar.TagDispatches.
type TagDispatchData struct {
	Tags              []TagDispatchRule
	StopEos           bool
	StopStrings        []string
	LoopAfterDispatch bool
	Excludes          []string
}

// Rule is one named production: a body expression and an optional trailing
// lookahead expression (LookaheadID < 0 means "none").
type Rule struct {
	Name         string
	BodyID       int32
	LookaheadID  int32
	AllowEmpty   bool // set by normalize's allow-empty analysis
}

// Arena is the flattened expression table: Data holds payload integers for
// every expression (rule ids, codepoints, byte values, child expr ids…) and
// Indptr marks where each expression's slice of Data begins, CSR-style.
// Expression i occupies Data[Indptr[i]:Indptr[i+1]]; Kinds[i] says how to
// interpret it.
type Arena struct {
	Kinds  []ExprKind
	Data   []int32
	Indptr []int32
}

// Grammar is a complete, arena-backed grammar: a rule table plus the shared
// expression arena every rule body and lookahead indexes into.
type Grammar struct {
	Rules         []Rule
	Arena         Arena
	RootRuleID    int32
	TagDispatches []TagDispatchData

	// AllowEmptyRuleIDs is populated by normalize.ComputeAllowEmpty.
	AllowEmptyRuleIDs map[int32]bool
}

// NumExprs returns the number of expression nodes in the arena.
func (g *Grammar) NumExprs() int {
	return len(g.Arena.Kinds)
}

// Kind returns the tag of expression id.
func (g *Grammar) Kind(id int32) ExprKind {
	return g.Arena.Kinds[id]
}

// payload returns the raw Data slice backing expression id.
func (g *Grammar) payload(id int32) []int32 {
	return g.Arena.Data[g.Arena.Indptr[id]:g.Arena.Indptr[id+1]]
}

// ByteStringBytes returns the literal bytes of a ByteString expr.
func (g *Grammar) ByteStringBytes(id int32) []byte {
	p := g.payload(id)
	out := make([]byte, len(p))
	for i, v := range p {
		out[i] = byte(v)
	}
	return out
}

// CharClassRanges returns the ranges of a CharClass/CharClassStar expr; the
// final element of the payload is a negated flag (0/1), so the range count
// is (len(payload)-1)/2.
func (g *Grammar) CharClassRanges(id int32) ([]CharRange, bool) {
	p := g.payload(id)
	if len(p) == 0 {
		return nil, false
	}
	negated := p[len(p)-1] != 0
	n := (len(p) - 1) / 2
	ranges := make([]CharRange, n)
	for i := 0; i < n; i++ {
		ranges[i] = CharRange{p[2*i], p[2*i+1]}
	}
	return ranges, negated
}

// RuleRefID returns the target rule id of a RuleRef expr.
func (g *Grammar) RuleRefID(id int32) int32 {
	return g.payload(id)[0]
}

// Children returns the child expr ids of a Sequence/Choice expr.
func (g *Grammar) Children(id int32) []int32 {
	return g.payload(id)
}

// RepeatRangeParts returns (child, min, max) of a RepeatRange expr; max == -1
// means unbounded.
func (g *Grammar) RepeatRangeParts(id int32) (child, min, max int32) {
	p := g.payload(id)
	return p[0], p[1], p[2]
}

// TagDispatchData returns the out-of-arena payload of a TagDispatch expr.
func (g *Grammar) TagDispatchData(id int32) *TagDispatchData {
	idx := g.payload(id)[0]
	return &g.TagDispatches[idx]
}
