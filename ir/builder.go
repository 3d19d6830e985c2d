package ir

// Builder accumulates arena entries and rules while a front-end converter
// walks its own source tree. It never removes or reorders an expr once
// appended, so ids handed out during a walk stay valid for the rest of it.
type Builder struct {
	g Grammar
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	b := &Builder{}
	b.g.Arena.Indptr = []int32{0}
	return b
}

func (b *Builder) push(kind ExprKind, data []int32) int32 {
	id := int32(len(b.g.Arena.Kinds))
	b.g.Arena.Kinds = append(b.g.Arena.Kinds, kind)
	b.g.Arena.Data = append(b.g.Arena.Data, data...)
	b.g.Arena.Indptr = append(b.g.Arena.Indptr, int32(len(b.g.Arena.Data)))
	return id
}

// ByteString appends a literal byte-string expr.
func (b *Builder) ByteString(bytes []byte) int32 {
	data := make([]int32, len(bytes))
	for i, by := range bytes {
		data[i] = int32(by)
	}
	return b.push(ByteString, data)
}

// CharClass appends a character-class expr. Ranges must already be sorted
// and disjoint (see CanonicalizeRanges).
func (b *Builder) CharClass(ranges []CharRange, negated bool) int32 {
	return b.pushCharClass(CharClass, ranges, negated)
}

// CharClassStar appends a "zero or more of class" expr.
func (b *Builder) CharClassStar(ranges []CharRange, negated bool) int32 {
	return b.pushCharClass(CharClassStar, ranges, negated)
}

func (b *Builder) pushCharClass(kind ExprKind, ranges []CharRange, negated bool) int32 {
	data := make([]int32, 0, len(ranges)*2+1)
	for _, r := range ranges {
		data = append(data, r.Lo, r.Hi)
	}
	if negated {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	return b.push(kind, data)
}

// RuleRef appends a reference to ruleID.
func (b *Builder) RuleRef(ruleID int32) int32 {
	return b.push(RuleRef, []int32{ruleID})
}

// Sequence appends a concatenation of children, in order.
func (b *Builder) Sequence(children ...int32) int32 {
	return b.push(Sequence, children)
}

// Choice appends an alternation of children.
func (b *Builder) Choice(children ...int32) int32 {
	return b.push(Choice, children)
}

// EmptyStr appends the empty-string expr.
func (b *Builder) EmptyStr() int32 {
	return b.push(EmptyStr, nil)
}

// RepeatRange appends a bounded-repetition expr; max == -1 means unbounded.
func (b *Builder) RepeatRange(child, min, max int32) int32 {
	return b.push(RepeatRange, []int32{child, min, max})
}

// TagDispatch appends a tag-dispatch expr, storing data out-of-arena.
func (b *Builder) TagDispatch(data TagDispatchData) int32 {
	idx := int32(len(b.g.TagDispatches))
	b.g.TagDispatches = append(b.g.TagDispatches, data)
	return b.push(TagDispatch, []int32{idx})
}

// AddRule reserves a rule slot with no body yet (BodyID == -1) and returns
// its id; used so mutually recursive rules can RuleRef each other before
// their own bodies are built.
func (b *Builder) AddRule(name string) int32 {
	id := int32(len(b.g.Rules))
	b.g.Rules = append(b.g.Rules, Rule{Name: name, BodyID: -1, LookaheadID: -1})
	return id
}

// SetBody fills in the body expr of a previously reserved rule.
func (b *Builder) SetBody(ruleID, bodyID int32) {
	b.g.Rules[ruleID].BodyID = bodyID
}

// SetLookahead fills in the lookahead expr of a previously reserved rule.
func (b *Builder) SetLookahead(ruleID, exprID int32) {
	b.g.Rules[ruleID].LookaheadID = exprID
}

// Kind returns the tag of a previously-pushed expr, for passes that need to
// inspect what they just built (e.g. normalize deciding whether a rebuilt
// sub-choice already collapsed to a single alternative).
func (b *Builder) Kind(id int32) ExprKind {
	return b.g.Kind(id)
}

// Children returns the child expr ids of a previously-pushed Sequence/Choice.
func (b *Builder) Children(id int32) []int32 {
	return b.g.Children(id)
}

// CharClassRanges returns the ranges of a previously-pushed CharClass/
// CharClassStar expr.
func (b *Builder) CharClassRanges(id int32) ([]CharRange, bool) {
	return b.g.CharClassRanges(id)
}

// FindRule returns the id of a rule by name, or -1 if undefined.
func (b *Builder) FindRule(name string) int32 {
	for i, r := range b.g.Rules {
		if r.Name == name {
			return int32(i)
		}
	}
	return -1
}

// RuleCount returns the number of reserved rule slots.
func (b *Builder) RuleCount() int32 {
	return int32(len(b.g.Rules))
}

// Build finalizes the grammar with the given root rule id.
func (b *Builder) Build(rootRuleID int32) *Grammar {
	b.g.RootRuleID = rootRuleID
	g := b.g
	return &g
}

// Import appends every rule and arena expr of g into b, offsetting every
// expr id, rule id, and tag-dispatch index it carries so the copy is
// self-consistent inside b's own arena, and returns g's root rule id in b's
// id space (a RuleRef to it embeds g as a sub-grammar of whatever b goes on
// to build). Used by front-ends that splice one grammar's output inside
// another's (structuraltag embedding jsonschema/ebnf/rx sub-grammars).
func (b *Builder) Import(g *Grammar) int32 {
	exprOffset := int32(len(b.g.Arena.Kinds))
	ruleOffset := int32(len(b.g.Rules))
	tdOffset := int32(len(b.g.TagDispatches))

	for i, kind := range g.Arena.Kinds {
		lo, hi := g.Arena.Indptr[i], g.Arena.Indptr[i+1]
		data := append([]int32(nil), g.Arena.Data[lo:hi]...)
		switch kind {
		case RuleRef:
			data[0] += ruleOffset
		case Sequence, Choice:
			for j := range data {
				data[j] += exprOffset
			}
		case RepeatRange:
			data[0] += exprOffset // child; min/max are literal bounds
		case TagDispatch:
			data[0] += tdOffset
		}
		b.push(kind, data)
	}

	for _, td := range g.TagDispatches {
		nt := TagDispatchData{
			StopEos:           td.StopEos,
			StopStrings:       td.StopStrings,
			LoopAfterDispatch: td.LoopAfterDispatch,
			Excludes:          td.Excludes,
			Tags:              make([]TagDispatchRule, len(td.Tags)),
		}
		for i, tr := range td.Tags {
			nt.Tags[i] = TagDispatchRule{Trigger: tr.Trigger, RuleID: tr.RuleID + ruleOffset}
		}
		b.g.TagDispatches = append(b.g.TagDispatches, nt)
	}

	for _, r := range g.Rules {
		nr := Rule{Name: r.Name, BodyID: r.BodyID, LookaheadID: r.LookaheadID, AllowEmpty: r.AllowEmpty}
		if nr.BodyID >= 0 {
			nr.BodyID += exprOffset
		}
		if nr.LookaheadID >= 0 {
			nr.LookaheadID += exprOffset
		}
		b.g.Rules = append(b.g.Rules, nr)
	}

	return g.RootRuleID + ruleOffset
}
