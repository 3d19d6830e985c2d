package structuraltag

import (
	"fmt"
	"strings"

	"github.com/ava12/gramatch/ebnf"
	"github.com/ava12/gramatch/ir"
	"github.com/ava12/gramatch/jsonschema"
	"github.com/ava12/gramatch/rx"
)

// converter emits IR for an analyzed Format tree. Sub-grammars produced by
// other front-ends (jsonschema, rx, ebnf) are spliced in wholesale via
// ir.Builder.Import rather than re-derived, so a structural tag embedding a
// tool's JSON-Schema parameters reuses exactly the same lowering jsonschema
// itself uses for a standalone schema.
type converter struct {
	b *ir.Builder
	n int
}

// Convert analyzes f (see analyze.go) and lowers it to a single-root
// ir.Grammar.
func Convert(f Format) (*ir.Grammar, error) {
	a := newAnalyzer()
	if err := a.analyze(f, nil); err != nil {
		return nil, err
	}

	b := ir.NewBuilder()
	c := &converter{b: b}
	root := b.AddRule("root")
	body, err := c.convert(f, nil)
	if err != nil {
		return nil, err
	}
	b.SetBody(root, body)
	return b.Build(root), nil
}

func (c *converter) fresh() int {
	c.n++
	return c.n
}

// convert lowers f to an expr id. terminators carries the nearest enclosing
// Tag's non-empty end alternatives, propagated the same way analyze.go's
// boundedness pass does, so an AnyText/TriggeredTags leaf in tail position
// knows what string ends the section it is scanning.
func (c *converter) convert(f Format, terminators []string) (int32, error) {
	switch n := f.(type) {
	case *ConstString:
		return c.b.ByteString([]byte(n.Value)), nil
	case *JSONSchema:
		return c.importGrammar(jsonschema.Parse(n.Schema, jsonschema.DefaultConfig()))
	case *Regex:
		return c.importGrammar(rx.Parse("structural_tag_regex", n.Pattern))
	case *EBNF:
		return c.importGrammar(ebnf.Parse("structural_tag_ebnf", []byte(n.Grammar)))
	case *QwenXMLParameter:
		return c.convertQwenXML(n.Schema)
	case *AnyText:
		return c.convertAnyText(n, terminators), nil
	case *Sequence:
		return c.convertSequence(n, terminators)
	case *Or:
		return c.convertOr(n, terminators)
	case *Tag:
		return c.convertTagBody(n.Begin, n)
	case *TriggeredTags:
		return c.convertTriggeredTags(n, terminators)
	case *TagsWithSeparator:
		return c.convertTagsWithSeparator(n)
	}
	return 0, fmt.Errorf("structuraltag: unknown format node %T", f)
}

// importGrammar splices a sub-grammar produced by another front-end into
// this converter's builder and returns a reference to its root rule.
func (c *converter) importGrammar(g *ir.Grammar, err error) (int32, error) {
	if err != nil {
		return 0, err
	}
	ruleID := c.b.Import(g)
	return c.b.RuleRef(ruleID), nil
}

func (c *converter) convertSequence(n *Sequence, terminators []string) (int32, error) {
	if len(n.Elements) == 0 {
		return c.b.EmptyStr(), nil
	}
	last := len(n.Elements) - 1
	ids := make([]int32, len(n.Elements))
	for i, el := range n.Elements {
		childTerminators := terminators
		if i != last {
			childTerminators = nil
		}
		id, err := c.convert(el, childTerminators)
		if err != nil {
			return 0, err
		}
		ids[i] = id
	}
	if len(ids) == 1 {
		return ids[0], nil
	}
	return c.b.Sequence(ids...), nil
}

func (c *converter) convertOr(n *Or, terminators []string) (int32, error) {
	if len(n.Elements) == 0 {
		return c.b.EmptyStr(), nil
	}
	ids := make([]int32, len(n.Elements))
	for i, el := range n.Elements {
		id, err := c.convert(el, terminators)
		if err != nil {
			return 0, err
		}
		ids[i] = id
	}
	if len(ids) == 1 {
		return ids[0], nil
	}
	return c.b.Choice(ids...), nil
}

// convertAnyText lowers to a TagDispatch carrying no dispatched tags: the
// only IR primitive whose runtime semantics (spec.md §4.7's trigger/stop/
// excludes trie) implement "scan free text, stop on a terminator, die on an
// excluded substring" without re-deriving that machinery here.
func (c *converter) convertAnyText(n *AnyText, terminators []string) int32 {
	return c.b.TagDispatch(ir.TagDispatchData{
		StopStrings: terminators,
		StopEos:     len(terminators) == 0,
		Excludes:    n.Excludes,
	})
}

// convertTagBody lowers begin (the literal text to emit before content —
// either a tag's full begin string, or the remainder after a dispatch
// trigger has already consumed a prefix of it) followed by content and one
// of end's alternatives.
func (c *converter) convertTagBody(begin string, t *Tag) (int32, error) {
	beginID := c.b.ByteString([]byte(begin))
	contentID, err := c.convert(t.Content, nonEmptyStrings(t.End))
	if err != nil {
		return 0, err
	}
	endID := c.convertEndAlternatives(t.End)
	return c.b.Sequence(beginID, contentID, endID), nil
}

func (c *converter) convertEndAlternatives(ends []string) int32 {
	if len(ends) == 0 {
		return c.b.EmptyStr()
	}
	ids := make([]int32, len(ends))
	for i, e := range ends {
		ids[i] = c.b.ByteString([]byte(e))
	}
	if len(ids) == 1 {
		return ids[0]
	}
	return c.b.Choice(ids...)
}

func matchingTrigger(begin string, triggers []string) string {
	for _, t := range triggers {
		if strings.HasPrefix(begin, t) {
			return t
		}
	}
	return ""
}

// convertTriggeredTags synthesizes one rule per tag (its begin string minus
// the matched trigger prefix, then content, then end) and a root TagDispatch
// routing on the trigger trie, per spec.md §4.4: stop_str is the inferred
// outer terminator, loop_after_dispatch is ¬stop_after_first, and
// at_least_one is expressed by requiring one full tag occurrence (trigger
// included) ahead of the dispatch loop rather than folding it into the loop
// itself.
func (c *converter) convertTriggeredTags(n *TriggeredTags, terminators []string) (int32, error) {
	rules := make([]ir.TagDispatchRule, 0, len(n.Tags))
	var mandatory []int32
	for _, tag := range n.Tags {
		trigger := matchingTrigger(tag.Begin, n.Triggers)
		rest := tag.Begin[len(trigger):]

		ruleID := c.b.AddRule(fmt.Sprintf("triggered_tag_%d", c.fresh()))
		body, err := c.convertTagBody(rest, tag)
		if err != nil {
			return 0, err
		}
		c.b.SetBody(ruleID, body)
		rules = append(rules, ir.TagDispatchRule{Trigger: trigger, RuleID: ruleID})

		if n.AtLeastOne {
			full, err := c.convertTagBody(tag.Begin, tag)
			if err != nil {
				return 0, err
			}
			mandatory = append(mandatory, full)
		}
	}

	dispatchID := c.b.TagDispatch(ir.TagDispatchData{
		Tags:              rules,
		StopStrings:       terminators,
		StopEos:           len(terminators) == 0,
		LoopAfterDispatch: !n.StopAfterFirst,
		Excludes:          n.Excludes,
	})

	if !n.AtLeastOne {
		return dispatchID, nil
	}
	var mandatoryChoice int32
	if len(mandatory) == 1 {
		mandatoryChoice = mandatory[0]
	} else {
		mandatoryChoice = c.b.Choice(mandatory...)
	}
	return c.b.Sequence(mandatoryChoice, dispatchID), nil
}

// convertTagsWithSeparator lowers `(tag (sep tag)*)?`, its quantifier
// controlled by the two booleans exactly as spec.md §4.4 describes.
func (c *converter) convertTagsWithSeparator(n *TagsWithSeparator) (int32, error) {
	tagIDs := make([]int32, len(n.Tags))
	for i, tag := range n.Tags {
		id, err := c.convertTagBody(tag.Begin, tag)
		if err != nil {
			return 0, err
		}
		tagIDs[i] = id
	}

	var tagChoice int32
	switch len(tagIDs) {
	case 0:
		tagChoice = c.b.EmptyStr()
	case 1:
		tagChoice = tagIDs[0]
	default:
		tagChoice = c.b.Choice(tagIDs...)
	}

	var core int32
	if n.StopAfterFirst {
		core = tagChoice
	} else {
		sepTag := c.b.Sequence(c.b.ByteString([]byte(n.Separator)), tagChoice)
		rep := c.b.RepeatRange(sepTag, 0, -1)
		core = c.b.Sequence(tagChoice, rep)
	}
	if n.AtLeastOne {
		return core, nil
	}
	return c.b.Choice(core, c.b.EmptyStr()), nil
}
