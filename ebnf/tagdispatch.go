package ebnf

import (
	"github.com/ava12/gramatch/ir"
)

// parseTagDispatch parses a TagDispatch(...) terminal body, assigned as the
// body of ruleID. Ruled out as the body of the root rule (rule 0) per
// spec.md §4.4: a grammar whose entry point is free-form-dispatch-only has
// no bounded structure to compile a cache against.
func (p *parser) parseTagDispatch(ruleID int32) (int32, error) {
	p.sc.advance(len("TagDispatch"))
	p.sc.skipSpaceAndComments()
	if !p.sc.tryLiteral("(") {
		r, _ := p.sc.peekRune()
		return 0, unexpectedCharError(p.sc.curPos(), r)
	}

	var data ir.TagDispatchData
	for {
		p.sc.skipSpaceAndComments()
		if p.sc.tryLiteral(")") {
			break
		}

		b, _ := p.sc.peekByte()
		switch {
		case b == '(':
			if err := p.parseTagDispatchPair(&data); err != nil {
				return 0, err
			}
		case p.atKeyword("stop_eos"):
			p.sc.advance(len("stop_eos"))
			p.sc.skipSpaceAndComments()
			if !p.sc.tryLiteral("=") {
				r, _ := p.sc.peekRune()
				return 0, unexpectedCharError(p.sc.curPos(), r)
			}
			p.sc.skipSpaceAndComments()
			v, err := p.parseBool()
			if err != nil {
				return 0, err
			}
			data.StopEos = v
		case p.atKeyword("stop_str"):
			p.sc.advance(len("stop_str"))
			p.sc.skipSpaceAndComments()
			if !p.sc.tryLiteral("=") {
				r, _ := p.sc.peekRune()
				return 0, unexpectedCharError(p.sc.curPos(), r)
			}
			p.sc.skipSpaceAndComments()
			v, err := p.parseStringTuple()
			if err != nil {
				return 0, err
			}
			data.StopStrings = v
		case p.atKeyword("loop_after_dispatch"):
			p.sc.advance(len("loop_after_dispatch"))
			p.sc.skipSpaceAndComments()
			if !p.sc.tryLiteral("=") {
				r, _ := p.sc.peekRune()
				return 0, unexpectedCharError(p.sc.curPos(), r)
			}
			p.sc.skipSpaceAndComments()
			v, err := p.parseBool()
			if err != nil {
				return 0, err
			}
			data.LoopAfterDispatch = v
		case p.atKeyword("excludes"):
			p.sc.advance(len("excludes"))
			p.sc.skipSpaceAndComments()
			if !p.sc.tryLiteral("=") {
				r, _ := p.sc.peekRune()
				return 0, unexpectedCharError(p.sc.curPos(), r)
			}
			p.sc.skipSpaceAndComments()
			v, err := p.parseStringTuple()
			if err != nil {
				return 0, err
			}
			data.Excludes = v
		default:
			r, _ := p.sc.peekRune()
			return 0, unexpectedCharError(p.sc.curPos(), r)
		}

		p.sc.skipSpaceAndComments()
		p.sc.tryLiteral(",")
	}

	return p.b.TagDispatch(data), nil
}

// parseTagDispatchPair parses a single ("trigger", ruleName) entry.
func (p *parser) parseTagDispatchPair(data *ir.TagDispatchData) error {
	p.sc.advance(1) // '('
	p.sc.skipSpaceAndComments()

	triggerPos := p.sc.curPos()
	triggerBytes, err := p.readStringBytes()
	if err != nil {
		return err
	}
	trigger := string(triggerBytes)
	if trigger == "" {
		return emptyTriggerError(triggerPos)
	}

	p.sc.skipSpaceAndComments()
	if !p.sc.tryLiteral(",") {
		r, _ := p.sc.peekRune()
		return unexpectedCharError(p.sc.curPos(), r)
	}
	p.sc.skipSpaceAndComments()

	namePos := p.sc.curPos()
	name, ok := p.sc.tryName()
	if !ok {
		r, _ := p.sc.peekRune()
		return unexpectedCharError(p.sc.curPos(), r)
	}
	targetID := p.b.FindRule(name)
	if targetID < 0 {
		return undefinedRuleError(namePos, name)
	}
	if targetID == 0 {
		return tagDispatchRootTargetError(namePos, name)
	}

	p.sc.skipSpaceAndComments()
	if !p.sc.tryLiteral(")") {
		r, _ := p.sc.peekRune()
		return unexpectedCharError(p.sc.curPos(), r)
	}

	data.Tags = append(data.Tags, ir.TagDispatchRule{Trigger: trigger, RuleID: targetID})
	return nil
}

func (p *parser) parseBool() (bool, error) {
	if p.sc.tryLiteral("true") {
		return true, nil
	}
	if p.sc.tryLiteral("false") {
		return false, nil
	}
	r, _ := p.sc.peekRune()
	return false, unexpectedCharError(p.sc.curPos(), r)
}

// parseStringTuple parses "(" str {"," str} ")", or "()" for an empty tuple.
func (p *parser) parseStringTuple() ([]string, error) {
	if !p.sc.tryLiteral("(") {
		r, _ := p.sc.peekRune()
		return nil, unexpectedCharError(p.sc.curPos(), r)
	}
	p.sc.skipSpaceAndComments()

	var out []string
	if p.sc.tryLiteral(")") {
		return out, nil
	}

	for {
		p.sc.skipSpaceAndComments()
		b, err := p.readStringBytes()
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))

		p.sc.skipSpaceAndComments()
		if p.sc.tryLiteral(")") {
			break
		}
		if !p.sc.tryLiteral(",") {
			r, _ := p.sc.peekRune()
			return nil, unexpectedCharError(p.sc.curPos(), r)
		}
	}
	return out, nil
}
