// Package ebnf parses the textual grammar surface of spec.md §4.1/§6.1 into
// an ir.Grammar: W3C-style EBNF extended with character classes, bounded
// quantifiers, a trailing lookahead assertion, and a TagDispatch terminal.
package ebnf

import (
	"regexp"
	"unicode/utf8"

	"github.com/ava12/gramatch/ir"
	"github.com/ava12/gramatch/source"
)

var ruleHeaderRe = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z_][A-Za-z0-9_-]*)[ \t]*::=`)

type parser struct {
	sc  *scanner
	b   *ir.Builder
	src *source.Source
}

// Parse parses content (named name, for error messages) into an ir.Grammar.
// Returns *gramatch.Error on any fatal condition; parsing never recovers
// from an error, matching spec.md §4.1.
func Parse(name string, content []byte) (*ir.Grammar, error) {
	src := source.New(name, content)
	b := ir.NewBuilder()

	if err := preRegisterRules(src, content, b); err != nil {
		return nil, err
	}
	if b.RuleCount() == 0 {
		return nil, missingRootRuleError()
	}

	p := &parser{sc: newScanner(src), b: b, src: src}
	if err := p.parseRules(); err != nil {
		return nil, err
	}

	return b.Build(0), nil
}

// preRegisterRules scans for top-level "<name> ::=" headers so forward rule
// references resolve during the single recursive-descent parse pass that
// follows. The root rule is, by convention, the first rule declared.
func preRegisterRules(src *source.Source, content []byte, b *ir.Builder) error {
	matches := ruleHeaderRe.FindAllSubmatchIndex(content, -1)
	for _, m := range matches {
		name := string(content[m[2]:m[3]])
		if b.FindRule(name) >= 0 {
			return duplicateRuleError(source.NewPos(src, m[2]), name)
		}
		b.AddRule(name)
	}
	return nil
}

func (p *parser) parseRules() error {
	for {
		p.sc.skipSpaceAndComments()
		if p.sc.eof() {
			return nil
		}

		name, ok := p.sc.tryName()
		if !ok {
			r, _ := p.sc.peekRune()
			return unexpectedCharError(p.sc.curPos(), r)
		}

		p.sc.skipSpaceAndComments()
		if !p.sc.tryLiteral("::=") {
			r, _ := p.sc.peekRune()
			return unexpectedCharError(p.sc.curPos(), r)
		}
		p.sc.skipSpaceAndComments()

		ruleID := p.b.FindRule(name)

		var bodyID int32
		var err error
		if p.atKeyword("TagDispatch") {
			bodyID, err = p.parseTagDispatch(ruleID)
		} else {
			if !p.sc.tryLiteral("(") {
				r, _ := p.sc.peekRune()
				return unexpectedCharError(p.sc.curPos(), r)
			}
			p.sc.skipSpaceAndComments()
			bodyID, err = p.parseAlt()
			if err == nil {
				p.sc.skipSpaceAndComments()
				if !p.sc.tryLiteral(")") {
					r, _ := p.sc.peekRune()
					err = unexpectedCharError(p.sc.curPos(), r)
				}
			}
		}
		if err != nil {
			return err
		}
		p.b.SetBody(ruleID, bodyID)

		p.sc.skipSpaceAndComments()
		if p.sc.tryLiteral("(=") {
			p.sc.skipSpaceAndComments()
			laID, err := p.parseAlt()
			if err != nil {
				return err
			}
			p.sc.skipSpaceAndComments()
			if !p.sc.tryLiteral(")") {
				r, _ := p.sc.peekRune()
				return unexpectedCharError(p.sc.curPos(), r)
			}
			p.b.SetLookahead(ruleID, laID)
		}
	}
}

// atKeyword reports whether word occurs at the current position without
// consuming, respecting identifier boundaries (so e.g. "TagDispatcher"
// does not match "TagDispatch").
func (p *parser) atKeyword(word string) bool {
	c := p.sc.content
	pos := p.sc.pos
	if pos+len(word) > len(c) || string(c[pos:pos+len(word)]) != word {
		return false
	}
	if pos+len(word) < len(c) {
		r, _ := utf8.DecodeRune(c[pos+len(word):])
		if isNameCont(r) {
			return false
		}
	}
	return true
}

func (p *parser) parseAlt() (int32, error) {
	first, err := p.parseSeq()
	if err != nil {
		return 0, err
	}

	children := []int32{first}
	for {
		save := p.sc.pos
		p.sc.skipSpaceAndComments()
		if !p.sc.tryLiteral("|") {
			p.sc.pos = save
			break
		}
		p.sc.skipSpaceAndComments()
		next, err := p.parseSeq()
		if err != nil {
			return 0, err
		}
		children = append(children, next)
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return p.b.Choice(children...), nil
}

func (p *parser) parseSeq() (int32, error) {
	var atoms []int32
	for {
		p.sc.skipSpaceAndComments()
		if !p.atStartOfAtom() {
			break
		}
		atom, err := p.parseAtom()
		if err != nil {
			return 0, err
		}
		atoms = append(atoms, atom)
	}
	if len(atoms) == 0 {
		return p.b.EmptyStr(), nil
	}
	if len(atoms) == 1 {
		return atoms[0], nil
	}
	return p.b.Sequence(atoms...), nil
}

func (p *parser) atStartOfAtom() bool {
	if p.sc.eof() {
		return false
	}
	if p.atLookaheadMarker() {
		return false
	}
	b, _ := p.sc.peekByte()
	switch b {
	case '"', '[', '(':
		return true
	case ')', '|':
		return false
	}
	r, _ := p.sc.peekRune()
	return isNameStart(r)
}

func (p *parser) atLookaheadMarker() bool {
	c := p.sc.content
	pos := p.sc.pos
	return pos+1 < len(c) && c[pos] == '(' && c[pos+1] == '='
}

func (p *parser) parseAtom() (int32, error) {
	primary, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	id, n, err := p.tryQuantifier(primary)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return id, nil
	}
	if _, n2, err := p.tryQuantifier(id); err != nil {
		return 0, err
	} else if n2 > 0 {
		return 0, consecutiveQuantifierError(p.sc.curPos())
	}
	return id, nil
}

// tryQuantifier attempts to consume a single quantifier applying to child.
// Returns (newExprID, bytesConsumedMarker, err); bytesConsumedMarker is 0 if
// no quantifier was present so callers can detect "none consumed" without a
// separate bool (kept for a compact double-check against stacked quantifiers).
func (p *parser) tryQuantifier(child int32) (int32, int, error) {
	switch {
	case p.sc.tryLiteral("*"):
		return p.b.RepeatRange(child, 0, -1), 1, nil
	case p.sc.tryLiteral("+"):
		return p.b.RepeatRange(child, 1, -1), 1, nil
	case p.sc.tryLiteral("?"):
		return p.b.RepeatRange(child, 0, 1), 1, nil
	case p.sc.tryLiteral("{"):
		min, ok := p.sc.tryInt()
		if !ok {
			r, _ := p.sc.peekRune()
			return 0, 0, unexpectedCharError(p.sc.curPos(), r)
		}
		max := min
		if p.sc.tryLiteral(",") {
			if m, ok := p.sc.tryInt(); ok {
				max = m
			} else {
				max = -1
			}
		}
		if !p.sc.tryLiteral("}") {
			r, _ := p.sc.peekRune()
			return 0, 0, unexpectedCharError(p.sc.curPos(), r)
		}
		return p.b.RepeatRange(child, int32(min), int32(max)), 1, nil
	default:
		return child, 0, nil
	}
}

func (p *parser) parsePrimary() (int32, error) {
	b, _ := p.sc.peekByte()
	switch {
	case b == '"':
		return p.parseStringLiteral()
	case b == '[':
		return p.parseCharClass()
	case b == '(':
		p.sc.advance(1)
		p.sc.skipSpaceAndComments()
		id, err := p.parseAlt()
		if err != nil {
			return 0, err
		}
		p.sc.skipSpaceAndComments()
		if !p.sc.tryLiteral(")") {
			r, _ := p.sc.peekRune()
			return 0, unexpectedCharError(p.sc.curPos(), r)
		}
		return id, nil
	}

	startPos := p.sc.curPos()
	name, ok := p.sc.tryName()
	if !ok {
		r, _ := p.sc.peekRune()
		return 0, unexpectedCharError(p.sc.curPos(), r)
	}
	ruleID := p.b.FindRule(name)
	if ruleID < 0 {
		return 0, undefinedRuleError(startPos, name)
	}
	return p.b.RuleRef(ruleID), nil
}

func (p *parser) parseStringLiteral() (int32, error) {
	b, err := p.readStringBytes()
	if err != nil {
		return 0, err
	}
	return p.b.ByteString(b), nil
}

// readStringBytes consumes a "..."-delimited string starting at the opening
// quote and returns its decoded bytes.
func (p *parser) readStringBytes() ([]byte, error) {
	p.sc.advance(1) // opening quote
	var out []byte
	for {
		b, ok := p.sc.peekByte()
		if !ok {
			return nil, eofError(p.sc.curPos())
		}
		if b == '"' {
			p.sc.advance(1)
			break
		}
		if b == '\n' {
			return nil, newlineInCharClassError(p.sc.curPos())
		}
		if b == '\\' {
			p.sc.advance(1)
			r, err := p.sc.readEscape()
			if err != nil {
				return nil, err
			}
			out = appendRune(out, r)
			continue
		}
		r, w := p.sc.peekRune()
		p.sc.advance(w)
		out = appendRune(out, r)
	}
	return out, nil
}

func (p *parser) parseCharClass() (int32, error) {
	p.sc.advance(1) // '['
	negated := p.sc.tryLiteral("^")

	var ranges []ir.CharRange
	for {
		b, ok := p.sc.peekByte()
		if !ok {
			return 0, eofError(p.sc.curPos())
		}
		if b == ']' {
			p.sc.advance(1)
			break
		}
		if b == '\n' {
			return 0, newlineInCharClassError(p.sc.curPos())
		}

		loPos := p.sc.curPos()
		lo, err := p.readClassRune()
		if err != nil {
			return 0, err
		}

		hi := lo
		if b2, ok := p.sc.peekByte(); ok && b2 == '-' {
			savedPos := p.sc.pos
			p.sc.advance(1)
			if nb, ok := p.sc.peekByte(); ok && nb != ']' {
				hi, err = p.readClassRune()
				if err != nil {
					return 0, err
				}
			} else {
				p.sc.pos = savedPos
			}
		}
		if hi < lo {
			return 0, charClassRangeOrderError(loPos, lo, hi)
		}
		ranges = append(ranges, ir.CharRange{Lo: int32(lo), Hi: int32(hi)})
	}

	ranges = ir.CanonicalizeRanges(ranges)
	return p.b.CharClass(ranges, negated), nil
}

func (p *parser) readClassRune() (rune, error) {
	b, _ := p.sc.peekByte()
	if b == '\\' {
		p.sc.advance(1)
		return p.sc.readEscape()
	}
	r, w := p.sc.peekRune()
	p.sc.advance(w)
	return r, nil
}

func appendRune(b []byte, r rune) []byte {
	var buf [4]byte
	n := utf8.EncodeRune(buf[:], r)
	return append(b, buf[:n]...)
}
