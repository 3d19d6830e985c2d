// Package rx lowers the JS (ECMA-262) regex subset of spec.md §4.2 into an
// ir.Grammar with a single root rule.
package rx

import (
	"unicode/utf8"

	"github.com/ava12/gramatch/ir"
)

type parser struct {
	sc *scanner
	b  *ir.Builder
}

// Parse lowers pattern (named name, for error messages) into an ir.Grammar
// whose root rule matches exactly the strings the pattern matches.
func Parse(name, pattern string) (*ir.Grammar, error) {
	b := ir.NewBuilder()
	root := b.AddRule("root")

	p := &parser{sc: newScanner(name, pattern), b: b}
	bodyID, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if !p.sc.eof() {
		r, _ := p.sc.peekRune()
		return nil, unexpectedCharError(p.sc.curPos(), r)
	}

	b.SetBody(root, bodyID)
	return b.Build(root), nil
}

func (p *parser) parseAlt() (int32, error) {
	first, err := p.parseSeq()
	if err != nil {
		return 0, err
	}

	children := []int32{first}
	for p.sc.tryLiteral("|") {
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
		if p.sc.eof() {
			break
		}
		b, _ := p.sc.peekByte()
		if b == '|' || b == ')' {
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

func (p *parser) parseAtom() (int32, error) {
	primary, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	return p.applyQuantifier(primary)
}

func (p *parser) applyQuantifier(child int32) (int32, error) {
	switch {
	case p.sc.tryLiteral("*"):
		return p.b.RepeatRange(child, 0, -1), nil
	case p.sc.tryLiteral("+"):
		return p.b.RepeatRange(child, 1, -1), nil
	case p.sc.tryLiteral("?"):
		return p.b.RepeatRange(child, 0, 1), nil
	}
	if p.looksLikeRangedQuantifier() {
		return 0, rangedQuantifierError(p.sc.curPos())
	}
	return child, nil
}

// looksLikeRangedQuantifier reports whether the cursor sits at "{" followed
// by a shape that ECMA-262 would treat as {m}, {m,}, or {m,n} — JS engines
// fall back to a literal "{" otherwise, and so do we, but the shape itself
// is explicitly unsupported per spec.md §4.2.
func (p *parser) looksLikeRangedQuantifier() bool {
	save := p.sc.pos
	defer func() { p.sc.pos = save }()

	if !p.sc.tryLiteral("{") {
		return false
	}
	_, hasMin := p.sc.tryInt()
	if p.sc.tryLiteral(",") {
		p.sc.tryInt()
	} else if !hasMin {
		return false
	}
	return p.sc.tryLiteral("}")
}

func (p *parser) parsePrimary() (int32, error) {
	b, ok := p.sc.peekByte()
	if !ok {
		return 0, eofError(p.sc.curPos())
	}

	switch b {
	case '^', '$':
		p.sc.advance(1)
		return p.b.EmptyStr(), nil
	case '.':
		p.sc.advance(1)
		return p.b.CharClass([]ir.CharRange{{Lo: '\n', Hi: '\n'}}, true), nil
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseCharClass()
	case '\\':
		p.sc.advance(1)
		esc, err := p.sc.readEscape(false)
		if err != nil {
			return 0, err
		}
		if esc.isClass {
			return p.b.CharClass(esc.ranges, esc.negated), nil
		}
		return p.b.ByteString(runeBytes(esc.r)), nil
	default:
		r, w := p.sc.peekRune()
		p.sc.advance(w)
		return p.b.ByteString(runeBytes(r)), nil
	}
}

func (p *parser) parseGroup() (int32, error) {
	openPos := p.sc.curPos()
	p.sc.advance(1) // '('

	if p.sc.tryLiteral("?") {
		switch {
		case p.sc.tryLiteral(":"):
			return 0, unsupportedGroupError(openPos, "non-capturing")
		case p.sc.tryLiteral("<="), p.sc.tryLiteral("<!"):
			return 0, unsupportedGroupError(openPos, "lookbehind assertion")
		case p.sc.tryLiteral("="), p.sc.tryLiteral("!"):
			return 0, unsupportedGroupError(openPos, "lookahead assertion")
		case p.sc.tryLiteral("<"):
			return 0, unsupportedGroupError(openPos, "named")
		default:
			r, _ := p.sc.peekRune()
			return 0, unexpectedCharError(p.sc.curPos(), r)
		}
	}

	id, err := p.parseAlt()
	if err != nil {
		return 0, err
	}
	if !p.sc.tryLiteral(")") {
		r, _ := p.sc.peekRune()
		return 0, unexpectedCharError(p.sc.curPos(), r)
	}
	return id, nil
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

		loPos := p.sc.curPos()
		lo, member, err := p.readClassMember()
		if err != nil {
			return 0, err
		}
		if member != nil {
			ranges = append(ranges, member...)
			continue
		}

		hi := lo
		if b2, ok := p.sc.peekByte(); ok && b2 == '-' {
			savedPos := p.sc.pos
			p.sc.advance(1)
			if nb, ok := p.sc.peekByte(); ok && nb != ']' {
				var hiMember []ir.CharRange
				hi, hiMember, err = p.readClassMember()
				if err != nil {
					return 0, err
				}
				if hiMember != nil {
					// "a-\d" isn't a real range; treat '-' as a literal
					// and the shorthand class as its own member.
					ranges = append(ranges, ir.CharRange{Lo: lo, Hi: lo}, ir.CharRange{Lo: '-', Hi: '-'})
					ranges = append(ranges, hiMember...)
					continue
				}
			} else {
				p.sc.pos = savedPos
			}
		}
		if hi < lo {
			return 0, charClassRangeOrderError(loPos, lo, hi)
		}
		ranges = append(ranges, ir.CharRange{Lo: lo, Hi: hi})
	}

	ranges = ir.CanonicalizeRanges(ranges)
	return p.b.CharClass(ranges, negated), nil
}

// readClassMember reads one rune or, for a shorthand escape like \d, its
// member ranges (non-nil return means "this was a class, not a rune").
func (p *parser) readClassMember() (rune, []ir.CharRange, error) {
	b, _ := p.sc.peekByte()
	if b == '\\' {
		p.sc.advance(1)
		esc, err := p.sc.readEscape(true)
		if err != nil {
			return 0, nil, err
		}
		if esc.isClass {
			ranges, negated := esc.ranges, esc.negated
			if negated {
				ranges = ir.Negate(ranges, maxCodepoint)
			}
			return 0, ranges, nil
		}
		return esc.r, nil, nil
	}
	r, w := p.sc.peekRune()
	p.sc.advance(w)
	return r, nil, nil
}

func runeBytes(r rune) []byte {
	var buf [4]byte
	n := utf8.EncodeRune(buf[:], r)
	return buf[:n]
}
