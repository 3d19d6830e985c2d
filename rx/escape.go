package rx

import (
	"strconv"

	"github.com/ava12/gramatch/ir"
)

// escapeResult is the decoded form of a backslash escape: either a single
// literal rune, or (for \d \D \w \W \s \S) a standalone character class.
type escapeResult struct {
	isClass bool
	r       rune
	ranges  []ir.CharRange
	negated bool
}

// readEscape decodes a backslash escape starting right after the backslash.
// insideClass changes the meaning of \b (backspace inside a class, word
// boundary assertion outside one, per ECMA-262).
func (s *scanner) readEscape(insideClass bool) (escapeResult, error) {
	start := s.pos
	b, ok := s.peekByte()
	if !ok {
		return escapeResult{}, eofError(s.curPos())
	}

	if ranges, negated, isShort := shorthandRanges(b); isShort {
		s.advance(1)
		return escapeResult{isClass: true, ranges: ranges, negated: negated}, nil
	}

	switch b {
	case 'b':
		if insideClass {
			s.advance(1)
			return escapeResult{r: '\b'}, nil
		}
		return escapeResult{}, wordBoundaryError(s.posAt(start - 1))
	case 'n':
		s.advance(1)
		return escapeResult{r: '\n'}, nil
	case 't':
		s.advance(1)
		return escapeResult{r: '\t'}, nil
	case 'r':
		s.advance(1)
		return escapeResult{r: '\r'}, nil
	case 'f':
		s.advance(1)
		return escapeResult{r: '\f'}, nil
	case 'v':
		s.advance(1)
		return escapeResult{r: '\v'}, nil
	case '0':
		s.advance(1)
		return escapeResult{r: 0}, nil
	case 'x':
		s.advance(1)
		r, err := s.readHexEscape(start, 2, false)
		return escapeResult{r: r}, err
	case 'u':
		s.advance(1)
		return s.readUnicodeEscape(start)
	case 'c':
		s.advance(1)
		return s.readControlEscape(start)
	case 'p', 'P':
		return escapeResult{}, unicodePropertyError(s.posAt(start - 1))
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return escapeResult{}, backreferenceError(s.posAt(start - 1))
	case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '|', '^', '$', '/', '\\', '-':
		s.advance(1)
		return escapeResult{r: rune(b)}, nil
	default:
		return escapeResult{}, invalidEscapeError(s.posAt(start-1), "\\"+string(b))
	}
}

func (s *scanner) readHexEscape(escStart, digits int, braced bool) (rune, error) {
	if s.pos+digits > len(s.content) {
		return 0, invalidEscapeError(s.posAt(escStart-1), string(s.content[escStart-1:]))
	}
	text := string(s.content[s.pos : s.pos+digits])
	n, err := strconv.ParseUint(text, 16, 32)
	if err != nil {
		return 0, invalidEscapeError(s.posAt(escStart-1), string(s.content[escStart-1:s.pos+digits]))
	}
	s.advance(digits)
	return rune(n), nil
}

// readUnicodeEscape handles both \uXXXX and the braced \u{X...} code-point form.
func (s *scanner) readUnicodeEscape(escStart int) (escapeResult, error) {
	if s.tryLiteral("{") {
		start := s.pos
		for !s.eof() {
			b, _ := s.peekByte()
			if b == '}' {
				break
			}
			s.advance(1)
		}
		if s.eof() {
			return escapeResult{}, eofError(s.curPos())
		}
		text := string(s.content[start:s.pos])
		n, err := strconv.ParseUint(text, 16, 32)
		if err != nil {
			return escapeResult{}, invalidEscapeError(s.posAt(escStart-1), "\\u{"+text+"}")
		}
		s.advance(1) // '}'
		return escapeResult{r: rune(n)}, nil
	}
	r, err := s.readHexEscape(escStart, 4, false)
	return escapeResult{r: r}, err
}

// readControlEscape handles \cX, where X is a letter and the resulting
// control code is the letter's ASCII value modulo 32.
func (s *scanner) readControlEscape(escStart int) (escapeResult, error) {
	b, ok := s.peekByte()
	if !ok || !((b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')) {
		return escapeResult{}, invalidEscapeError(s.posAt(escStart-1), "\\c")
	}
	s.advance(1)
	return escapeResult{r: rune(b % 32)}, nil
}
