package ebnf

import (
	"strconv"
)

// readEscape decodes a backslash escape starting right after the backslash
// (i.e. s.content[s.pos] is the char following '\\'). Supports \", \\, \n,
// \t, \r, \xHH, \uXXXX, \UXXXXXXXX per spec.md §4.1/§6.1.
func (s *scanner) readEscape() (rune, error) {
	start := s.pos
	b, ok := s.peekByte()
	if !ok {
		return 0, eofError(s.curPos())
	}

	switch b {
	case '"', '\\', ']', '-':
		s.advance(1)
		return rune(b), nil
	case 'n':
		s.advance(1)
		return '\n', nil
	case 't':
		s.advance(1)
		return '\t', nil
	case 'r':
		s.advance(1)
		return '\r', nil
	case 'x':
		s.advance(1)
		return s.readHexEscape(start, 2)
	case 'u':
		s.advance(1)
		return s.readHexEscape(start, 4)
	case 'U':
		s.advance(1)
		return s.readHexEscape(start, 8)
	default:
		return 0, invalidEscapeError(s.posAt(start-1), "\\"+string(b))
	}
}

func (s *scanner) readHexEscape(escStart, digits int) (rune, error) {
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
