package ebnf

import (
	"strconv"
	"unicode/utf8"

	"github.com/ava12/gramatch/source"
)

// scanner is a small hand-rolled cursor over a source.Source's raw bytes.
// Unlike a token-class lexer.Lexer (one regexp, one capture group per token
// type), the EBNF surface needs mode switches mid-rule (character-class
// bodies escape differently than string literals), so ebnf scans directly
// off the byte buffer and leans on source.Source only for line/col lookup.
type scanner struct {
	src     *source.Source
	content []byte
	pos     int
}

func newScanner(src *source.Source) *scanner {
	return &scanner{src: src, content: src.Content()}
}

func (s *scanner) posAt(offset int) source.Pos {
	return source.NewPos(s.src, offset)
}

func (s *scanner) curPos() source.Pos {
	return s.posAt(s.pos)
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.content)
}

func (s *scanner) peekByte() (byte, bool) {
	if s.eof() {
		return 0, false
	}
	return s.content[s.pos], true
}

func (s *scanner) peekRune() (rune, int) {
	if s.eof() {
		return 0, 0
	}
	return utf8.DecodeRune(s.content[s.pos:])
}

func (s *scanner) advance(n int) {
	s.pos += n
	if s.pos > len(s.content) {
		s.pos = len(s.content)
	}
}

// skipSpaceAndComments skips runs of whitespace and '#'-to-end-of-line comments.
func (s *scanner) skipSpaceAndComments() {
	for !s.eof() {
		b, _ := s.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			s.advance(1)
		case b == '#':
			for !s.eof() {
				b, _ = s.peekByte()
				if b == '\n' {
					break
				}
				s.advance(1)
			}
		default:
			return
		}
	}
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameCont(r rune) bool {
	return isNameStart(r) || (r >= '0' && r <= '9') || r == '-'
}

// tryName consumes a [A-Za-z_][A-Za-z0-9_-]* identifier if one starts here.
func (s *scanner) tryName() (string, bool) {
	start := s.pos
	r, w := s.peekRune()
	if w == 0 || !isNameStart(r) {
		return "", false
	}
	s.advance(w)
	for {
		r, w = s.peekRune()
		if w == 0 || !isNameCont(r) {
			break
		}
		s.advance(w)
	}
	return string(s.content[start:s.pos]), true
}

// tryLiteral consumes lit verbatim if the scanner is positioned at it.
func (s *scanner) tryLiteral(lit string) bool {
	if s.pos+len(lit) > len(s.content) {
		return false
	}
	if string(s.content[s.pos:s.pos+len(lit)]) != lit {
		return false
	}
	s.advance(len(lit))
	return true
}

// tryInt consumes a run of ASCII digits.
func (s *scanner) tryInt() (int, bool) {
	start := s.pos
	for !s.eof() {
		b, _ := s.peekByte()
		if b < '0' || b > '9' {
			break
		}
		s.advance(1)
	}
	if s.pos == start {
		return 0, false
	}
	n, _ := strconv.Atoi(string(s.content[start:s.pos]))
	return n, true
}
