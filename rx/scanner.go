package rx

import (
	"unicode/utf8"

	"github.com/ava12/gramatch/source"
)

// scanner is a byte cursor over a regex pattern, mirroring ebnf's own
// hand-rolled scanner: a pattern mixes plain-literal bytes, inside-class
// bytes, and escapes with different meanings in each mode, so one cursor
// with mode-aware callers is simpler than forcing it through lexer.Lexer's
// single token-capture-group model.
type scanner struct {
	src     *source.Source
	content []byte
	pos     int
}

func newScanner(name, pattern string) *scanner {
	src := source.New(name, []byte(pattern))
	return &scanner{src: src, content: src.Content()}
}

func (s *scanner) curPos() source.Pos {
	return source.NewPos(s.src, s.pos)
}

func (s *scanner) posAt(offset int) source.Pos {
	return source.NewPos(s.src, offset)
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
	n := 0
	for _, b := range s.content[start:s.pos] {
		n = n*10 + int(b-'0')
	}
	return n, true
}
