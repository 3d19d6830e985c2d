package rx

import (
	"github.com/ava12/gramatch"
)

// Error codes used by rx. Mirrors the one-constructor-per-fatal-condition
// idiom used by ebnf, scoped to the JS-regex subset spec.md §4.2 documents.
const (
	UnexpectedEofError = gramatch.RegexErrors + iota
	UnexpectedCharError
	InvalidEscapeError
	BackreferenceError
	UnsupportedGroupError
	UnicodePropertyError
	WordBoundaryError
	RangedQuantifierError
	CharClassRangeOrderError
)

func eofError(pos gramatch.SourcePos) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, UnexpectedEofError, "unexpected end of pattern")
}

func unexpectedCharError(pos gramatch.SourcePos, r rune) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, UnexpectedCharError, "unexpected character %q", r)
}

func invalidEscapeError(pos gramatch.SourcePos, text string) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, InvalidEscapeError, "invalid escape sequence %q", text)
}

func backreferenceError(pos gramatch.SourcePos) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, BackreferenceError, "backreferences are not supported")
}

func unsupportedGroupError(pos gramatch.SourcePos, kind string) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, UnsupportedGroupError, "%s groups are not supported", kind)
}

func unicodePropertyError(pos gramatch.SourcePos) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, UnicodePropertyError, "unicode property escapes are not supported")
}

func wordBoundaryError(pos gramatch.SourcePos) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, WordBoundaryError, "word boundary assertions are not supported")
}

func rangedQuantifierError(pos gramatch.SourcePos) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, RangedQuantifierError, "ranged quantifiers {m,n} are not supported")
}

func charClassRangeOrderError(pos gramatch.SourcePos, lo, hi rune) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, CharClassRangeOrderError, "character class range %q-%q has lower bound exceeding upper bound", lo, hi)
}
