package ebnf

import (
	"github.com/ava12/gramatch"
)

// Error codes used by ebnf. One fatal condition per constructor, same idiom
// the teacher's langdef package used for its own grammar-description parser.
const (
	UnexpectedEofError = gramatch.EbnfErrors + iota
	UnexpectedCharError
	UndefinedRuleError
	DuplicateRuleError
	MissingRootRuleError
	ConsecutiveQuantifierError
	NewlineInCharClassError
	InvalidEscapeError
	CharClassRangeOrderError
	TagDispatchRootTargetError
	EmptyTriggerError
)

func eofError(pos gramatch.SourcePos) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, UnexpectedEofError, "unexpected end of input")
}

func unexpectedCharError(pos gramatch.SourcePos, r rune) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, UnexpectedCharError, "unexpected character %q", r)
}

func undefinedRuleError(pos gramatch.SourcePos, name string) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, UndefinedRuleError, "undefined rule %q", name)
}

func duplicateRuleError(pos gramatch.SourcePos, name string) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, DuplicateRuleError, "rule %q already defined", name)
}

func missingRootRuleError() *gramatch.Error {
	return gramatch.FormatError(gramatch.KindParse, MissingRootRuleError, "grammar has no rules")
}

func consecutiveQuantifierError(pos gramatch.SourcePos) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, ConsecutiveQuantifierError, "consecutive quantifiers are not allowed")
}

func newlineInCharClassError(pos gramatch.SourcePos) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, NewlineInCharClassError, "newline inside character class")
}

func invalidEscapeError(pos gramatch.SourcePos, text string) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, InvalidEscapeError, "invalid escape sequence %q", text)
}

func charClassRangeOrderError(pos gramatch.SourcePos, lo, hi rune) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, CharClassRangeOrderError, "character class range %q-%q has lower bound exceeding upper bound", lo, hi)
}

func tagDispatchRootTargetError(pos gramatch.SourcePos, name string) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, TagDispatchRootTargetError, "TagDispatch target %q must not be the root rule", name)
}

func emptyTriggerError(pos gramatch.SourcePos) *gramatch.Error {
	return gramatch.FormatErrorPos(gramatch.KindParse, pos, EmptyTriggerError, "TagDispatch trigger string must not be empty")
}
