package rx

import (
	"github.com/ava12/gramatch/ir"
)

// maxCodepoint bounds ranges produced by negating a predefined shorthand
// class when it appears inside a bracket expression, where the IR's single
// negated flag belongs to the whole class rather than one inserted member.
const maxCodepoint = 0x10FFFF

var digitRanges = []ir.CharRange{{Lo: '0', Hi: '9'}}

var wordRanges = []ir.CharRange{
	{Lo: '0', Hi: '9'},
	{Lo: 'A', Hi: 'Z'},
	{Lo: '_', Hi: '_'},
	{Lo: 'a', Hi: 'z'},
}

var spaceRanges = []ir.CharRange{
	{Lo: 0x09, Hi: 0x0D},
	{Lo: 0x20, Hi: 0x20},
	{Lo: 0xA0, Hi: 0xA0},
	{Lo: 0x2028, Hi: 0x2029},
	{Lo: 0xFEFF, Hi: 0xFEFF},
}

// shorthandRanges returns the base ranges for one of \d \D \w \W \s \S,
// lowercase meaning the class itself and uppercase its negation.
func shorthandRanges(letter byte) (ranges []ir.CharRange, negated bool, ok bool) {
	switch letter {
	case 'd':
		return digitRanges, false, true
	case 'D':
		return digitRanges, true, true
	case 'w':
		return wordRanges, false, true
	case 'W':
		return wordRanges, true, true
	case 's':
		return spaceRanges, false, true
	case 'S':
		return spaceRanges, true, true
	default:
		return nil, false, false
	}
}

// shorthandMemberRanges returns ranges suitable for union into a single
// bracket expression's member list (so a negated shorthand like \D used
// inside [...] is resolved to concrete literal ranges up front).
func shorthandMemberRanges(letter byte) ([]ir.CharRange, bool) {
	ranges, negated, ok := shorthandRanges(letter)
	if !ok {
		return nil, false
	}
	if negated {
		return ir.Negate(ranges, maxCodepoint), true
	}
	return ranges, true
}
