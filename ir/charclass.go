package ir

import (
	"sort"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// rangetableBudget caps how many codepoints CanonicalizeRanges will enumerate
// through rangetable; classes under the budget (the overwhelming majority --
// ASCII subsets, a handful of Unicode blocks) merge via rangetable.Merge, the
// same pass unicode/rangetable ships for combining multiple RangeTables.
// Classes over the budget (e.g. a negated class spanning most of the
// codepoint space) fall back to a plain interval-merge sort: enumerating
// millions of runes just to re-derive their own bounds back is wasted work
// rangetable was never built for.
const rangetableBudget = 1 << 16

// CanonicalizeRanges sorts and merges overlapping/adjacent ranges so the
// result satisfies the CharClass invariant (sorted, disjoint, non-empty).
func CanonicalizeRanges(ranges []CharRange) []CharRange {
	if len(ranges) == 0 {
		return nil
	}

	total := int64(0)
	valid := make([]CharRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Hi < r.Lo {
			continue
		}
		valid = append(valid, r)
		total += int64(r.Hi-r.Lo) + 1
	}
	if len(valid) == 0 {
		return nil
	}

	if total <= rangetableBudget {
		return canonicalizeViaRangetable(valid)
	}
	return canonicalizeViaSort(valid)
}

func canonicalizeViaRangetable(ranges []CharRange) []CharRange {
	tables := make([]*unicode.RangeTable, 0, len(ranges))
	for _, r := range ranges {
		runes := make([]rune, 0, r.Hi-r.Lo+1)
		for c := r.Lo; c <= r.Hi; c++ {
			runes = append(runes, rune(c))
		}
		tables = append(tables, rangetable.New(runes...))
	}

	merged := rangetable.Merge(tables...)

	var out []CharRange
	rangetable.Visit(merged, func(r rune) {
		n := int32(r)
		if len(out) > 0 && out[len(out)-1].Hi == n-1 {
			out[len(out)-1].Hi = n
			return
		}
		out = append(out, CharRange{n, n})
	})
	return out
}

func canonicalizeViaSort(ranges []CharRange) []CharRange {
	sorted := append([]CharRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })

	out := sorted[:1]
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Negate computes the complement of ranges within [0, maxCodepoint], assuming
// ranges is already sorted and disjoint.
func Negate(ranges []CharRange, maxCodepoint int32) []CharRange {
	var out []CharRange
	next := int32(0)
	for _, r := range ranges {
		if r.Lo > next {
			out = append(out, CharRange{next, r.Lo - 1})
		}
		if r.Hi+1 > next {
			next = r.Hi + 1
		}
	}
	if next <= maxCodepoint {
		out = append(out, CharRange{next, maxCodepoint})
	}
	return out
}

// ContainsRune reports whether cp falls within ranges (sorted, disjoint).
func ContainsRune(ranges []CharRange, cp int32) bool {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].Hi >= cp })
	return i < len(ranges) && ranges[i].Lo <= cp
}
