package structuraltag

// boundedness classifies a format node as having a terminator determined
// internally (a balanced JSON value, a const string, an explicit tag end)
// versus one that only stops when an externally supplied terminator string
// is recognized in the byte stream (free text).
type boundedness struct {
	bounded bool
}

// analyzer walks a Format tree once, recording each node's boundedness and
// rejecting the four fatal shapes spec.md §4.4 names: an unbounded element
// anywhere but the tail of a Sequence, mixed bounded/unbounded branches of
// an Or, unbounded tag content with no non-empty end alternative, and a
// TriggeredTags tag whose begin string matches zero or more than one
// trigger.
type analyzer struct {
	info map[Format]*boundedness
}

func newAnalyzer() *analyzer {
	return &analyzer{info: map[Format]*boundedness{}}
}

func (a *analyzer) boundedOf(f Format) bool {
	if b, ok := a.info[f]; ok {
		return b.bounded
	}
	return true
}

func (a *analyzer) record(f Format, bounded bool) *boundedness {
	b := &boundedness{bounded: bounded}
	a.info[f] = b
	return b
}

// analyze classifies f and everything beneath it. terminators carries the
// non-empty end-string alternatives of the nearest enclosing Tag, available
// to an unbounded descendant in tail position (the mechanism AnyText's
// "infer the end-of-section string from the enclosing context" uses).
func (a *analyzer) analyze(f Format, terminators []string) error {
	switch n := f.(type) {
	case *ConstString, *JSONSchema, *Regex, *EBNF, *QwenXMLParameter:
		a.record(f, true)
		return nil

	case *AnyText:
		a.record(f, len(terminators) > 0)
		return nil

	case *Sequence:
		last := len(n.Elements) - 1
		for i, el := range n.Elements {
			childTerminators := terminators
			if i != last {
				childTerminators = nil
			}
			if err := a.analyze(el, childTerminators); err != nil {
				return err
			}
			if i != last && !a.boundedOf(el) {
				return unboundedNotInTailError()
			}
		}
		tailBounded := last < 0 || a.boundedOf(n.Elements[last])
		a.record(f, tailBounded)
		return nil

	case *Or:
		if len(n.Elements) == 0 {
			a.record(f, true)
			return nil
		}
		if err := a.analyze(n.Elements[0], terminators); err != nil {
			return err
		}
		want := a.boundedOf(n.Elements[0])
		for _, el := range n.Elements[1:] {
			if err := a.analyze(el, terminators); err != nil {
				return err
			}
			if a.boundedOf(el) != want {
				return mixedBoundedOrError()
			}
		}
		a.record(f, want)
		return nil

	case *Tag:
		ends := nonEmptyStrings(n.End)
		if err := a.analyze(n.Content, ends); err != nil {
			return err
		}
		if !a.boundedOf(n.Content) && len(ends) == 0 {
			return unboundedTagContentNoEndError()
		}
		a.record(f, true) // a tag with an explicit end is always bounded itself
		return nil

	case *TriggeredTags:
		for _, tag := range n.Tags {
			if err := checkTriggerMatch(tag.Begin, n.Triggers); err != nil {
				return err
			}
			if err := a.analyze(tag, nil); err != nil {
				return err
			}
		}
		a.record(f, false) // free-text dispatch, stops on an outer terminator
		return nil

	case *TagsWithSeparator:
		for _, tag := range n.Tags {
			if err := a.analyze(tag, nil); err != nil {
				return err
			}
		}
		a.record(f, true) // a fixed chain of bounded tags, self-closing
		return nil
	}
	return nil
}

func checkTriggerMatch(begin string, triggers []string) error {
	matches := 0
	for _, t := range triggers {
		if len(begin) >= len(t) && begin[:len(t)] == t {
			matches++
		}
	}
	switch {
	case matches == 0:
		return noTriggerMatchError(begin)
	case matches > 1:
		return ambiguousTriggerError(begin)
	}
	return nil
}

func nonEmptyStrings(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
