package match

import (
	"github.com/ava12/gramatch/internal/bmap"
	"github.com/ava12/gramatch/internal/npda"
	"github.com/ava12/gramatch/ir"
)

// dispatchCont records what to do once a configuration spawned inside a
// dispatched tag's rule body runs out of stack (internal/npda.Frontier's
// Pending signal): either loop back into the same TagDispatch cursor
// (LoopAfterDispatch), or resume dispatch's own enclosing stack past the
// TagDispatch atom. outer chains through nested dispatches (free text
// inside a tag's own content), so a Pending several levels deep unwinds one
// dispatch at a time instead of being lost.
type dispatchCont struct {
	dispatch npda.Dispatch
	loop     bool
	outer    *dispatchCont
}

// liveState is a Live configuration together with the continuation to apply
// if stepping it ever yields Pending; nil for ordinary root-rooted states,
// which can never go Pending (see npda.Close's doc comment: only a non-root
// single-frame stack exhausting does).
type liveState struct {
	live npda.Live
	cont *dispatchCont
}

// dispatchState tracks one live TagDispatch cursor: the paused stack, the
// tail of recently-seen bytes needed to test trigger/stop/exclude strings as
// they complete, and (for a dispatch nested inside another dispatch's
// target) the continuation to chain into when IT resolves.
type dispatchState struct {
	live npda.Dispatch
	buf  []byte
	cont *dispatchCont
}

// dispatchMatchKind orders the three ways a completed string ends a
// TagDispatch cursor's free-text run. Lower value wins when more than one
// registered string matches the same trailing bytes.
type dispatchMatchKind int

const (
	matchExclude dispatchMatchKind = iota
	matchTag
	matchStop
)

type dispatchMatch struct {
	kind   dispatchMatchKind
	ruleID int32
}

// dispatchTable indexes one TagDispatchData's trigger/stop/exclude strings
// for suffix testing against a dispatch cursor's trailing-byte buffer.
// internal/bmap.BMap only supports exact-key lookup (no prefix/suffix trie),
// so lens records every distinct registered string length and each byte
// step probes buf's suffix at each length directly via bm.Get rather than
// walking a trie incrementally -- cheap since a TagDispatch node registers
// only a handful of short strings. Built once per TagDispatch expr and
// cached on the Matcher (see Matcher.dispatchTableFor), since a
// TagDispatchData's string set is fixed for the life of the grammar.
type dispatchTable struct {
	bm     *bmap.BMap[dispatchMatch]
	lens   []int
	maxLen int
}

func buildDispatchTable(data *ir.TagDispatchData) *dispatchTable {
	size := len(data.Tags) + len(data.StopStrings) + len(data.Excludes)
	bm := bmap.New[dispatchMatch](size)
	lenSet := map[int]bool{}
	maxLen := 1

	add := func(s string, m dispatchMatch) {
		if s == "" {
			return
		}
		if _, ok := bm.Get([]byte(s)); ok {
			return // a higher-priority category already claimed this exact string
		}
		bm.Set([]byte(s), m)
		lenSet[len(s)] = true
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	// Inserted in priority order (exclude, tag, stop) so a string registered
	// under more than one category resolves to its highest-priority kind.
	for _, ex := range data.Excludes {
		add(ex, dispatchMatch{kind: matchExclude})
	}
	for _, tag := range data.Tags {
		add(tag.Trigger, dispatchMatch{kind: matchTag, ruleID: tag.RuleID})
	}
	for _, stop := range data.StopStrings {
		add(stop, dispatchMatch{kind: matchStop})
	}

	lens := make([]int, 0, len(lenSet))
	for l := range lenSet {
		lens = append(lens, l)
	}
	return &dispatchTable{bm: bm, lens: lens, maxLen: maxLen}
}

// matchSuffix reports the highest-priority category whose registered
// string is exactly buf's trailing bytes, if any.
func (t *dispatchTable) matchSuffix(buf []byte) (dispatchMatch, bool) {
	var best dispatchMatch
	found := false
	for _, l := range t.lens {
		if len(buf) < l {
			continue
		}
		m, ok := t.bm.Get(buf[len(buf)-l:])
		if !ok {
			continue
		}
		if !found || m.kind < best.kind {
			best, found = m, true
		}
	}
	return best, found
}

// dispatchTableFor returns the cached dispatchTable for a TagDispatch expr,
// building it on first use.
func (m *Matcher) dispatchTableFor(exprID int32) *dispatchTable {
	if t, ok := m.dispatchTables[exprID]; ok {
		return t
	}
	t := buildDispatchTable(m.g.TagDispatchData(exprID))
	m.dispatchTables[exprID] = t
	return t
}

// resolveClosure wraps fr's Live/Dispatch entries with cont and, if fr also
// signals Pending, resolves cont's continuation into additional states --
// the hook Close itself documents as needing "caller context this walk
// doesn't have", supplied here since match owns that context. The returned
// bool is fr.Accept together with any Accept surfaced while resolving a
// Pending continuation (a dispatch target that turns out to finish the
// whole grammar), since that can only be discovered by recursing into
// cont -- a plain fr.Accept read by the caller would miss it.
func (m *Matcher) resolveClosure(fr npda.Frontier, cont *dispatchCont) ([]liveState, []dispatchState, bool) {
	lives := make([]liveState, 0, len(fr.Live))
	for _, l := range fr.Live {
		lives = append(lives, liveState{live: l, cont: cont})
	}
	disps := make([]dispatchState, 0, len(fr.Dispatch))
	for _, d := range fr.Dispatch {
		disps = append(disps, dispatchState{live: d, cont: cont})
	}
	accept := fr.Accept
	if fr.Pending {
		subLives, subDisps, subAccept := m.resolveContinuation(cont)
		lives = append(lives, subLives...)
		disps = append(disps, subDisps...)
		accept = accept || subAccept
	}
	return lives, disps, accept
}

func (m *Matcher) resolveContinuation(cont *dispatchCont) ([]liveState, []dispatchState, bool) {
	if cont == nil {
		return nil, nil, false
	}
	if cont.loop {
		return nil, []dispatchState{{live: cont.dispatch, cont: cont.outer}}, false
	}
	fr := npda.Close(m.g, advancePast(cont.dispatch.Stack))
	return m.resolveClosure(fr, cont.outer)
}

// stepDispatch processes one byte against a dispatch cursor. It returns
// exactly one of: a continuing cursor (same dispatch, buffer extended), an
// exit into the post-trigger/post-stop configuration set (hasExit true,
// exitAccept set if that exit itself satisfies the grammar), or dead (an
// exclude string just completed, killing this configuration outright).
func (m *Matcher) stepDispatch(d dispatchState, b byte) (next dispatchState, exitLives []liveState, exitDisps []dispatchState, hasExit, exitAccept, dead bool) {
	table := m.dispatchTableFor(d.live.ExprID)
	buf := append(append([]byte(nil), d.buf...), b)
	if len(buf) > table.maxLen {
		buf = buf[len(buf)-table.maxLen:]
	}

	if mtch, ok := table.matchSuffix(buf); ok {
		switch mtch.kind {
		case matchExclude:
			return dispatchState{}, nil, nil, false, false, true
		case matchTag:
			data := m.g.TagDispatchData(d.live.ExprID)
			lives, disps, accept := m.enterDispatchTarget(d, mtch.ruleID, data.LoopAfterDispatch)
			return dispatchState{}, lives, disps, true, accept, false
		case matchStop:
			fr := npda.Close(m.g, advancePast(d.live.Stack))
			lives, disps, accept := m.resolveClosure(fr, d.cont)
			return dispatchState{}, lives, disps, true, accept, false
		}
	}

	return dispatchState{live: d.live, buf: buf, cont: d.cont}, nil, nil, false, false, false
}

// enterDispatchTarget epsilon-closes into a dispatched tag's rule body,
// starting a fresh single-frame stack for it (not appended to d's stack) so
// that the rule's own completion is visible as Frontier.Pending rather than
// silently popping back into d's stack via Close's unconditional advance-on-
// pop: Close has no notion of "loop back into the same dispatch instead of
// advancing past it", so that decision lives here, tracked via the
// resulting states' dispatchCont rather than made at entry time -- the
// target's body may need many bytes (and may itself dispatch further) before
// Pending actually surfaces.
func (m *Matcher) enterDispatchTarget(d dispatchState, targetRuleID int32, loop bool) ([]liveState, []dispatchState, bool) {
	n := ir.NumBranches(m.g, targetRuleID)
	var raw npda.Frontier
	for b := int32(0); b < n; b++ {
		raw = mergeFrontier(raw, npda.Close(m.g, npda.Stack{{RuleID: targetRuleID, BranchIndex: b, AtomIndex: 0}}))
	}
	cont := &dispatchCont{dispatch: d.live, loop: loop, outer: d.cont}
	return m.resolveClosure(raw, cont)
}

// advancePast returns a copy of s with its top frame's AtomIndex incremented
// past the atom currently occupying it (a TagDispatch atom, in every caller
// here), mirroring the unexported Stack.popAndAdvance/withTop idiom npda
// itself uses -- Stack is a plain exported slice, so building the successor
// frame directly from outside the package is just as valid.
func advancePast(s npda.Stack) npda.Stack {
	top := s[len(s)-1]
	out := make(npda.Stack, len(s))
	copy(out, s)
	out[len(out)-1] = npda.Frame{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex + 1}
	return out
}

func mergeFrontier(a, b npda.Frontier) npda.Frontier {
	a.Live = append(a.Live, b.Live...)
	a.Dispatch = append(a.Dispatch, b.Dispatch...)
	a.Accept = a.Accept || b.Accept
	a.Pending = a.Pending || b.Pending
	return a
}
