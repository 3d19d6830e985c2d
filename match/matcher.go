// Package match implements the runtime NPDA matcher: the byte-level
// frontier compile.AdaptiveCache classifies statically is carried forward
// token by token here, with TagDispatch free-text sections tracked by their
// own cursor state (dispatch.go) and a bounded rollback history on top.
// Grounded on the teacher's parser.resolve/branch.go frontier shape, reused
// directly via internal/npda.
package match

import (
	"github.com/ava12/gramatch/bitmask"
	"github.com/ava12/gramatch/compile"
	"github.com/ava12/gramatch/internal/npda"
	"github.com/ava12/gramatch/internal/queue"
	"github.com/ava12/gramatch/ir"
	"github.com/ava12/gramatch/tokenizer"
)

// snapshot is the full state Rollback restores: one entry per accepted
// token.
type snapshot struct {
	live       []liveState
	dispatches []dispatchState
	accept     bool
	stopped    bool
}

// Matcher drives one grammar-constrained decode. It is not safe for
// concurrent use by multiple goroutines.
type Matcher struct {
	g           *ir.Grammar
	tok         *tokenizer.Info
	cache       *compile.AdaptiveCache
	maxRollback int

	stopTokenIDs              []int32
	terminateWithoutStopToken bool

	live       []liveState
	dispatches []dispatchState
	accept     bool
	stopped    bool // a stop token was accepted

	history        *queue.Queue[snapshot]
	dispatchTables map[int32]*dispatchTable
}

// NewMatcher builds a Matcher over a compiled grammar and starts it at the
// grammar's initial frontier, per spec.md §6.4's GrammarMatcher::new.
// overrideStopTokens replaces tok's own StopTokenIDs for this matcher when
// non-nil. terminateWithoutStopToken lets IsTerminated report true once
// every live configuration is satisfied with no further obligation, even
// without a stop token having been accepted. maxRollbackTokens bounds how
// many accepted tokens Rollback can undo; 0 disables rollback entirely.
func NewMatcher(compiled *compile.CompiledGrammar, tok *tokenizer.Info, overrideStopTokens []int32, terminateWithoutStopToken bool, maxRollbackTokens int) *Matcher {
	stopTokenIDs := tok.StopTokenIDs
	if overrideStopTokens != nil {
		stopTokenIDs = overrideStopTokens
	}
	m := &Matcher{
		g:                         compiled.Grammar,
		tok:                       tok,
		cache:                     compiled.Cache,
		maxRollback:               maxRollbackTokens,
		stopTokenIDs:              stopTokenIDs,
		terminateWithoutStopToken: terminateWithoutStopToken,
		dispatchTables:            map[int32]*dispatchTable{},
	}
	m.Reset()
	return m
}

func (m *Matcher) isStopToken(tokenID int32) bool {
	for _, id := range m.stopTokenIDs {
		if id == tokenID {
			return true
		}
	}
	return false
}

// Reset returns the matcher to the grammar's initial frontier and clears
// rollback history.
func (m *Matcher) Reset() {
	fr := npda.Initial(m.g)
	live, disps, accept := m.resolveClosure(fr, nil)
	m.live, m.dispatches, m.accept = live, disps, accept
	m.stopped = false
	m.history = queue.New[snapshot]()
}

// IsTerminated reports true once a stop token has been accepted, or once
// terminateWithoutStopToken is set and the grammar is satisfied with no
// further live continuation, per spec.md §4.7.
func (m *Matcher) IsTerminated() bool {
	if m.stopped {
		return true
	}
	if m.terminateWithoutStopToken {
		return m.accept && len(m.live) == 0 && len(m.dispatches) == 0
	}
	return false
}

// stepAll advances a (live, dispatches) pair by one byte without touching
// matcher state; both AcceptToken/acceptByte and the vocabulary-scan path in
// FillNextTokenBitmask share it so dispatch-transition handling never drifts
// between the two. Every Live/Dispatch state carries the continuation
// needed to resolve its own eventual Pending signal (see dispatch.go), so
// stepping here never has to special-case where a state came from.
func (m *Matcher) stepAll(live []liveState, dispatches []dispatchState, b byte) ([]liveState, []dispatchState, bool) {
	var newLive []liveState
	var newDisp []dispatchState
	accept := false

	for _, ls := range live {
		fr := npda.StepByte(m.g, ls.live, b)
		lives, disps, a := m.resolveClosure(fr, ls.cont)
		accept = accept || a
		newLive = append(newLive, lives...)
		newDisp = append(newDisp, disps...)
	}

	for _, d := range dispatches {
		next, exitLives, exitDisps, hasExit, exitAccept, dead := m.stepDispatch(d, b)
		switch {
		case dead:
		case hasExit:
			accept = accept || exitAccept
			newLive = append(newLive, exitLives...)
			newDisp = append(newDisp, exitDisps...)
		default:
			newDisp = append(newDisp, next)
		}
	}

	return newLive, newDisp, accept
}

func (m *Matcher) acceptByte(b byte) error {
	live, dispatches, accept := m.stepAll(m.live, m.dispatches, b)
	if len(live) == 0 && len(dispatches) == 0 && !accept {
		return rejectedByteError(b)
	}
	m.live, m.dispatches, m.accept = live, dispatches, accept
	return nil
}

// admitsTokenFrom reports whether tok's bytes can all be consumed from the
// given configuration without it dying, independent of whether the
// resulting state also accepts end-of-input.
func (m *Matcher) admitsTokenFrom(live []liveState, dispatches []dispatchState, tok []byte) bool {
	accept := false
	for _, b := range tok {
		live, dispatches, accept = m.stepAll(live, dispatches, b)
		if len(live) == 0 && len(dispatches) == 0 && !accept {
			return false
		}
	}
	return true
}

func (m *Matcher) snapshotNow() snapshot {
	return snapshot{
		live:       append([]liveState(nil), m.live...),
		dispatches: append([]dispatchState(nil), m.dispatches...),
		accept:     m.accept,
		stopped:    m.stopped,
	}
}

func (m *Matcher) restore(s snapshot) {
	m.live = s.live
	m.dispatches = s.dispatches
	m.accept = s.accept
	m.stopped = s.stopped
}

func (m *Matcher) pushHistory(s snapshot) {
	if m.maxRollback <= 0 {
		return
	}
	m.history.Append(s)
	for m.history.Len() > m.maxRollback {
		m.history.First()
	}
}

// AcceptToken advances the matcher by one vocabulary token id, recording a
// rollback point beforehand. A stop token is only acceptable while the
// grammar is already in an accepting state; accepting one terminates the
// matcher with no further live continuations.
func (m *Matcher) AcceptToken(tokenID int32) error {
	if tokenID < 0 || int(tokenID) >= m.tok.VocabSize() {
		return unknownTokenError(tokenID)
	}

	before := m.snapshotNow()

	if m.isStopToken(tokenID) {
		if !m.accept {
			return stopTokenNotAcceptableError(tokenID)
		}
		m.live = nil
		m.dispatches = nil
		m.stopped = true
		m.pushHistory(before)
		return nil
	}

	for _, b := range m.tok.DecodedVocab[tokenID] {
		if err := m.acceptByte(b); err != nil {
			m.restore(before)
			return err
		}
	}
	m.pushHistory(before)
	return nil
}

// DebugAcceptString feeds raw bytes directly into the matcher, bypassing
// token/vocabulary bookkeeping and rollback history. Intended for tests and
// interactive debugging of a grammar, not for driving an actual decode.
func (m *Matcher) DebugAcceptString(s string) error {
	for _, b := range []byte(s) {
		if err := m.acceptByte(b); err != nil {
			return err
		}
	}
	return nil
}

// Rollback undoes the last numTokens accepted tokens (AcceptToken calls
// only; DebugAcceptString is not tracked).
func (m *Matcher) Rollback(numTokens int) error {
	undone := 0
	for ; undone < numTokens; undone++ {
		s, ok := m.history.Last()
		if !ok {
			return rollbackOutOfRangeError(numTokens, undone)
		}
		m.restore(s)
	}
	return nil
}

// FillNextTokenBitmask returns the set of vocabulary token ids admissible as
// the next token from the matcher's current state. A root-rooted live state
// at a fresh atom (no dispatch cursor active anywhere, no pending
// continuation of its own) is classified via the adaptive cache, the common
// case; every other state -- mid byte-string literal, carrying a dispatch
// continuation, or while any TagDispatch cursor is live elsewhere -- is
// classified by directly scanning the vocabulary against it, since its
// admissibility depends on state the cache cannot key on. A cache hit also
// carries a (usually empty) list of tokens the cache's caller-less trial
// stack could not resolve on its own (compile.AdaptiveCache's tokenUncertain
// verdict); each of those is re-verified here against ls's real live stack,
// which has the caller context the cache lacks.
func (m *Matcher) FillNextTokenBitmask() bitmask.Row {
	row := bitmask.NewRow(m.tok.VocabSize())

	for _, ls := range m.live {
		top := ls.live.Stack[len(ls.live.Stack)-1]
		if ls.cont == nil && len(m.dispatches) == 0 && top.ByteOffset == 0 {
			pos := ir.Position{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex}
			definite, uncertain := m.cache.MaskAt(pos)
			row.Union(definite)
			for _, tokenID := range uncertain {
				tb := m.tok.DecodedVocab[tokenID]
				if m.admitsTokenFrom([]liveState{ls}, nil, tb) {
					row.Set(int(tokenID))
				}
			}
			continue
		}
		row.Union(m.scanDirect(ls))
	}
	for _, d := range m.dispatches {
		row.Union(m.scanDispatch(d))
	}

	if m.accept {
		for _, id := range m.stopTokenIDs {
			row.Set(int(id))
		}
	}
	return row
}

func (m *Matcher) scanDirect(ls liveState) bitmask.Row {
	row := bitmask.NewRow(m.tok.VocabSize())
	for tokenID, tb := range m.tok.DecodedVocab {
		if m.tok.IsSpecial(int32(tokenID)) {
			continue
		}
		if m.admitsTokenFrom([]liveState{ls}, nil, tb) {
			row.Set(tokenID)
		}
	}
	return row
}

func (m *Matcher) scanDispatch(d dispatchState) bitmask.Row {
	row := bitmask.NewRow(m.tok.VocabSize())
	for tokenID, tb := range m.tok.DecodedVocab {
		if m.tok.IsSpecial(int32(tokenID)) {
			continue
		}
		if m.admitsTokenFrom(nil, []dispatchState{d}, tb) {
			row.Set(tokenID)
		}
	}
	return row
}

// FindJumpForwardString returns the longest forced literal continuation of
// the current state: bytes that must appear next because exactly one live
// configuration exists and it sits inside a byte-string literal with no
// alternative. Decode loops can append these bytes without sampling. Returns
// "" whenever more than one continuation is possible.
func (m *Matcher) FindJumpForwardString() string {
	if len(m.dispatches) != 0 || len(m.live) != 1 || m.accept {
		return ""
	}

	var out []byte
	cur := m.live[0]
	for {
		top := cur.live.Stack[len(cur.live.Stack)-1]
		if top.ByteOffset != 0 {
			return string(out) // mid rune-class decode, not representable as forced literal bytes
		}
		atomID, atEnd := ir.AtomAt(m.g, ir.Position{RuleID: top.RuleID, BranchIndex: top.BranchIndex, AtomIndex: top.AtomIndex})
		if atEnd || m.g.Kind(atomID) != ir.ByteString {
			break
		}
		out = append(out, m.g.ByteStringBytes(atomID)...)
		fr := npda.Close(m.g, advancePast(cur.live.Stack))
		lives, disps, accept := m.resolveClosure(fr, cur.cont)
		if len(disps) != 0 || len(lives) != 1 || accept {
			break
		}
		cur = lives[0]
	}
	return string(out)
}
