package compile

import (
	"sync"

	"github.com/ava12/gramatch/bitmask"
	"github.com/ava12/gramatch/internal/npda"
	"github.com/ava12/gramatch/ir"
	"github.com/ava12/gramatch/tokenizer"
)

// positionKey identifies one static NPDA position the cache memoizes a mask
// for: which rule, which alternative, how far into it.
type positionKey struct {
	ruleID, branchIndex, atomIndex int32
}

// tokenVerdict is what npda.StartAt(g, pos)'s caller-less trial stack can
// tell us about one vocabulary token at a given position, independent of
// whatever the real matcher's caller frames underneath pos happen to be.
type tokenVerdict int

const (
	// tokenRejected means the token's bytes cannot all be consumed from pos
	// no matter what lies below it on a real stack: every alternative died
	// outright, with no rule exhausted along the way.
	tokenRejected tokenVerdict = iota
	// tokenAccepted means the token's bytes were consumed without the trial
	// stack ever reporting Pending — true regardless of caller context.
	tokenAccepted
	// tokenUncertain means the trial stack died only by running off the
	// bottom of its single frame (npda.Frontier.Pending), which depends on
	// what a real caller frame below pos would do next. Only a matcher
	// holding that real frame can resolve it.
	tokenUncertain
)

// maskEntry is one position's fully-classified vocabulary: row carries every
// definitely-accepted token, uncertain lists every token id StartAt's
// caller-less trial could not resolve one way or the other.
type maskEntry struct {
	row       bitmask.Row
	uncertain []int32
}

// AdaptiveCache is the immutable-after-build, precomputed map from grammar
// position to admissible-token classification that spec.md §3.3/§4.6
// describe: every position a compiled grammar can ever visit is classified
// once, by GrammarCompiler.Compile, via Precompute's worker pool, and the
// cache is read-only for the rest of its life. Classification is done
// against npda.StartAt(g, pos)'s fresh, caller-less single-frame stack,
// which cannot see what rule invoked pos — so a token that merely exhausts
// pos's own rule (Frontier.Pending) is recorded as uncertain rather than
// silently dropped; match.Matcher re-verifies those tokens against its own
// real live stack at FillNextTokenBitmask time (spec.md §4.7 step 3), the
// only place that stack is available.
type AdaptiveCache struct {
	mu      sync.RWMutex
	built   bool
	g       *ir.Grammar
	tok     *tokenizer.Info
	entries map[positionKey]maskEntry
}

// NewAdaptiveCache builds an empty cache over g's positions and tok's
// vocabulary. It holds no entries until Precompute runs.
func NewAdaptiveCache(g *ir.Grammar, tok *tokenizer.Info) *AdaptiveCache {
	return &AdaptiveCache{g: g, tok: tok, entries: map[positionKey]maskEntry{}}
}

// Precompute classifies every position in positions across workers
// goroutines and stores the results, per spec.md §4.6/§5's "populate the
// cache in parallel across positions (thread pool with a configurable
// bound)". Called once by GrammarCompiler.Compile before a CompiledGrammar
// is handed to any caller; the cache is treated as read-only afterward.
func (c *AdaptiveCache) Precompute(positions []ir.Position, workers int) {
	c.mu.RLock()
	already := c.built
	c.mu.RUnlock()
	if already {
		return
	}

	if workers <= 0 {
		workers = 1
	}
	if workers > len(positions) {
		workers = len(positions)
	}
	if workers == 0 {
		c.mu.Lock()
		c.built = true
		c.mu.Unlock()
		return
	}

	jobs := make(chan ir.Position)
	results := make(chan struct {
		key   positionKey
		entry maskEntry
	}, len(positions))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pos := range jobs {
				fr := npda.StartAt(c.g, pos)
				entry := c.classify(fr)
				results <- struct {
					key   positionKey
					entry maskEntry
				}{positionKey{pos.RuleID, pos.BranchIndex, pos.AtomIndex}, entry}
			}
		}()
	}

	go func() {
		for _, pos := range positions {
			jobs <- pos
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	c.mu.Lock()
	defer c.mu.Unlock()
	for r := range results {
		c.entries[r.key] = r.entry
	}
	c.built = true
}

// MaskAt returns pos's precomputed classification: the definite-accept row,
// and the vocabulary token ids Precompute could not resolve without real
// caller context (see the type doc comment). An unknown position (one
// Precompute's position enumeration missed) returns an empty row and no
// uncertain ids, the same as a position with nothing admissible.
func (c *AdaptiveCache) MaskAt(pos ir.Position) (bitmask.Row, []int32) {
	key := positionKey{pos.RuleID, pos.BranchIndex, pos.AtomIndex}

	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return bitmask.NewRow(c.tok.VocabSize()), nil
	}
	return e.row, e.uncertain
}

// classify partitions the vocabulary into accepted, rejected, and uncertain
// tokens for fr, per spec.md §4.6: a token is accepted if every one of its
// bytes can be consumed without the frontier dying, regardless of whether
// the grammar would also accept end-of-input at that point (a token is a
// valid next step mid-sequence, not necessarily a complete parse by
// itself).
func (c *AdaptiveCache) classify(fr npda.Frontier) maskEntry {
	vocabSize := c.tok.VocabSize()
	row := bitmask.NewRow(vocabSize)
	var uncertain []int32
	for tokenID, bytes := range c.tok.DecodedVocab {
		if c.tok.IsSpecial(int32(tokenID)) {
			continue
		}
		switch c.classifyToken(fr, bytes) {
		case tokenAccepted:
			row.Set(tokenID)
		case tokenUncertain:
			uncertain = append(uncertain, int32(tokenID))
		case tokenRejected:
		}
	}
	return maskEntry{row: row, uncertain: uncertain}
}

// classifyToken steps fr through tok's bytes one at a time. It reports
// tokenUncertain rather than tokenRejected when the frontier's final dead
// state was reached only via Pending: that death is an artifact of
// npda.StartAt's caller-less trial stack, not a true dead end for any real
// matcher holding the actual caller frames below pos.
func (c *AdaptiveCache) classifyToken(fr npda.Frontier, tok []byte) tokenVerdict {
	cur := fr
	for _, b := range tok {
		cur = stepFrontierByte(c.g, cur, b)
		if len(cur.Live) == 0 && len(cur.Dispatch) == 0 && !cur.Accept {
			if cur.Pending {
				return tokenUncertain
			}
			return tokenRejected
		}
	}
	return tokenAccepted
}

// stepFrontierByte steps every Live state of fr by b and merges the
// resulting frontiers. Dispatch states are outside AdaptiveCache's scope
// (see the type doc comment) and are dropped rather than stepped here.
func stepFrontierByte(g *ir.Grammar, fr npda.Frontier, b byte) npda.Frontier {
	var out npda.Frontier
	for _, live := range fr.Live {
		stepped := npda.StepByte(g, live, b)
		out.Live = append(out.Live, stepped.Live...)
		out.Dispatch = append(out.Dispatch, stepped.Dispatch...)
		out.Accept = out.Accept || stepped.Accept
		out.Pending = out.Pending || stepped.Pending
	}
	return out
}
