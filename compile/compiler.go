package compile

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ava12/gramatch/internal/glog"
	"github.com/ava12/gramatch/ir"
	"github.com/ava12/gramatch/normalize"
	"github.com/ava12/gramatch/tokenizer"
)

// Options configures a GrammarCompiler.
type Options struct {
	// Workers bounds how many grammars normalize/build their adaptive
	// cache concurrently. Zero means the spec.md §5 default of 8.
	Workers int
}

func (o Options) resolve() Options {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	return o
}

// CompiledGrammar is the artifact a GrammarCompiler hands back: the
// normalized, canonical-form grammar plus its lazily-populated adaptive
// token mask cache.
type CompiledGrammar struct {
	Grammar *ir.Grammar
	Cache   *AdaptiveCache
}

// cacheEntry single-flights concurrent Compile calls for the same key: the
// first caller runs the build under entry.once, every other caller for the
// same key blocks on the same gate and observes its result.
type cacheEntry struct {
	once   sync.Once
	result *CompiledGrammar
	err    error
}

// GrammarCompiler normalizes raw ir.Grammars into CompiledGrammars across a
// bounded worker pool (a buffered channel used as a counting semaphore —
// the pack's closest analog to a bounded background-job pool is
// DataDog-datadog-agent's worker-pool idiom, adapted down to a plain
// channel gate since that pool's own scheduler library has no seam here),
// reusing any in-flight or already-completed build for a given
// (grammar, tokenizer) pair via a sync.Map-backed cache keyed by content
// fingerprint (see fingerprint.go), per spec.md §5.
type GrammarCompiler struct {
	opts    Options
	sem     chan struct{}
	entries sync.Map // cache key (string) -> *cacheEntry
}

// NewGrammarCompiler builds a compiler with the given options (zero value
// is valid: the default worker count applies).
func NewGrammarCompiler(opts Options) *GrammarCompiler {
	opts = opts.resolve()
	return &GrammarCompiler{opts: opts, sem: make(chan struct{}, opts.Workers)}
}

// Compile normalizes g and builds its adaptive cache against tok, or
// returns the already-built (or in-flight) artifact for this exact
// (grammar, tokenizer) pair.
func (c *GrammarCompiler) Compile(g *ir.Grammar, tok *tokenizer.Info) (*CompiledGrammar, error) {
	key, err := cacheKey(g, tok)
	if err != nil {
		return nil, err
	}

	v, _ := c.entries.LoadOrStore(key, &cacheEntry{})
	entry := v.(*cacheEntry)
	entry.once.Do(func() {
		c.sem <- struct{}{}
		defer func() { <-c.sem }()

		traceID := uuid.NewString()
		glog.Debugf("compiling grammar trace=%s key=%s", traceID, key)

		normalized := normalize.Run(g)
		cache := NewAdaptiveCache(normalized, tok)
		cache.Precompute(allPositions(normalized), c.opts.Workers)
		entry.result = &CompiledGrammar{
			Grammar: normalized,
			Cache:   cache,
		}
	})
	return entry.result, entry.err
}

// allPositions enumerates every (ruleID, branchIndex, atomIndex) position a
// matcher can ever rest a stack frame at in g: every alternative of every
// rule, every atom index from 0 up to (but not including) that
// alternative's length — an index equal to the length means "branch
// exhausted", a transient state Close always advances straight through, so
// no live frame ever parks there and Precompute has no reason to classify
// it.
func allPositions(g *ir.Grammar) []ir.Position {
	var positions []ir.Position
	for ruleID := range g.Rules {
		n := ir.NumBranches(g, int32(ruleID))
		atomsFor := ir.BranchAtoms(g, int32(ruleID))
		for b := int32(0); b < n; b++ {
			atoms := atomsFor(b)
			for a := range atoms {
				positions = append(positions, ir.Position{
					RuleID:      int32(ruleID),
					BranchIndex: b,
					AtomIndex:   int32(a),
				})
			}
		}
	}
	return positions
}
