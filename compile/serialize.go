package compile

import (
	"encoding/json"

	"github.com/ava12/gramatch"
	"github.com/ava12/gramatch/ir"
	"github.com/ava12/gramatch/tokenizer"
)

const schemaVersion = "v1"

// Error codes used by compile's (de)serializer.
const (
	VersionMismatchError = gramatch.CompileErrors + iota
	MissingFieldError
	MalformedCacheError
)

// maskEntryJSON is one AdaptiveCache slot's wire form, per spec.md §6.2's
// "compiled artifacts serialize to a JSON object with fields... including
// adaptive_token_mask_cache (for CompiledGrammar only)".
type maskEntryJSON struct {
	RuleID      int32   `json:"rule_id"`
	BranchIndex int32   `json:"branch_index"`
	AtomIndex   int32   `json:"atom_index"`
	Row         []int32 `json:"row"`
	Uncertain   []int32 `json:"uncertain,omitempty"`
}

type compiledGrammarJSON struct {
	Grammar                json.RawMessage `json:"grammar_"`
	AdaptiveTokenMaskCache []maskEntryJSON `json:"adaptive_token_mask_cache"`
	Version                string          `json:"__VERSION__"`
}

// Serialize encodes cg per spec.md §6.2: the normalized grammar nested
// verbatim (ir.Serialize's own wire form) alongside the adaptive cache's
// full, already-precomputed contents. Map iteration order doesn't matter
// here since every entry carries its own position, not an implicit index.
func Serialize(cg *CompiledGrammar) ([]byte, error) {
	grammarJSON, err := ir.Serialize(cg.Grammar)
	if err != nil {
		return nil, err
	}

	cg.Cache.mu.RLock()
	entries := make([]maskEntryJSON, 0, len(cg.Cache.entries))
	for key, entry := range cg.Cache.entries {
		entries = append(entries, maskEntryJSON{
			RuleID:      key.ruleID,
			BranchIndex: key.branchIndex,
			AtomIndex:   key.atomIndex,
			Row:         entry.row,
			Uncertain:   entry.uncertain,
		})
	}
	cg.Cache.mu.RUnlock()

	out := compiledGrammarJSON{
		Grammar:                grammarJSON,
		AdaptiveTokenMaskCache: entries,
		Version:                schemaVersion,
	}
	return json.Marshal(out)
}

// Deserialize decodes a CompiledGrammar previously produced by Serialize.
// tok must be the same (or an equivalent) tokenizer.Info the grammar was
// originally compiled against: AdaptiveCache.MaskAt consults it for vocab
// size on a cache miss, and it is not itself part of the wire form.
func Deserialize(data []byte, tok *tokenizer.Info) (*CompiledGrammar, error) {
	var in compiledGrammarJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, gramatch.FormatError(gramatch.KindUsage, MalformedCacheError, "malformed compiled grammar JSON: %s", err)
	}
	if in.Version == "" {
		return nil, gramatch.FormatError(gramatch.KindVersion, MissingFieldError, "missing __VERSION__ field")
	}
	if in.Version != schemaVersion {
		return nil, gramatch.FormatError(gramatch.KindVersion, VersionMismatchError, "unsupported compiled grammar version %q, expected %q", in.Version, schemaVersion)
	}
	if in.Grammar == nil {
		return nil, gramatch.FormatError(gramatch.KindUsage, MissingFieldError, "missing grammar_")
	}

	g, err := ir.Deserialize(in.Grammar)
	if err != nil {
		return nil, err
	}

	cache := NewAdaptiveCache(g, tok)
	for _, e := range in.AdaptiveTokenMaskCache {
		key := positionKey{e.RuleID, e.BranchIndex, e.AtomIndex}
		cache.entries[key] = maskEntry{row: e.Row, uncertain: e.Uncertain}
	}
	cache.built = true

	return &CompiledGrammar{Grammar: g, Cache: cache}, nil
}
