// Package tokenizer holds the immutable decoded-vocabulary record the
// compiler consumes (spec.md §3.2). It never touches a real tokenizer
// implementation or model weights: callers decode the vocabulary themselves
// (byte-fallback / byte-level / raw) and hand the result here.
package tokenizer

import "github.com/ava12/gramatch"

// VocabType governs how a tokenizer's own on-disk vocabulary must be
// decoded into raw bytes before it reaches Info; this package only stores
// the tag, it never performs the decoding itself.
type VocabType int

const (
	// RAW: the vocabulary's tokens are already the bytes the model sees
	// (e.g. tiktoken-style tokenizers).
	RAW VocabType = iota
	// BYTE_FALLBACK: tokens were produced by a byte-fallback BPE tokenizer
	// ("<0x1B>" style escapes for non-printable bytes).
	BYTE_FALLBACK
	// BYTE_LEVEL: tokens were produced by a byte-to-unicode BPE tokenizer
	// (GPT-2 style, e.g. "Ġ" standing in for a leading space).
	BYTE_LEVEL
)

func (v VocabType) String() string {
	switch v {
	case RAW:
		return "RAW"
	case BYTE_FALLBACK:
		return "BYTE_FALLBACK"
	case BYTE_LEVEL:
		return "BYTE_LEVEL"
	default:
		return "UNKNOWN"
	}
}

// Error codes used by tokenizer.
const (
	VersionMismatchError = gramatch.SerializeErrors + iota + 100
	VocabSizeMismatchError
)

// Info is the immutable record built once per tokenizer and shared without
// synchronization by any number of compiled grammars.
type Info struct {
	VocabType      VocabType
	DecodedVocab   [][]byte
	StopTokenIDs   []int32
	SpecialTokenIDs []int32
	PrependSpaceInTokenization bool

	specialSet map[int32]bool
}

// New builds an Info, sorting nothing: DecodedVocab's order is the token id
// order the rest of the system indexes by.
func New(decodedVocab [][]byte, vocabType VocabType, stopTokenIDs, specialTokenIDs []int32, prependSpace bool) *Info {
	info := &Info{
		VocabType:                 vocabType,
		DecodedVocab:               decodedVocab,
		StopTokenIDs:               stopTokenIDs,
		SpecialTokenIDs:            specialTokenIDs,
		PrependSpaceInTokenization: prependSpace,
	}
	info.specialSet = make(map[int32]bool, len(specialTokenIDs))
	for _, id := range specialTokenIDs {
		info.specialSet[id] = true
	}
	return info
}

// VocabSize returns the number of entries in the decoded vocabulary.
func (info *Info) VocabSize() int {
	return len(info.DecodedVocab)
}

// IsSpecial reports whether tokenID is a special token, never admissible in
// grammar context.
func (info *Info) IsSpecial(tokenID int32) bool {
	return info.specialSet[tokenID]
}

// IsStop reports whether tokenID is a designated stop token.
func (info *Info) IsStop(tokenID int32) bool {
	for _, id := range info.StopTokenIDs {
		if id == tokenID {
			return true
		}
	}
	return false
}

const tokenizerSchemaVersion = "v2"

type metadataJSON struct {
	VocabType        string  `json:"vocab_type"`
	VocabSize        int     `json:"vocab_size"`
	AddPrefixSpace   bool    `json:"add_prefix_space"`
	StopTokenIDs     []int32 `json:"stop_token_ids"`
	SpecialTokenIDs  []int32 `json:"special_token_ids"`
	Version          string  `json:"__VERSION__"`
}
