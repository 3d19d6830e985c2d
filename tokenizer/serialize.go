package tokenizer

import (
	"encoding/json"

	"github.com/ava12/gramatch"
)

func vocabTypeFromString(s string) (VocabType, bool) {
	switch s {
	case "RAW":
		return RAW, true
	case "BYTE_FALLBACK":
		return BYTE_FALLBACK, true
	case "BYTE_LEVEL":
		return BYTE_LEVEL, true
	default:
		return 0, false
	}
}

// DumpMetadata serializes everything about Info except the decoded
// vocabulary itself, per spec.md §6.2 ("the decoded vocabulary is supplied
// separately at deserialize time") -- grounded on xgrammar's
// TokenizerInfo.dump_metadata/from_vocab_and_metadata split, which exists
// because the vocabulary is the one part of Info too large to round-trip
// through a metadata blob on every call.
func (info *Info) DumpMetadata() ([]byte, error) {
	m := metadataJSON{
		VocabType:       info.VocabType.String(),
		VocabSize:       info.VocabSize(),
		AddPrefixSpace:  info.PrependSpaceInTokenization,
		StopTokenIDs:    info.StopTokenIDs,
		SpecialTokenIDs: info.SpecialTokenIDs,
		Version:         tokenizerSchemaVersion,
	}
	return json.Marshal(m)
}

// FromVocabAndMetadata rebuilds an Info from a decoded vocabulary plus a
// DumpMetadata blob. decodedVocab must have metadata's vocab_size entries.
func FromVocabAndMetadata(decodedVocab [][]byte, metadata []byte) (*Info, error) {
	var m metadataJSON
	if err := json.Unmarshal(metadata, &m); err != nil {
		return nil, gramatch.FormatError(gramatch.KindUsage, VersionMismatchError, "malformed tokenizer metadata: %s", err)
	}
	if m.Version == "" {
		return nil, gramatch.FormatError(gramatch.KindVersion, VersionMismatchError, "missing __VERSION__ field")
	}
	if m.Version != tokenizerSchemaVersion {
		return nil, gramatch.FormatError(gramatch.KindVersion, VersionMismatchError, "unsupported tokenizer metadata version %q, expected %q", m.Version, tokenizerSchemaVersion)
	}
	if len(decodedVocab) != m.VocabSize {
		return nil, gramatch.FormatError(gramatch.KindUsage, VocabSizeMismatchError, "decoded vocabulary has %d entries, metadata declares %d", len(decodedVocab), m.VocabSize)
	}

	vt, ok := vocabTypeFromString(m.VocabType)
	if !ok {
		return nil, gramatch.FormatError(gramatch.KindUsage, VersionMismatchError, "unknown vocab_type %q", m.VocabType)
	}

	return New(decodedVocab, vt, m.StopTokenIDs, m.SpecialTokenIDs, m.AddPrefixSpace), nil
}
