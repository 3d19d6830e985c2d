package compile

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ava12/gramatch/ir"
	"github.com/ava12/gramatch/tokenizer"
)

// cacheKey fingerprints a (grammar, tokenizer) pair into the string
// GrammarCompiler keys its single-flight cache by, per spec.md §5. Content-
// hashing rather than pointer identity means two callers who independently
// parsed the same grammar text against the same vocabulary share one
// compiled artifact instead of each paying to build their own.
func cacheKey(g *ir.Grammar, tok *tokenizer.Info) (string, error) {
	gf, err := grammarFingerprint(g)
	if err != nil {
		return "", err
	}
	tf, err := tokenizerFingerprint(tok)
	if err != nil {
		return "", err
	}
	return gf + ":" + tf, nil
}

func grammarFingerprint(g *ir.Grammar) (string, error) {
	data, err := ir.Serialize(g)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func tokenizerFingerprint(tok *tokenizer.Info) (string, error) {
	meta, err := tok.DumpMetadata()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(meta)
	for _, entry := range tok.DecodedVocab {
		h.Write(entry)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
