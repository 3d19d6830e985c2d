package match

import "github.com/ava12/gramatch"

// Error codes used by match.
const (
	RejectedByteError = gramatch.MatchErrors + iota
	UnknownTokenError
	StopTokenNotAcceptableError
	RollbackOutOfRangeError
)

func rejectedByteError(b byte) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindUsage, RejectedByteError,
		"byte 0x%02x rejected: grammar has no live continuation", b)
}

func unknownTokenError(tokenID int32) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindUsage, UnknownTokenError,
		"token id %d is outside the tokenizer's vocabulary", tokenID)
}

func stopTokenNotAcceptableError(tokenID int32) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindUsage, StopTokenNotAcceptableError,
		"stop token %d is not acceptable: grammar is not in an accepting state", tokenID)
}

func rollbackOutOfRangeError(requested, available int) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindUsage, RollbackOutOfRangeError,
		"cannot roll back %d tokens: only %d available in history", requested, available)
}
