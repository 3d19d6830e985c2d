package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sample() *Info {
	return New(
		[][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("<eos>")},
		RAW,
		[]int32{3},
		[]int32{3},
		false,
	)
}

func TestIsStopIsSpecial(t *testing.T) {
	info := sample()
	require.True(t, info.IsStop(3))
	require.False(t, info.IsStop(0))
	require.True(t, info.IsSpecial(3))
	require.False(t, info.IsSpecial(0))
	require.Equal(t, 4, info.VocabSize())
}

func TestMetadataRoundTrip(t *testing.T) {
	info := sample()
	blob, err := info.DumpMetadata()
	require.NoError(t, err)

	rebuilt, err := FromVocabAndMetadata(info.DecodedVocab, blob)
	require.NoError(t, err)
	require.Equal(t, info.VocabType, rebuilt.VocabType)
	require.Equal(t, info.StopTokenIDs, rebuilt.StopTokenIDs)
	require.Equal(t, info.SpecialTokenIDs, rebuilt.SpecialTokenIDs)
	require.Equal(t, info.PrependSpaceInTokenization, rebuilt.PrependSpaceInTokenization)
}

func TestFromVocabAndMetadataVocabSizeMismatch(t *testing.T) {
	info := sample()
	blob, err := info.DumpMetadata()
	require.NoError(t, err)

	_, err = FromVocabAndMetadata(info.DecodedVocab[:2], blob)
	require.Error(t, err)
}

func TestFromVocabAndMetadataVersionError(t *testing.T) {
	_, err := FromVocabAndMetadata(nil, []byte(`{"__VERSION__":"v1","vocab_size":0}`))
	require.Error(t, err)
}
