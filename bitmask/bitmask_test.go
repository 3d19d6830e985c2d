package bitmask

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	require.Equal(t, 0, Shape(0))
	require.Equal(t, 1, Shape(1))
	require.Equal(t, 1, Shape(32))
	require.Equal(t, 2, Shape(33))
}

func TestSetClearIsSet(t *testing.T) {
	r := NewRow(100)
	require.False(t, r.IsSet(5))
	r.Set(5)
	require.True(t, r.IsSet(5))
	r.Clear(5)
	require.False(t, r.IsSet(5))
}

func TestAllSetClearsTrailingBits(t *testing.T) {
	r := NewRowAllSet(3)
	require.True(t, r.IsSet(0))
	require.True(t, r.IsSet(1))
	require.True(t, r.IsSet(2))
	for tokenID := 3; tokenID < 32; tokenID++ {
		require.False(t, r.IsSet(tokenID), "token %d beyond vocab must not be set", tokenID)
	}
}

func TestUnionIntersect(t *testing.T) {
	a := NewRow(64)
	b := NewRow(64)
	a.Set(1)
	a.Set(2)
	b.Set(2)
	b.Set(3)

	u := NewRow(64)
	u.Union(a)
	u.Union(b)
	require.True(t, u.IsSet(1))
	require.True(t, u.IsSet(2))
	require.True(t, u.IsSet(3))

	i := NewRowAllSet(64)
	i.Intersect(a)
	i.Intersect(b)
	require.False(t, i.IsSet(1))
	require.True(t, i.IsSet(2))
	require.False(t, i.IsSet(3))
}

func TestApplyInPlace(t *testing.T) {
	mask := NewRow(3)
	mask.Set(0) // only token "a" admissible, per the spec.md bitmask-emission scenario
	logits := []float32{1, 2, 3}
	err := ApplyInPlace(logits, mask, 3)
	require.NoError(t, err)
	require.Equal(t, float32(1), logits[0])
	require.True(t, math.IsInf(float64(logits[1]), -1))
	require.True(t, math.IsInf(float64(logits[2]), -1))
}

func TestApplyInPlaceShapeMismatch(t *testing.T) {
	mask := NewRow(3)
	err := ApplyInPlace([]float32{1, 2, 3}, mask, 64)
	require.Error(t, err)
}
