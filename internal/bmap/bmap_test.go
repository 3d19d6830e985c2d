package bmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyMap(t *testing.T) {
	m := New[int](1)

	en, found := m.Get([]byte{})
	assert.Equal(t, 0, en)
	assert.False(t, found)

	en, found = m.Get([]byte{1, 2, 3})
	assert.Equal(t, 0, en)
	assert.False(t, found)
}

func TestEmptyKey(t *testing.T) {
	m := New[int](1)
	empty := []byte{}

	m.Set([]byte("foo"), 123)
	en, found := m.Get(empty)
	assert.Equal(t, 0, en)
	assert.False(t, found)

	m.Set(empty, 345)
	en, found = m.Get(empty)
	assert.Equal(t, 345, en)
	assert.True(t, found)
}

func TestKey(t *testing.T) {
	m := New[int](2)
	key := []byte{1, 2, 3}
	key2 := []byte{1, 2}

	m.Set(key, 111)
	m.Set(key2, 222)

	en, found := m.Get(key)
	assert.Equal(t, 111, en)
	assert.True(t, found)

	key = key[:2]
	en, found = m.Get(key)
	assert.Equal(t, 222, en)
	assert.True(t, found)
}
