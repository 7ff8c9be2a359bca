package io

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorSkipsCarriageReturns(t *testing.T) {
	cache, err := NewBlockCache(NewPipeSource(bytes.NewReader([]byte("a\r\nb\r")), "-"), 1)
	require.NoError(t, err)
	cur := NewCursor(cache)

	var fwd []byte
	for {
		b, err := cur.Next()
		if err != nil {
			assert.ErrorIs(t, err, ErrEndOfStream)
			break
		}
		fwd = append(fwd, b)
	}
	assert.Equal(t, "a\nb", string(fwd))

	var back []byte
	for {
		b, err := cur.Prev()
		if err != nil {
			assert.ErrorIs(t, err, ErrBeginOfStream)
			break
		}
		back = append(back, b)
	}
	assert.Equal(t, "b\na", string(back))
	assert.Equal(t, int64(0), cur.Pos())
}

func TestCursorPeekDoesNotAdvance(t *testing.T) {
	cache := openMappedCache(t, []byte("\rxy"), 1)
	cur := NewCursor(cache)

	b, err := cur.Peek()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b)
	assert.Equal(t, int64(0), cur.Pos())

	b, err = cur.Next()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b)
	assert.Equal(t, int64(2), cur.Pos())
}

func TestCursorAcrossBlockBoundary(t *testing.T) {
	data := patternBytes(BlockSize + 2)
	cache := openMappedCache(t, data, 1)
	cur := NewCursor(cache)

	cur.Seek(BlockSize - 1)
	b, err := cur.Next()
	require.NoError(t, err)
	assert.Equal(t, data[BlockSize-1], b)
	b, err = cur.Next()
	require.NoError(t, err)
	assert.Equal(t, data[BlockSize], b)

	b, err = cur.Prev()
	require.NoError(t, err)
	assert.Equal(t, data[BlockSize], b)
	b, err = cur.Prev()
	require.NoError(t, err)
	assert.Equal(t, data[BlockSize-1], b)
}
