package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearestFallsBackToStart(t *testing.T) {
	idx := New(10)
	line, pos := idx.Nearest(55)
	assert.Equal(t, 1, line)
	assert.Equal(t, int64(0), pos)
}

func TestRecordKeepsCheckpointsInOrder(t *testing.T) {
	idx := New(10)

	idx.Record(21, 400) // out of order, ignored
	assert.Equal(t, 1, idx.Checkpoints())

	idx.Record(11, 200)
	idx.Record(11, 999) // already recorded
	idx.Record(21, 400)
	assert.Equal(t, 3, idx.Checkpoints())

	tests := []struct {
		line     int
		wantLine int
		wantPos  int64
	}{
		{0, 1, 0},
		{1, 1, 0},
		{10, 1, 0},
		{11, 11, 200},
		{20, 11, 200},
		{21, 21, 400},
		{500, 21, 400},
	}
	for _, tt := range tests {
		line, pos := idx.Nearest(tt.line)
		assert.Equal(t, tt.wantLine, line, "line %d", tt.line)
		assert.Equal(t, tt.wantPos, pos, "line %d", tt.line)
	}

	assert.Equal(t, int64(200), idx.ByteOffset(11))
	assert.Equal(t, int64(-1), idx.ByteOffset(12))
	assert.Equal(t, int64(-1), idx.ByteOffset(31))
}

func TestResetAndTotal(t *testing.T) {
	idx := New(0)
	assert.Equal(t, DefaultStride, idx.Stride())

	_, ok := idx.Total()
	assert.False(t, ok)

	idx.Record(DefaultStride+1, 12345)
	idx.SetTotal(1500)
	n, ok := idx.Total()
	assert.True(t, ok)
	assert.Equal(t, 1500, n)

	idx.Reset()
	assert.Equal(t, 1, idx.Checkpoints())
	_, ok = idx.Total()
	assert.False(t, ok)
}
