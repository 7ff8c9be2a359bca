package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positions(v *Viewport) []int64 {
	var out []int64
	for _, e := range v.Entries() {
		out = append(out, e.Pos)
	}
	return out
}

func entry(pos int64) Entry {
	return Entry{Pos: pos, Next: pos + 1}
}

func TestEmptyViewport(t *testing.T) {
	v := New(0)
	assert.Equal(t, 1, v.Rows())
	assert.Equal(t, 0, v.Len())

	_, ok := v.Top()
	assert.False(t, ok)
	_, ok = v.Bottom()
	assert.False(t, ok)
	assert.Equal(t, -1, v.Find(0))
}

func TestPushBottomScrollsTopOut(t *testing.T) {
	v := New(3)
	for pos := int64(0); pos < 5; pos++ {
		v.PushBottom(entry(pos))
	}

	require.True(t, v.Full())
	assert.Equal(t, []int64{2, 3, 4}, positions(v))

	top, _ := v.Top()
	bottom, _ := v.Bottom()
	assert.Equal(t, int64(2), top.Pos)
	assert.Equal(t, int64(4), bottom.Pos)
}

func TestPushTopScrollsBottomOut(t *testing.T) {
	v := New(3)
	v.PushBottom(entry(10))
	v.PushTop(entry(9))
	assert.Equal(t, []int64{9, 10}, positions(v))

	v.PushTop(entry(8))
	v.PushTop(entry(7))
	assert.Equal(t, []int64{7, 8, 9}, positions(v))
}

func TestMixedPushesKeepOrder(t *testing.T) {
	v := New(4)
	for pos := int64(0); pos < 6; pos++ {
		v.PushBottom(entry(pos))
	}
	v.PushTop(entry(1))
	v.PushBottom(entry(5))
	v.PushBottom(entry(6))

	assert.Equal(t, []int64{3, 4, 5, 6}, positions(v))
	assert.Equal(t, 2, v.Find(5))
	assert.Equal(t, -1, v.Find(1))
}

func TestSnapshotAndReset(t *testing.T) {
	v := New(2)
	v.PushBottom(entry(4))
	v.PushBottom(entry(8))

	snap := v.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, int64(9), snap[8].Next)

	v.Reset()
	assert.Equal(t, 0, v.Len())
	assert.Len(t, snap, 2, "snapshot is independent of the ring")
}
