package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mpageio "github.com/TimelordUK/mpage/internal/io"
	"github.com/TimelordUK/mpage/internal/overstrike"
)

func newPipeReader(t *testing.T, content string, opts Options) *Reader {
	t.Helper()
	cache, err := mpageio.NewBlockCache(mpageio.NewPipeSource(bytes.NewReader([]byte(content)), "-"), 4)
	require.NoError(t, err)
	return NewReader(cache, opts)
}

func newFileReader(t *testing.T, content string, opts Options) *Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	src, err := mpageio.OpenMapped(path)
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })
	cache, err := mpageio.NewBlockCache(src, 2)
	require.NoError(t, err)
	return NewReader(cache, opts)
}

type step struct {
	text string
	pos  int64
}

func readAllForward(t *testing.T, r *Reader) []step {
	t.Helper()
	var out []step
	pos := int64(0)
	for {
		line, next, err := r.ReadForward(pos)
		require.NoError(t, err)
		if next == mpageio.NullPosition {
			require.Nil(t, line)
			return out
		}
		out = append(out, step{text: line.Plain(), pos: pos})
		pos = next
	}
}

func readAllBackward(t *testing.T, r *Reader, from int64) []step {
	t.Helper()
	var out []step
	pos := from
	for {
		line, start, err := r.ReadBackward(pos)
		require.NoError(t, err)
		if start == mpageio.NullPosition {
			return out
		}
		out = append(out, step{text: line.Plain(), pos: start})
		pos = start
	}
}

func TestReadForwardAndBackward(t *testing.T) {
	for name, mk := range map[string]func(*testing.T, string, Options) *Reader{
		"pipe": newPipeReader,
		"file": newFileReader,
	} {
		t.Run(name, func(t *testing.T) {
			r := mk(t, "AAA\nBBB\nCCC\n", DefaultOptions())

			want := []step{{"AAA", 0}, {"BBB", 4}, {"CCC", 8}}
			assert.Equal(t, want, readAllForward(t, r))
			assert.Equal(t, []step{{"CCC", 8}, {"BBB", 4}, {"AAA", 0}}, readAllBackward(t, r, 12))
		})
	}
}

func TestReadWithoutTrailingNewline(t *testing.T) {
	r := newFileReader(t, "AAA\nBBB", DefaultOptions())
	assert.Equal(t, []step{{"AAA", 0}, {"BBB", 4}}, readAllForward(t, r))
	assert.Equal(t, []step{{"BBB", 4}, {"AAA", 0}}, readAllBackward(t, r, 7))
}

func TestReadCRLF(t *testing.T) {
	r := newPipeReader(t, "a\r\nb\r\n", DefaultOptions())
	assert.Equal(t, []step{{"a", 0}, {"b", 3}}, readAllForward(t, r))
	assert.Equal(t, []step{{"b", 3}, {"a", 0}}, readAllBackward(t, r, 6))
}

func TestReadNulEndsLine(t *testing.T) {
	r := newPipeReader(t, "ab\x00cd\n", DefaultOptions())
	assert.Equal(t, []step{{"ab", 0}, {"cd", 3}}, readAllForward(t, r))
}

func TestSqueezeBlankLines(t *testing.T) {
	opts := DefaultOptions()
	opts.Squeeze = true

	t.Run("middle", func(t *testing.T) {
		r := newFileReader(t, "A\n\n\n\nB\n", opts)
		assert.Equal(t, []step{{"A", 0}, {"", 2}, {"B", 5}}, readAllForward(t, r))
		assert.Equal(t, []step{{"B", 5}, {"", 2}, {"A", 0}}, readAllBackward(t, r, 7))
	})

	t.Run("leading", func(t *testing.T) {
		r := newFileReader(t, "\n\n\nX\n", opts)
		assert.Equal(t, []step{{"", 0}, {"X", 3}}, readAllForward(t, r))
		assert.Equal(t, []step{{"X", 3}, {"", 0}}, readAllBackward(t, r, 5))
	})

	t.Run("off", func(t *testing.T) {
		r := newFileReader(t, "A\n\n\nB\n", DefaultOptions())
		assert.Equal(t, []step{{"A", 0}, {"", 2}, {"", 3}, {"B", 4}}, readAllForward(t, r))
	})
}

func TestLongLinesAreFolded(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLineLen = 4
	r := newFileReader(t, "abcdefghij\nxy\nabcd\nz", opts)

	want := []step{{"abcd", 0}, {"efgh", 4}, {"ij", 8}, {"xy", 11}, {"abcd", 14}, {"z", 19}}
	assert.Equal(t, want, readAllForward(t, r))

	back := readAllBackward(t, r, 20)
	for i, j := 0, len(back)-1; i < j; i, j = i+1, j-1 {
		back[i], back[j] = back[j], back[i]
	}
	assert.Equal(t, want, back)

	line, _, err := r.ReadForward(0)
	require.NoError(t, err)
	assert.True(t, line.Truncated)

	line, _, err = r.ReadForward(14)
	require.NoError(t, err)
	assert.False(t, line.Truncated, "a line exactly at the cutoff is not truncated")
}

func TestReadForwardDecodesOverstrike(t *testing.T) {
	r := newPipeReader(t, "B\bBO\bOLD\n", DefaultOptions())
	line, next, err := r.ReadForward(0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), next)
	assert.Equal(t, []overstrike.Segment{
		{Text: "BO", Bold: true},
		{Text: "LD"},
	}, line.Segments())
}

func TestRawReaders(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRawLen = 3
	r := newFileReader(t, "x\b_y\nabcdef\nz", opts)

	raw, next, err := r.ReadRawForward(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("x\b_"), raw, "raw lines keep backspaces and are capped")
	assert.Equal(t, int64(5), next)

	raw, next, err = r.ReadRawForward(5)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), raw)
	assert.Equal(t, int64(12), next, "the rest of a capped line is skipped")

	raw, start, err := r.ReadRawBackward(12)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), raw)
	assert.Equal(t, int64(5), start)

	_, next, err = r.ReadRawForward(13)
	require.NoError(t, err)
	assert.Equal(t, mpageio.NullPosition, next)

	_, start, err = r.ReadRawBackward(0)
	require.NoError(t, err)
	assert.Equal(t, mpageio.NullPosition, start)
}

func TestLineStartAndNextLineStart(t *testing.T) {
	r := newFileReader(t, "AAA\nBBB\n", DefaultOptions())

	for pos, want := range map[int64]int64{0: 0, 2: 0, 4: 4, 6: 4, 8: 8} {
		got, err := r.LineStart(pos)
		require.NoError(t, err)
		assert.Equal(t, want, got, "LineStart(%d)", pos)
	}

	next, err := r.NextLineStart(0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), next)

	next, err = r.NextLineStart(4)
	require.NoError(t, err)
	assert.Equal(t, mpageio.NullPosition, next)
}

func TestReadNullPosition(t *testing.T) {
	r := newPipeReader(t, "a\n", DefaultOptions())
	line, next, err := r.ReadForward(mpageio.NullPosition)
	require.NoError(t, err)
	assert.Nil(t, line)
	assert.Equal(t, mpageio.NullPosition, next)
}
