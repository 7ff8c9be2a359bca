package index

// DefaultStride is the number of lines between two checkpoints
const DefaultStride = 1000

// LineIndex remembers the byte offset of every stride-th line start so
// line-number lookups resume from the nearest known point instead of byte 0.
// Lines are numbered from 1. Checkpoints are only ever recorded in order,
// so the index never has gaps.
type LineIndex struct {
	stride  int
	offsets []int64 // offsets[i] is the start of line i*stride+1
	total   int     // line count once the end of the source was seen, else 0
}

// New creates an index with a checkpoint every stride lines
func New(stride int) *LineIndex {
	if stride < 1 {
		stride = DefaultStride
	}
	idx := &LineIndex{stride: stride}
	idx.Reset()
	return idx
}

// Reset forgets everything but the start of line 1
func (idx *LineIndex) Reset() {
	idx.offsets = append(idx.offsets[:0], 0)
	idx.total = 0
}

// Stride returns the checkpoint spacing
func (idx *LineIndex) Stride() int {
	return idx.stride
}

// Checkpoints returns the number of recorded checkpoints
func (idx *LineIndex) Checkpoints() int {
	return len(idx.offsets)
}

// Nearest returns the closest checkpoint at or before line
func (idx *LineIndex) Nearest(line int) (int, int64) {
	if line <= 1 {
		return 1, 0
	}
	i := (line - 1) / idx.stride
	if i >= len(idx.offsets) {
		i = len(idx.offsets) - 1
	}
	return i*idx.stride + 1, idx.offsets[i]
}

// Record notes that line starts at pos. Only the next missing checkpoint
// is stored; anything else is ignored.
func (idx *LineIndex) Record(line int, pos int64) {
	if line == len(idx.offsets)*idx.stride+1 {
		idx.offsets = append(idx.offsets, pos)
	}
}

// SetTotal records the number of lines once the end was reached
func (idx *LineIndex) SetTotal(n int) {
	idx.total = n
}

// Total returns the line count if it is known
func (idx *LineIndex) Total() (int, bool) {
	return idx.total, idx.total > 0
}

// ByteOffset returns the recorded start of line, or -1 when line is not a
// checkpoint
func (idx *LineIndex) ByteOffset(line int) int64 {
	if line < 1 || (line-1)%idx.stride != 0 {
		return -1
	}
	i := (line - 1) / idx.stride
	if i >= len(idx.offsets) {
		return -1
	}
	return idx.offsets[i]
}
