package pager

import mpageio "github.com/TimelordUK/mpage/internal/io"

// LastJump is the mark letter naming the position before the latest jump
const LastJump = '\''

const (
	letterMarks  = 26
	lastJumpSlot = letterMarks
)

// MarkTable holds the 26 letter marks plus the last-jump slot
type MarkTable struct {
	slots [letterMarks + 1]int64
}

// NewMarkTable returns a table with every mark unset
func NewMarkTable() *MarkTable {
	m := &MarkTable{}
	m.Reset()
	return m
}

// Reset clears every mark
func (m *MarkTable) Reset() {
	for i := range m.slots {
		m.slots[i] = mpageio.NullPosition
	}
}

func slot(letter byte) (int, bool) {
	switch {
	case letter >= 'a' && letter <= 'z':
		return int(letter - 'a'), true
	case letter == LastJump:
		return lastJumpSlot, true
	}
	return 0, false
}

// Set stores pos under letter
func (m *MarkTable) Set(letter byte, pos int64) error {
	i, ok := slot(letter)
	if !ok {
		return ErrInvalidMark
	}
	m.slots[i] = pos
	return nil
}

// Get returns the position stored under letter
func (m *MarkTable) Get(letter byte) (int64, error) {
	i, ok := slot(letter)
	if !ok || m.slots[i] == mpageio.NullPosition {
		return mpageio.NullPosition, ErrMarkNotSet
	}
	return m.slots[i], nil
}

// SetLastJump records the position left by a jump
func (m *MarkTable) SetLastJump(pos int64) {
	m.slots[lastJumpSlot] = pos
}
