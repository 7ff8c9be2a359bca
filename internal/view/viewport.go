package view

import "github.com/TimelordUK/mpage/internal/overstrike"

// Entry is one screen row: the byte offset its line starts at, the offset
// of the line after it, and the decoded line itself.
type Entry struct {
	Pos  int64
	Next int64
	Line *overstrike.Line
}

// Viewport manages the visible portion of content as a ring of line
// positions. It knows nothing about files or decoding; it only remembers
// where each displayed row came from so the pager can step the window
// without rereading lines it already has.
type Viewport struct {
	ring  []Entry
	top   int
	count int
}

// New creates a viewport with room for rows lines
func New(rows int) *Viewport {
	if rows < 1 {
		rows = 1
	}
	return &Viewport{ring: make([]Entry, rows)}
}

// Reset empties the viewport
func (v *Viewport) Reset() {
	v.top = 0
	v.count = 0
	clear(v.ring)
}

// Rows returns the viewport height
func (v *Viewport) Rows() int {
	return len(v.ring)
}

// Len returns the number of rows holding a line
func (v *Viewport) Len() int {
	return v.count
}

// Full reports whether every row holds a line
func (v *Viewport) Full() bool {
	return v.count == len(v.ring)
}

// Top returns the first displayed entry
func (v *Viewport) Top() (Entry, bool) {
	if v.count == 0 {
		return Entry{}, false
	}
	return v.ring[v.top], true
}

// Bottom returns the last displayed entry
func (v *Viewport) Bottom() (Entry, bool) {
	if v.count == 0 {
		return Entry{}, false
	}
	return v.ring[(v.top+v.count-1)%len(v.ring)], true
}

// At returns the entry on row i, counted from the top
func (v *Viewport) At(i int) Entry {
	return v.ring[(v.top+i)%len(v.ring)]
}

// PushBottom appends a row, scrolling the top row out when full
func (v *Viewport) PushBottom(e Entry) {
	if v.Full() {
		v.ring[v.top] = e
		v.top = (v.top + 1) % len(v.ring)
		return
	}
	v.ring[(v.top+v.count)%len(v.ring)] = e
	v.count++
}

// PushTop prepends a row, scrolling the bottom row out when full
func (v *Viewport) PushTop(e Entry) {
	v.top = (v.top - 1 + len(v.ring)) % len(v.ring)
	v.ring[v.top] = e
	if v.count < len(v.ring) {
		v.count++
	}
}

// Find returns the row whose line starts at pos, or -1
func (v *Viewport) Find(pos int64) int {
	for i := 0; i < v.count; i++ {
		if v.At(i).Pos == pos {
			return i
		}
	}
	return -1
}

// Entries returns the rows from top to bottom
func (v *Viewport) Entries() []Entry {
	out := make([]Entry, v.count)
	for i := range out {
		out[i] = v.At(i)
	}
	return out
}

// Snapshot returns the current rows keyed by start offset
func (v *Viewport) Snapshot() map[int64]Entry {
	m := make(map[int64]Entry, v.count)
	for i := 0; i < v.count; i++ {
		e := v.At(i)
		m[e.Pos] = e
	}
	return m
}
