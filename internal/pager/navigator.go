package pager

import (
	"regexp"

	"github.com/TimelordUK/mpage/internal/index"
	mpageio "github.com/TimelordUK/mpage/internal/io"
	"github.com/TimelordUK/mpage/internal/logger"
	"github.com/TimelordUK/mpage/internal/overstrike"
	"github.com/TimelordUK/mpage/internal/source"
	"github.com/TimelordUK/mpage/internal/view"
)

// Options configures a Navigator
type Options struct {
	// Rows is the number of lines in the window
	Rows int

	// Reader controls line assembly
	Reader source.Options

	// SearchWraps is how many times a search may wrap around the source
	SearchWraps int

	// CheckpointStride is the line spacing of goto-line checkpoints
	CheckpointStride int
}

// DefaultOptions returns the navigator defaults
func DefaultOptions() Options {
	return Options{
		Rows:             24,
		Reader:           source.DefaultOptions(),
		SearchWraps:      1,
		CheckpointStride: index.DefaultStride,
	}
}

// Navigator moves a window of lines over one source. A jump that fails
// leaves the window as it was.
type Navigator struct {
	cache  *mpageio.BlockCache
	reader *source.Reader
	view   *view.Viewport
	marks  *MarkTable
	lines  *index.LineIndex
	opts   Options
	search searchState
}

type searchState struct {
	re         *regexp.Regexp
	pattern    string
	ignoreCase bool
	dir        Direction
}

// NewNavigator creates a navigator over cache and fills the window from
// the start of the source. Marks and line checkpoints start empty.
func NewNavigator(cache *mpageio.BlockCache, opts Options) (*Navigator, error) {
	if opts.Rows < 1 {
		opts.Rows = DefaultOptions().Rows
	}
	n := &Navigator{
		cache:  cache,
		reader: source.NewReader(cache, opts.Reader),
		view:   view.New(opts.Rows),
		marks:  NewMarkTable(),
		lines:  index.New(opts.CheckpointStride),
		opts:   opts,
	}
	if err := n.Fill(0); err != nil {
		return nil, err
	}
	return n, nil
}

// Cache returns the block cache of the current source
func (n *Navigator) Cache() *mpageio.BlockCache {
	return n.cache
}

// Options returns the current options
func (n *Navigator) Options() Options {
	return n.opts
}

// Marks returns the mark table
func (n *Navigator) Marks() *MarkTable {
	return n.marks
}

// Pattern returns the last search pattern
func (n *Navigator) Pattern() string {
	return n.search.pattern
}

// Top returns the start offset of the first displayed line
func (n *Navigator) Top() int64 {
	if e, ok := n.view.Top(); ok {
		return e.Pos
	}
	return 0
}

// Bottom returns the offset just past the last displayed line
func (n *Navigator) Bottom() int64 {
	if e, ok := n.view.Bottom(); ok {
		return e.Next
	}
	return 0
}

// Rows returns the window height
func (n *Navigator) Rows() int {
	return n.view.Rows()
}

// Entries returns the displayed rows from top to bottom
func (n *Navigator) Entries() []view.Entry {
	return n.view.Entries()
}

// Lines returns the displayed lines from top to bottom
func (n *Navigator) Lines() []*overstrike.Line {
	entries := n.view.Entries()
	out := make([]*overstrike.Line, len(entries))
	for i, e := range entries {
		out[i] = e.Line
	}
	return out
}

// AtBOF reports whether the first line of the source is on the top row
func (n *Navigator) AtBOF() bool {
	return n.Top() == 0
}

// AtEOF reports whether the last line of the source is displayed
func (n *Navigator) AtEOF() bool {
	size, ok := n.cache.Size()
	if !ok {
		return false
	}
	return n.view.Len() == 0 || n.Bottom() >= size
}

// Percent returns how far through the source the bottom row is, or -1 when
// the size is not known yet
func (n *Navigator) Percent() int {
	size, ok := n.cache.Size()
	if !ok {
		return -1
	}
	if size == 0 {
		return 100
	}
	return int(n.Bottom() * 100 / size)
}

// LineCount returns the number of lines once a goto-line scan has reached
// the end of the source
func (n *Navigator) LineCount() (int, bool) {
	return n.lines.Total()
}

// SetRows resizes the window, keeping the top line
func (n *Navigator) SetRows(rows int) error {
	if rows < 1 {
		rows = 1
	}
	top := n.Top()
	n.opts.Rows = rows
	n.view = view.New(rows)
	return n.Fill(top)
}

// SetSqueeze toggles blank-line squeezing and rereads the window
func (n *Navigator) SetSqueeze(on bool) error {
	n.opts.Reader.Squeeze = on
	n.reader.SetSqueeze(on)
	top := n.Top()
	n.view.Reset()
	return n.Fill(top)
}

// Fill redisplays the window starting at top, which must be a line start.
// Rows already in the window are reused without reading.
func (n *Navigator) Fill(top int64) error {
	entries, err := n.readWindow(top)
	if err != nil {
		return err
	}
	n.load(entries)
	return nil
}

// GotoPosition fills the window from the line containing pos
func (n *Navigator) GotoPosition(pos int64) error {
	if pos < 0 {
		pos = 0
	}
	if size, ok := n.cache.Size(); ok && pos >= size {
		return n.alignEOF()
	}
	start, err := n.reader.LineStart(pos)
	if err != nil {
		return err
	}
	return n.Fill(start)
}

func (n *Navigator) readWindow(top int64) ([]view.Entry, error) {
	known := n.view.Snapshot()
	entries := make([]view.Entry, 0, n.view.Rows())
	pos := top
	for len(entries) < n.view.Rows() {
		if e, ok := known[pos]; ok {
			entries = append(entries, e)
			pos = e.Next
			continue
		}
		line, next, err := n.reader.ReadForward(pos)
		if err != nil {
			return nil, err
		}
		if next == mpageio.NullPosition {
			break
		}
		entries = append(entries, view.Entry{Pos: pos, Next: next, Line: line})
		pos = next
	}
	return entries, nil
}

func (n *Navigator) load(entries []view.Entry) {
	n.view.Reset()
	for _, e := range entries {
		n.view.PushBottom(e)
	}
}

// jump fills from pos and remembers the old top in the last-jump mark
func (n *Navigator) jump(pos int64) error {
	prev := n.Top()
	if err := n.Fill(pos); err != nil {
		return err
	}
	n.marks.SetLastJump(prev)
	return nil
}

// alignEOF puts the last line of the source on the bottom row
func (n *Navigator) alignEOF() error {
	if err := n.drain(); err != nil {
		return err
	}
	size, _ := n.cache.Size()

	entries := make([]view.Entry, n.view.Rows())
	i := len(entries)
	pos := size
	for i > 0 {
		line, start, err := n.reader.ReadBackward(pos)
		if err != nil {
			return err
		}
		if start == mpageio.NullPosition {
			break
		}
		i--
		entries[i] = view.Entry{Pos: start, Next: pos, Line: line}
		pos = start
	}
	n.load(entries[i:])
	return nil
}

// drain reads a pipe to its end so its size is known
func (n *Navigator) drain() error {
	if n.cache.Seekable() {
		return nil
	}
	if _, ok := n.cache.Size(); ok {
		return nil
	}
	logger.Debug("draining pipe", "source", n.cache.Name())
	return n.cache.Drain()
}

// ScrollForward moves the window down count lines, stopping at the end
func (n *Navigator) ScrollForward(count int) error {
	for i := 0; i < count; i++ {
		bottom, ok := n.view.Bottom()
		if !ok {
			return nil
		}
		line, next, err := n.reader.ReadForward(bottom.Next)
		if err != nil {
			return err
		}
		if next == mpageio.NullPosition {
			return nil
		}
		n.view.PushBottom(view.Entry{Pos: bottom.Next, Next: next, Line: line})
	}
	return nil
}

// ScrollBackward moves the window up count lines, stopping at the start
func (n *Navigator) ScrollBackward(count int) error {
	for i := 0; i < count; i++ {
		top, ok := n.view.Top()
		if !ok {
			return nil
		}
		line, start, err := n.reader.ReadBackward(top.Pos)
		if err != nil {
			return err
		}
		if start == mpageio.NullPosition {
			return nil
		}
		n.view.PushTop(view.Entry{Pos: start, Next: top.Pos, Line: line})
	}
	return nil
}

// PageForward moves count windows down. A page cut short by the end of the
// source is aligned so the last line sits on the bottom row.
func (n *Navigator) PageForward(count int) error {
	for i := 0; i < count; i++ {
		bottom, ok := n.view.Bottom()
		if !ok {
			return nil
		}
		entries, err := n.readWindow(bottom.Next)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		if len(entries) < n.view.Rows() {
			return n.alignEOF()
		}
		n.load(entries)
	}
	return nil
}

// PageBackward moves count windows up
func (n *Navigator) PageBackward(count int) error {
	return n.ScrollBackward(count * n.view.Rows())
}

// HalfPageForward moves count half windows down
func (n *Navigator) HalfPageForward(count int) error {
	return n.ScrollForward(count * n.halfPage())
}

// HalfPageBackward moves count half windows up
func (n *Navigator) HalfPageBackward(count int) error {
	return n.ScrollBackward(count * n.halfPage())
}

func (n *Navigator) halfPage() int {
	return max(n.view.Rows()/2, 1)
}

// GotoLine puts line on the top row. Lines are numbered from 1. Past the
// end it stops on the last line and returns a *ShortFileError.
func (n *Navigator) GotoLine(line int) error {
	if line <= 1 {
		return n.jump(0)
	}

	at, pos := n.lines.Nearest(line)
	for at < line {
		next, err := n.reader.NextLineStart(pos)
		if err != nil {
			return err
		}
		if next == mpageio.NullPosition {
			n.lines.SetTotal(at)
			break
		}
		at++
		pos = next
		n.lines.Record(at, pos)
	}

	if err := n.jump(pos); err != nil {
		return err
	}
	if at < line {
		return &ShortFileError{Lines: at}
	}
	return nil
}

// GotoPercent puts the line containing the byte p percent into the source
// on the top row. 0 is the start and 100 aligns the end.
func (n *Navigator) GotoPercent(p int) error {
	p = min(max(p, 0), 100)
	if p == 0 {
		return n.jump(0)
	}
	if p == 100 {
		return n.GotoEOF()
	}

	if err := n.drain(); err != nil {
		return err
	}
	size, _ := n.cache.Size()
	start, err := n.reader.LineStart(size * int64(p) / 100)
	if err != nil {
		return err
	}
	return n.jump(start)
}

// GotoEOF puts the last line of the source on the bottom row
func (n *Navigator) GotoEOF() error {
	prev := n.Top()
	if err := n.alignEOF(); err != nil {
		return err
	}
	n.marks.SetLastJump(prev)
	return nil
}

// SetMark stores the current top under letter
func (n *Navigator) SetMark(letter byte) error {
	return n.marks.Set(letter, n.Top())
}

// GotoMark returns to the position stored under letter. The last-jump
// letter returns to where the previous jump started.
func (n *Navigator) GotoMark(letter byte) error {
	pos, err := n.marks.Get(letter)
	if err != nil {
		return err
	}
	return n.jump(pos)
}
