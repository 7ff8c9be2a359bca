package source

import (
	"errors"

	mpageio "github.com/TimelordUK/mpage/internal/io"
	"github.com/TimelordUK/mpage/internal/overstrike"
)

// Options controls how lines are assembled
type Options struct {
	// Squeeze collapses runs of blank lines into one
	Squeeze bool

	// MaxLineLen is the number of input bytes after which a decoded line is folded
	MaxLineLen int

	// MaxRawLen caps the bytes kept by the raw readers used for searching
	MaxRawLen int

	// Ceiling is the highest byte passed through unchanged by the decoder
	Ceiling byte
}

// DefaultOptions returns the reader defaults
func DefaultOptions() Options {
	return Options{
		MaxLineLen: 1024,
		MaxRawLen:  1024,
		Ceiling:    overstrike.DefaultCeiling,
	}
}

// Reader assembles lines from a block cache in either direction
type Reader struct {
	cur  *mpageio.Cursor
	dec  *overstrike.Decoder
	opts Options
}

// NewReader creates a line reader over cache
func NewReader(cache *mpageio.BlockCache, opts Options) *Reader {
	if opts.MaxLineLen < 1 {
		opts.MaxLineLen = DefaultOptions().MaxLineLen
	}
	if opts.MaxRawLen < 1 {
		opts.MaxRawLen = DefaultOptions().MaxRawLen
	}
	return &Reader{
		cur:  mpageio.NewCursor(cache),
		dec:  overstrike.NewDecoder(opts.Ceiling),
		opts: opts,
	}
}

// Cache returns the block cache the reader pulls from
func (r *Reader) Cache() *mpageio.BlockCache {
	return r.cur.Cache()
}

// Options returns the current options
func (r *Reader) Options() Options {
	return r.opts
}

// SetSqueeze toggles blank-line squeezing
func (r *Reader) SetSqueeze(on bool) {
	r.opts.Squeeze = on
}

func isEnd(err error) bool {
	return errors.Is(err, mpageio.ErrEndOfStream)
}

func isBegin(err error) bool {
	return errors.Is(err, mpageio.ErrBeginOfStream)
}

// ReadForward decodes the line starting at pos and returns it with the
// position of the following line. At end of stream it returns a nil line and
// NullPosition.
func (r *Reader) ReadForward(pos int64) (*overstrike.Line, int64, error) {
	if pos == mpageio.NullPosition {
		return nil, mpageio.NullPosition, nil
	}

	r.cur.Seek(pos)
	c, err := r.cur.Next()
	if isEnd(err) {
		return nil, mpageio.NullPosition, nil
	}
	if err != nil {
		return nil, mpageio.NullPosition, err
	}

	r.dec.Reset()
	consumed := 0
	truncated := false

	for {
		if c == '\n' || c == 0 {
			if c == '\n' && consumed == 0 && r.opts.Squeeze {
				if err := r.skipBlankRun(); err != nil {
					return nil, mpageio.NullPosition, err
				}
			}
			break
		}

		r.dec.Feed(c)
		consumed++

		if consumed >= r.opts.MaxLineLen {
			// A terminator right at the cutoff still belongs to this line.
			next, err := r.cur.Peek()
			if err != nil && !isEnd(err) {
				return nil, mpageio.NullPosition, err
			}
			if err == nil && (next == '\n' || next == 0) {
				r.cur.Next()
			} else if err == nil {
				truncated = true
			}
			break
		}

		c, err = r.cur.Next()
		if isEnd(err) {
			break
		}
		if err != nil {
			return nil, mpageio.NullPosition, err
		}
	}

	line := r.dec.Finish()
	line.Truncated = truncated
	return line, r.cur.Pos(), nil
}

// skipBlankRun consumes newlines following an empty line and stops before
// the first byte that is not a newline.
func (r *Reader) skipBlankRun() error {
	for {
		c, err := r.cur.Peek()
		if isEnd(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if c != '\n' {
			return nil
		}
		r.cur.Next()
	}
}

// ReadBackward returns the line that ends at pos together with its start.
// The start is found by scanning backward for a newline; the content is then
// decoded forward from there, because overstrike sequences cannot be decoded
// in reverse.
func (r *Reader) ReadBackward(pos int64) (*overstrike.Line, int64, error) {
	start, err := r.lineStartBefore(pos)
	if err != nil || start == mpageio.NullPosition {
		return nil, mpageio.NullPosition, err
	}

	if r.opts.Squeeze {
		if start, err = r.squeezeBack(start); err != nil {
			return nil, mpageio.NullPosition, err
		}
	}

	// Long lines are folded, so walk the segments to the one ending at pos.
	for {
		line, next, err := r.ReadForward(start)
		if err != nil {
			return nil, mpageio.NullPosition, err
		}
		if line == nil {
			return nil, mpageio.NullPosition, nil
		}
		if next == mpageio.NullPosition || next >= pos {
			return line, start, nil
		}
		start = next
	}
}

// ReadRawForward returns the undecoded bytes of the line at pos, capped at
// MaxRawLen, and the start of the following line. The rest of an over-long
// line is skipped so positions stay on line starts.
func (r *Reader) ReadRawForward(pos int64) ([]byte, int64, error) {
	if pos == mpageio.NullPosition {
		return nil, mpageio.NullPosition, nil
	}

	r.cur.Seek(pos)
	c, err := r.cur.Next()
	if isEnd(err) {
		return nil, mpageio.NullPosition, nil
	}
	if err != nil {
		return nil, mpageio.NullPosition, err
	}

	buf := make([]byte, 0, 128)
	for c != '\n' && c != 0 {
		if len(buf) < r.opts.MaxRawLen {
			buf = append(buf, c)
		}
		c, err = r.cur.Next()
		if isEnd(err) {
			break
		}
		if err != nil {
			return nil, mpageio.NullPosition, err
		}
	}
	return buf, r.cur.Pos(), nil
}

// ReadRawBackward returns the undecoded line ending at pos and its start
func (r *Reader) ReadRawBackward(pos int64) ([]byte, int64, error) {
	start, err := r.lineStartBefore(pos)
	if err != nil || start == mpageio.NullPosition {
		return nil, mpageio.NullPosition, err
	}
	raw, _, err := r.ReadRawForward(start)
	if err != nil {
		return nil, mpageio.NullPosition, err
	}
	return raw, start, nil
}

// LineStart returns the start of the line containing pos
func (r *Reader) LineStart(pos int64) (int64, error) {
	if pos <= 0 {
		return 0, nil
	}
	r.cur.Seek(pos)
	for {
		c, err := r.cur.Prev()
		if isBegin(err) {
			return 0, nil
		}
		if err != nil {
			return mpageio.NullPosition, err
		}
		if c == '\n' {
			return r.cur.Pos() + 1, nil
		}
	}
}

// NextLineStart returns the start of the line after the one containing pos,
// or NullPosition when no further line exists.
func (r *Reader) NextLineStart(pos int64) (int64, error) {
	if pos == mpageio.NullPosition {
		return mpageio.NullPosition, nil
	}
	r.cur.Seek(pos)
	for {
		c, err := r.cur.Next()
		if isEnd(err) {
			return mpageio.NullPosition, nil
		}
		if err != nil {
			return mpageio.NullPosition, err
		}
		if c == '\n' {
			break
		}
	}

	if _, err := r.cur.Peek(); err != nil {
		if isEnd(err) {
			return mpageio.NullPosition, nil
		}
		return mpageio.NullPosition, err
	}
	return r.cur.Pos(), nil
}

// lineStartBefore returns the start of the line whose last byte is at pos-1,
// or NullPosition when pos is the beginning of the stream.
func (r *Reader) lineStartBefore(pos int64) (int64, error) {
	if pos == mpageio.NullPosition || pos <= 0 {
		return mpageio.NullPosition, nil
	}

	r.cur.Seek(pos)
	// The byte before pos terminates the target line.
	if _, err := r.cur.Prev(); err != nil {
		if isBegin(err) {
			return mpageio.NullPosition, nil
		}
		return mpageio.NullPosition, err
	}

	for {
		c, err := r.cur.Prev()
		if isBegin(err) {
			return 0, nil
		}
		if err != nil {
			return mpageio.NullPosition, err
		}
		if c == '\n' {
			return r.cur.Pos() + 1, nil
		}
	}
}

// squeezeBack moves an empty line's start back to the first empty line of
// its run, mirroring what ReadForward shows when squeezing.
func (r *Reader) squeezeBack(start int64) (int64, error) {
	r.cur.Seek(start)
	c, err := r.cur.Next()
	if err != nil || c != '\n' {
		if isEnd(err) {
			err = nil
		}
		return start, err
	}

	for start > 0 {
		r.cur.Seek(start)
		c, err := r.cur.Prev()
		if isBegin(err) {
			break
		}
		if err != nil {
			return start, err
		}
		if c != '\n' {
			break
		}
		prevStart := r.cur.Pos()

		c, err = r.cur.Prev()
		if err != nil && !isBegin(err) {
			return start, err
		}
		if err == nil && c != '\n' {
			// That newline ends a non-empty line.
			break
		}
		start = prevStart
	}
	return start, nil
}
