package pager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	mpageio "github.com/TimelordUK/mpage/internal/io"
	"github.com/TimelordUK/mpage/internal/logger"
)

// StdinName is the file name that selects standard input
const StdinName = "-"

// DefaultCacheBlocks is the number of cached blocks per source
const DefaultCacheBlocks = 16

// SessionOptions configures a Session
type SessionOptions struct {
	Navigator   Options
	CacheBlocks int

	// Stdin is read for StdinName. Defaults to os.Stdin.
	Stdin *os.File
}

// Session walks an ordered list of sources, one open at a time
type Session struct {
	files []string
	index int
	opts  SessionOptions

	stdinUsed bool
	src       mpageio.Source
	cache     *mpageio.BlockCache
	nav       *Navigator

	// Position saved by Suspend, restored when the same file reopens
	prevFile  string
	prevPos   int64
	suspended bool
}

// NewSession creates a session over files. No files means standard input.
func NewSession(files []string, opts SessionOptions) *Session {
	if len(files) == 0 {
		files = []string{StdinName}
	}
	if opts.CacheBlocks < 1 {
		opts.CacheBlocks = DefaultCacheBlocks
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	return &Session{
		files:   files,
		index:   -1,
		opts:    opts,
		prevPos: mpageio.NullPosition,
	}
}

// Files returns the file list
func (s *Session) Files() []string {
	return s.files
}

// Index returns the position of the open file in the list, or -1
func (s *Session) Index() int {
	return s.index
}

// Name returns the name of the open file
func (s *Session) Name() string {
	if s.index < 0 {
		return ""
	}
	if s.files[s.index] == StdinName {
		return "(standard input)"
	}
	return s.files[s.index]
}

// Navigator returns the navigator of the open file
func (s *Session) Navigator() (*Navigator, error) {
	if s.nav == nil || s.src == nil {
		return nil, ErrNoFile
	}
	return s.nav, nil
}

// Options returns the session options
func (s *Session) Options() SessionOptions {
	return s.opts
}

// Start opens the first usable file
func (s *Session) Start() error {
	return s.advance(0, 1, ErrNoNextFile)
}

// Next opens the n-th following usable file
func (s *Session) Next(n int) error {
	return s.advance(s.index+max(n, 1), 1, ErrNoNextFile)
}

// Prev opens the n-th preceding usable file
func (s *Session) Prev(n int) error {
	return s.advance(s.index-max(n, 1), -1, ErrNoPrevFile)
}

// advance opens files from i in step direction until one succeeds. Sources
// that are empty, missing or not files are skipped.
func (s *Session) advance(i, step int, none error) error {
	var lastErr error
	for ; i >= 0 && i < len(s.files); i += step {
		err := s.Open(i)
		if err == nil {
			return nil
		}
		if !skippable(err) {
			return err
		}
		logger.Warn("skipping source", "file", s.files[i], "error", err)
		lastErr = err
	}
	if lastErr != nil {
		return fmt.Errorf("%w: %w", none, lastErr)
	}
	return none
}

func skippable(err error) bool {
	return errors.Is(err, ErrEmptySource) ||
		errors.Is(err, ErrNotAFile) ||
		errors.Is(err, ErrStdinUsed) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission)
}

// Open makes file i the current source. Marks and the window are reset.
// Reopening the file left by Suspend restores its position.
func (s *Session) Open(i int) error {
	if i < 0 || i >= len(s.files) {
		return fmt.Errorf("file index %d out of range", i)
	}
	name := s.files[i]

	src, err := s.openSource(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	cache, err := mpageio.NewBlockCache(src, s.opts.CacheBlocks)
	if err != nil {
		src.Close()
		return err
	}

	nav, err := NewNavigator(cache, s.opts.Navigator)
	if err != nil {
		src.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	if s.nav != nil {
		nav.search = s.nav.search
	}

	s.closeSource()
	s.src, s.cache, s.nav, s.index = src, cache, nav, i
	s.suspended = false
	logger.Info("source opened", "file", name, "seekable", src.Seekable(), "size", src.Size())

	if name == s.prevFile && s.prevPos != mpageio.NullPosition {
		if err := nav.GotoPosition(s.prevPos); err != nil {
			logger.Warn("restore position failed", "file", name, "pos", s.prevPos, "error", err)
		}
	}
	s.prevFile, s.prevPos = "", mpageio.NullPosition
	return nil
}

func (s *Session) openSource(name string) (mpageio.Source, error) {
	if name == StdinName {
		if s.stdinUsed {
			return nil, ErrStdinUsed
		}
		fd := s.opts.Stdin.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return nil, ErrNotAFile
		}
		s.stdinUsed = true
		return mpageio.NewPipeSource(s.opts.Stdin, StdinName), nil
	}

	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	}

	mode := fi.Mode()
	switch {
	case mode.IsRegular():
		if fi.Size() == 0 {
			return nil, ErrEmptySource
		}
		return mpageio.OpenMapped(name)

	case mode&os.ModeNamedPipe != 0:
		return mpageio.OpenPipe(name)

	case mode&os.ModeCharDevice != 0:
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		if isatty.IsTerminal(f.Fd()) {
			f.Close()
			return nil, ErrNotAFile
		}
		return mpageio.NewPipeSource(f, name), nil
	}
	return nil, ErrNotAFile
}

func (s *Session) closeSource() {
	if s.src == nil {
		return
	}
	if err := s.src.Close(); err != nil {
		logger.Warn("close failed", "file", s.src.Name(), "error", err)
	}
	s.src = nil
	s.cache = nil
}

// Suspend records the current position and releases a seekable source so
// an external command can use the file. Pipes stay open since they cannot
// be reopened.
func (s *Session) Suspend() {
	if s.src == nil || s.suspended {
		return
	}
	s.prevFile = s.files[s.index]
	s.prevPos = s.nav.Top()
	s.suspended = true
	logger.Debug("session suspended", "file", s.prevFile, "pos", s.prevPos)

	if s.src.Seekable() {
		s.closeSource()
	}
}

// Resume reopens the file released by Suspend at its saved position
func (s *Session) Resume() error {
	if !s.suspended {
		return nil
	}
	s.suspended = false
	if s.src != nil {
		// Pipe source, never closed.
		s.prevFile, s.prevPos = "", mpageio.NullPosition
		return nil
	}
	return s.Open(s.index)
}

// SetSqueeze toggles blank-line squeezing for this and later files
func (s *Session) SetSqueeze(on bool) error {
	s.opts.Navigator.Reader.Squeeze = on
	if s.nav == nil {
		return nil
	}
	return s.nav.SetSqueeze(on)
}

// SetRows resizes the window for this and later files
func (s *Session) SetRows(rows int) error {
	s.opts.Navigator.Rows = rows
	if s.nav == nil {
		return nil
	}
	return s.nav.SetRows(rows)
}

// Close releases the open source
func (s *Session) Close() error {
	if s.src == nil {
		return nil
	}
	err := s.src.Close()
	s.src = nil
	s.cache = nil
	return err
}

// Status returns the prompt text for the open file. The verbose form adds
// the file position in the list and byte offsets.
func (s *Session) Status(verbose bool) string {
	if s.nav == nil || s.src == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.Name())

	if verbose {
		if len(s.files) > 1 {
			fmt.Fprintf(&b, " (file %d of %d)", s.index+1, len(s.files))
		}
		if lines, ok := s.nav.LineCount(); ok {
			fmt.Fprintf(&b, " lines %d", lines)
		}
		if size, ok := s.cache.Size(); ok {
			fmt.Fprintf(&b, " byte %d/%d", s.nav.Bottom(), size)
		} else {
			fmt.Fprintf(&b, " byte %d", s.nav.Bottom())
		}
	}

	if s.nav.AtEOF() {
		b.WriteString(" (END)")
		if verbose && s.index+1 < len(s.files) {
			fmt.Fprintf(&b, " - Next: %s", s.files[s.index+1])
		}
	} else if p := s.nav.Percent(); p >= 0 {
		fmt.Fprintf(&b, " %d%%", p)
	}
	return b.String()
}
