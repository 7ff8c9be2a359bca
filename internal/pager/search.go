package pager

import (
	"regexp"

	mpageio "github.com/TimelordUK/mpage/internal/io"
	"github.com/TimelordUK/mpage/internal/logger"
)

// Direction is the direction of a search
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Reverse returns the opposite direction
func (d Direction) Reverse() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Search looks for the count-th line matching pattern, starting with the
// line next to the top row in dir, and puts it on the top row. An empty
// pattern reuses the previous one. Lines are matched undecoded.
func (n *Navigator) Search(dir Direction, pattern string, count int, ignoreCase bool) error {
	if pattern == "" {
		if n.search.re == nil {
			return ErrNoPreviousPattern
		}
		pattern = n.search.pattern
	}

	re := n.search.re
	if re == nil || pattern != n.search.pattern || ignoreCase != n.search.ignoreCase {
		expr := pattern
		if ignoreCase {
			expr = "(?i)" + pattern
		}
		var err error
		if re, err = regexp.Compile(expr); err != nil {
			return &PatternError{Pattern: pattern, Err: err}
		}
	}

	n.search = searchState{re: re, pattern: pattern, ignoreCase: ignoreCase, dir: dir}
	return n.find(dir, count)
}

// RepeatSearch runs the previous search again, in the opposite direction
// when reverse is set
func (n *Navigator) RepeatSearch(reverse bool, count int) error {
	if n.search.re == nil {
		return ErrNoPreviousPattern
	}
	dir := n.search.dir
	if reverse {
		dir = dir.Reverse()
	}
	return n.find(dir, count)
}

func (n *Navigator) find(dir Direction, count int) error {
	if count < 1 {
		count = 1
	}
	logger.Debug("search", "pattern", n.search.pattern, "direction", dir.String(), "count", count)

	var (
		pos int64
		err error
	)
	if dir == Forward {
		pos, err = n.searchForward(count)
	} else {
		pos, err = n.searchBackward(count)
	}
	if err != nil {
		return err
	}
	return n.jump(pos)
}

// searchForward returns the start of the count-th matching line after the
// top row. Once the last allowed wrap has happened the search ends on the
// first line past the starting one.
func (n *Navigator) searchForward(count int) (int64, error) {
	origin := n.Top()
	_, pos, err := n.reader.ReadRawForward(origin)
	if err != nil {
		return mpageio.NullPosition, err
	}

	wraps, found := 0, 0
	read := false
	for {
		if pos == mpageio.NullPosition {
			if wraps >= n.opts.SearchWraps {
				break
			}
			wraps++
			pos = 0
		}
		if wraps > 0 && wraps == n.opts.SearchWraps && pos > origin {
			break
		}

		raw, next, err := n.reader.ReadRawForward(pos)
		if err != nil {
			return mpageio.NullPosition, err
		}
		if next == mpageio.NullPosition {
			pos = mpageio.NullPosition
			continue
		}

		read = true
		if n.search.re.Match(raw) {
			found++
			if found == count {
				return pos, nil
			}
		}
		pos = next
	}

	if !read {
		return mpageio.NullPosition, ErrNothingToSearch
	}
	return mpageio.NullPosition, ErrPatternNotFound
}

// searchBackward mirrors searchForward towards the start of the source.
// Wrapping to the end drains a pipe first.
func (n *Navigator) searchBackward(count int) (int64, error) {
	origin := n.Top()
	pos := origin

	wraps, found := 0, 0
	read := false
	for {
		raw, start, err := n.reader.ReadRawBackward(pos)
		if err != nil {
			return mpageio.NullPosition, err
		}
		if start == mpageio.NullPosition {
			if wraps >= n.opts.SearchWraps {
				break
			}
			wraps++
			if err := n.drain(); err != nil {
				return mpageio.NullPosition, err
			}
			pos, _ = n.cache.Size()
			continue
		}
		if wraps > 0 && wraps == n.opts.SearchWraps && start < origin {
			break
		}

		read = true
		if n.search.re.Match(raw) {
			found++
			if found == count {
				return start, nil
			}
		}
		pos = start
	}

	if !read {
		return mpageio.NullPosition, ErrNothingToSearch
	}
	return mpageio.NullPosition, ErrPatternNotFound
}
