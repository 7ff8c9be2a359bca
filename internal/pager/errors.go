package pager

import (
	"errors"
	"fmt"

	mpageio "github.com/TimelordUK/mpage/internal/io"
)

// Search errors
var (
	// ErrNothingToSearch is returned when no line could be read in the search direction.
	ErrNothingToSearch = errors.New("Nothing to search")

	// ErrPatternNotFound is returned when a search wrapped without enough matches.
	ErrPatternNotFound = errors.New("Pattern not found")

	// ErrNoPreviousPattern is returned when repeating a search before any search ran.
	ErrNoPreviousPattern = errors.New("No previous regular expression")
)

// Mark errors
var (
	// ErrMarkNotSet is returned for an unset mark or a letter outside the table.
	ErrMarkNotSet = errors.New("Mark not set")

	// ErrInvalidMark is returned when setting a mark with a letter outside a-z.
	ErrInvalidMark = errors.New("Choose a letter between 'a' and 'z'")
)

// Source errors. Sources failing with these are skipped.
var (
	// ErrEmptySource is returned for a zero-length regular file.
	ErrEmptySource = errors.New("Empty file")

	// ErrNotAFile is returned for directories, terminals and other non-file inputs.
	ErrNotAFile = errors.New("Not a file")

	// ErrStdinUsed is returned when standard input is opened a second time.
	ErrStdinUsed = errors.New("Standard input already viewed")
)

// Session errors
var (
	ErrNoFile     = errors.New("No file open")
	ErrNoNextFile = errors.New("No next file")
	ErrNoPrevFile = errors.New("No previous file")
)

// ShortFileError is returned by GotoLine when the requested line lies past
// the end. The view is left on the last line.
type ShortFileError struct {
	Lines int
}

func (e *ShortFileError) Error() string {
	if e.Lines == 1 {
		return "File only has 1 line"
	}
	return fmt.Sprintf("File only has %d lines", e.Lines)
}

// PatternError reports a search pattern that failed to compile
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("Invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// MessageFor returns the status line text for err
func MessageFor(err error) string {
	if err == nil {
		return ""
	}

	var short *ShortFileError
	if errors.As(err, &short) {
		return short.Error()
	}
	var pattern *PatternError
	if errors.As(err, &pattern) {
		return pattern.Error()
	}
	var access *mpageio.AccessError
	if errors.As(err, &access) {
		return access.Error()
	}

	for _, sentinel := range []error{
		ErrNothingToSearch,
		ErrPatternNotFound,
		ErrNoPreviousPattern,
		ErrMarkNotSet,
		ErrInvalidMark,
		ErrNoFile,
		ErrNoNextFile,
		ErrNoPrevFile,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
