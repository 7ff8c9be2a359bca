package io

import (
	"errors"
	"fmt"
)

// Stream boundary errors
var (
	// ErrBeginOfStream is returned when a backward fetch would go below offset 0.
	ErrBeginOfStream = errors.New("beginning of stream")

	// ErrEndOfStream is returned when a forward fetch reaches the end of the source.
	ErrEndOfStream = errors.New("end of stream")
)

// Access errors
var (
	// ErrSeekOutOfRange indicates a seek or read landed outside [0, size].
	ErrSeekOutOfRange = errors.New("seek out of range")

	// ErrPipeBlockUnavailable indicates a pipe block was evicted or not yet reachable.
	ErrPipeBlockUnavailable = errors.New("pipe block unavailable")

	// ErrNotSeekable is returned by Seek on a pipe source.
	ErrNotSeekable = errors.New("source is not seekable")
)

// ErrAllocation indicates the fixed block buffers could not be allocated.
var ErrAllocation = errors.New("unable to allocate block cache")

// AccessError reports a block that could not be brought into the cache.
// Kind is ErrSeekOutOfRange or ErrPipeBlockUnavailable.
type AccessError struct {
	Kind  error
	Block int64
	Pos   int64
	Err   error
}

func (e *AccessError) Error() string {
	if e.Kind == ErrPipeBlockUnavailable {
		return fmt.Sprintf("unable to access pipe block %d", e.Block)
	}
	if e.Err != nil {
		return fmt.Sprintf("unable to access block %d at %d: %v", e.Block, e.Pos, e.Err)
	}
	return fmt.Sprintf("unable to access block %d at %d", e.Block, e.Pos)
}

// Is matches the error kind so callers can use errors.Is(err, ErrPipeBlockUnavailable).
func (e *AccessError) Is(target error) bool {
	return target == e.Kind
}

func (e *AccessError) Unwrap() error {
	return e.Err
}
