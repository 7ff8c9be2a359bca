package io

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// Source is a readable byte stream backing a BlockCache
type Source interface {
	io.ReadSeeker
	io.Closer

	// Seekable reports whether blocks can be re-read after eviction
	Seekable() bool

	// Size returns the source length in bytes, or -1 if unknown
	Size() int64

	// Name returns the display name of the source
	Name() string
}

// MappedFile provides memory-mapped read access to a file
type MappedFile struct {
	reader *mmap.ReaderAt
	size   int64
	path   string
	offset int64
}

// OpenMapped opens a file with memory mapping
func OpenMapped(path string) (*MappedFile, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	return &MappedFile{
		reader: reader,
		size:   int64(reader.Len()),
		path:   path,
	}, nil
}

// ReadAt reads len(p) bytes at offset
func (m *MappedFile) ReadAt(p []byte, off int64) (int, error) {
	return m.reader.ReadAt(p, off)
}

// Read reads from the current seek offset
func (m *MappedFile) Read(p []byte) (int, error) {
	if m.offset >= m.size {
		return 0, io.EOF
	}
	n, err := m.reader.ReadAt(p, m.offset)
	m.offset += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// Seek sets the offset for the next Read
func (m *MappedFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.offset + offset
	case io.SeekEnd:
		abs = m.size + offset
	default:
		return m.offset, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 || abs > m.size {
		return m.offset, fmt.Errorf("%w: %d not in [0, %d]", ErrSeekOutOfRange, abs, m.size)
	}
	m.offset = abs
	return abs, nil
}

// Seekable always returns true for mapped files
func (m *MappedFile) Seekable() bool {
	return true
}

// Size returns the file size
func (m *MappedFile) Size() int64 {
	return m.size
}

// Name returns the file path
func (m *MappedFile) Name() string {
	return m.path
}

// Close closes the memory mapping
func (m *MappedFile) Close() error {
	return m.reader.Close()
}

// PipeSource is a single-pass stream such as standard input or a FIFO
type PipeSource struct {
	r    io.Reader
	name string
}

// NewPipeSource wraps a reader as a non-seekable source
func NewPipeSource(r io.Reader, name string) *PipeSource {
	return &PipeSource{r: r, name: name}
}

// OpenPipe opens a named pipe or character device for sequential reading
func OpenPipe(path string) (*PipeSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewPipeSource(f, path), nil
}

func (p *PipeSource) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

// Seek always fails; pipes only move forward
func (p *PipeSource) Seek(offset int64, whence int) (int64, error) {
	return 0, ErrNotSeekable
}

func (p *PipeSource) Seekable() bool {
	return false
}

func (p *PipeSource) Size() int64 {
	return -1
}

func (p *PipeSource) Name() string {
	return p.name
}

// Close closes the underlying reader when it is closable. Standard input is
// left open so the terminal keeps working after the pager exits.
func (p *PipeSource) Close() error {
	if p.r == os.Stdin {
		return nil
	}
	if c, ok := p.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
