package io

import (
	"errors"
	"fmt"
	"io"

	"github.com/TimelordUK/mpage/internal/logger"
)

const (
	// BlockSize is the size of one cached region of the source
	BlockSize = 64 * 1024

	// NullPosition marks "no position"
	NullPosition int64 = -1

	freeBlock int64 = -1
)

// Direction is the traversal direction of a fetch
type Direction int

const (
	Forward Direction = iota
	Backward
)

// block is one slot of the cache ring. data is only meaningful while id != freeBlock.
type block struct {
	id   int64
	data []byte
	n    int
}

// BlockCache caches fixed-size blocks of a Source in a fixed ring of slots.
// Seekable sources re-read evicted blocks on demand; pipe sources fill blocks
// strictly in increasing order and lose evicted ranges for good.
type BlockCache struct {
	src     Source
	blocks  []block
	current int

	size      int64 // -1 until known
	eof       bool  // pipe returned 0 bytes
	lastBlock int64 // highest block id loaded from a pipe
}

// NewBlockCache allocates nblocks block buffers for src
func NewBlockCache(src Source, nblocks int) (c *BlockCache, err error) {
	if nblocks < 1 {
		return nil, fmt.Errorf("%w: need at least one block, got %d", ErrAllocation, nblocks)
	}

	defer func() {
		if r := recover(); r != nil {
			c = nil
			err = fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()

	blocks := make([]block, nblocks)
	for i := range blocks {
		blocks[i] = block{id: freeBlock, data: make([]byte, BlockSize)}
	}

	return &BlockCache{
		src:       src,
		blocks:    blocks,
		size:      src.Size(),
		lastBlock: -1,
	}, nil
}

// Seekable reports whether the underlying source can seek
func (c *BlockCache) Seekable() bool {
	return c.src.Seekable()
}

// Size returns the source size and whether it is known yet
func (c *BlockCache) Size() (int64, bool) {
	return c.size, c.size >= 0
}

// Name returns the source name
func (c *BlockCache) Name() string {
	return c.src.Name()
}

// Blocks returns the number of slots in the ring
func (c *BlockCache) Blocks() int {
	return len(c.blocks)
}

// Fetch returns the byte at pos, loading its block if needed
func (c *BlockCache) Fetch(pos int64, dir Direction) (byte, error) {
	if pos < 0 {
		return 0, ErrBeginOfStream
	}
	if c.size >= 0 && pos >= c.size {
		return 0, ErrEndOfStream
	}

	id := pos / BlockSize
	off := int(pos % BlockSize)

	slot := c.lookup(id)
	if slot < 0 {
		var err error
		slot, err = c.load(id, dir)
		if err != nil {
			return 0, err
		}
	}
	c.current = slot

	b := &c.blocks[slot]
	if off >= b.n {
		// Only a short final block can end before off.
		return 0, ErrEndOfStream
	}
	return b.data[off], nil
}

// Drain reads a pipe to its end so its size becomes known. No-op for seekable sources.
func (c *BlockCache) Drain() error {
	for !c.eof && c.size < 0 {
		slot, err := c.load(c.lastBlock+1, Forward)
		if errors.Is(err, ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}
		c.current = slot
	}
	return nil
}

// Resident reports whether the block holding pos is cached
func (c *BlockCache) Resident(pos int64) bool {
	if pos < 0 {
		return false
	}
	return c.lookup(pos/BlockSize) >= 0
}

func (c *BlockCache) lookup(id int64) int {
	if c.blocks[c.current].id == id {
		return c.current
	}
	for i := range c.blocks {
		if c.blocks[i].id == id {
			return i
		}
	}
	return -1
}

func (c *BlockCache) load(id int64, dir Direction) (int, error) {
	if c.src.Seekable() {
		return c.loadSeekable(id, dir)
	}
	return c.loadPipe(id)
}

func (c *BlockCache) loadSeekable(id int64, dir Direction) (int, error) {
	pos := id * BlockSize
	if c.size >= 0 && pos > c.size {
		return -1, &AccessError{Kind: ErrSeekOutOfRange, Block: id, Pos: pos}
	}

	slot := c.victim(dir)
	b := &c.blocks[slot]
	b.id = freeBlock
	b.n = 0

	if _, err := c.src.Seek(pos, io.SeekStart); err != nil {
		logger.Warn("block seek failed", "source", c.src.Name(), "block", id, "error", err)
		return -1, &AccessError{Kind: ErrSeekOutOfRange, Block: id, Pos: pos, Err: err}
	}
	n, err := readFull(c.src, b.data)
	if err != nil {
		logger.Warn("block read failed", "source", c.src.Name(), "block", id, "error", err)
		return -1, &AccessError{Kind: ErrSeekOutOfRange, Block: id, Pos: pos, Err: err}
	}

	b.id = id
	b.n = n
	logger.Debug("block loaded", "source", c.src.Name(), "block", id, "bytes", n, "slot", slot)
	return slot, nil
}

func (c *BlockCache) loadPipe(id int64) (int, error) {
	if id != c.lastBlock+1 || c.eof {
		return -1, &AccessError{Kind: ErrPipeBlockUnavailable, Block: id, Pos: id * BlockSize}
	}

	slot := c.victim(Forward)
	b := &c.blocks[slot]
	oldID, oldN := b.id, b.n
	b.id = freeBlock
	b.n = 0

	n, err := readFull(c.src, b.data)
	if err != nil {
		return -1, &AccessError{Kind: ErrPipeBlockUnavailable, Block: id, Pos: id * BlockSize, Err: err}
	}
	if n == 0 {
		// Nothing was written, so the victim keeps its old contents.
		b.id, b.n = oldID, oldN
		c.eof = true
		c.size = id * BlockSize
		logger.Debug("pipe exhausted", "source", c.src.Name(), "size", c.size)
		return -1, ErrEndOfStream
	}
	if oldID != freeBlock {
		logger.Debug("pipe block evicted", "source", c.src.Name(), "block", oldID)
	}

	b.id = id
	b.n = n
	c.lastBlock = id
	if n < BlockSize {
		c.eof = true
		c.size = id*BlockSize + int64(n)
		logger.Debug("pipe exhausted", "source", c.src.Name(), "size", c.size)
	}
	return slot, nil
}

// victim picks the slot to (re)fill: the first free slot scanning from one past
// current in the traversal direction, otherwise an eviction. Pipes evict their
// oldest block so the resident window is always the newest bytes.
func (c *BlockCache) victim(dir Direction) int {
	n := len(c.blocks)
	step := 1
	if dir == Backward {
		step = n - 1
	}

	i := c.current
	for k := 0; k < n; k++ {
		i = (i + step) % n
		if c.blocks[i].id == freeBlock {
			return i
		}
	}

	if !c.src.Seekable() {
		oldest := 0
		for i := range c.blocks {
			if c.blocks[i].id < c.blocks[oldest].id {
				oldest = i
			}
		}
		return oldest
	}
	return (c.current + step) % n
}

// readFull reads until buf is full or the source is exhausted
func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}
	return n, err
}
