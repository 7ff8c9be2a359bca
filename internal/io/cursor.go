package io

// Cursor steps through a BlockCache one byte at a time in either direction.
// Carriage returns are never surfaced.
type Cursor struct {
	cache *BlockCache
	pos   int64
}

// NewCursor creates a cursor at offset 0
func NewCursor(cache *BlockCache) *Cursor {
	return &Cursor{cache: cache}
}

// Cache returns the underlying block cache
func (c *Cursor) Cache() *BlockCache {
	return c.cache
}

// Seek moves the cursor to pos without fetching
func (c *Cursor) Seek(pos int64) {
	c.pos = pos
}

// Pos returns the offset of the byte Next would return
func (c *Cursor) Pos() int64 {
	return c.pos
}

// Next returns the byte at Pos and advances past it
func (c *Cursor) Next() (byte, error) {
	for {
		b, err := c.cache.Fetch(c.pos, Forward)
		if err != nil {
			return 0, err
		}
		c.pos++
		if b != '\r' {
			return b, nil
		}
	}
}

// Peek returns the byte Next would return without advancing
func (c *Cursor) Peek() (byte, error) {
	pos := c.pos
	b, err := c.Next()
	c.pos = pos
	return b, err
}

// Prev steps back one byte and returns it. At offset 0 it returns
// ErrBeginOfStream and leaves the cursor where it was.
func (c *Cursor) Prev() (byte, error) {
	pos := c.pos
	for {
		if pos <= 0 {
			return 0, ErrBeginOfStream
		}
		b, err := c.cache.Fetch(pos-1, Backward)
		if err != nil {
			return 0, err
		}
		pos--
		if b != '\r' {
			c.pos = pos
			return b, nil
		}
	}
}
