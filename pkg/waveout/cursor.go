// ABOUTME: Round-robin cursor over the buffer pool
// ABOUTME: Yields 0..n-1 cyclically with no skips or repeats
package waveout

// Cursor selects the next buffer to refill
type Cursor struct {
	pos uint64
	n   int
}

// NewCursor creates a cursor over n buffers
func NewCursor(n int) *Cursor {
	return &Cursor{n: n}
}

// Peek returns the index the cursor currently points at
func (c *Cursor) Peek() int {
	return int(c.pos % uint64(c.n))
}

// Advance moves to the next index
func (c *Cursor) Advance() {
	c.pos++
}

// Position returns the total number of advances
func (c *Cursor) Position() uint64 {
	return c.pos
}
