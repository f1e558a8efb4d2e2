package tcp

// Cursor is the explicit replacement for send/send_some's raw
// pointer-and-length buffer view: it tracks how much of an origin buffer
// has been handed to the kernel so far, without pointer arithmetic on the
// caller's slice.
type Cursor struct {
	origin []byte
	offset int
}

// NewCursor wraps data for a Send or SendSome call. The Cursor does not
// copy or take ownership of data; data must not be mutated concurrently
// while the operation is in flight.
func NewCursor(data []byte) *Cursor {
	return &Cursor{origin: data}
}

// Remaining returns the slice of origin not yet transferred.
func (c *Cursor) Remaining() []byte {
	return c.origin[c.offset:]
}

// Advance records that n more bytes of origin were accepted by the kernel.
func (c *Cursor) Advance(n int) {
	c.offset += n
}

// Done reports whether every byte of origin has been transferred.
func (c *Cursor) Done() bool {
	return c.offset >= len(c.origin)
}

// Transferred returns the cumulative byte count handed to the kernel so
// far: the core's size_ accumulator.
func (c *Cursor) Transferred() int {
	return c.offset
}

// Total returns the length of the original buffer.
func (c *Cursor) Total() int {
	return len(c.origin)
}
