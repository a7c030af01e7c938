package lazyrpc

import "encoding/binary"

// Cursor is a bounds-checked read head over a byte slice.
// Reads never copy: byte ranges are returned as sub-slices whose
// capacity is capped at their length, so appending to them cannot
// clobber the underlying buffer.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the current position.
func (c *Cursor) Offset() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Len returns the size of the region the cursor reads.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Seek moves the cursor to an absolute offset. It is the only way to move
// backwards and is meant for resuming at an offset recorded earlier.
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > len(c.buf) {
		return outOfBounds("seek", c.pos, "offset %d outside [0,%d]", offset, len(c.buf))
	}
	c.pos = offset
	return nil
}

func (c *Cursor) need(n int) error {
	if n < 0 || c.Remaining() < n {
		return outOfBounds("read", c.pos, "need %d bytes, have %d", n, c.Remaining())
	}
	return nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

func (c *Cursor) ReadUint8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *Cursor) ReadUint64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

// ReadBytes returns the next n bytes without copying.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	end := c.pos + n
	b := c.buf[c.pos:end:end]
	c.pos = end
	return b, nil
}

// ReadLen8Bytes reads a 1-byte length followed by that many bytes.
// On failure the cursor is left where the length prefix started.
func (c *Cursor) ReadLen8Bytes() ([]byte, error) {
	start := c.pos
	n, err := c.ReadUint8()
	if err != nil {
		return nil, err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		c.pos = start
		return nil, err
	}
	return b, nil
}

// ReadLen16Bytes reads a 2-byte length followed by that many bytes.
// On failure the cursor is left where the length prefix started.
func (c *Cursor) ReadLen16Bytes() ([]byte, error) {
	start := c.pos
	n, err := c.ReadUint16()
	if err != nil {
		return nil, err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		c.pos = start
		return nil, err
	}
	return b, nil
}

// SkipLen8 skips a 1-byte length prefixed field.
func (c *Cursor) SkipLen8() error {
	_, err := c.ReadLen8Bytes()
	return err
}
