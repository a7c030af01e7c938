package lazyrpc

import (
	"errors"
	"testing"
)

func TestCursorReads(t *testing.T) {
	buf := []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0, 0, 0, 0, 0, 0, 0x01, 0x00,
		0x02, 'h', 'i',
		0x00, 0x03, 'a', 'b', 'c',
	}
	c := NewCursor(buf)

	if v, err := c.ReadUint8(); err != nil || v != 0x01 {
		t.Fatalf("u8: %v %v", v, err)
	}
	if v, err := c.ReadUint16(); err != nil || v != 0x0203 {
		t.Fatalf("u16: %v %v", v, err)
	}
	if v, err := c.ReadUint32(); err != nil || v != 0x04050607 {
		t.Fatalf("u32: %v %v", v, err)
	}
	if v, err := c.ReadUint64(); err != nil || v != 0x0100 {
		t.Fatalf("u64: %v %v", v, err)
	}
	if v, err := c.ReadLen8Bytes(); err != nil || string(v) != "hi" {
		t.Fatalf("len8: %q %v", v, err)
	}
	v, err := c.ReadLen16Bytes()
	if err != nil || string(v) != "abc" {
		t.Fatalf("len16: %q %v", v, err)
	}
	if cap(v) != len(v) {
		t.Fatalf("byte range capacity leaks the buffer: len=%d cap=%d", len(v), cap(v))
	}
	if c.Remaining() != 0 || c.Offset() != len(buf) {
		t.Fatalf("expected cursor at end, offset=%d remaining=%d", c.Offset(), c.Remaining())
	}
	if _, err := c.ReadUint8(); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestCursorBounds(t *testing.T) {
	c := NewCursor([]byte{0x05, 'a', 'b'})

	if _, err := c.ReadLen8Bytes(); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if c.Offset() != 0 {
		t.Fatalf("failed length-prefixed read moved the cursor to %d", c.Offset())
	}
	if err := c.Skip(4); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := c.Skip(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds for negative skip, got %v", err)
	}
	if _, err := c.ReadUint32(); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := c.Seek(4); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := c.Seek(3); err != nil {
		t.Fatalf("seek to end: %v", err)
	}
	if err := c.Seek(1); err != nil {
		t.Fatalf("seek back: %v", err)
	}
	if b, err := c.ReadBytes(2); err != nil || string(b) != "ab" {
		t.Fatalf("read after seek: %q %v", b, err)
	}
}

func TestCursorZeroLength(t *testing.T) {
	c := NewCursor([]byte{0x00})
	b, err := c.ReadLen8Bytes()
	if err != nil {
		t.Fatalf("zero length read: %v", err)
	}
	if b == nil || len(b) != 0 {
		t.Fatalf("expected empty non-nil range, got %v", b)
	}
}
