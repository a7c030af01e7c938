package lazyrpc

import (
	"encoding/binary"
	"fmt"
)

// FrameType is the type tag carried in byte 2 of every frame header.
type FrameType uint8

const (
	TypeInitReq         FrameType = 0x01
	TypeInitRes         FrameType = 0x02
	TypeCallReq         FrameType = 0x03
	TypeCallRes         FrameType = 0x04
	TypeCallReqContinue FrameType = 0x13
	TypeCallResContinue FrameType = 0x14
	TypeCancel          FrameType = 0xc0
	TypeClaim           FrameType = 0xc1
	TypePingReq         FrameType = 0xd0
	TypePingRes         FrameType = 0xd1
	TypeError           FrameType = 0xff
)

func (t FrameType) String() string {
	switch t {
	case TypeInitReq:
		return "init req"
	case TypeInitRes:
		return "init res"
	case TypeCallReq:
		return "call req"
	case TypeCallRes:
		return "call res"
	case TypeCallReqContinue:
		return "call req continue"
	case TypeCallResContinue:
		return "call res continue"
	case TypeCancel:
		return "cancel"
	case TypeClaim:
		return "claim"
	case TypePingReq:
		return "ping req"
	case TypePingRes:
		return "ping res"
	case TypeError:
		return "error"
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(t))
}

const (
	// FrameHeaderSize is size:2 type:1 reserved:1 id:4 reserved:8.
	FrameHeaderSize = 16
	// MaxFrameSize is the largest size a 16-bit size field can describe.
	MaxFrameSize = 0xffff
)

// Frame is one decoded envelope. Payload aliases the buffer the frame was
// decoded from; it is never copied.
type Frame struct {
	Size    uint16
	Type    FrameType
	ID      uint32
	Payload []byte
}

// DecodeFrame reads the fixed header of the frame at the start of buf and
// records the payload range without interpreting it. Bytes past the declared
// size are left alone, they belong to the next frame.
func DecodeFrame(buf []byte) (f Frame, err error) {
	if len(buf) < FrameHeaderSize {
		err = malformed("frame header", 0, "buffer has %d bytes, header needs %d", len(buf), FrameHeaderSize)
		return
	}

	size := binary.BigEndian.Uint16(buf[0:2])
	if size < FrameHeaderSize {
		err = malformed("frame size", 0, "size %d smaller than header", size)
		return
	}
	if int(size) > len(buf) {
		err = malformed("frame size", 0, "size %d larger than buffer of %d bytes", size, len(buf))
		return
	}

	f = Frame{
		Size:    size,
		Type:    FrameType(buf[2]),
		ID:      binary.BigEndian.Uint32(buf[4:8]),
		Payload: buf[FrameHeaderSize:size:size],
	}
	return
}

// AppendFrame appends the wire form of f to dst. Size is computed from the payload.
func AppendFrame(dst []byte, f Frame) ([]byte, error) {
	size := FrameHeaderSize + len(f.Payload)
	if size > MaxFrameSize {
		return dst, fmt.Errorf("lazyrpc: frame of %d bytes exceeds %d", size, MaxFrameSize)
	}

	var header [FrameHeaderSize]byte
	binary.BigEndian.PutUint16(header[0:], uint16(size))
	header[2] = byte(f.Type)
	binary.BigEndian.PutUint32(header[4:], f.ID)

	dst = append(dst, header[:]...)
	dst = append(dst, f.Payload...)
	return dst, nil
}
