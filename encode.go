package lazyrpc

import (
	"encoding/binary"
	"fmt"
	"time"
)

// CallRequest is the structured form of a call-request body.
type CallRequest struct {
	Flags        uint8
	TTL          time.Duration
	Tracing      Tracing
	Service      string
	Headers      []TransportHeader
	ChecksumType ChecksumType
	// Checksum is written as given. nil writes zeroes of the type's width.
	Checksum []byte
	Args     [][]byte
}

// EncodeCallRequest returns the full wire form of a call-request frame.
func EncodeCallRequest(id uint32, req *CallRequest) ([]byte, error) {
	payload, err := AppendCallRequest(nil, req)
	if err != nil {
		return nil, err
	}
	return AppendFrame(make([]byte, 0, FrameHeaderSize+len(payload)), Frame{Type: TypeCallReq, ID: id, Payload: payload})
}

// AppendCallRequest appends the call-request payload for req to dst.
func AppendCallRequest(dst []byte, req *CallRequest) ([]byte, error) {
	if req == nil {
		return dst, fmt.Errorf("lazyrpc: nil call request")
	}
	if req.TTL < 0 || req.TTL/time.Millisecond > 0xffffffff {
		return dst, fmt.Errorf("lazyrpc: ttl %v out of range", req.TTL)
	}
	if len(req.Headers) > 0xff {
		return dst, fmt.Errorf("lazyrpc: %d transport headers, max 255", len(req.Headers))
	}
	if !req.ChecksumType.Valid() {
		return dst, fmt.Errorf("lazyrpc: unknown checksum type %d", uint8(req.ChecksumType))
	}
	if req.Checksum != nil && len(req.Checksum) != req.ChecksumType.Size() {
		return dst, fmt.Errorf("lazyrpc: %v checksum needs %d bytes, got %d", req.ChecksumType, req.ChecksumType.Size(), len(req.Checksum))
	}
	if len(req.Args) == 0 {
		return dst, fmt.Errorf("lazyrpc: call request needs arg1")
	}

	var err error
	dst = append(dst, req.Flags)
	var ttl [4]byte
	binary.BigEndian.PutUint32(ttl[:], uint32(req.TTL/time.Millisecond))
	dst = append(dst, ttl[:]...)
	dst = appendTracing(dst, req.Tracing)
	if dst, err = appendLen8(dst, "service", req.Service); err != nil {
		return dst, err
	}

	dst = append(dst, uint8(len(req.Headers)))
	for _, h := range req.Headers {
		if dst, err = appendLen8(dst, "header key", h.Key); err != nil {
			return dst, err
		}
		if dst, err = appendLen8(dst, "header value", h.Value); err != nil {
			return dst, err
		}
	}

	dst = append(dst, uint8(req.ChecksumType))
	if n := req.ChecksumType.Size(); n > 0 {
		if req.Checksum == nil {
			dst = append(dst, make([]byte, n)...)
		} else {
			dst = append(dst, req.Checksum...)
		}
	}

	for i, arg := range req.Args {
		if len(arg) > 0xffff {
			return dst, fmt.Errorf("lazyrpc: arg%d of %d bytes exceeds 65535", i+1, len(arg))
		}
		dst = append(dst, byte(len(arg)>>8), byte(len(arg)))
		dst = append(dst, arg...)
	}
	return dst, nil
}

func appendLen8(dst []byte, field, s string) ([]byte, error) {
	if len(s) > 0xff {
		return dst, fmt.Errorf("lazyrpc: %s of %d bytes exceeds 255", field, len(s))
	}
	dst = append(dst, uint8(len(s)))
	return append(dst, s...), nil
}
