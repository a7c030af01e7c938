package lazyrpc

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeFrame(t *testing.T) {
	payload := []byte("ping")
	buf, err := AppendFrame(nil, Frame{Type: TypePingReq, ID: 7, Payload: payload})
	if err != nil {
		t.Fatalf("append frame: %v", err)
	}
	// next frame's bytes must be left alone
	buf = append(buf, 0xaa, 0xbb)

	f, err := DecodeFrame(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Size != FrameHeaderSize+4 || f.Type != TypePingReq || f.ID != 7 {
		t.Fatalf("unexpected frame: %+v", f)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload mismatch: %q", f.Payload)
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	good, err := AppendFrame(nil, Frame{Type: TypeCallReq, ID: 1, Payload: make([]byte, 8)})
	if err != nil {
		t.Fatalf("append frame: %v", err)
	}

	tooSmall := append([]byte(nil), good...)
	tooSmall[0], tooSmall[1] = 0, FrameHeaderSize-1

	cases := map[string][]byte{
		"short header":      good[:FrameHeaderSize-1],
		"size past buffer":  good[:len(good)-1],
		"size under header": tooSmall,
		"empty":             nil,
	}
	for name, buf := range cases {
		if _, err := DecodeFrame(buf); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestAppendFrameTooLarge(t *testing.T) {
	if _, err := AppendFrame(nil, Frame{Type: TypeCallReq, Payload: make([]byte, MaxFrameSize)}); err == nil {
		t.Fatalf("expected size error")
	}
}

func TestBodyDispatch(t *testing.T) {
	ping, err := AppendFrame(nil, Frame{Type: TypePingReq, ID: 3})
	if err != nil {
		t.Fatalf("append frame: %v", err)
	}
	f, err := NewLazyFrame(ping)
	if err != nil {
		t.Fatalf("new lazy frame: %v", err)
	}
	body, err := f.Body()
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if _, ok := body.(RawBody); !ok || body.FrameType() != TypePingReq {
		t.Fatalf("expected raw ping body, got %T %v", body, body.FrameType())
	}
	if _, err := f.CallRequest(); !errors.Is(err, ErrNotCallRequest) {
		t.Fatalf("expected ErrNotCallRequest, got %v", err)
	}

	if err := f.Rebind(mustEncode(t, 4, castleRequest())); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	body, err = f.Body()
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	req, ok := body.(CallRequestView)
	if !ok {
		t.Fatalf("expected call request view, got %T", body)
	}
	if req.ID() != 4 || len(req.Payload()) != castlePayloadLen {
		t.Fatalf("unexpected view: id=%d payload=%d", req.ID(), len(req.Payload()))
	}
	if len(f.Bytes()) != FrameHeaderSize+castlePayloadLen {
		t.Fatalf("unexpected frame bytes: %d", len(f.Bytes()))
	}
}

func TestFrameTypeString(t *testing.T) {
	if TypeCallReq.String() != "call req" {
		t.Fatalf("unexpected name %q", TypeCallReq.String())
	}
	if FrameType(0x42).String() != "unknown(0x42)" {
		t.Fatalf("unexpected name %q", FrameType(0x42).String())
	}
}

func TestLazyFramePool(t *testing.T) {
	buf := mustEncode(t, 9, castleRequest())
	f, err := AcquireLazyFrame(buf)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	req, err := f.CallRequest()
	if err != nil {
		t.Fatalf("call request: %v", err)
	}
	if svc, err := req.ServiceStr(); err != nil || svc != "castle" {
		t.Fatalf("service: %q %v", svc, err)
	}

	ReleaseLazyFrame(f)
	if _, err := req.ServiceStr(); !errors.Is(err, ErrStaleView) {
		t.Fatalf("expected ErrStaleView after release, got %v", err)
	}
	if f.FieldState(FieldService) != NotComputed {
		t.Fatalf("release must clear the cache")
	}

	if _, err := AcquireLazyFrame(buf[:4]); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
