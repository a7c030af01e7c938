package lazyrpc

import "sync"

// LazyFrame is a decoded envelope plus the memoized state of its body.
// Body fields are parsed on first access and remembered until the frame
// is rebound or reset.
//
// A LazyFrame is not safe for concurrent use: accessors write to the
// cache. The bound buffer is only read and may be shared.
type LazyFrame struct {
	Frame

	buf   []byte
	cache fieldCache
	gen   uint64
	scans int
}

// NewLazyFrame decodes the envelope at the start of buf.
func NewLazyFrame(buf []byte) (*LazyFrame, error) {
	f := &LazyFrame{}
	if err := f.Rebind(buf); err != nil {
		return nil, err
	}
	return f, nil
}

// Rebind associates f with new bytes. The cache is always cleared and views
// handed out before the call stop working, so nothing computed from the old
// bytes can leak into reads of the new ones. On error f is left unbound.
func (f *LazyFrame) Rebind(buf []byte) error {
	f.cache.reset()
	f.gen++

	fr, err := DecodeFrame(buf)
	if err != nil {
		f.Frame = Frame{}
		f.buf = nil
		return err
	}
	f.Frame = fr
	f.buf = buf
	return nil
}

// Reset clears every memoized slot while keeping the bound bytes, so the
// next access re-scans them. Views stay valid.
func (f *LazyFrame) Reset() {
	f.cache.reset()
}

// FieldState reports the resolution state of one slot.
func (f *LazyFrame) FieldState(id FieldID) FieldState {
	if id < 0 || id >= numFields {
		return NotComputed
	}
	return f.cache.get(id).State
}

// Bytes returns the bound frame bytes, header included.
func (f *LazyFrame) Bytes() []byte {
	if f.buf == nil {
		return nil
	}
	return f.buf[:f.Size:f.Size]
}

// Body is the typed interpretation of a frame payload.
type Body interface {
	FrameType() FrameType
	Payload() []byte
}

// RawBody is the body of frame types without a lazy decoder.
type RawBody struct {
	typ     FrameType
	payload []byte
}

func (b RawBody) FrameType() FrameType { return b.typ }
func (b RawBody) Payload() []byte      { return b.payload }

// Body returns the decoder view for the frame's type tag.
func (f *LazyFrame) Body() (Body, error) {
	if f.buf == nil {
		return nil, ErrStaleView
	}
	switch f.Type {
	case TypeCallReq:
		return f.CallRequest()
	}
	return RawBody{typ: f.Type, payload: f.Payload}, nil
}

// CallRequest returns the call-request view of f.
func (f *LazyFrame) CallRequest() (CallRequestView, error) {
	if f.buf == nil {
		return CallRequestView{}, ErrStaleView
	}
	if f.Type != TypeCallReq {
		return CallRequestView{}, ErrNotCallRequest
	}
	return CallRequestView{f: f, gen: f.gen}, nil
}

// cursorAt returns a cursor over the payload positioned at offset.
// Every byte-level read of the body goes through here.
func (f *LazyFrame) cursorAt(offset int, field string) (*Cursor, error) {
	f.scans++
	c := NewCursor(f.Payload)
	if err := c.Seek(offset); err != nil {
		return nil, withField(err, field)
	}
	return c, nil
}

var lazyFramePool = sync.Pool{
	New: func() interface{} {
		return &LazyFrame{}
	},
}

// AcquireLazyFrame returns a pooled LazyFrame bound to buf.
// Return it with ReleaseLazyFrame once no view of it is in use.
func AcquireLazyFrame(buf []byte) (*LazyFrame, error) {
	f := lazyFramePool.Get().(*LazyFrame)
	if err := f.Rebind(buf); err != nil {
		lazyFramePool.Put(f)
		return nil, err
	}
	return f, nil
}

// ReleaseLazyFrame unbinds f and puts it back in the pool.
func ReleaseLazyFrame(f *LazyFrame) {
	if f == nil {
		return
	}
	f.cache.reset()
	f.gen++
	f.Frame = Frame{}
	f.buf = nil
	f.scans = 0
	lazyFramePool.Put(f)
}
