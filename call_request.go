package lazyrpc

import (
	"fmt"
	"time"
)

// Fixed payload offsets of a call request:
// flags:1 ttl:4 tracing:25 service~1 nh:1 (hk~1 hv~1){nh} csumtype:1 (csum:4){0,1} arg1~2 arg2~2 arg3~2
const (
	callReqFlagsOffset   = 0
	callReqTTLOffset     = 1
	callReqTracingOffset = 5
	callReqServiceOffset = callReqTracingOffset + TracingSize
)

// FlagMoreFragments is set when the arguments continue in later frames.
const FlagMoreFragments uint8 = 0x01

// Result is a decoded field together with the payload offset at which the
// next field begins.
type Result[T any] struct {
	Value T
	Next  int
}

// CallRequestView decodes a call-request payload on demand.
//
// Two tiers of accessor exist. The Read* methods return byte ranges plus
// the offset of the following field; reading a late field first is allowed
// but walks every field before it. The *Str methods return strings
// memoized on the LazyFrame, so a repeated call does no work at all.
//
// A view is a handle on its LazyFrame: it shares the frame's cache and
// fails with ErrStaleView once the frame is rebound.
type CallRequestView struct {
	f   *LazyFrame
	gen uint64
}

func (r CallRequestView) frame() (*LazyFrame, error) {
	if r.f == nil || r.f.gen != r.gen || r.f.buf == nil {
		return nil, ErrStaleView
	}
	return r.f, nil
}

func (r CallRequestView) FrameType() FrameType {
	return TypeCallReq
}

// Payload returns the raw payload, or nil for a stale view.
func (r CallRequestView) Payload() []byte {
	f, err := r.frame()
	if err != nil {
		return nil
	}
	return f.Payload
}

// ID returns the frame id, or 0 for a stale view.
func (r CallRequestView) ID() uint32 {
	f, err := r.frame()
	if err != nil {
		return 0
	}
	return f.ID
}

func (r CallRequestView) ReadFlags() (Result[uint8], error) {
	f, err := r.frame()
	if err != nil {
		return Result[uint8]{}, err
	}
	c, err := f.cursorAt(callReqFlagsOffset, "flags")
	if err != nil {
		return Result[uint8]{}, err
	}
	v, err := c.ReadUint8()
	if err != nil {
		return Result[uint8]{}, withField(err, "flags")
	}
	return Result[uint8]{Value: v, Next: c.Offset()}, nil
}

// MoreFragments reports whether FlagMoreFragments is set.
func (r CallRequestView) MoreFragments() (bool, error) {
	res, err := r.ReadFlags()
	if err != nil {
		return false, err
	}
	return res.Value&FlagMoreFragments != 0, nil
}

// ReadTTL returns the time to live, carried as milliseconds.
func (r CallRequestView) ReadTTL() (Result[time.Duration], error) {
	f, err := r.frame()
	if err != nil {
		return Result[time.Duration]{}, err
	}
	c, err := f.cursorAt(callReqTTLOffset, "ttl")
	if err != nil {
		return Result[time.Duration]{}, err
	}
	ms, err := c.ReadUint32()
	if err != nil {
		return Result[time.Duration]{}, withField(err, "ttl")
	}
	return Result[time.Duration]{Value: time.Duration(ms) * time.Millisecond, Next: c.Offset()}, nil
}

func (r CallRequestView) ReadTracing() (Result[Tracing], error) {
	f, err := r.frame()
	if err != nil {
		return Result[Tracing]{}, err
	}
	c, err := f.cursorAt(callReqTracingOffset, "tracing")
	if err != nil {
		return Result[Tracing]{}, err
	}
	t, err := readTracing(c)
	if err != nil {
		return Result[Tracing]{}, err
	}
	return Result[Tracing]{Value: t, Next: c.Offset()}, nil
}

// ReadService returns the service name bytes. It records where the header
// region starts.
func (r CallRequestView) ReadService() (Result[[]byte], error) {
	f, err := r.frame()
	if err != nil {
		return Result[[]byte]{}, err
	}
	c, err := f.cursorAt(callReqServiceOffset, "service")
	if err != nil {
		return Result[[]byte]{}, err
	}
	svc, err := c.ReadLen8Bytes()
	if err != nil {
		return Result[[]byte]{}, withField(err, "service")
	}
	f.cache.putOffset(FieldHeaderStart, c.Offset())
	return Result[[]byte]{Value: svc, Next: c.Offset()}, nil
}

func (r CallRequestView) headerStart(f *LazyFrame) (int, error) {
	if e := f.cache.get(FieldHeaderStart); e.State == OffsetKnown {
		return e.Offset, nil
	}
	res, err := r.ReadService()
	if err != nil {
		return 0, err
	}
	return res.Next, nil
}

// ReadHeaders validates the whole header region and returns a view of it.
// It records where the checksum starts.
func (r CallRequestView) ReadHeaders() (Result[HeaderView], error) {
	f, err := r.frame()
	if err != nil {
		return Result[HeaderView]{}, err
	}
	start, err := r.headerStart(f)
	if err != nil {
		return Result[HeaderView]{}, err
	}
	c, err := f.cursorAt(start, "headers")
	if err != nil {
		return Result[HeaderView]{}, err
	}
	count, err := walkHeaders(c)
	if err != nil {
		return Result[HeaderView]{}, err
	}
	end := c.Offset()
	f.cache.putOffset(FieldChecksumStart, end)
	return Result[HeaderView]{
		Value: HeaderView{region: f.Payload[start:end:end], count: count},
		Next:  end,
	}, nil
}

func (r CallRequestView) checksumStart(f *LazyFrame) (int, error) {
	if e := f.cache.get(FieldChecksumStart); e.State == OffsetKnown {
		return e.Offset, nil
	}
	res, err := r.ReadHeaders()
	if err != nil {
		return 0, err
	}
	return res.Next, nil
}

// ReadChecksum returns the checksum tag and value. The value is not verified.
func (r CallRequestView) ReadChecksum() (Result[Checksum], error) {
	f, err := r.frame()
	if err != nil {
		return Result[Checksum]{}, err
	}
	cs, c, err := r.checksumCursor(f)
	if err != nil {
		return Result[Checksum]{}, err
	}
	return Result[Checksum]{Value: cs, Next: c.Offset()}, nil
}

// checksumCursor reads the checksum and returns a cursor positioned at arg1.
func (r CallRequestView) checksumCursor(f *LazyFrame) (cs Checksum, c *Cursor, err error) {
	start, err := r.checksumStart(f)
	if err != nil {
		return
	}
	c, err = f.cursorAt(start, "checksum")
	if err != nil {
		return
	}
	cs, err = readChecksum(c)
	return
}

// ReadArg1 returns the first argument, the endpoint name by convention.
func (r CallRequestView) ReadArg1() (Result[[]byte], error) {
	return r.ReadArg(1)
}

// ReadArg returns argument n, counting from 1. Arguments after the first
// may be carried by continuation frames; asking for one that is not in
// this frame returns ErrNoArg.
func (r CallRequestView) ReadArg(n int) (Result[[]byte], error) {
	if n < 1 {
		return Result[[]byte]{}, fmt.Errorf("lazyrpc: argument index %d, want >= 1", n)
	}
	f, err := r.frame()
	if err != nil {
		return Result[[]byte]{}, err
	}
	_, c, err := r.checksumCursor(f)
	if err != nil {
		return Result[[]byte]{}, err
	}
	for i := 1; ; i++ {
		if i > 1 && c.Remaining() == 0 {
			return Result[[]byte]{}, fmt.Errorf("%w: arg%d", ErrNoArg, n)
		}
		arg, err := c.ReadLen16Bytes()
		if err != nil {
			return Result[[]byte]{}, withField(err, fmt.Sprintf("arg%d", i))
		}
		if i == n {
			return Result[[]byte]{Value: arg, Next: c.Offset()}, nil
		}
	}
}

// ReadArgs returns every argument carried by this frame, in order.
func (r CallRequestView) ReadArgs() (Result[[][]byte], error) {
	f, err := r.frame()
	if err != nil {
		return Result[[][]byte]{}, err
	}
	_, c, err := r.checksumCursor(f)
	if err != nil {
		return Result[[][]byte]{}, err
	}
	args := make([][]byte, 0, 3)
	for i := 1; i == 1 || c.Remaining() > 0; i++ {
		arg, err := c.ReadLen16Bytes()
		if err != nil {
			return Result[[][]byte]{}, withField(err, fmt.Sprintf("arg%d", i))
		}
		args = append(args, arg)
	}
	return Result[[][]byte]{Value: args, Next: c.Offset()}, nil
}

// ServiceStr returns the service name, memoized.
func (r CallRequestView) ServiceStr() (string, error) {
	f, err := r.frame()
	if err != nil {
		return "", err
	}
	if e := f.cache.get(FieldService); e.State == ValueKnown {
		return e.Value, nil
	}
	res, err := r.ReadService()
	if err != nil {
		return "", err
	}
	s := string(res.Value)
	f.cache.putValue(FieldService, s, true)
	return s, nil
}

// CallerNameStr returns the "cn" header, memoized. ok is false when the
// header is absent, which is not an error.
func (r CallRequestView) CallerNameStr() (name string, ok bool, err error) {
	return r.headerStr(FieldCallerName, FieldCallerNameValue, callerNameKey)
}

// RoutingDelegateStr returns the "rd" header, memoized. ok is false when
// the header is absent, which is not an error.
func (r CallRequestView) RoutingDelegateStr() (delegate string, ok bool, err error) {
	return r.headerStr(FieldRoutingDelegate, FieldRoutingDelegateValue, routingDelegateKey)
}

func (r CallRequestView) headerStr(strID, offID FieldID, key []byte) (string, bool, error) {
	f, err := r.frame()
	if err != nil {
		return "", false, err
	}
	if e := f.cache.get(strID); e.State == ValueKnown {
		return e.Value, e.Present, nil
	}

	off := f.cache.get(offID)
	if off.State != OffsetKnown {
		start, err := r.headerStart(f)
		if err != nil {
			return "", false, err
		}
		c, err := f.cursorAt(start, "headers")
		if err != nil {
			return "", false, err
		}
		valueOffset, found, err := findHeader(c, key)
		if err != nil {
			return "", false, err
		}
		off = cacheEntry{State: OffsetKnown, Offset: valueOffset, Present: found}
		f.cache.put(offID, off)
	}

	if !off.Present {
		f.cache.putValue(strID, "", false)
		return "", false, nil
	}
	c, err := f.cursorAt(off.Offset, "header value")
	if err != nil {
		return "", false, err
	}
	v, err := c.ReadLen8Bytes()
	if err != nil {
		return "", false, asMalformed(err, "header value")
	}
	s := string(v)
	f.cache.putValue(strID, s, true)
	return s, true, nil
}

// Arg1Str returns arg1 as a string, memoized.
func (r CallRequestView) Arg1Str() (string, error) {
	f, err := r.frame()
	if err != nil {
		return "", err
	}
	if e := f.cache.get(FieldArg1); e.State == ValueKnown {
		return e.Value, nil
	}
	res, err := r.ReadArg1()
	if err != nil {
		return "", err
	}
	s := string(res.Value)
	f.cache.putValue(FieldArg1, s, true)
	return s, nil
}
