package lazyrpc

import "encoding/binary"

// TracingSize is spanid:8 parentid:8 traceid:8 traceflags:1.
const TracingSize = 25

// TraceFlagEnabled marks the trace as sampled.
const TraceFlagEnabled uint8 = 0x01

// Tracing is the fixed-width tracing record carried by call frames.
type Tracing struct {
	SpanID   uint64
	ParentID uint64
	TraceID  uint64
	Flags    uint8
}

// Enabled reports whether the trace is sampled.
func (t Tracing) Enabled() bool {
	return t.Flags&TraceFlagEnabled != 0
}

func readTracing(c *Cursor) (t Tracing, err error) {
	b, err := c.ReadBytes(TracingSize)
	if err != nil {
		err = withField(err, "tracing")
		return
	}
	t.SpanID = binary.BigEndian.Uint64(b[0:8])
	t.ParentID = binary.BigEndian.Uint64(b[8:16])
	t.TraceID = binary.BigEndian.Uint64(b[16:24])
	t.Flags = b[24]
	return
}

func appendTracing(dst []byte, t Tracing) []byte {
	var b [TracingSize]byte
	binary.BigEndian.PutUint64(b[0:], t.SpanID)
	binary.BigEndian.PutUint64(b[8:], t.ParentID)
	binary.BigEndian.PutUint64(b[16:], t.TraceID)
	b[24] = t.Flags
	return append(dst, b[:]...)
}
