package lazyrpc

import "bytes"

// Reserved transport header keys.
const (
	CallerNameKey      = "cn"
	RoutingDelegateKey = "rd"
	ArgSchemeKey       = "as"
)

var (
	callerNameKey      = []byte(CallerNameKey)
	routingDelegateKey = []byte(RoutingDelegateKey)
)

// TransportHeader is one key/value pair of the header region.
// Keys are not unique on the wire; order is preserved.
type TransportHeader struct {
	Key   string
	Value string
}

// HeaderView answers lookups over the packed header region of a call
// request (nh:1 (hk~1 hv~1){nh}). It holds the region bytes only and
// materializes nothing until asked. The region is validated when the
// view is built, so lookups cannot fail.
type HeaderView struct {
	region []byte
	count  int
}

// Len returns the number of encoded entries, duplicates included.
func (h HeaderView) Len() int {
	return h.count
}

// Get returns the value of the first entry whose key equals key.
func (h HeaderView) Get(key []byte) ([]byte, bool) {
	if len(h.region) == 0 {
		return nil, false
	}
	c := NewCursor(h.region)
	off, ok, err := findHeader(c, key)
	if err != nil || !ok {
		return nil, false
	}
	c.Seek(off)
	v, err := c.ReadLen8Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

// GetString is Get with string key and value.
func (h HeaderView) GetString(key string) (string, bool) {
	v, ok := h.Get([]byte(key))
	if !ok {
		return "", false
	}
	return string(v), true
}

// ForEach calls fn for every entry in wire order until fn returns false.
func (h HeaderView) ForEach(fn func(key, value []byte) bool) {
	if len(h.region) == 0 {
		return
	}
	c := NewCursor(h.region)
	c.Skip(1)
	for i := 0; i < h.count; i++ {
		k, err := c.ReadLen8Bytes()
		if err != nil {
			return
		}
		v, err := c.ReadLen8Bytes()
		if err != nil {
			return
		}
		if !fn(k, v) {
			return
		}
	}
}

// Headers materializes every entry.
func (h HeaderView) Headers() []TransportHeader {
	out := make([]TransportHeader, 0, h.count)
	h.ForEach(func(key, value []byte) bool {
		out = append(out, TransportHeader{Key: string(key), Value: string(value)})
		return true
	})
	return out
}

// walkHeaders validates every entry of the region starting at c and leaves
// c at the first byte after it.
func walkHeaders(c *Cursor) (count int, err error) {
	nh, err := c.ReadUint8()
	if err != nil {
		err = withField(err, "header count")
		return
	}
	for i := 0; i < int(nh); i++ {
		if err = c.SkipLen8(); err != nil {
			err = asMalformed(err, "header key")
			return
		}
		if err = c.SkipLen8(); err != nil {
			err = asMalformed(err, "header value")
			return
		}
	}
	count = int(nh)
	return
}

// findHeader scans the region starting at c for the first entry with key
// and returns the offset of that entry's value length byte. The scan stops
// at the match; entries after it are not looked at.
func findHeader(c *Cursor, key []byte) (valueOffset int, ok bool, err error) {
	nh, err := c.ReadUint8()
	if err != nil {
		err = withField(err, "header count")
		return
	}
	for i := 0; i < int(nh); i++ {
		var k []byte
		k, err = c.ReadLen8Bytes()
		if err != nil {
			err = asMalformed(err, "header key")
			return
		}
		off := c.Offset()
		if err = c.SkipLen8(); err != nil {
			err = asMalformed(err, "header value")
			return
		}
		if bytes.Equal(k, key) {
			return off, true, nil
		}
	}
	return 0, false, nil
}
