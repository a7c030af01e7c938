package lazyrpc

import "fmt"

// FieldID names one memoized slot of a LazyFrame.
type FieldID int

const (
	// string slots
	FieldService FieldID = iota
	FieldCallerName
	FieldRoutingDelegate
	FieldArg1

	// offset slots, payload relative
	FieldHeaderStart
	FieldChecksumStart
	FieldCallerNameValue
	FieldRoutingDelegateValue

	numFields
)

// Fields lists every slot, in declaration order.
var Fields = [numFields]FieldID{
	FieldService, FieldCallerName, FieldRoutingDelegate, FieldArg1,
	FieldHeaderStart, FieldChecksumStart, FieldCallerNameValue, FieldRoutingDelegateValue,
}

func (id FieldID) String() string {
	switch id {
	case FieldService:
		return "service"
	case FieldCallerName:
		return "caller name"
	case FieldRoutingDelegate:
		return "routing delegate"
	case FieldArg1:
		return "arg1"
	case FieldHeaderStart:
		return "header start"
	case FieldChecksumStart:
		return "checksum start"
	case FieldCallerNameValue:
		return "caller name value"
	case FieldRoutingDelegateValue:
		return "routing delegate value"
	}
	return fmt.Sprintf("field(%d)", int(id))
}

// FieldState is the resolution state of one slot.
type FieldState uint8

const (
	NotComputed FieldState = iota
	OffsetKnown
	ValueKnown
)

func (s FieldState) String() string {
	switch s {
	case NotComputed:
		return "not computed"
	case OffsetKnown:
		return "offset known"
	case ValueKnown:
		return "value known"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// cacheEntry is one slot. Present is false for a header lookup that
// resolved to "no such key"; that is a known result, not a miss.
type cacheEntry struct {
	State   FieldState
	Offset  int
	Value   string
	Present bool
}

// fieldCache memoizes string values and offsets for the bytes currently
// bound to its LazyFrame. Every entry is only valid for those bytes.
type fieldCache struct {
	entries [numFields]cacheEntry
}

func (c *fieldCache) get(id FieldID) cacheEntry {
	return c.entries[id]
}

func (c *fieldCache) put(id FieldID, e cacheEntry) {
	c.entries[id] = e
}

func (c *fieldCache) putOffset(id FieldID, offset int) {
	c.entries[id] = cacheEntry{State: OffsetKnown, Offset: offset, Present: true}
}

func (c *fieldCache) putValue(id FieldID, value string, present bool) {
	c.entries[id] = cacheEntry{State: ValueKnown, Value: value, Present: present}
}

// reset drops all slots together. Offsets are never kept across a reset
// because later offsets were derived from earlier ones.
func (c *fieldCache) reset() {
	c.entries = [numFields]cacheEntry{}
}
