package lazyrpc

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a read would pass the end of the frame
	// or of a declared sub-region. The frame must be rejected.
	ErrOutOfBounds = errors.New("lazyrpc: read out of bounds")
	// ErrMalformed is returned when a declared size, length, count or tag is
	// inconsistent with the bytes that carry it.
	ErrMalformed = errors.New("lazyrpc: malformed frame")
	// ErrStaleView is returned by a view whose LazyFrame has been rebound.
	ErrStaleView = errors.New("lazyrpc: view used after rebind")
	// ErrNotCallRequest is returned when a call-request view is asked of another frame type.
	ErrNotCallRequest = errors.New("lazyrpc: not a call request frame")
	// ErrNoArg is returned when a requested argument is not present in the frame.
	ErrNoArg = errors.New("lazyrpc: argument not present")
	// ErrDispatcherClosed is returned by Dispatch after Shutdown.
	ErrDispatcherClosed = errors.New("lazyrpc: dispatcher closed")
)

// DecodeError carries the field and payload offset a decode failed at.
// It unwraps to one of the sentinel errors above.
type DecodeError struct {
	Kind   error
	Field  string
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %s at offset %d", e.Kind, e.Field, e.Offset)
	}
	return fmt.Sprintf("%v: %s at offset %d: %s", e.Kind, e.Field, e.Offset, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

func outOfBounds(field string, offset int, format string, args ...interface{}) error {
	return &DecodeError{Kind: ErrOutOfBounds, Field: field, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

func malformed(field string, offset int, format string, args ...interface{}) error {
	return &DecodeError{Kind: ErrMalformed, Field: field, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

// withField relabels a cursor error with the field being decoded.
func withField(err error, field string) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return &DecodeError{Kind: de.Kind, Field: field, Offset: de.Offset, Detail: de.Detail}
	}
	return err
}

// asMalformed turns a bounds failure inside a length-prefixed region into ErrMalformed,
// since the declared length is what is inconsistent.
func asMalformed(err error, field string) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return &DecodeError{Kind: ErrMalformed, Field: field, Offset: de.Offset, Detail: de.Detail}
	}
	return err
}
