package glyph

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKey is returned by Encode and Decode when the key is empty.
	// The accompanying result is always "".
	ErrEmptyKey = errors.New("glyph: empty key")

	// ErrInvalidAlphabet is wrapped by every alphabet construction failure.
	ErrInvalidAlphabet = errors.New("glyph: invalid alphabet")
)

// DropReason says why a segment produced no character.
type DropReason uint8

const (
	ReasonUnknownSymbol DropReason = iota + 1 // plain part is not in the alphabet
	ReasonKeyMismatch                         // key symbol does not match the supplied key
)

// String returns the reason name.
func (r DropReason) String() string {
	switch r {
	case ReasonUnknownSymbol:
		return "unknown symbol"
	case ReasonKeyMismatch:
		return "key mismatch"
	default:
		return fmt.Sprintf("reason(%d)", r)
	}
}

// SegmentError describes a segment that decode dropped. It is a soft
// failure: it is reported, never returned from Decode.
type SegmentError struct {
	Segment Segment
	Reason  DropReason
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d at offset %d: %s: %s", e.Segment.Index, e.Segment.Offset, e.Reason, e.Segment)
}
