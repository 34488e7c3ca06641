// Package stream implements GS1-T framing for hieroglyph payloads.
//
// A frame is a transport envelope around one wire string (or plaintext),
// providing:
//   - Message boundaries via an exact payload length
//   - Multiplexing via stream IDs (sid) and ordering via sequence numbers (seq)
//   - Integrity via optional CRC-32
//   - Decode checking via an optional SHA-256 digest of the plaintext (base)
//   - Optional zstd compression of large payloads
//
// Frame headers are not part of the wire format. The payload of a cipher
// frame is passed to glyph.Decode unchanged.
package stream

import (
	"fmt"
)

// Version is the GS1 protocol version.
const Version uint8 = 1

// FrameKind indicates the semantic category of a frame's payload.
type FrameKind uint8

const (
	KindCipher FrameKind = 0 // Wire string produced by glyph.Encode
	KindPlain  FrameKind = 1 // Plaintext
	KindErr    FrameKind = 2 // Error event
)

// String returns the kind name.
func (k FrameKind) String() string {
	switch k {
	case KindCipher:
		return "cipher"
	case KindPlain:
		return "plain"
	case KindErr:
		return "err"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// ParseKind parses a kind string or numeric value.
func ParseKind(s string) (FrameKind, bool) {
	switch s {
	case "cipher", "0":
		return KindCipher, true
	case "plain", "1":
		return KindPlain, true
	case "err", "2":
		return KindErr, true
	default:
		var n int
		if _, err := fmt.Sscanf(s, "%d", &n); err == nil && n >= 0 && n <= 255 {
			return FrameKind(n), true
		}
		return 0, false
	}
}

// Flags for GS1 frames.
type Flags uint8

const (
	FlagHasCRC     Flags = 0x01 // CRC-32 is present
	FlagHasBase    Flags = 0x02 // Plaintext digest is present
	FlagFinal      Flags = 0x04 // End-of-stream for this SID
	FlagCompressed Flags = 0x08 // Payload is zstd-compressed on the wire
)

// Frame represents a single GS1 frame.
type Frame struct {
	// Required fields
	Version uint8     // Protocol version (must be 1)
	SID     uint64    // Stream identifier
	Seq     uint64    // Sequence number (per-SID, monotonic)
	Kind    FrameKind // Frame kind
	Payload []byte    // Decompressed payload bytes (UTF-8)

	// Optional fields
	CRC   *uint32   // CRC-32 of the on-wire payload (nil if not present)
	Base  *[32]byte // SHA-256 of the normalized plaintext (nil if not present)
	Flags Flags     // Flag bits
	Final bool      // End-of-stream marker
}

// HasCRC returns true if CRC is present.
func (f *Frame) HasCRC() bool {
	return f.CRC != nil
}

// HasBase returns true if a plaintext digest is present.
func (f *Frame) HasBase() bool {
	return f.Base != nil
}

// IsFinal returns true if this is the final frame for this SID.
func (f *Frame) IsFinal() bool {
	return f.Final || f.Flags&FlagFinal != 0
}

// IsCompressed returns true if the payload travelled compressed.
func (f *Frame) IsCompressed() bool {
	return f.Flags&FlagCompressed != 0
}

// MaxPayloadSize is the default maximum payload size (64 MiB).
const MaxPayloadSize = 64 * 1024 * 1024

// ParseError is returned for malformed frames.
type ParseError struct {
	Reason string
	Offset int
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("gs1: %s at offset %d", e.Reason, e.Offset)
	}
	return fmt.Sprintf("gs1: %s", e.Reason)
}

// CRCMismatchError is returned when CRC verification fails.
type CRCMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("gs1: CRC mismatch: expected %08x, got %08x", e.Expected, e.Got)
}

// BaseMismatchError is returned when a decoded plaintext does not match the
// digest the sender attached.
type BaseMismatchError struct {
	Expected [32]byte
	Got      [32]byte
}

func (e *BaseMismatchError) Error() string {
	return fmt.Sprintf("gs1: plaintext digest mismatch: expected %s, got %s",
		HashToHex(e.Expected)[:12], HashToHex(e.Got)[:12])
}

// SequenceError is returned by a Cursor for out-of-order frames.
type SequenceError struct {
	SID      uint64
	Expected uint64
	Got      uint64
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("gs1: sid %d: expected seq %d, got %d", e.SID, e.Expected, e.Got)
}
