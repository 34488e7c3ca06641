package glyph

import (
	"fmt"
	"strings"
)

// Validation codes.
const (
	CodeUnknownSymbol    = "unknown_symbol"
	CodeUnknownKeySymbol = "unknown_key_symbol"
	CodeUnterminated     = "unterminated"
	CodeExtraMarker      = "extra_marker"
)

// ValidationError represents a validation finding on one segment.
type ValidationError struct {
	Index   int    // Segment ordinal
	Offset  int    // Byte offset in the wire string
	Message string // Human-readable message
	Code    string // Machine-readable code
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("segment %d at offset %d: %s", e.Index, e.Offset, e.Message)
}

// ValidationResult contains all validation errors and warnings.
// Errors mark segments decode would drop; warnings mark segments that decode
// but look damaged.
type ValidationResult struct {
	Valid    bool
	Segments int
	Errors   []ValidationError
	Warnings []ValidationError
}

// Validate checks a wire string against the default alphabet.
func Validate(wire string) *ValidationResult {
	return Hieroglyphs.Validate(wire)
}

// Validate checks a wire string without a key.
func (a *Alphabet) Validate(wire string) *ValidationResult {
	res := &ValidationResult{}
	segments := SplitSegments(wire, a.tokens)
	res.Segments = len(segments)

	for _, seg := range segments {
		switch seg.Kind {
		case SegmentTagged:
			if _, ok := a.CharFor(seg.Plain); !ok {
				res.Errors = append(res.Errors, finding(seg, CodeUnknownSymbol,
					fmt.Sprintf("plain symbol %q is not in the alphabet", seg.Plain)))
				continue
			}
			if strings.Contains(seg.Key, a.tokens.Marker) {
				res.Warnings = append(res.Warnings, finding(seg, CodeExtraMarker,
					"segment has more than one marker"))
			} else if _, ok := a.CharFor(seg.Key); !ok && seg.Key != a.tokens.DefaultKeySymbol {
				res.Warnings = append(res.Warnings, finding(seg, CodeUnknownKeySymbol,
					fmt.Sprintf("key symbol %q is not in the alphabet", seg.Key)))
			}
		default:
			if _, ok := a.CharFor(seg.Raw); !ok {
				res.Errors = append(res.Errors, finding(seg, CodeUnknownSymbol,
					fmt.Sprintf("segment %q is not in the alphabet", seg.Raw)))
				continue
			}
		}
		if !seg.Terminated {
			res.Warnings = append(res.Warnings, finding(seg, CodeUnterminated,
				"segment is not terminated by the separator"))
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func finding(seg Segment, code, msg string) ValidationError {
	return ValidationError{Index: seg.Index, Offset: seg.Offset, Message: msg, Code: code}
}
