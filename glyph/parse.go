package glyph

import (
	"strings"
)

// Report summarizes a decode.
type Report struct {
	Segments int            // Non-empty segments seen
	Decoded  int            // Characters emitted
	Dropped  []SegmentError // Segments that produced nothing
}

// Empty reports whether nothing was recovered.
func (r *Report) Empty() bool {
	return r.Decoded == 0
}

func (r *Report) drop(seg Segment, reason DropReason) {
	r.Dropped = append(r.Dropped, SegmentError{Segment: seg, Reason: reason})
}

// Decode decodes wire with the default codec.
func Decode(wire, key string) (string, error) {
	return defaultCodec.Decode(wire, key)
}

// DecodeReport decodes wire with the default codec and reports dropped segments.
func DecodeReport(wire, key string) (string, *Report, error) {
	return defaultCodec.DecodeReport(wire, key)
}

// Decode recovers the text of a wire string. Segments that do not resolve
// are dropped silently, so a result of "" means nothing was recoverable;
// an empty original message and a failed decode look the same.
//
// An empty key returns "" and ErrEmptyKey.
func (c *Codec) Decode(wire, key string) (string, error) {
	text, _, err := c.DecodeReport(wire, key)
	return text, err
}

// DecodeReport is Decode plus a report of what was dropped.
func (c *Codec) DecodeReport(wire, key string) (string, *Report, error) {
	keyRunes := []rune(Normalize(key))
	if len(keyRunes) == 0 {
		return "", &Report{}, ErrEmptyKey
	}

	report := &Report{}
	segments := SplitSegments(wire, c.alphabet.tokens)
	report.Segments = len(segments)
	if len(segments) == 0 {
		return "", report, nil
	}

	var b strings.Builder
	keyIndex := 0
	for _, seg := range segments {
		switch seg.Kind {
		case SegmentTagged:
			r, ok := c.alphabet.CharFor(seg.Plain)
			if !ok {
				report.drop(seg, ReasonUnknownSymbol)
				continue
			}
			want := c.alphabet.keySymbol(keyRunes[keyIndex%len(keyRunes)])
			// Advance even on mismatch so later segments stay aligned.
			keyIndex++
			if c.opts.VerifyKey && seg.Key != want {
				report.drop(seg, ReasonKeyMismatch)
				continue
			}
			b.WriteRune(r)
			report.Decoded++

		default:
			r, ok := c.alphabet.CharFor(seg.Raw)
			if !ok {
				report.drop(seg, ReasonUnknownSymbol)
				continue
			}
			b.WriteRune(r)
			report.Decoded++
		}
	}
	return b.String(), report, nil
}
