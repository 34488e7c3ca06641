package glyph

import (
	"fmt"
	"strings"
)

// Reserved wire tokens of the default format.
const (
	Marker           = "⭐"  // U+2B50, splits plain symbol from key symbol
	Separator        = "🌌"  // U+1F30C, terminates every segment
	DefaultKeySymbol = "𓋹" // U+132F9, stands in for key characters without a symbol
)

// Tokens is the set of reserved tokens that structure a wire string.
type Tokens struct {
	Marker           string
	Separator        string
	DefaultKeySymbol string
}

// DefaultTokens returns the reserved tokens of the default format.
func DefaultTokens() Tokens {
	return Tokens{
		Marker:           Marker,
		Separator:        Separator,
		DefaultKeySymbol: DefaultKeySymbol,
	}
}

// validate checks that the tokens are non-empty and that none of them
// contains another. Containment would let the splitter cut a token apart.
func (t Tokens) validate() error {
	named := []struct {
		name, val string
	}{
		{"marker", t.Marker},
		{"separator", t.Separator},
		{"default key symbol", t.DefaultKeySymbol},
	}
	for _, n := range named {
		if n.val == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidAlphabet, n.name)
		}
	}
	for i, a := range named {
		for j, b := range named {
			if i == j {
				continue
			}
			if strings.Contains(a.val, b.val) {
				return fmt.Errorf("%w: %s %q overlaps %s %q", ErrInvalidAlphabet, a.name, a.val, b.name, b.val)
			}
		}
	}
	for _, n := range named[:2] {
		if selfOverlaps(n.val) {
			return fmt.Errorf("%w: %s %q overlaps itself", ErrInvalidAlphabet, n.name, n.val)
		}
	}
	if err := t.checkJoin("default key symbol", t.DefaultKeySymbol); err != nil {
		return err
	}
	return t.checkJoin("marker", t.Marker)
}

// checkJoin rejects s when its tail could combine with a following marker or
// separator into an earlier, false occurrence of that token.
func (t Tokens) checkJoin(name, s string) error {
	for _, tok := range []string{t.Marker, t.Separator} {
		if tok != s && joins(s, tok) {
			return fmt.Errorf("%w: %s %q ends with the start of token %q", ErrInvalidAlphabet, name, s, tok)
		}
	}
	return nil
}

// joins reports whether a non-empty suffix of s is a proper prefix of tok.
func joins(s, tok string) bool {
	for k := 1; k < len(tok) && k <= len(s); k++ {
		if strings.HasSuffix(s, tok[:k]) {
			return true
		}
	}
	return false
}

// selfOverlaps reports whether tok has a non-empty proper prefix that is also
// its suffix. Such a token can be found starting inside text that precedes it.
func selfOverlaps(tok string) bool {
	for k := 1; k < len(tok); k++ {
		if tok[:k] == tok[len(tok)-k:] {
			return true
		}
	}
	return false
}

// structural reports whether s contains the marker or the separator.
func (t Tokens) structural(s string) bool {
	return strings.Contains(s, t.Marker) || strings.Contains(s, t.Separator)
}

// SegmentKind is the shape of a wire segment.
type SegmentKind uint8

const (
	SegmentBare   SegmentKind = iota // <symbolOrRawChar><separator>
	SegmentTagged                    // <plainSymbol><marker><keySymbol><separator>
)

// String returns the segment kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentBare:
		return "bare"
	case SegmentTagged:
		return "tagged"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Segment is one separator-delimited piece of a wire string.
type Segment struct {
	Kind       SegmentKind
	Raw        string // Segment text without the separator
	Plain      string // Text before the first marker (tagged only)
	Key        string // Text after the first marker (tagged only)
	Index      int    // Ordinal among non-empty segments
	Offset     int    // Byte offset of Raw in the wire string
	Terminated bool   // Whether a separator followed the segment
}

// String returns a debug representation of the segment.
func (s Segment) String() string {
	if s.Kind == SegmentTagged {
		return fmt.Sprintf("%s(%q|%q)", s.Kind, s.Plain, s.Key)
	}
	return fmt.Sprintf("%s(%q)", s.Kind, s.Raw)
}

// SplitSegments splits a wire string into its segments. Empty pieces
// (doubled or leading separators) are discarded.
func SplitSegments(wire string, tokens Tokens) []Segment {
	if wire == "" || tokens.Separator == "" {
		return nil
	}

	var segments []Segment
	offset := 0
	rest := wire
	for len(rest) > 0 {
		raw := rest
		terminated := false
		if i := strings.Index(rest, tokens.Separator); i >= 0 {
			raw = rest[:i]
			terminated = true
		}

		if raw != "" {
			seg := Segment{
				Kind:       SegmentBare,
				Raw:        raw,
				Index:      len(segments),
				Offset:     offset,
				Terminated: terminated,
			}
			if tokens.Marker != "" {
				if plain, key, ok := strings.Cut(raw, tokens.Marker); ok {
					seg.Kind = SegmentTagged
					seg.Plain = plain
					seg.Key = key
				}
			}
			segments = append(segments, seg)
		}

		consumed := len(raw)
		if terminated {
			consumed += len(tokens.Separator)
		}
		offset += consumed
		rest = rest[consumed:]
	}
	return segments
}
