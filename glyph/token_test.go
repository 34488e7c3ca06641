package glyph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitSegments(t *testing.T) {
	tok := Tokens{Marker: "*", Separator: "#", DefaultKeySymbol: "?"}

	tests := []struct {
		name string
		wire string
		want []Segment
	}{
		{"empty", "", nil},
		{"only separators", "###", nil},
		{
			"tagged",
			"H*R#I*A#",
			[]Segment{
				{Kind: SegmentTagged, Raw: "H*R", Plain: "H", Key: "R", Index: 0, Offset: 0, Terminated: true},
				{Kind: SegmentTagged, Raw: "I*A", Plain: "I", Key: "A", Index: 1, Offset: 4, Terminated: true},
			},
		},
		{
			"bare and empty pieces",
			"#x##y",
			[]Segment{
				{Kind: SegmentBare, Raw: "x", Index: 0, Offset: 1, Terminated: true},
				{Kind: SegmentBare, Raw: "y", Index: 1, Offset: 4, Terminated: false},
			},
		},
		{
			"first marker splits",
			"H*R*Q#",
			[]Segment{
				{Kind: SegmentTagged, Raw: "H*R*Q", Plain: "H", Key: "R*Q", Index: 0, Offset: 0, Terminated: true},
			},
		},
		{
			"no separator",
			"garbage",
			[]Segment{
				{Kind: SegmentBare, Raw: "garbage", Index: 0, Offset: 0, Terminated: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSegments(tt.wire, tok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitSegments(%q) mismatch (-want +got):\n%s", tt.wire, diff)
			}
		})
	}
}

func TestSplitSegments_MultiByteOffsets(t *testing.T) {
	wire, _ := Encode("ab", "k")
	segs := SplitSegments(wire, DefaultTokens())
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	second := segs[1]
	if wire[second.Offset:second.Offset+len(second.Raw)] != second.Raw {
		t.Errorf("offset %d does not point at %q", second.Offset, second.Raw)
	}
}

func TestSegmentKind_String(t *testing.T) {
	if SegmentBare.String() != "bare" || SegmentTagged.String() != "tagged" {
		t.Errorf("unexpected names: %s %s", SegmentBare, SegmentTagged)
	}
	if SegmentKind(9).String() != "unknown(9)" {
		t.Errorf("unexpected name: %s", SegmentKind(9))
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
		ok   bool
	}{
		{"terminated", StrategyTerminated, true},
		{"", StrategyTerminated, true},
		{"COMPAT", StrategyCompat, true},
		{"legacy", StrategyCompat, true},
		{"bogus", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseStrategy(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseStrategy(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
