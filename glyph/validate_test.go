package glyph

import (
	"testing"
)

func TestValidate_Clean(t *testing.T) {
	wire, _ := Encode("we come in peace!", "ufo")
	res := Validate(wire)
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
	if res.Segments != 17 {
		t.Errorf("expected 17 segments, got %d", res.Segments)
	}
}

func TestValidate_DefaultKeySymbol(t *testing.T) {
	wire, _ := Encode("a", "#")
	res := Validate(wire)
	if !res.Valid || len(res.Warnings) != 0 {
		t.Errorf("default key symbol should be accepted: %+v", res)
	}
}

func TestValidate_Findings(t *testing.T) {
	tests := []struct {
		name     string
		wire     string
		valid    bool
		code     string
		isError  bool
		segIndex int
	}{
		{"unknown bare", "𓀀⭐𓋴🌌zz🌌", false, CodeUnknownSymbol, true, 1},
		{"unknown plain", "Q⭐𓋴🌌", false, CodeUnknownSymbol, true, 0},
		{"unknown key symbol", "𓀀⭐Q🌌", true, CodeUnknownKeySymbol, false, 0},
		{"extra marker", "𓀀⭐𓋴⭐𓋴🌌", true, CodeExtraMarker, false, 0},
		{"unterminated", "𓀀⭐𓋴🌌𓁐⭐𓋴", true, CodeUnterminated, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.wire)
			if res.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v", res.Valid, tt.valid)
			}
			list := res.Warnings
			if tt.isError {
				list = res.Errors
			}
			if len(list) != 1 {
				t.Fatalf("expected one finding, got errors=%v warnings=%v", res.Errors, res.Warnings)
			}
			if list[0].Code != tt.code {
				t.Errorf("code = %s, want %s", list[0].Code, tt.code)
			}
			if list[0].Index != tt.segIndex {
				t.Errorf("index = %d, want %d", list[0].Index, tt.segIndex)
			}
		})
	}
}

func TestValidate_Empty(t *testing.T) {
	res := Validate("")
	if !res.Valid || res.Segments != 0 {
		t.Errorf("empty wire: %+v", res)
	}
}
