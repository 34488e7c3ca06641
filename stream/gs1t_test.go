package stream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Neumenon/hieroglyph/glyph"
)

// ============================================================
// Writer Tests
// ============================================================

func TestWriter_MinimalFrame(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	err := w.WriteFrame(&Frame{
		Version: 1,
		SID:     0,
		Seq:     0,
		Kind:    KindCipher,
		Payload: []byte("𓀀⭐𓋴🌌"),
	})
	if err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	got := buf.String()
	want := "@frame{v=1 sid=0 seq=0 kind=cipher len=15}\n𓀀⭐𓋴🌌\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriter_WithCRC(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithCRC())

	if err := w.WritePlain(1, 5, "hello"); err != nil {
		t.Fatalf("WritePlain failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "crc=3610a686") {
		t.Errorf("expected crc=3610a686 in output: %s", got)
	}
}

func TestWriter_CipherWithDigest(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	wire, _ := glyph.Encode("Hello", "key")
	if err := w.WriteCipher(1, 10, wire, "Hello"); err != nil {
		t.Fatalf("WriteCipher failed: %v", err)
	}

	got := buf.String()
	digest := PlaintextDigest("hello")
	if !strings.Contains(got, "base=sha256:"+HashToHex(digest)) {
		t.Errorf("expected digest of normalized plaintext in output: %s", got)
	}
}

func TestWriter_FinalFlag(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WriteFinal(1, 100, KindPlain, []byte("bye")); err != nil {
		t.Fatalf("WriteFinal failed: %v", err)
	}
	if !strings.Contains(buf.String(), "final=true") {
		t.Errorf("expected final=true in output: %s", buf.String())
	}
}

func TestWriter_EmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithCRC())

	if err := w.WriteErr(1, 1, ""); err != nil {
		t.Fatalf("WriteErr failed: %v", err)
	}

	got := buf.String()
	want := "@frame{v=1 sid=1 seq=1 kind=err len=0}\n\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriter_CompressionThreshold(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithCompression(64))

	if err := w.WritePlain(1, 1, "short"); err != nil {
		t.Fatalf("WritePlain failed: %v", err)
	}
	if strings.Contains(buf.String(), "enc=") {
		t.Errorf("short payload should not be compressed: %s", buf.String())
	}

	buf.Reset()
	long := strings.Repeat("we come in peace ", 50)
	if err := w.WritePlain(1, 2, long); err != nil {
		t.Fatalf("WritePlain failed: %v", err)
	}
	if !strings.Contains(buf.String(), "enc=zstd") {
		t.Errorf("long payload should be compressed: %.80s", buf.String())
	}
	if buf.Len() >= len(long) {
		t.Errorf("compressed frame (%d bytes) not smaller than payload (%d)", buf.Len(), len(long))
	}
}

// ============================================================
// Reader Tests
// ============================================================

func TestReader_MinimalFrame(t *testing.T) {
	input := "@frame{v=1 sid=0 seq=0 kind=plain len=5}\nhello\n"
	r := NewReader(strings.NewReader(input))

	frame, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if frame.Kind != KindPlain {
		t.Errorf("Kind = %v, want plain", frame.Kind)
	}
	if string(frame.Payload) != "hello" {
		t.Errorf("Payload = %q", frame.Payload)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_CRCMismatch(t *testing.T) {
	input := "@frame{v=1 sid=0 seq=0 kind=plain len=5 crc=00000000}\nhello\n"

	_, err := NewReader(strings.NewReader(input)).Next()
	var crcErr *CRCMismatchError
	if !errors.As(err, &crcErr) {
		t.Fatalf("expected CRCMismatchError, got %v", err)
	}
	if crcErr.Got != ComputeCRC([]byte("hello")) {
		t.Errorf("Got = %08x", crcErr.Got)
	}

	frame, err := NewReader(strings.NewReader(input), WithoutCRCVerification()).Next()
	if err != nil {
		t.Fatalf("unverified read failed: %v", err)
	}
	if !frame.HasCRC() || frame.Flags&FlagHasCRC == 0 {
		t.Error("expected CRC to be recorded")
	}
}

func TestReader_PayloadWithSeparatorsAndNewlines(t *testing.T) {
	payload := "𓀀⭐𓋴🌌\n@frame{fake}\n𓁐⭐𓋴🌌"
	var buf bytes.Buffer
	if err := NewWriter(&buf, WithCRC()).WriteFrame(&Frame{Kind: KindCipher, Payload: []byte(payload)}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	frame, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if string(frame.Payload) != payload {
		t.Errorf("Payload = %q, want %q", frame.Payload, payload)
	}
}

func TestReader_NumericKind(t *testing.T) {
	input := "@frame{v=1 sid=0 seq=0 kind=99 len=0}\n\n"
	frame, err := NewReader(strings.NewReader(input)).Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if frame.Kind != FrameKind(99) {
		t.Errorf("Kind = %d, want 99", frame.Kind)
	}
	if frame.Kind.String() != "unknown(99)" {
		t.Errorf("String = %s", frame.Kind)
	}
}

func TestReader_BadHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no prefix", "frame{v=1}\n"},
		{"bad kind", "@frame{v=1 sid=0 seq=0 kind=nope len=0}\n"},
		{"bad crc", "@frame{v=1 sid=0 seq=0 kind=plain len=0 crc=xyz}\n"},
		{"bad enc", "@frame{v=1 sid=0 seq=0 kind=plain len=0 enc=gzip}\n"},
		{"bad version", "@frame{v=2 sid=0 seq=0 kind=plain len=0}\n"},
		{"no brace", "@frame{v=1 sid=0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input)).Next()
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestReader_PayloadTooLarge(t *testing.T) {
	input := "@frame{v=1 sid=0 seq=0 kind=plain len=100}\n" + strings.Repeat("x", 100) + "\n"
	_, err := NewReader(strings.NewReader(input), WithMaxPayload(10)).Next()
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

// ============================================================
// Roundtrip Tests
// ============================================================

func TestRoundtrip_CompressedCipher(t *testing.T) {
	text := strings.Repeat("the stars are right. ", 40)
	wire, err := glyph.Encode(text, "stellar")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, WithCRC(), WithCompression(256))
	if err := w.WriteCipher(7, 1, wire, text); err != nil {
		t.Fatalf("WriteCipher failed: %v", err)
	}
	if err := w.WriteFinal(7, 2, KindPlain, nil); err != nil {
		t.Fatalf("WriteFinal failed: %v", err)
	}

	frames, err := NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}

	f := frames[0]
	if !f.IsCompressed() || !f.HasBase() {
		t.Errorf("expected compressed frame with digest, flags=%02x", f.Flags)
	}
	if string(f.Payload) != wire {
		t.Fatal("payload did not survive compression")
	}

	decoded, err := glyph.Decode(string(f.Payload), "stellar")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if err := VerifyPlaintext(f, decoded); err != nil {
		t.Errorf("VerifyPlaintext failed: %v", err)
	}
	if !frames[1].IsFinal() {
		t.Error("expected final frame")
	}
}

func TestVerifyPlaintext_Mismatch(t *testing.T) {
	digest := PlaintextDigest("hello")
	f := &Frame{Kind: KindCipher, Base: &digest}

	if err := VerifyPlaintext(f, "HELLO"); err != nil {
		t.Errorf("case should not matter: %v", err)
	}
	var mismatch *BaseMismatchError
	if err := VerifyPlaintext(f, "help"); !errors.As(err, &mismatch) {
		t.Errorf("expected BaseMismatchError, got %v", err)
	}
	if err := VerifyPlaintext(&Frame{}, "anything"); err != nil {
		t.Errorf("frames without digest should verify: %v", err)
	}
}

func TestHash_RoundTrip(t *testing.T) {
	h := PlaintextDigest("round trip")
	back, ok := HexToHash(HashToHex(h))
	if !ok || back != h {
		t.Errorf("hex round trip failed")
	}
	if _, ok := HexToHash("abc"); ok {
		t.Error("short hex should fail")
	}
	if _, ok := HexToHash(strings.Repeat("zz", 32)); ok {
		t.Error("non-hex should fail")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []FrameKind{KindCipher, KindPlain, KindErr} {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%s) = %v, %v", k, got, ok)
		}
	}
	if _, ok := ParseKind("bogus"); ok {
		t.Error("expected failure for bogus kind")
	}
}
