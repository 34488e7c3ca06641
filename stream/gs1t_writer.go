package stream

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Writer writes GS1-T (text) frames to an io.Writer.
type Writer struct {
	w           io.Writer
	withCRC     bool // Whether to compute and include CRC
	compressMin int  // Compress payloads at least this long (0 = never)
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCRC makes the writer compute a CRC for each frame.
func WithCRC() WriterOption {
	return func(w *Writer) {
		w.withCRC = true
	}
}

// WithCompression compresses payloads of at least min bytes with zstd.
func WithCompression(min int) WriterOption {
	return func(w *Writer) {
		w.compressMin = min
	}
}

// NewWriter creates a new GS1-T frame writer.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	writer := &Writer{w: w}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// WriteFrame writes a single frame in GS1-T format.
//
// Format:
//
//	@frame{v=1 sid=N seq=N kind=K len=N [crc=X] [base=sha256:X] [enc=zstd] [final=true]}\n
//	<payload bytes>\n
//
// len and crc describe the payload as written, after compression.
func (w *Writer) WriteFrame(f *Frame) error {
	payload := f.Payload
	compressed := false
	if w.compressMin > 0 && len(payload) >= w.compressMin {
		packed, err := compress(payload)
		if err != nil {
			return err
		}
		payload = packed
		compressed = true
	}

	var header strings.Builder
	header.WriteString("@frame{")

	// Required fields
	header.WriteString("v=")
	if f.Version == 0 {
		header.WriteByte('1')
	} else {
		header.WriteString(strconv.Itoa(int(f.Version)))
	}

	header.WriteString(" sid=")
	header.WriteString(strconv.FormatUint(f.SID, 10))

	header.WriteString(" seq=")
	header.WriteString(strconv.FormatUint(f.Seq, 10))

	header.WriteString(" kind=")
	header.WriteString(f.Kind.String())

	header.WriteString(" len=")
	header.WriteString(strconv.Itoa(len(payload)))

	// A caller-supplied CRC describes the uncompressed payload, so it is
	// recomputed over the compressed bytes.
	crc := f.CRC
	if (crc == nil && w.withCRC && len(payload) > 0) || (crc != nil && compressed) {
		computed := ComputeCRC(payload)
		crc = &computed
	}
	if crc != nil {
		header.WriteString(" crc=")
		header.WriteString(fmt.Sprintf("%08x", *crc))
	}

	if f.Base != nil {
		header.WriteString(" base=sha256:")
		header.WriteString(HashToHex(*f.Base))
	}

	if compressed {
		header.WriteString(" enc=")
		header.WriteString(encodingZstd)
	}

	if f.IsFinal() {
		header.WriteString(" final=true")
	}

	header.WriteString("}\n")

	if _, err := io.WriteString(w.w, header.String()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if len(payload) > 0 {
		if _, err := w.w.Write(payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}

	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}

	return nil
}

// WriteCipher writes a cipher frame. A non-empty plaintext attaches its
// digest so the receiver can check its decode.
func (w *Writer) WriteCipher(sid, seq uint64, wire, plaintext string) error {
	f := &Frame{
		Version: Version,
		SID:     sid,
		Seq:     seq,
		Kind:    KindCipher,
		Payload: []byte(wire),
	}
	if plaintext != "" {
		digest := PlaintextDigest(plaintext)
		f.Base = &digest
	}
	return w.WriteFrame(f)
}

// WritePlain writes a plaintext frame.
func (w *Writer) WritePlain(sid, seq uint64, text string) error {
	return w.WriteFrame(&Frame{
		Version: Version,
		SID:     sid,
		Seq:     seq,
		Kind:    KindPlain,
		Payload: []byte(text),
	})
}

// WriteErr writes an error frame.
func (w *Writer) WriteErr(sid, seq uint64, msg string) error {
	return w.WriteFrame(&Frame{
		Version: Version,
		SID:     sid,
		Seq:     seq,
		Kind:    KindErr,
		Payload: []byte(msg),
	})
}

// WriteFinal writes a final frame for a stream.
func (w *Writer) WriteFinal(sid, seq uint64, kind FrameKind, payload []byte) error {
	return w.WriteFrame(&Frame{
		Version: Version,
		SID:     sid,
		Seq:     seq,
		Kind:    kind,
		Payload: payload,
		Final:   true,
	})
}
