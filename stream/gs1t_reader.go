package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const headerPrefix = "@frame{"

// Reader reads GS1-T (text) frames from an io.Reader.
type Reader struct {
	r          *bufio.Reader
	maxPayload int
	verifyCRC  bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the maximum payload size (default: 64 MiB). The limit
// applies both to the bytes on the wire and to the decompressed payload.
func WithMaxPayload(max int) ReaderOption {
	return func(r *Reader) {
		r.maxPayload = max
	}
}

// WithCRCVerification enables CRC verification (the default).
func WithCRCVerification() ReaderOption {
	return func(r *Reader) {
		r.verifyCRC = true
	}
}

// WithoutCRCVerification accepts frames whose CRC does not match.
func WithoutCRCVerification() ReaderOption {
	return func(r *Reader) {
		r.verifyCRC = false
	}
}

// NewReader creates a new GS1-T frame reader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:          bufio.NewReader(r),
		maxPayload: MaxPayloadSize,
		verifyCRC:  true,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next reads and returns the next frame.
// Returns io.EOF when no more frames are available.
func (r *Reader) Next() (*Frame, error) {
	line, err := r.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return nil, io.EOF
		}
		if !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w", err)
		}
	}

	frame, n, err := parseHeader(line)
	if err != nil {
		return nil, err
	}
	if n > r.maxPayload {
		return nil, &ParseError{Reason: fmt.Sprintf("payload too large: %d > %d", n, r.maxPayload), Offset: -1}
	}

	if n > 0 {
		frame.Payload = make([]byte, n)
		if _, err := io.ReadFull(r.r, frame.Payload); err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
	}

	// The trailing newline is optional at EOF.
	if b, err := r.r.ReadByte(); err == nil && b != '\n' {
		_ = r.r.UnreadByte()
	}

	// CRC covers the payload as transmitted.
	if r.verifyCRC && frame.CRC != nil {
		if got := ComputeCRC(frame.Payload); got != *frame.CRC {
			return nil, &CRCMismatchError{Expected: *frame.CRC, Got: got}
		}
	}

	if frame.IsCompressed() && len(frame.Payload) > 0 {
		plain, err := decompress(frame.Payload, r.maxPayload)
		if err != nil {
			return nil, err
		}
		frame.Payload = plain
	}
	return frame, nil
}

// ReadAll reads all frames until EOF.
func (r *Reader) ReadAll() ([]*Frame, error) {
	var frames []*Frame
	for {
		frame, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
}

// parseHeader parses an @frame{...} line and returns the frame with the
// announced payload length.
func parseHeader(line string) (*Frame, int, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, headerPrefix) {
		return nil, 0, &ParseError{Reason: "expected " + headerPrefix, Offset: 0}
	}
	end := strings.LastIndexByte(line, '}')
	if end < len(headerPrefix) {
		return nil, 0, &ParseError{Reason: "missing closing }", Offset: len(line)}
	}

	frame := &Frame{Version: Version}
	n := 0

	fields := strings.FieldsFunc(line[len(headerPrefix):end], func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	for _, field := range fields {
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		if err := frame.setField(key, val, &n); err != nil {
			return nil, 0, err
		}
	}
	return frame, n, nil
}

// setField applies one header field. Unknown keys are ignored.
func (f *Frame) setField(key, val string, n *int) error {
	invalid := func(what string) error {
		return &ParseError{Reason: "invalid " + what + ": " + val, Offset: -1}
	}

	switch key {
	case "v":
		v, err := strconv.ParseUint(val, 10, 8)
		if err != nil {
			return invalid("version")
		}
		if uint8(v) != Version {
			return &ParseError{Reason: "unsupported version " + val, Offset: -1}
		}
		f.Version = uint8(v)

	case "sid":
		sid, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return invalid("sid")
		}
		f.SID = sid

	case "seq":
		seq, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return invalid("seq")
		}
		f.Seq = seq

	case "kind":
		kind, ok := ParseKind(val)
		if !ok {
			return invalid("kind")
		}
		f.Kind = kind

	case "len":
		l, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return invalid("len")
		}
		*n = int(l)

	case "crc":
		crc, err := strconv.ParseUint(strings.TrimPrefix(val, "crc32:"), 16, 32)
		if err != nil || len(strings.TrimPrefix(val, "crc32:")) != 8 {
			return invalid("crc")
		}
		c := uint32(crc)
		f.CRC = &c
		f.Flags |= FlagHasCRC

	case "base":
		base, ok := HexToHash(strings.TrimPrefix(val, "sha256:"))
		if !ok {
			return invalid("base")
		}
		f.Base = &base
		f.Flags |= FlagHasBase

	case "enc":
		if val != encodingZstd {
			return &ParseError{Reason: "unsupported enc: " + val, Offset: -1}
		}
		f.Flags |= FlagCompressed

	case "final":
		f.Final = val == "true" || val == "1"
		if f.Final {
			f.Flags |= FlagFinal
		}

	case "flags":
		if flags, err := strconv.ParseUint(val, 16, 8); err == nil {
			f.Flags |= Flags(flags)
		}
	}
	return nil
}
