package stream

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Encoding name carried in the enc= header field.
const encodingZstd = "zstd"

// EncodeAll/DecodeAll are safe for concurrent use, so one coder pair serves
// every Writer and Reader.
var (
	coderOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	coderErr  error
)

func coders() (*zstd.Encoder, *zstd.Decoder, error) {
	coderOnce.Do(func() {
		encoder, coderErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if coderErr != nil {
			return
		}
		decoder, coderErr = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(0),
			zstd.WithDecoderMaxMemory(MaxPayloadSize),
		)
	})
	return encoder, decoder, coderErr
}

// compress returns the zstd frame for payload.
func compress(payload []byte) ([]byte, error) {
	enc, _, err := coders()
	if err != nil {
		return nil, fmt.Errorf("zstd init: %w", err)
	}
	return enc.EncodeAll(payload, make([]byte, 0, len(payload)/2)), nil
}

// decompress inflates a zstd payload, refusing results larger than max.
func decompress(payload []byte, max int) ([]byte, error) {
	_, dec, err := coders()
	if err != nil {
		return nil, fmt.Errorf("zstd init: %w", err)
	}
	out, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	if len(out) > max {
		return nil, &ParseError{Reason: fmt.Sprintf("decompressed payload too large: %d > %d", len(out), max), Offset: -1}
	}
	return out, nil
}
