package stream

import (
	"crypto/sha256"
	"encoding/hex"
	"hash/crc32"

	"github.com/Neumenon/hieroglyph/glyph"
)

// crcTable is the IEEE CRC-32 table.
var crcTable = crc32.MakeTable(crc32.IEEE)

// ComputeCRC computes CRC-32 IEEE of the given bytes.
func ComputeCRC(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// VerifyCRC verifies that the CRC matches.
func VerifyCRC(data []byte, expected uint32) bool {
	return ComputeCRC(data) == expected
}

// PlaintextDigest computes sha256(glyph.Normalize(text)).
//
// Decode always yields lowercase text, so the digest is taken over the
// normalized form on both sides.
func PlaintextDigest(text string) [32]byte {
	return sha256.Sum256([]byte(glyph.Normalize(text)))
}

// VerifyPlaintext checks a decoded plaintext against the frame's digest.
// Frames without a digest always verify.
func VerifyPlaintext(f *Frame, text string) error {
	if f.Base == nil {
		return nil
	}
	got := PlaintextDigest(text)
	if got != *f.Base {
		return &BaseMismatchError{Expected: *f.Base, Got: got}
	}
	return nil
}

// HashToHex converts a 32-byte hash to lowercase hex string.
func HashToHex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}

// HexToHash parses a 64-character hex string to a 32-byte hash.
func HexToHash(s string) ([32]byte, bool) {
	var h [32]byte
	if len(s) != 64 {
		return h, false
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, false
	}
	return h, true
}
