// Package glyph implements the hieroglyph codec, a keyed symbol-substitution
// transform over a fixed alphabet.
//
// The codec is NOT encryption. It is a reversible substitution plus a tag
// derived from the key, and anyone holding the alphabet can read a message.
//
// # Alphabet
//
// Supported characters are a-z, 0-9 and the punctuation set " !?.,". Each maps
// to one Egyptian hieroglyph (U+13000 block). Input is lowercased before
// lookup, so "A" and "a" encode identically.
//
// # Wire Format
//
// A wire string is a sequence of segments, each terminated by the separator:
//
//	tagged:  <plainSymbol>⭐<keySymbol>🌌
//	bare:    <symbolOrRawChar>🌌
//
// Reserved tokens:
//
//	marker            ⭐  U+2B50
//	separator         🌌  U+1F30C
//	defaultKeySymbol  𓋹  U+132F9 (key character with no symbol)
//
// Segment boundaries are found only by splitting on the separator.
//
// # Strategies
//
// StrategyTerminated (default) terminates every segment. StrategyCompat
// reproduces the legacy output where pass-through characters carry no
// separator; such output can glue a raw character to the next tagged segment,
// and that segment is then lost on decode.
//
// # Example
//
//	wire, err := glyph.Encode("hi", "ra")
//	// wire == "𓈖⭐𓒐🌌𓉔⭐𓀀🌌"
//	text, err := glyph.Decode(wire, "ra")
//	// text == "hi"
//
// # Error Tolerance
//
// Decode never fails on malformed input. Segments that do not resolve are
// dropped; DecodeReport lists them. An empty key is the only hard error
// (ErrEmptyKey).
package glyph
