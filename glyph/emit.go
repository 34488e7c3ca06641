package glyph

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Strategy selects how pass-through characters are terminated.
type Strategy uint8

const (
	// StrategyTerminated ends every segment with the separator.
	StrategyTerminated Strategy = iota
	// StrategyCompat emits pass-through characters without a separator,
	// byte-for-byte like the legacy encoder.
	StrategyCompat
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyTerminated:
		return "terminated"
	case StrategyCompat:
		return "compat"
	default:
		return fmt.Sprintf("strategy(%d)", s)
	}
}

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, bool) {
	switch strings.ToLower(s) {
	case "terminated", "":
		return StrategyTerminated, true
	case "compat", "legacy":
		return StrategyCompat, true
	default:
		return 0, false
	}
}

// Options configures a Codec.
type Options struct {
	// Strategy for pass-through segments (default: StrategyTerminated)
	Strategy Strategy

	// VerifyKey drops tagged segments whose key symbol does not match the
	// key given to Decode.
	VerifyKey bool
}

// DefaultOptions returns the default codec options.
func DefaultOptions() Options {
	return Options{Strategy: StrategyTerminated}
}

// CompatOptions returns options that reproduce the legacy wire output and
// decode behavior.
func CompatOptions() Options {
	return Options{Strategy: StrategyCompat}
}

// Codec encodes and decodes wire strings over one alphabet.
// A Codec holds no mutable state and is safe for concurrent use.
type Codec struct {
	alphabet *Alphabet
	opts     Options
}

// NewCodec creates a codec. A nil alphabet selects Hieroglyphs.
func NewCodec(alphabet *Alphabet, opts Options) *Codec {
	if alphabet == nil {
		alphabet = Hieroglyphs
	}
	return &Codec{alphabet: alphabet, opts: opts}
}

// Alphabet returns the codec's alphabet.
func (c *Codec) Alphabet() *Alphabet {
	return c.alphabet
}

// Options returns the codec's options.
func (c *Codec) Options() Options {
	return c.opts
}

var defaultCodec = NewCodec(Hieroglyphs, DefaultOptions())

// Encode encodes text with the default codec.
func Encode(text, key string) (string, error) {
	return defaultCodec.Encode(text, key)
}

// Encode maps text into a wire string, tagging each mapped character with
// the symbol of the key character at the current key index. The key index
// advances only on mapped characters. Characters outside the alphabet pass
// through unchanged.
//
// An empty key returns "" and ErrEmptyKey. Empty text returns "".
func (c *Codec) Encode(text, key string) (string, error) {
	keyRunes := []rune(Normalize(key))
	if len(keyRunes) == 0 {
		return "", ErrEmptyKey
	}
	if text == "" {
		return "", nil
	}

	tok := c.alphabet.tokens
	var b strings.Builder
	b.Grow(len(text) * 12)

	keyIndex := 0
	for _, r := range Normalize(text) {
		if sym, ok := c.alphabet.forward[r]; ok {
			b.WriteString(sym)
			b.WriteString(tok.Marker)
			b.WriteString(c.alphabet.keySymbol(keyRunes[keyIndex%len(keyRunes)]))
			b.WriteString(tok.Separator)
			keyIndex++
			continue
		}

		// Pass-through
		b.WriteRune(r)
		if c.opts.Strategy == StrategyTerminated {
			b.WriteString(tok.Separator)
		}
	}
	return b.String(), nil
}

// Normalize lowercases s with full Unicode case mapping.
func Normalize(s string) string {
	// A Caser carries state, so each call gets its own.
	return cases.Lower(language.Und).String(s)
}
