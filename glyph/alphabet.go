package glyph

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
)

// hieroglyphs is the default character table.
var hieroglyphs = map[rune]string{
	'a': "𓀀", // U+13000
	'b': "𓁐", // U+13050
	'c': "𓂀", // U+13080
	'd': "𓃠", // U+130E0
	'e': "𓅓", // U+13153
	'f': "𓆣", // U+131A3
	'g': "𓇋", // U+131CB
	'h': "𓈖", // U+13216
	'i': "𓉔", // U+13254
	'j': "𓊃", // U+13283
	'k': "𓋴", // U+132F4
	'l': "𓌳", // U+13333
	'm': "𓍯", // U+1336F
	'n': "𓎛", // U+1339B
	'o': "𓏏", // U+133CF
	'p': "𓐍", // U+1340D
	'q': "𓑑", // U+13451
	'r': "𓒐", // U+13490
	's': "𓓂", // U+134C2
	't': "𓔎", // U+1350E
	'u': "𓕙", // U+13559
	'v': "𓖿", // U+135BF
	'w': "𓗛", // U+135DB
	'x': "𓘙", // U+13619
	'y': "𓙑", // U+13651
	'z': "𓚫", // U+136AB

	' ': "𓇌", // U+131CC
	'!': "𓊪", // U+132AA
	'?': "𓊨", // U+132A8
	'.': "𓊡", // U+132A1
	',': "𓊢", // U+132A2

	'0': "𓎆", // U+13386
	'1': "𓏺", // U+133FA
	'2': "𓏻", // U+133FB
	'3': "𓏼", // U+133FC
	'4': "𓏽", // U+133FD
	'5': "𓏾", // U+133FE
	'6': "𓏿", // U+133FF
	'7': "𓐀", // U+13400
	'8': "𓐁", // U+13401
	'9': "𓐂", // U+13402
}

// Hieroglyphs is the default alphabet. It is built once at init and never
// mutated; an invalid built-in table is a programming error and panics.
var Hieroglyphs = MustAlphabet(hieroglyphs, DefaultTokens())

// HieroglyphTable returns a copy of the default character table.
func HieroglyphTable() map[rune]string {
	return maps.Clone(hieroglyphs)
}

// Alphabet is an immutable bidirectional mapping between plaintext characters
// and symbol tokens, together with the reserved tokens of its wire format.
// It is safe for concurrent use.
type Alphabet struct {
	forward map[rune]string
	inverse map[string]rune
	chars   []rune
	tokens  Tokens
}

// NewAlphabet builds an alphabet from a character table and reserved tokens.
//
// The table must be a bijection: every symbol non-empty and used once, no
// symbol equal to or containing a reserved token, no symbol ending with the
// start of the marker or separator, and every character already
// lowercase (lookups normalize to lowercase, so an upper-case entry would be
// unreachable).
func NewAlphabet(symbols map[rune]string, tokens Tokens) (*Alphabet, error) {
	if err := tokens.validate(); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", ErrInvalidAlphabet)
	}

	a := &Alphabet{
		forward: make(map[rune]string, len(symbols)),
		inverse: make(map[string]rune, len(symbols)),
		chars:   make([]rune, 0, len(symbols)),
		tokens:  tokens,
	}

	// Sorted walk so the reported conflict is deterministic.
	for _, r := range slices.Sorted(maps.Keys(symbols)) {
		sym := symbols[r]
		switch {
		case unicode.ToLower(r) != r:
			return nil, fmt.Errorf("%w: character %q is not lowercase", ErrInvalidAlphabet, r)
		case sym == "":
			return nil, fmt.Errorf("%w: character %q has an empty symbol", ErrInvalidAlphabet, r)
		case sym == tokens.DefaultKeySymbol:
			return nil, fmt.Errorf("%w: symbol %q of %q is the default key symbol", ErrInvalidAlphabet, sym, r)
		case tokens.structural(sym):
			return nil, fmt.Errorf("%w: symbol %q of %q contains a reserved token", ErrInvalidAlphabet, sym, r)
		}
		if err := tokens.checkJoin(fmt.Sprintf("symbol of %q", r), sym); err != nil {
			return nil, err
		}
		if prev, dup := a.inverse[sym]; dup {
			return nil, fmt.Errorf("%w: symbol %q shared by %q and %q", ErrInvalidAlphabet, sym, prev, r)
		}
		a.forward[r] = sym
		a.inverse[sym] = r
		a.chars = append(a.chars, r)
	}
	return a, nil
}

// MustAlphabet is like NewAlphabet but panics on error.
func MustAlphabet(symbols map[rune]string, tokens Tokens) *Alphabet {
	a, err := NewAlphabet(symbols, tokens)
	if err != nil {
		panic(err)
	}
	return a
}

// WithOverrides returns a new alphabet with some symbols replaced or added.
// The result is checked again for bijection.
func (a *Alphabet) WithOverrides(overrides map[rune]string) (*Alphabet, error) {
	table := maps.Clone(a.forward)
	maps.Copy(table, overrides)
	return NewAlphabet(table, a.tokens)
}

// WithTokens returns a new alphabet with the same table and other reserved tokens.
func (a *Alphabet) WithTokens(tokens Tokens) (*Alphabet, error) {
	return NewAlphabet(a.forward, tokens)
}

// SymbolFor returns the symbol for r. Lookup is case-insensitive.
func (a *Alphabet) SymbolFor(r rune) (string, bool) {
	sym, ok := a.forward[unicode.ToLower(r)]
	return sym, ok
}

// CharFor returns the character whose symbol is exactly sym.
func (a *Alphabet) CharFor(sym string) (rune, bool) {
	r, ok := a.inverse[sym]
	return r, ok
}

// Chars returns the supported characters in ascending order.
func (a *Alphabet) Chars() []rune {
	return slices.Clone(a.chars)
}

// Len returns the number of supported characters.
func (a *Alphabet) Len() int {
	return len(a.chars)
}

// Recoverable returns what a terminated decode of text with the right key
// yields: characters with a symbol are kept, a character that is itself a
// symbol becomes the character it stands for, everything else is dropped.
func (a *Alphabet) Recoverable(text string) string {
	var b strings.Builder
	for _, r := range Normalize(text) {
		if _, ok := a.forward[r]; ok {
			b.WriteRune(r)
			continue
		}
		// Passed through raw, then read back as a bare symbol.
		if c, ok := a.inverse[string(r)]; ok {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Tokens returns the reserved tokens of the alphabet's wire format.
func (a *Alphabet) Tokens() Tokens {
	return a.tokens
}

// keySymbol returns the symbol tagged onto a segment for key character r.
func (a *Alphabet) keySymbol(r rune) string {
	if sym, ok := a.forward[r]; ok {
		return sym
	}
	return a.tokens.DefaultKeySymbol
}
