// Package config loads hieroglyph settings from YAML or TOML files and
// HIEROGLYPH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Neumenon/hieroglyph/glyph"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "HIEROGLYPH_"

// Config holds all hieroglyph configuration.
type Config struct {
	Codec   CodecConfig   `yaml:"codec" toml:"codec" envPrefix:"CODEC_"`
	Tokens  TokensConfig  `yaml:"tokens" toml:"tokens" envPrefix:"TOKENS_"`
	Stream  StreamConfig  `yaml:"stream" toml:"stream" envPrefix:"STREAM_"`
	Session SessionConfig `yaml:"session" toml:"session" envPrefix:"SESSION_"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" envPrefix:"LOG_"`

	// Symbols adds or replaces alphabet entries: single character -> symbol.
	Symbols map[string]string `yaml:"symbols,omitempty" toml:"symbols,omitempty"`
}

// CodecConfig configures encode/decode behavior.
type CodecConfig struct {
	Strategy  string `yaml:"strategy" toml:"strategy" env:"STRATEGY"` // terminated, compat
	VerifyKey bool   `yaml:"verify_key" toml:"verify_key" env:"VERIFY_KEY"`
}

// TokensConfig overrides the reserved wire tokens. Empty fields keep the defaults.
type TokensConfig struct {
	Marker           string `yaml:"marker,omitempty" toml:"marker,omitempty" env:"MARKER"`
	Separator        string `yaml:"separator,omitempty" toml:"separator,omitempty" env:"SEPARATOR"`
	DefaultKeySymbol string `yaml:"default_key_symbol,omitempty" toml:"default_key_symbol,omitempty" env:"DEFAULT_KEY_SYMBOL"`
}

// StreamConfig configures GS1-T framing.
type StreamConfig struct {
	CRC         bool `yaml:"crc" toml:"crc" env:"CRC"`
	CompressMin int  `yaml:"compress_min" toml:"compress_min" env:"COMPRESS_MIN"` // 0 disables compression
	MaxPayload  int  `yaml:"max_payload" toml:"max_payload" env:"MAX_PAYLOAD"`
}

// SessionConfig configures encrypt/decrypt sessions.
type SessionConfig struct {
	MaxMessage int `yaml:"max_message" toml:"max_message" env:"MAX_MESSAGE"` // 0 disables the limit
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"LEVEL"`    // debug, info, warn, error
	Format string `yaml:"format" toml:"format" env:"FORMAT"` // json, console
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Codec: CodecConfig{
			Strategy: glyph.StrategyTerminated.String(),
		},
		Stream: StreamConfig{
			CRC:         true,
			CompressMin: 4096,
			MaxPayload:  64 * 1024 * 1024,
		},
		Session: SessionConfig{
			MaxMessage: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a config file on top of the defaults. The format follows the
// extension: .toml is TOML, anything else YAML. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := cfg.decode(path, data); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	if isTOML(path) {
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse toml config: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse yaml config: %w", err)
	}
	return nil
}

// Save writes the config to path, choosing the format by extension.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	var data []byte
	if isTOML(path) {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(c); err != nil {
			return fmt.Errorf("encode toml config: %w", err)
		}
		data = []byte(sb.String())
	} else {
		var err error
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode yaml config: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overlays HIEROGLYPH_* environment variables. Unset variables
// leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values that can be checked without building the alphabet.
func (c *Config) Validate() error {
	if _, ok := glyph.ParseStrategy(c.Codec.Strategy); !ok {
		return fmt.Errorf("codec.strategy: unknown strategy %q", c.Codec.Strategy)
	}
	for k := range c.Symbols {
		if utf8.RuneCountInString(k) != 1 {
			return fmt.Errorf("symbols: key %q must be a single character", k)
		}
	}
	if c.Stream.CompressMin < 0 {
		return fmt.Errorf("stream.compress_min: must be >= 0, got %d", c.Stream.CompressMin)
	}
	if c.Stream.MaxPayload <= 0 {
		return fmt.Errorf("stream.max_payload: must be > 0, got %d", c.Stream.MaxPayload)
	}
	if c.Session.MaxMessage < 0 {
		return fmt.Errorf("session.max_message: must be >= 0, got %d", c.Session.MaxMessage)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	return nil
}

// GlyphTokens returns the reserved tokens with overrides applied.
func (c *Config) GlyphTokens() glyph.Tokens {
	tok := glyph.DefaultTokens()
	if c.Tokens.Marker != "" {
		tok.Marker = c.Tokens.Marker
	}
	if c.Tokens.Separator != "" {
		tok.Separator = c.Tokens.Separator
	}
	if c.Tokens.DefaultKeySymbol != "" {
		tok.DefaultKeySymbol = c.Tokens.DefaultKeySymbol
	}
	return tok
}

// BuildAlphabet builds the configured alphabet. Without token or symbol
// overrides it is glyph.Hieroglyphs itself.
func (c *Config) BuildAlphabet() (*glyph.Alphabet, error) {
	tok := c.GlyphTokens()
	if tok == glyph.DefaultTokens() && len(c.Symbols) == 0 {
		return glyph.Hieroglyphs, nil
	}

	table := glyph.HieroglyphTable()
	for k, sym := range c.Symbols {
		r, _ := utf8.DecodeRuneInString(k)
		table[r] = sym
	}
	a, err := glyph.NewAlphabet(table, tok)
	if err != nil {
		return nil, fmt.Errorf("build alphabet: %w", err)
	}
	return a, nil
}

// CodecOptions returns the configured codec options.
func (c *Config) CodecOptions() glyph.Options {
	strategy, _ := glyph.ParseStrategy(c.Codec.Strategy)
	return glyph.Options{Strategy: strategy, VerifyKey: c.Codec.VerifyKey}
}

// BuildCodec builds the configured codec.
func (c *Config) BuildCodec() (*glyph.Codec, error) {
	a, err := c.BuildAlphabet()
	if err != nil {
		return nil, err
	}
	return glyph.NewCodec(a, c.CodecOptions()), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
