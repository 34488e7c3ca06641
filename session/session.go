// Package session drives the codec through an encrypt/decrypt lifecycle.
//
// A Session holds the last message, ciphertext and plaintext together with
// the state machine position and the last failure, so renderers can take a
// consistent Snapshot at any time. Methods are safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Neumenon/hieroglyph/glyph"
)

// DefaultMaxMessage is the default message length limit in characters.
const DefaultMaxMessage = 500

var (
	// ErrMissingInput is returned when the message, ciphertext or key is empty.
	ErrMissingInput = errors.New("session: message and key are required")

	// ErrNothingDecoded is returned when decoding yields no characters.
	ErrNothingDecoded = errors.New("session: wrong key or corrupted input")

	// ErrMessageTooLong is returned when the message exceeds the limit.
	ErrMessageTooLong = errors.New("session: message too long")
)

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	ID         string
	State      State
	Message    string
	Ciphertext string
	Plaintext  string
	Err        string
	Dropped    int // Segments discarded by the last decode
}

// Option configures a Session.
type Option func(*Session)

// WithCodec sets the codec. The default is the terminated hieroglyph codec.
func WithCodec(c *glyph.Codec) Option {
	return func(s *Session) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxMessage limits message length in characters. Zero disables the limit.
func WithMaxMessage(n int) Option {
	return func(s *Session) {
		s.maxMessage = n
	}
}

// WithObserver registers a callback run after every state change, while the
// session lock is held. It must not call back into the session.
func WithObserver(fn func(from, to State, ev Event)) Option {
	return func(s *Session) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

// Session is one encrypt/decrypt workspace.
type Session struct {
	mu sync.Mutex

	id         string
	codec      *glyph.Codec
	logger     *zap.Logger
	maxMessage int
	observers  []func(from, to State, ev Event)

	state      State
	message    string
	ciphertext string
	plaintext  string
	lastErr    error
	dropped    int
}

// New creates an idle session.
func New(opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		codec:      glyph.NewCodec(nil, glyph.DefaultOptions()),
		logger:     zap.NewNop(),
		maxMessage: DefaultMaxMessage,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.id,
		State:      s.state,
		Message:    s.message,
		Ciphertext: s.ciphertext,
		Plaintext:  s.plaintext,
		Dropped:    s.dropped,
	}
	if s.lastErr != nil {
		snap.Err = s.lastErr.Error()
	}
	return snap
}

// Encrypt encodes message under key, stores the ciphertext and clears the
// previous plaintext.
func (s *Session) Encrypt(ctx context.Context, message, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fire(EventEncrypt); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", s.fail(err)
	}
	if message == "" || key == "" {
		return "", s.fail(ErrMissingInput)
	}
	if s.maxMessage > 0 {
		if n := utf8.RuneCountInString(message); n > s.maxMessage {
			return "", s.fail(fmt.Errorf("%w: %d characters, max %d", ErrMessageTooLong, n, s.maxMessage))
		}
	}

	wire, err := s.codec.Encode(message, key)
	if err != nil {
		return "", s.fail(err)
	}

	s.message = message
	s.ciphertext = wire
	s.plaintext = ""
	s.dropped = 0
	s.lastErr = nil
	if err := s.fire(EventSucceed); err != nil {
		return "", err
	}
	s.logger.Debug("encrypted",
		zap.Int("chars", utf8.RuneCountInString(message)),
		zap.Int("bytes", len(wire)))
	return wire, nil
}

// Decrypt decodes the stored ciphertext under key.
func (s *Session) Decrypt(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decrypt(ctx, s.ciphertext, key)
}

// DecryptText replaces the stored ciphertext with wire and decodes it.
func (s *Session) DecryptText(ctx context.Context, wire, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ciphertext = wire
	return s.decrypt(ctx, wire, key)
}

func (s *Session) decrypt(ctx context.Context, wire, key string) (string, error) {
	if err := s.fire(EventDecrypt); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", s.fail(err)
	}
	if wire == "" || key == "" {
		return "", s.fail(ErrMissingInput)
	}

	text, report, err := s.codec.DecodeReport(wire, key)
	if err != nil {
		return "", s.fail(err)
	}
	s.dropped = len(report.Dropped)
	if text == "" {
		return "", s.fail(ErrNothingDecoded)
	}

	s.plaintext = text
	s.lastErr = nil
	if err := s.fire(EventSucceed); err != nil {
		return "", err
	}
	s.logger.Debug("decrypted",
		zap.Int("segments", report.Segments),
		zap.Int("dropped", s.dropped))
	return text, nil
}

// Reset returns the session to idle and clears all text.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fire(EventReset); err != nil {
		return err
	}
	s.message = ""
	s.ciphertext = ""
	s.plaintext = ""
	s.lastErr = nil
	s.dropped = 0
	return nil
}

// fire applies ev. Caller holds mu.
func (s *Session) fire(ev Event) error {
	from := s.state
	to, err := Next(from, ev)
	if err != nil {
		s.logger.Warn("rejected event", zap.Stringer("state", from), zap.Stringer("event", ev))
		return err
	}
	s.state = to
	s.logger.Debug("transition",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Stringer("event", ev))
	for _, fn := range s.observers {
		fn(from, to, ev)
	}
	return nil
}

// fail records err and moves to Failed. Caller holds mu.
func (s *Session) fail(err error) error {
	s.lastErr = err
	s.plaintext = ""
	if ferr := s.fire(EventFail); ferr != nil {
		return errors.Join(err, ferr)
	}
	s.logger.Info("session failed", zap.Error(err))
	return err
}
