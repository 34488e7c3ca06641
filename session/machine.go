package session

import (
	"errors"
	"fmt"
)

// State is a session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateEncrypting
	StateDecrypting
	StateDone
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEncrypting:
		return "encrypting"
	case StateDecrypting:
		return "decrypting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event drives a state change.
type Event int

const (
	EventEncrypt Event = iota
	EventDecrypt
	EventSucceed
	EventFail
	EventReset
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventEncrypt:
		return "encrypt"
	case EventDecrypt:
		return "decrypt"
	case EventSucceed:
		return "succeed"
	case EventFail:
		return "fail"
	case EventReset:
		return "reset"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned when an event has no transition out of
// the current state.
var ErrInvalidTransition = errors.New("session: invalid transition")

// TransitionError records the rejected event.
type TransitionError struct {
	From  State
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("session: no transition from %s on %s", e.From, e.Event)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type transition struct {
	from  State
	event Event
	to    State
}

// transitions is scanned in order; the first match wins.
var transitions = []transition{
	{StateIdle, EventEncrypt, StateEncrypting},
	{StateIdle, EventDecrypt, StateDecrypting},

	{StateEncrypting, EventSucceed, StateDone},
	{StateEncrypting, EventFail, StateFailed},
	{StateDecrypting, EventSucceed, StateDone},
	{StateDecrypting, EventFail, StateFailed},

	{StateDone, EventEncrypt, StateEncrypting},
	{StateDone, EventDecrypt, StateDecrypting},
	{StateDone, EventReset, StateIdle},

	{StateFailed, EventEncrypt, StateEncrypting},
	{StateFailed, EventDecrypt, StateDecrypting},
	{StateFailed, EventReset, StateIdle},

	{StateIdle, EventReset, StateIdle},
}

// Next returns the target of ev from s.
func Next(s State, ev Event) (State, error) {
	for _, t := range transitions {
		if t.from == s && t.event == ev {
			return t.to, nil
		}
	}
	return s, &TransitionError{From: s, Event: ev}
}
