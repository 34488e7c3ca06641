package stream

import (
	"errors"
	"fmt"
	"sync"
)

// Cursor tracks per-SID sequence state for frame processing.
type Cursor struct {
	mu      sync.Mutex
	cursors map[uint64]*SIDState
}

// SIDState holds state for a single stream ID.
type SIDState struct {
	SID     uint64
	LastSeq uint64 // Last sequence number seen
	Seen    bool   // Whether any frame arrived for this SID
	Frames  int    // Frames accepted
	Final   bool   // Whether the stream has ended
}

// NewCursor creates a new cursor.
func NewCursor() *Cursor {
	return &Cursor{
		cursors: make(map[uint64]*SIDState),
	}
}

// State returns a copy of the state for a SID.
func (c *Cursor) State(sid uint64) (SIDState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.cursors[sid]
	if !ok {
		return SIDState{SID: sid}, false
	}
	return *st, true
}

// Observe checks a frame against the SID's sequence and records it.
// It returns a *SequenceError for duplicates and gaps, and an error for
// frames after a final frame. Rejected frames leave the state unchanged.
func (c *Cursor) Observe(frame *Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.cursors[frame.SID]
	if !ok {
		st = &SIDState{SID: frame.SID}
		c.cursors[frame.SID] = st
	}

	if st.Final {
		return fmt.Errorf("gs1: sid %d: frame seq %d after final", frame.SID, frame.Seq)
	}
	if st.Seen && frame.Seq != st.LastSeq+1 {
		return &SequenceError{SID: frame.SID, Expected: st.LastSeq + 1, Got: frame.Seq}
	}

	st.Seen = true
	st.LastSeq = frame.Seq
	st.Frames++
	if frame.IsFinal() {
		st.Final = true
	}
	return nil
}

// ============================================================
// Frame Handler - functional processing helper
// ============================================================

// FrameHandler dispatches frames to callbacks with sequence tracking.
type FrameHandler struct {
	Cursor *Cursor

	// Callbacks (optional)
	OnCipher func(frame *Frame) error
	OnPlain  func(frame *Frame) error
	OnErr    func(frame *Frame) error
	OnFinal  func(sid uint64) error

	// OnSeqGap is called for duplicate or out-of-order frames. Returning
	// nil skips the frame; nil OnSeqGap makes the gap an error.
	OnSeqGap func(err *SequenceError) error
}

// NewFrameHandler creates a handler with a fresh cursor.
func NewFrameHandler() *FrameHandler {
	return &FrameHandler{
		Cursor: NewCursor(),
	}
}

// Handle processes a frame and calls the matching callback.
func (h *FrameHandler) Handle(frame *Frame) error {
	if err := h.Cursor.Observe(frame); err != nil {
		var seqErr *SequenceError
		if !errors.As(err, &seqErr) || h.OnSeqGap == nil {
			return err
		}
		return h.OnSeqGap(seqErr)
	}

	var err error
	switch frame.Kind {
	case KindCipher:
		if h.OnCipher != nil {
			err = h.OnCipher(frame)
		}
	case KindPlain:
		if h.OnPlain != nil {
			err = h.OnPlain(frame)
		}
	case KindErr:
		if h.OnErr != nil {
			err = h.OnErr(frame)
		}
	}
	if err != nil {
		return err
	}

	if frame.IsFinal() && h.OnFinal != nil {
		return h.OnFinal(frame.SID)
	}
	return nil
}
