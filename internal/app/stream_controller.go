package app

import (
	"errors"

	"orkio/internal/types"
)

type StreamPhase int

const (
	PhaseIdle StreamPhase = iota
	PhaseOpening
	PhaseStreaming
	PhaseCompleted
	PhaseFailed
	PhaseCancelled
)

// ErrStreamActive is returned when a send arrives while a stream is
// already open. Sends are rejected, never queued.
var ErrStreamActive = errors.New("a response is already streaming")

type StreamCallbacks struct {
	OnDelta func(fragment string)
	OnDone  func(sources []types.RAGSource)
	OnError func(err error)
}

// StreamController drives one streamed answer at a time. Every begin
// bumps a generation counter and all transport results carry the
// generation they belong to; events from a cancelled or superseded
// generation are dropped without invoking callbacks. All methods are
// called from the single update loop, never concurrently.
type StreamController struct {
	phase          StreamPhase
	gen            int
	conversationID int64
	cancel         func()
	cb             StreamCallbacks
}

func NewStreamController() *StreamController {
	return &StreamController{phase: PhaseIdle}
}

func (s *StreamController) Phase() StreamPhase {
	return s.phase
}

func (s *StreamController) Generation() int {
	return s.gen
}

func (s *StreamController) ConversationID() int64 {
	return s.conversationID
}

// Active reports whether a stream is open or in the middle of opening.
func (s *StreamController) Active() bool {
	return s.phase == PhaseOpening || s.phase == PhaseStreaming
}

// Begin reserves the controller for a new stream and returns its
// generation. The transport open happens elsewhere; its result must be
// delivered back through Attach or Fail with the same generation.
func (s *StreamController) Begin(conversationID int64, cb StreamCallbacks) (int, error) {
	if s.Active() {
		return 0, ErrStreamActive
	}
	s.gen++
	s.phase = PhaseOpening
	s.conversationID = conversationID
	s.cancel = nil
	s.cb = cb
	return s.gen, nil
}

// Attach hands the opened transport to the controller. A stale
// generation's transport is aborted on the spot.
func (s *StreamController) Attach(gen int, cancel func()) bool {
	if gen != s.gen || s.phase != PhaseOpening {
		if cancel != nil {
			cancel()
		}
		return false
	}
	s.cancel = cancel
	s.phase = PhaseStreaming
	return true
}

// Fail reports that the transport open or the stream itself failed.
func (s *StreamController) Fail(gen int, err error) {
	if gen != s.gen || !s.Active() {
		return
	}
	s.phase = PhaseFailed
	s.abort()
	if s.cb.OnError != nil {
		s.cb.OnError(err)
	}
}

// Consume applies one decoded event. ok=false means the event channel
// closed; a close without a preceding terminal event is a failure.
func (s *StreamController) Consume(gen int, event types.StreamEvent, ok bool) {
	if gen != s.gen || s.phase != PhaseStreaming {
		return
	}
	if !ok {
		s.phase = PhaseFailed
		s.abort()
		if s.cb.OnError != nil {
			s.cb.OnError(errors.New("stream closed without a terminal event"))
		}
		return
	}
	switch event.Kind {
	case types.StreamDelta:
		if s.cb.OnDelta != nil {
			s.cb.OnDelta(event.Delta)
		}
	case types.StreamDone:
		s.phase = PhaseCompleted
		s.abort()
		if s.cb.OnDone != nil {
			s.cb.OnDone(event.Sources)
		}
	case types.StreamError:
		s.phase = PhaseFailed
		s.abort()
		if s.cb.OnError != nil {
			s.cb.OnError(event.Err)
		}
	}
}

// Cancel aborts the active stream. The generation bump fences out every
// in-flight event so no callback fires afterwards, even for events
// already queued for delivery.
func (s *StreamController) Cancel() bool {
	if !s.Active() {
		return false
	}
	s.phase = PhaseCancelled
	s.gen++
	s.abort()
	s.cb = StreamCallbacks{}
	return true
}

func (s *StreamController) abort() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
