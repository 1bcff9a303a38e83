package types

type StreamEventKind int

const (
	// StreamDelta carries one partial text fragment of the answer.
	StreamDelta StreamEventKind = iota
	// StreamDone terminates the stream; no events follow it.
	StreamDone
	// StreamError terminates the stream with a transport or decode cause.
	StreamError
)

// RAGSource is one retrieval citation attached to a Done event.
type RAGSource struct {
	DocumentID    int64  `json:"document_id"`
	DocumentTitle string `json:"document_title"`
}

// StreamEvent is one decoded record of a streamed answer. A stream is
// zero or more Delta events followed by exactly one terminal event.
type StreamEvent struct {
	Kind    StreamEventKind
	Delta   string
	Sources []RAGSource
	Err     error
}

// Terminal reports whether no further events may follow this one.
func (e StreamEvent) Terminal() bool {
	return e.Kind != StreamDelta
}
