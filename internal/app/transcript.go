package app

import (
	"strings"

	"orkio/internal/types"
)

// Transcript reconciles the visible message list of one conversation.
// It layers optimistic local entries and the live streaming placeholder
// over the server-confirmed history; a reload replaces everything, so
// the optimistic and confirmed copy of a message are never shown
// together.
type Transcript struct {
	messages         []types.Message
	nextOptimisticID int64
	streaming        bool
	streamAgent      string
	streamText       strings.Builder
}

func NewTranscript() *Transcript {
	return &Transcript{nextOptimisticID: -1}
}

// SetMessages replaces the whole list with the server's authoritative
// history, dropping every optimistic entry.
func (t *Transcript) SetMessages(messages []types.Message) {
	t.messages = append([]types.Message{}, messages...)
}

// AppendOptimistic adds a locally synthesized user message with a
// negative placeholder ID. The attachment, when present, rides along so
// the upload stays visible until the confirmed copy arrives.
func (t *Transcript) AppendOptimistic(content string, attachment *types.Attachment) types.Message {
	message := types.Message{
		ID:         t.nextOptimisticID,
		Role:       types.RoleUser,
		Content:    content,
		Attachment: attachment,
	}
	t.nextOptimisticID--
	t.messages = append(t.messages, message)
	return message
}

// BeginPlaceholder opens the streaming assistant bubble.
func (t *Transcript) BeginPlaceholder(agentName string) {
	t.streaming = true
	t.streamAgent = agentName
	t.streamText.Reset()
}

func (t *Transcript) AppendStreamingText(fragment string) {
	if !t.streaming {
		return
	}
	t.streamText.WriteString(fragment)
}

func (t *Transcript) StreamingActive() bool {
	return t.streaming
}

func (t *Transcript) StreamingText() string {
	return t.streamText.String()
}

func (t *Transcript) StreamingAgent() string {
	return t.streamAgent
}

// Commit closes the placeholder after a completed stream. The streamed
// text is discarded; the caller reloads the conversation so the
// persisted history becomes the source of truth.
func (t *Transcript) Commit() {
	t.streaming = false
	t.streamAgent = ""
	t.streamText.Reset()
}

// Discard closes the placeholder after a failed or cancelled stream.
// The optimistic user message stays so the user can retry.
func (t *Transcript) Discard() {
	t.streaming = false
	t.streamAgent = ""
	t.streamText.Reset()
}

// Visible returns the messages to render. Handoff notifications carry
// the system role and are hidden unless asked for.
func (t *Transcript) Visible(showHandoffs bool) []types.Message {
	if showHandoffs {
		return t.messages
	}
	out := make([]types.Message, 0, len(t.messages))
	for _, message := range t.messages {
		if message.Role == types.RoleSystem {
			continue
		}
		out = append(out, message)
	}
	return out
}

// LastAssistant returns the newest confirmed assistant message.
func (t *Transcript) LastAssistant() (types.Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == types.RoleAssistant {
			return t.messages[i], true
		}
	}
	return types.Message{}, false
}

func (t *Transcript) Len() int {
	return len(t.messages)
}
