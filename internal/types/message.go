package types

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	// RoleSystem marks an agent-to-agent handoff notification.
	RoleSystem MessageRole = "system"
)

// Message is one transcript entry. Optimistic client-side entries carry
// a negative ID until the server-confirmed list replaces them.
type Message struct {
	ID         int64       `json:"id"`
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	CreatedAt  string      `json:"created_at,omitempty"`
	AgentName  string      `json:"agent_name,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Optimistic reports whether the message was synthesized locally and is
// still awaiting server confirmation.
func (m Message) Optimistic() bool {
	return m.ID < 0
}

// Attachment is the metadata returned by an upload call. It is bound to
// exactly one outgoing message.
type Attachment struct {
	FileID   int64  `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Status   string `json:"status,omitempty"`
}
