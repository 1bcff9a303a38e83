package types

import "fmt"

// Conversation is one thread with a single owning agent. Title is
// nullable server-side; DisplayTitle supplies the fallback.
type Conversation struct {
	ID        int64  `json:"id"`
	AgentID   int64  `json:"agent_id"`
	AgentName string `json:"agent_name,omitempty"`
	Title     string `json:"title,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (c Conversation) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return fmt.Sprintf("Conversa %d", c.ID)
}
