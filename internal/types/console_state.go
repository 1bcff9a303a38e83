package types

// ConsoleState is the persisted UI state restored on the next launch.
type ConsoleState struct {
	ActiveConversationID int64 `json:"active_conversation_id,omitempty"`
	ActiveAgentID        int64 `json:"active_agent_id,omitempty"`
	ShowHandoffs         bool  `json:"show_handoffs,omitempty"`
}
