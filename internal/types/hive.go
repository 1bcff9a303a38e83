package types

// RAGEvent is one recorded retrieval lookup, shown in the diagnostics
// panel alongside the conversation.
type RAGEvent struct {
	Query     string `json:"query"`
	HitCount  int    `json:"hit_count"`
	LatencyMS int64  `json:"latency_ms"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

// AgentDialog is one agent-to-agent exchange behind a handoff.
type AgentDialog struct {
	FromAgentID   int64  `json:"from_agent_id"`
	ToAgentID     int64  `json:"to_agent_id"`
	FromAgentName string `json:"from_agent_name,omitempty"`
	ToAgentName   string `json:"to_agent_name,omitempty"`
	Message       string `json:"message"`
	CreatedAt     string `json:"created_at,omitempty"`
}
