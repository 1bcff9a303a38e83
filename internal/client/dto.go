package client

import "orkio/internal/types"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
	TenantID    int64  `json:"tenant_id,omitempty"`
	Role        string `json:"role,omitempty"`
	Email       string `json:"email,omitempty"`
}

type CreateConversationRequest struct {
	AgentID int64  `json:"agent_id"`
	Title   string `json:"title,omitempty"`
}

type RenameConversationRequest struct {
	Title string `json:"title"`
}

// StreamRequest opens one streamed answer. UseRAG overrides the agent's
// own retrieval setting only when non-nil.
type StreamRequest struct {
	ConversationID int64  `json:"conversation_id"`
	AgentID        int64  `json:"agent_id"`
	Message        string `json:"message"`
	UseRAG         *bool  `json:"use_rag,omitempty"`
}

type AgentSendRequest struct {
	FromAgentID int64  `json:"from_agent_id"`
	ToAgentID   int64  `json:"to_agent_id"`
	Message     string `json:"message"`
}

type AgentSendResponse struct {
	Reply  string `json:"reply,omitempty"`
	Status string `json:"status,omitempty"`
}

type searchResponse struct {
	Results []types.RetrievalHit `json:"results"`
}
