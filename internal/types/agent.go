package types

// Agent is a configured AI persona that participates in conversations.
type Agent struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Provider     string  `json:"provider,omitempty"`
	Model        string  `json:"model,omitempty"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	UseRAG       bool    `json:"use_rag,omitempty"`
}
