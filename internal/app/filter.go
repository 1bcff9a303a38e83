package app

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"orkio/internal/types"
)

type conversationSource []types.Conversation

func (s conversationSource) String(i int) string {
	return s[i].DisplayTitle() + " " + s[i].AgentName
}

func (s conversationSource) Len() int {
	return len(s)
}

// filterConversations narrows the sidebar list with a fuzzy match over
// title and agent name. An empty query keeps the original order.
func filterConversations(conversations []types.Conversation, query string) []types.Conversation {
	query = strings.TrimSpace(query)
	if query == "" {
		return conversations
	}
	matches := fuzzy.FindFrom(query, conversationSource(conversations))
	out := make([]types.Conversation, 0, len(matches))
	for _, match := range matches {
		out = append(out, conversations[match.Index])
	}
	return out
}
