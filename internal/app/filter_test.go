package app

import (
	"testing"

	"orkio/internal/types"
)

func TestFilterConversations(t *testing.T) {
	conversations := []types.Conversation{
		{ID: 1, Title: "Quarterly budget", AgentName: "Finance"},
		{ID: 2, Title: "Onboarding", AgentName: "HR"},
		{ID: 3, AgentName: "Finance"},
	}

	if got := filterConversations(conversations, ""); len(got) != 3 {
		t.Fatalf("empty query narrowed the list: %v", got)
	}
	got := filterConversations(conversations, "budget")
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("budget filter = %+v", got)
	}
	// The untitled conversation matches through its fallback title.
	got = filterConversations(conversations, "Conversa 3")
	if len(got) == 0 || got[0].ID != 3 {
		t.Fatalf("fallback title filter = %+v", got)
	}
}
