package app

import (
	"testing"

	"orkio/internal/types"
)

func TestTranscriptOptimisticIDs(t *testing.T) {
	tr := NewTranscript()
	first := tr.AppendOptimistic("one", nil)
	second := tr.AppendOptimistic("two", nil)
	if !first.Optimistic() || !second.Optimistic() {
		t.Fatalf("messages not optimistic: %+v %+v", first, second)
	}
	if first.ID == second.ID {
		t.Fatalf("optimistic ids collide: %d", first.ID)
	}
}

func TestTranscriptReloadDropsOptimistic(t *testing.T) {
	tr := NewTranscript()
	tr.AppendOptimistic("Qual o saldo de caixa?", nil)
	tr.BeginPlaceholder("Finance")
	tr.AppendStreamingText("O saldo")
	tr.Commit()

	tr.SetMessages([]types.Message{
		{ID: 10, Role: types.RoleUser, Content: "Qual o saldo de caixa?"},
		{ID: 11, Role: types.RoleAssistant, Content: "O saldo é R$ 10.000."},
	})

	if tr.StreamingActive() {
		t.Fatal("placeholder survived commit")
	}
	visible := tr.Visible(false)
	if len(visible) != 2 {
		t.Fatalf("visible = %d messages, want 2", len(visible))
	}
	seen := map[string]int{}
	for _, message := range visible {
		seen[string(message.Role)+"|"+message.Content]++
	}
	for key, count := range seen {
		if count > 1 {
			t.Fatalf("duplicate logical message %q after reload", key)
		}
	}
	for _, message := range visible {
		if message.Optimistic() {
			t.Fatalf("optimistic entry survived reload: %+v", message)
		}
	}
}

func TestTranscriptDiscardKeepsOptimistic(t *testing.T) {
	tr := NewTranscript()
	tr.AppendOptimistic("hello", nil)
	tr.BeginPlaceholder("Agent")
	tr.AppendStreamingText("partial")
	tr.Discard()

	if tr.StreamingActive() || tr.StreamingText() != "" {
		t.Fatal("placeholder survived discard")
	}
	visible := tr.Visible(false)
	if len(visible) != 1 || !visible[0].Optimistic() {
		t.Fatalf("visible = %+v", visible)
	}
}

func TestTranscriptStreamingAccumulates(t *testing.T) {
	tr := NewTranscript()
	tr.BeginPlaceholder("Agent")
	tr.AppendStreamingText("O")
	tr.AppendStreamingText(" saldo")
	if tr.StreamingText() != "O saldo" {
		t.Fatalf("streaming text = %q", tr.StreamingText())
	}
	// Fragments outside an open placeholder are ignored.
	tr.Commit()
	tr.AppendStreamingText("late")
	if tr.StreamingText() != "" {
		t.Fatalf("text after commit = %q", tr.StreamingText())
	}
}

func TestTranscriptHandoffFilter(t *testing.T) {
	tr := NewTranscript()
	tr.SetMessages([]types.Message{
		{ID: 1, Role: types.RoleUser, Content: "oi"},
		{ID: 2, Role: types.RoleSystem, Content: "transferred to Billing"},
		{ID: 3, Role: types.RoleAssistant, Content: "olá"},
	})

	hidden := tr.Visible(false)
	if len(hidden) != 2 {
		t.Fatalf("visible without handoffs = %d, want 2", len(hidden))
	}
	for _, message := range hidden {
		if message.Role == types.RoleSystem {
			t.Fatal("system message leaked through the filter")
		}
	}
	shown := tr.Visible(true)
	if len(shown) != 3 {
		t.Fatalf("visible with handoffs = %d, want 3", len(shown))
	}
}

func TestTranscriptAttachmentRidesOptimistic(t *testing.T) {
	tr := NewTranscript()
	attachment := &types.Attachment{FileID: 9, Filename: "notes.txt", Size: 5}
	message := tr.AppendOptimistic("see attached", attachment)
	if message.Attachment == nil || message.Attachment.FileID != 9 {
		t.Fatalf("attachment = %+v", message.Attachment)
	}
	next := tr.AppendOptimistic("and this one has none", nil)
	if next.Attachment != nil {
		t.Fatal("attachment leaked onto a later message")
	}
}

func TestTranscriptLastAssistant(t *testing.T) {
	tr := NewTranscript()
	if _, ok := tr.LastAssistant(); ok {
		t.Fatal("empty transcript returned an assistant message")
	}
	tr.SetMessages([]types.Message{
		{ID: 1, Role: types.RoleAssistant, Content: "first"},
		{ID: 2, Role: types.RoleUser, Content: "more"},
		{ID: 3, Role: types.RoleAssistant, Content: "latest"},
	})
	message, ok := tr.LastAssistant()
	if !ok || message.Content != "latest" {
		t.Fatalf("last assistant = %+v, %v", message, ok)
	}
}
