package store

import (
	"path/filepath"
	"testing"

	"orkio/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "console.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSlotRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if value, err := s.ReadSlot(types.DomainEndUser); err != nil || value != nil {
		t.Fatalf("empty slot = %q, %v", value, err)
	}
	if err := s.WriteSlot(types.DomainEndUser, []byte("token-1")); err != nil {
		t.Fatalf("WriteSlot: %v", err)
	}
	value, err := s.ReadSlot(types.DomainEndUser)
	if err != nil || string(value) != "token-1" {
		t.Fatalf("ReadSlot = %q, %v", value, err)
	}
	if value, _ := s.ReadSlot(types.DomainOperator); value != nil {
		t.Fatalf("operator slot should be empty, got %q", value)
	}
	if err := s.ClearSlot(types.DomainEndUser); err != nil {
		t.Fatalf("ClearSlot: %v", err)
	}
	if value, _ := s.ReadSlot(types.DomainEndUser); value != nil {
		t.Fatalf("cleared slot = %q", value)
	}
}

func TestSlotRejectsUnknownDomain(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.ReadSlot("bogus"); err == nil {
		t.Fatal("expected an error for an unknown domain")
	}
	if err := s.WriteSlot("bogus", []byte("x")); err == nil {
		t.Fatal("expected an error for an unknown domain")
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := openTestStore(t)

	state, err := s.ReadState()
	if err != nil {
		t.Fatalf("ReadState: %v", err)
	}
	if state.ActiveConversationID != 0 {
		t.Fatalf("fresh state = %+v", state)
	}

	want := &types.ConsoleState{ActiveConversationID: 42, ActiveAgentID: 6, ShowHandoffs: true}
	if err := s.WriteState(want); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	got, err := s.ReadState()
	if err != nil {
		t.Fatalf("ReadState: %v", err)
	}
	if *got != *want {
		t.Fatalf("state = %+v, want %+v", got, want)
	}
}
