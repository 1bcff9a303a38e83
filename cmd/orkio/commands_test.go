package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"orkio/internal/client"
	"orkio/internal/config"
	"orkio/internal/logging"
	"orkio/internal/session"
	"orkio/internal/store"
	"orkio/internal/types"
)

func testEnvFactory(t *testing.T, baseURL string) envFactory {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "console.db")
	return func() (*consoleEnv, error) {
		db, err := store.Open(dbPath)
		if err != nil {
			return nil, err
		}
		if err := db.WriteSlot(types.DomainEndUser, []byte("tok-user")); err != nil {
			return nil, err
		}
		if err := db.WriteSlot(types.DomainOperator, []byte("tok-op")); err != nil {
			return nil, err
		}
		cfg := config.Config{API: config.APIConfig{BaseURL: baseURL}}
		creds := session.NewResolver(db)
		return &consoleEnv{
			cfg:    cfg,
			store:  db,
			creds:  creds,
			client: client.New(cfg, creds, logging.Nop()),
			log:    logging.Nop(),
		}, nil
	}
}

func TestBuildCommandsCoversUsage(t *testing.T) {
	commands := buildCommands(defaultCommandWiring(&bytes.Buffer{}, &bytes.Buffer{}))
	for _, name := range []string{"login", "logout", "agents", "chats", "ask", "search", "hive", "ui", "config"} {
		if _, ok := commands[name]; !ok {
			t.Errorf("command %q is not wired", name)
		}
	}
}

func TestAgentsCommandPrintsTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/u/agents" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":6,"name":"Finance","model":"gpt-4o","use_rag":true}]`)
	}))
	defer server.Close()

	stdout := &bytes.Buffer{}
	cmd := NewAgentsCommand(stdout, &bytes.Buffer{}, testEnvFactory(t, server.URL))
	if err := cmd.Run(nil); err != nil {
		t.Fatalf("agents: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "Finance") || !strings.Contains(out, "yes") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestChatsCommandRename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/u/conversations/42" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	stdout := &bytes.Buffer{}
	cmd := NewChatsCommand(stdout, &bytes.Buffer{}, testEnvFactory(t, server.URL))
	if err := cmd.Run([]string{"--rename", "42", "--title", "Planning"}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !strings.Contains(stdout.String(), "renamed") {
		t.Fatalf("output: %q", stdout.String())
	}
}

func TestChatsCommandRenameRequiresTitle(t *testing.T) {
	cmd := NewChatsCommand(&bytes.Buffer{}, &bytes.Buffer{}, testEnvFactory(t, "http://127.0.0.1:1"))
	if err := cmd.Run([]string{"--rename", "42"}); err == nil {
		t.Fatal("expected an error without --title")
	}
}

func TestAskCommandStreamsAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/u/chat/stream" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"delta\":\"O\"}\n")
		_, _ = io.WriteString(w, "data: {\"delta\":\" saldo\"}\n")
		_, _ = io.WriteString(w, "data: {\"done\":true,\"rag_sources\":[{\"document_id\":1,\"document_title\":\"Budget\"}]}\n")
	}))
	defer server.Close()

	stdout := &bytes.Buffer{}
	cmd := NewAskCommand(stdout, &bytes.Buffer{}, testEnvFactory(t, server.URL))
	if err := cmd.Run([]string{"--chat", "42", "--agent", "6", "Qual", "o", "saldo?"}); err != nil {
		t.Fatalf("ask: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "O saldo") {
		t.Fatalf("output: %q", out)
	}
	if !strings.Contains(out, "Budget") {
		t.Fatalf("citations missing: %q", out)
	}
}

func TestAskCommandRequiresMessage(t *testing.T) {
	cmd := NewAskCommand(&bytes.Buffer{}, &bytes.Buffer{}, testEnvFactory(t, "http://127.0.0.1:1"))
	if err := cmd.Run([]string{"--chat", "42"}); err == nil {
		t.Fatal("expected an error without a message")
	}
}

func TestSearchCommandPrintsHits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[{"chunk_id":1,"document_id":2,"filename":"plan.pdf","content":"revisão do orçamento anual","relevance_score":0.91,"distance":0.09}]}`)
	}))
	defer server.Close()

	stdout := &bytes.Buffer{}
	cmd := NewSearchCommand(stdout, &bytes.Buffer{}, testEnvFactory(t, server.URL))
	if err := cmd.Run([]string{"orçamento"}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(stdout.String(), "plan.pdf") {
		t.Fatalf("output: %q", stdout.String())
	}
}

func TestHiveCommandRequiresMode(t *testing.T) {
	cmd := NewHiveCommand(&bytes.Buffer{}, &bytes.Buffer{}, testEnvFactory(t, "http://127.0.0.1:1"))
	if err := cmd.Run(nil); err == nil {
		t.Fatal("expected an error without a mode flag")
	}
}
