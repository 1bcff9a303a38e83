package client

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orkio/internal/config"
	"orkio/internal/logging"
	"orkio/internal/session"
	"orkio/internal/types"
)

func TestMessagesDecodesBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/u/conversations/42/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":1,"role":"user","content":"oi"},{"id":2,"role":"assistant","content":"olá"}]`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, map[types.CredentialDomain]string{types.DomainEndUser: "tok"})
	messages, err := c.Messages(t.Context(), 42)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 2 || messages[1].Role != types.RoleAssistant {
		t.Fatalf("messages = %+v", messages)
	}
}

func TestMessagesDecodesWrappedList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"messages":[{"id":7,"role":"system","content":"handoff"}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, map[types.CredentialDomain]string{types.DomainEndUser: "tok"})
	messages, err := c.Messages(t.Context(), 1)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Role != types.RoleSystem {
		t.Fatalf("messages = %+v", messages)
	}
}

func TestUnauthorizedClearsSlot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	slots := memSlots{types.DomainEndUser: []byte("stale")}
	cfg := config.Config{API: config.APIConfig{BaseURL: server.URL}}
	c := New(cfg, session.NewResolver(slots), logging.Nop())

	_, err := c.Conversations(t.Context())
	if !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
	if _, ok := slots[types.DomainEndUser]; ok {
		t.Fatal("rejected slot was not cleared")
	}
}

func TestSearchRAGParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/u/rag/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "orçamento" || q.Get("conversation_id") != "42" || q.Get("top_k") != "5" {
			t.Errorf("params = %v", q)
		}
		_, _ = io.WriteString(w, `{"results":[{"chunk_id":1,"document_id":2,"filename":"plan.pdf","content":"revisão do orçamento anual","relevance_score":0.91,"distance":0.09}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, map[types.CredentialDomain]string{types.DomainEndUser: "tok"})
	hits, err := c.SearchRAG(t.Context(), "orçamento", 42, 5)
	if err != nil {
		t.Fatalf("SearchRAG: %v", err)
	}
	if len(hits) != 1 || hits[0].Filename != "plan.pdf" {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestSearchRAGRejectsBlankQuery(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", map[types.CredentialDomain]string{types.DomainEndUser: "tok"})
	if _, err := c.SearchRAG(t.Context(), "   ", 0, 3); err == nil {
		t.Fatal("expected an error for a blank query")
	}
}

func TestUploadAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/u/files" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		reader, err := r.MultipartReader()
		if err != nil {
			t.Fatalf("multipart: %v", err)
		}
		fields := map[string]string{}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("next part: %v", err)
			}
			data, _ := io.ReadAll(part)
			fields[part.FormName()] = string(data)
			if part.FormName() == "file" && part.FileName() != "notes.txt" {
				t.Errorf("filename = %q", part.FileName())
			}
		}
		if fields["file"] != "hello" || fields["conversation_id"] != "42" {
			t.Errorf("fields = %v", fields)
		}
		_, _ = io.WriteString(w, `{"file_id":9,"filename":"notes.txt","size":5,"status":"processed"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, map[types.CredentialDomain]string{types.DomainEndUser: "tok"})
	attachment, err := c.UploadAttachment(t.Context(), 42, "notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("UploadAttachment: %v", err)
	}
	if attachment.FileID != 9 || attachment.Filename != "notes.txt" {
		t.Fatalf("attachment = %+v", attachment)
	}
}

func TestLoginUsesDomainEndpoint(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = io.WriteString(w, `{"access_token":"tok","role":"admin","email":"a@b.c"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	cred, err := c.Login(t.Context(), types.DomainOperator, "a@b.c", "pw")
	if err != nil {
		t.Fatalf("operator login: %v", err)
	}
	if cred.Domain != types.DomainOperator || cred.Token != "tok" {
		t.Fatalf("credential = %+v", cred)
	}
	if _, err := c.Login(t.Context(), types.DomainEndUser, "a@b.c", "pw"); err != nil {
		t.Fatalf("end-user login: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/auth/login" || paths[1] != "/u/auth/login" {
		t.Fatalf("paths = %v", paths)
	}
}

func TestDecodeAPIErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":"agent not found"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, map[types.CredentialDomain]string{types.DomainEndUser: "tok"})
	_, err := c.Agents(t.Context())
	apiErr := asAPIError(err)
	if apiErr == nil {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Message != "agent not found" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestAdminEndpointsPreferOperator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-op" {
			t.Errorf("authorization = %q", got)
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, map[types.CredentialDomain]string{
		types.DomainOperator: "tok-op",
		types.DomainEndUser:  "tok-user",
	})
	if _, err := c.RAGEvents(t.Context()); err != nil {
		t.Fatalf("RAGEvents: %v", err)
	}
}
