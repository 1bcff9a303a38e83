// Package client talks to the console API. All JSON calls share one
// timeout-bounded HTTP client; streamed answers use a dedicated client
// without a timeout so long generations are not cut off.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"orkio/internal/config"
	"orkio/internal/logging"
	"orkio/internal/session"
	"orkio/internal/types"
)

type Client struct {
	baseURL string
	creds   *session.Resolver
	http    *http.Client
	log     logging.Logger
}

func New(cfg config.Config, creds *session.Resolver, log logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		baseURL: cfg.BaseURL(),
		creds:   creds,
		http: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		log: log,
	}
}

// Login authenticates against the domain's own endpoint and returns the
// resulting credential. It does not persist it; callers save the slot.
func (c *Client) Login(ctx context.Context, domain types.CredentialDomain, email, password string) (types.Credential, error) {
	if !domain.Valid() {
		return types.Credential{}, errors.New("unknown credential domain: " + string(domain))
	}
	path := "/u/auth/login"
	if domain == types.DomainOperator {
		path = "/auth/login"
	}
	var resp LoginResponse
	err := c.doJSON(ctx, http.MethodPost, path, LoginRequest{Email: email, Password: password}, false, "", &resp)
	if err != nil {
		return types.Credential{}, err
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return types.Credential{}, errors.New("login response carried no access token")
	}
	return types.Credential{
		Domain:   domain,
		Token:    resp.AccessToken,
		UserID:   resp.UserID,
		TenantID: resp.TenantID,
		Role:     resp.Role,
		Email:    resp.Email,
	}, nil
}

// Logout invalidates the server-side session. Best effort; the local
// slots are cleared by the caller regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/u/auth/logout", nil, true, types.DomainEndUser, nil)
}

func (c *Client) Agents(ctx context.Context) ([]types.Agent, error) {
	data, err := c.doRaw(ctx, http.MethodGet, "/u/agents", nil, types.DomainEndUser)
	if err != nil {
		return nil, err
	}
	return decodeList[types.Agent](data, "agents", "items")
}

func (c *Client) Conversations(ctx context.Context) ([]types.Conversation, error) {
	data, err := c.doRaw(ctx, http.MethodGet, "/u/conversations", nil, types.DomainEndUser)
	if err != nil {
		return nil, err
	}
	return decodeList[types.Conversation](data, "conversations", "items")
}

func (c *Client) CreateConversation(ctx context.Context, agentID int64, title string) (*types.Conversation, error) {
	if agentID <= 0 {
		return nil, errors.New("agent id is required")
	}
	var conv types.Conversation
	req := CreateConversationRequest{AgentID: agentID, Title: strings.TrimSpace(title)}
	if err := c.doJSON(ctx, http.MethodPost, "/u/conversations", req, true, types.DomainEndUser, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *Client) RenameConversation(ctx context.Context, id int64, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title is required")
	}
	path := fmt.Sprintf("/u/conversations/%d", id)
	return c.doJSON(ctx, http.MethodPatch, path, RenameConversationRequest{Title: title}, true, types.DomainEndUser, nil)
}

func (c *Client) DeleteConversation(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/u/conversations/%d", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, true, types.DomainEndUser, nil)
}

// Messages fetches the ordered, authoritative transcript for one
// conversation. The server's list replaces any locally synthesized
// entries once it arrives.
func (c *Client) Messages(ctx context.Context, conversationID int64) ([]types.Message, error) {
	path := fmt.Sprintf("/u/conversations/%d/messages", conversationID)
	data, err := c.doRaw(ctx, http.MethodGet, path, nil, types.DomainEndUser)
	if err != nil {
		return nil, err
	}
	return decodeList[types.Message](data, "messages", "items")
}

func (c *Client) SearchRAG(ctx context.Context, query string, conversationID int64, topK int) ([]types.RetrievalHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}
	params := url.Values{}
	params.Set("query", query)
	if conversationID > 0 {
		params.Set("conversation_id", strconv.FormatInt(conversationID, 10))
	}
	if topK > 0 {
		params.Set("top_k", strconv.Itoa(topK))
	}
	var resp searchResponse
	path := "/u/rag/search?" + params.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, types.DomainEndUser, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) RAGStats(ctx context.Context) (*types.RAGStats, error) {
	var stats types.RAGStats
	if err := c.doJSON(ctx, http.MethodGet, "/u/rag/stats", nil, true, types.DomainEndUser, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// UploadAttachment sends one file to be bound to the next message of
// the conversation.
func (c *Client) UploadAttachment(ctx context.Context, conversationID int64, filename string, contents io.Reader) (*types.Attachment, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, errors.New("filename is required")
	}
	cred, err := c.credential(types.DomainEndUser)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, contents); err != nil {
		return nil, err
	}
	if err := writer.WriteField("conversation_id", strconv.FormatInt(conversationID, 10)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/u/files", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+cred.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, c.authFailed(cred.Domain)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}
	var attachment types.Attachment
	if err := json.NewDecoder(resp.Body).Decode(&attachment); err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (c *Client) RAGEvents(ctx context.Context) ([]types.RAGEvent, error) {
	data, err := c.doRaw(ctx, http.MethodGet, "/admin/rag/events", nil, types.DomainOperator)
	if err != nil {
		return nil, err
	}
	return decodeList[types.RAGEvent](data, "events", "items")
}

func (c *Client) AgentDialogs(ctx context.Context) ([]types.AgentDialog, error) {
	data, err := c.doRaw(ctx, http.MethodGet, "/admin/agent-dialogs", nil, types.DomainOperator)
	if err != nil {
		return nil, err
	}
	return decodeList[types.AgentDialog](data, "dialogs", "items")
}

func (c *Client) SendAgentMessage(ctx context.Context, req AgentSendRequest) (*AgentSendResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("message is required")
	}
	var resp AgentSendResponse
	if err := c.doJSON(ctx, http.MethodPost, "/admin/agent-send", req, true, types.DomainOperator, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, preferred types.CredentialDomain, out any) error {
	data, err := c.do(ctx, method, path, body, requireAuth, preferred)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any, preferred types.CredentialDomain) ([]byte, error) {
	return c.do(ctx, method, path, body, true, preferred)
}

func (c *Client) do(ctx context.Context, method, path string, body any, requireAuth bool, preferred types.CredentialDomain) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var domain types.CredentialDomain
	if requireAuth {
		cred, err := c.credential(preferred)
		if err != nil {
			return nil, err
		}
		domain = cred.Domain
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if requireAuth && resp.StatusCode == http.StatusUnauthorized {
		return nil, c.authFailed(domain)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) credential(preferred types.CredentialDomain) (types.Credential, error) {
	if preferred.Valid() {
		return c.creds.Resolve(preferred)
	}
	return c.creds.Resolve()
}

// authFailed clears the slot whose credential the server rejected so
// the next resolve sends the user back to login.
func (c *Client) authFailed(domain types.CredentialDomain) error {
	if domain.Valid() {
		if err := c.creds.Clear(domain); err != nil {
			c.log.Warn("clear credential slot", logging.F("domain", string(domain)), logging.F("err", err))
		}
	}
	return session.ErrNotAuthenticated
}

// decodeList accepts either a bare JSON array or an object wrapping the
// array under one of the given keys. Different server versions disagree
// on the shape, so both are honored.
func decodeList[T any](data []byte, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}
	for _, key := range keys {
		raw, ok := wrapper[key]
		if !ok || len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	message := payload.Error
	if message == "" {
		message = payload.Detail
	}
	if message == "" {
		message = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
