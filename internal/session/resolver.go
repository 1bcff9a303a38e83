// Package session resolves which stored credential the console should
// act with. One slot exists per domain; a slot may hold either a JSON
// credential payload or a bare token string, and both are accepted.
package session

import (
	"encoding/json"
	"errors"
	"strings"

	"orkio/internal/types"
)

// ErrNotAuthenticated means no domain has a usable credential; callers
// must send the user to a login entry point instead of making the call.
var ErrNotAuthenticated = errors.New("not authenticated; run `orkio login`")

// SlotStore is the persisted per-domain credential storage.
type SlotStore interface {
	ReadSlot(domain types.CredentialDomain) ([]byte, error)
	WriteSlot(domain types.CredentialDomain, value []byte) error
	ClearSlot(domain types.CredentialDomain) error
}

type Resolver struct {
	slots SlotStore
}

func NewResolver(slots SlotStore) *Resolver {
	return &Resolver{slots: slots}
}

// Resolve returns the first usable credential. With no preference the
// operator slot is tried before the end-user slot; a preferred domain,
// when present and usable, wins outright.
func (r *Resolver) Resolve(preferred ...types.CredentialDomain) (types.Credential, error) {
	for _, domain := range preferred {
		if cred, ok := r.read(domain); ok {
			return cred, nil
		}
	}
	for _, domain := range types.Domains() {
		if cred, ok := r.read(domain); ok {
			return cred, nil
		}
	}
	return types.Credential{}, ErrNotAuthenticated
}

func (r *Resolver) read(domain types.CredentialDomain) (types.Credential, bool) {
	if !domain.Valid() {
		return types.Credential{}, false
	}
	raw, err := r.slots.ReadSlot(domain)
	if err != nil {
		return types.Credential{}, false
	}
	return ParseSlot(domain, raw)
}

// Save persists a credential into its domain slot as JSON.
func (r *Resolver) Save(cred types.Credential) error {
	if !cred.Domain.Valid() {
		return errors.New("credential domain is required")
	}
	if strings.TrimSpace(cred.Token) == "" {
		return errors.New("credential token is required")
	}
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return r.slots.WriteSlot(cred.Domain, data)
}

// Clear empties one domain slot. Called when a request using that
// slot's credential came back with an authorization failure.
func (r *Resolver) Clear(domain types.CredentialDomain) error {
	if !domain.Valid() {
		return errors.New("unknown credential domain: " + string(domain))
	}
	return r.slots.ClearSlot(domain)
}

func (r *Resolver) ClearAll() error {
	var firstErr error
	for _, domain := range types.Domains() {
		if err := r.slots.ClearSlot(domain); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// slotPayload mirrors the structured form a slot may hold. Older
// writers stored the token under "token", newer ones under
// "access_token"; both are honored.
type slotPayload struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	TenantID    int64  `json:"tenant_id"`
	Role        string `json:"role"`
	Email       string `json:"email"`
}

// ParseSlot interprets one raw slot value. It accepts a JSON credential
// object, a JSON string, or a bare token string; anything else (or an
// object without a token) is unusable.
func ParseSlot(domain types.CredentialDomain, raw []byte) (types.Credential, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return types.Credential{}, false
	}

	var payload slotPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
		token := strings.TrimSpace(payload.AccessToken)
		if token == "" {
			token = strings.TrimSpace(payload.Token)
		}
		if token == "" {
			return types.Credential{}, false
		}
		return types.Credential{
			Domain:   domain,
			Token:    token,
			UserID:   payload.UserID,
			TenantID: payload.TenantID,
			Role:     payload.Role,
			Email:    payload.Email,
		}, true
	}

	var quoted string
	if err := json.Unmarshal([]byte(trimmed), &quoted); err == nil {
		trimmed = strings.TrimSpace(quoted)
		if trimmed == "" {
			return types.Credential{}, false
		}
	}
	return types.Credential{Domain: domain, Token: trimmed}, true
}
