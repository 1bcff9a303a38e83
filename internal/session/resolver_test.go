package session

import (
	"errors"
	"testing"

	"orkio/internal/types"
)

type memSlots map[types.CredentialDomain][]byte

func (m memSlots) ReadSlot(domain types.CredentialDomain) ([]byte, error) {
	return m[domain], nil
}

func (m memSlots) WriteSlot(domain types.CredentialDomain, value []byte) error {
	m[domain] = value
	return nil
}

func (m memSlots) ClearSlot(domain types.CredentialDomain) error {
	delete(m, domain)
	return nil
}

func TestResolveBareToken(t *testing.T) {
	r := NewResolver(memSlots{types.DomainEndUser: []byte("raw-token")})
	cred, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Domain != types.DomainEndUser || cred.Token != "raw-token" {
		t.Fatalf("credential = %+v", cred)
	}
}

func TestResolveStructuredSlot(t *testing.T) {
	payload := []byte(`{"access_token":"jwt-abc","user_id":7,"tenant_id":2,"role":"member","email":"u@t.co"}`)
	r := NewResolver(memSlots{types.DomainEndUser: payload})
	cred, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Token != "jwt-abc" || cred.UserID != 7 || cred.TenantID != 2 || cred.Email != "u@t.co" {
		t.Fatalf("credential = %+v", cred)
	}
}

func TestResolveLegacyTokenField(t *testing.T) {
	r := NewResolver(memSlots{types.DomainOperator: []byte(`{"token":"old-style"}`)})
	cred, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Token != "old-style" || cred.Domain != types.DomainOperator {
		t.Fatalf("credential = %+v", cred)
	}
}

func TestResolveQuotedJSONString(t *testing.T) {
	r := NewResolver(memSlots{types.DomainEndUser: []byte(`"quoted-token"`)})
	cred, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Token != "quoted-token" {
		t.Fatalf("token = %q", cred.Token)
	}
}

func TestResolveOperatorPriority(t *testing.T) {
	r := NewResolver(memSlots{
		types.DomainOperator: []byte("op-token"),
		types.DomainEndUser:  []byte("user-token"),
	})
	cred, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Domain != types.DomainOperator {
		t.Fatalf("domain = %s, want operator", cred.Domain)
	}
}

func TestResolvePreferredDomainWins(t *testing.T) {
	r := NewResolver(memSlots{
		types.DomainOperator: []byte("op-token"),
		types.DomainEndUser:  []byte("user-token"),
	})
	cred, err := r.Resolve(types.DomainEndUser)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Domain != types.DomainEndUser || cred.Token != "user-token" {
		t.Fatalf("credential = %+v", cred)
	}
}

func TestResolvePreferredFallsBack(t *testing.T) {
	r := NewResolver(memSlots{types.DomainOperator: []byte("op-token")})
	cred, err := r.Resolve(types.DomainEndUser)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Domain != types.DomainOperator {
		t.Fatalf("domain = %s, want operator fallback", cred.Domain)
	}
}

func TestResolveEmpty(t *testing.T) {
	r := NewResolver(memSlots{})
	if _, err := r.Resolve(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestResolveUnusableSlots(t *testing.T) {
	r := NewResolver(memSlots{
		types.DomainOperator: []byte("   "),
		types.DomainEndUser:  []byte(`{"role":"member"}`),
	})
	if _, err := r.Resolve(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	slots := memSlots{}
	r := NewResolver(slots)
	err := r.Save(types.Credential{Domain: types.DomainEndUser, Token: "t1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	cred, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cred.Token != "t1" || cred.Email != "a@b.c" {
		t.Fatalf("credential = %+v", cred)
	}
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	r := NewResolver(memSlots{})
	if err := r.Save(types.Credential{Domain: types.DomainEndUser}); err == nil {
		t.Fatal("expected an error for an empty token")
	}
}

func TestClearAll(t *testing.T) {
	slots := memSlots{
		types.DomainOperator: []byte("a"),
		types.DomainEndUser:  []byte("b"),
	}
	r := NewResolver(slots)
	if err := r.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("slots remain: %v", slots)
	}
}
