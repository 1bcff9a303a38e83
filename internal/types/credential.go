package types

// CredentialDomain identifies which console a stored credential belongs to.
type CredentialDomain string

const (
	// DomainOperator is the operator (admin) console.
	DomainOperator CredentialDomain = "operator"
	// DomainEndUser is the end-user console.
	DomainEndUser CredentialDomain = "enduser"
)

// Domains lists credential domains in resolution priority order.
func Domains() []CredentialDomain {
	return []CredentialDomain{DomainOperator, DomainEndUser}
}

func (d CredentialDomain) Valid() bool {
	return d == DomainOperator || d == DomainEndUser
}

// Credential is one resolved session credential. Token is always set;
// the claims are present only when the slot held a structured payload.
type Credential struct {
	Domain   CredentialDomain `json:"-"`
	Token    string           `json:"token"`
	UserID   int64            `json:"user_id,omitempty"`
	TenantID int64            `json:"tenant_id,omitempty"`
	Role     string           `json:"role,omitempty"`
	Email    string           `json:"email,omitempty"`
}
