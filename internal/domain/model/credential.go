package model

import (
	"errors"
	"strings"
	"time"
)

// CredentialRole determines the authorization scope of a credential.
type CredentialRole string

const (
	// CredentialRoleOwner is the role of the credential created with the partner.
	CredentialRoleOwner CredentialRole = "owner"
	// CredentialRoleManager is a delegated administrative role.
	CredentialRoleManager CredentialRole = "manager"
	// CredentialRoleEmployee is a restricted operational role.
	CredentialRoleEmployee CredentialRole = "employee"
)

// Valid reports whether the credential role is supported.
func (r CredentialRole) Valid() bool {
	switch r {
	case CredentialRoleOwner, CredentialRoleManager, CredentialRoleEmployee:
		return true
	default:
		return false
	}
}

// Credential represents a login credential bound to a partner.
// Email is unique across the whole credential namespace. Every partner has
// exactly one owner credential, created with the partner itself.
type Credential struct {
	ID         string         `json:"id"         db:"id"`
	PartnerID  string         `json:"partner_id" db:"partner_id"`
	Email      string         `json:"email"      db:"email"`
	SecretHash string         `json:"-"          db:"secret_hash"`
	Role       CredentialRole `json:"role"       db:"role"`
	Active     bool           `json:"active"     db:"active"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateCredentialRequest represents parameters to create a Credential row.
// Secret is the raw or pre-hashed secret; hashing happens at the service layer.
type CreateCredentialRequest struct {
	PartnerID string         `json:"partner_id"`
	Email     string         `json:"email"`
	Secret    string         `json:"secret"`
	Role      CredentialRole `json:"role"`
}

// Validate validates CreateCredentialRequest.
func (r *CreateCredentialRequest) Validate() error {
	if strings.TrimSpace(r.PartnerID) == "" {
		return errors.New("partner_id is required")
	}
	if !ValidEmail(r.Email) {
		return errors.New("email must be a valid address")
	}
	if strings.TrimSpace(r.Secret) == "" {
		return errors.New("secret is required")
	}
	if !r.Role.Valid() {
		return errors.New("invalid role")
	}
	return nil
}
