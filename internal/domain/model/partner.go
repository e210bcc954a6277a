// Package model defines the core data types used throughout the partner onboarding system.
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxPartnerNameLen = 255
	siretLen          = 14
)

// PartnerStatus represents the lifecycle state of a partner.
type PartnerStatus string

const (
	// PartnerStatusPending is the initial state after registration.
	PartnerStatusPending PartnerStatus = "pending"
	// PartnerStatusApproved unlocks service offerings and payment onboarding.
	PartnerStatusApproved PartnerStatus = "approved"
	// PartnerStatusRejected is terminal; no re-approval path exists.
	PartnerStatusRejected PartnerStatus = "rejected"
	// PartnerStatusSuspended is reachable only from approved and is terminal.
	PartnerStatusSuspended PartnerStatus = "suspended"
)

// Valid reports whether the partner status is supported.
func (s PartnerStatus) Valid() bool {
	switch s {
	case PartnerStatusPending, PartnerStatusApproved, PartnerStatusRejected, PartnerStatusSuspended:
		return true
	default:
		return false
	}
}

// ParsePartnerStatus normalizes a status string and reports whether it is supported.
func ParsePartnerStatus(value string) (PartnerStatus, bool) {
	status := PartnerStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// CanTransitionTo reports whether the lifecycle state machine permits moving
// from s to target. Rejected and suspended are terminal.
func (s PartnerStatus) CanTransitionTo(target PartnerStatus) bool {
	switch s {
	case PartnerStatusPending:
		return target == PartnerStatusApproved || target == PartnerStatusRejected
	case PartnerStatusApproved:
		return target == PartnerStatusSuspended
	default:
		return false
	}
}

// Partner represents a marketplace service provider.
// Email and SIRET are unique among non-deleted partners.
type Partner struct {
	ID               string        `json:"id"                           db:"id"`
	Name             string        `json:"name"                         db:"name"`
	ContactName      string        `json:"contact_name"                 db:"contact_name"`
	Email            string        `json:"email"                       db:"email"`
	Phone            *string       `json:"phone,omitempty"              db:"phone"`
	Address          *string       `json:"address,omitempty"            db:"address"`
	SIRET            string        `json:"siret"                        db:"siret"`
	Status           PartnerStatus `json:"status"                       db:"status"`
	CommissionRate   float64       `json:"commission_rate"              db:"commission_rate"`
	PaymentAccountID *string       `json:"payment_account_id,omitempty" db:"payment_account_id"`
	PaymentOnboarded bool          `json:"payment_onboarded"            db:"payment_onboarded"`
	RejectReason     *string       `json:"reject_reason,omitempty"      db:"reject_reason"`
	CreatedAt        time.Time     `json:"created_at"                   db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"                   db:"updated_at"`
	DeletedAt        *time.Time    `json:"deleted_at,omitempty"         db:"deleted_at"`
}

// CreatePartnerRequest represents parameters to create a Partner row.
type CreatePartnerRequest struct {
	Name           string  `json:"name"`
	ContactName    string  `json:"contact_name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	SIRET          string  `json:"siret"`
	CommissionRate float64 `json:"commission_rate"`
}

// Validate validates CreatePartnerRequest.
func (r *CreatePartnerRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxPartnerNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if !ValidEmail(r.Email) {
		return errors.New("email must be a valid address")
	}
	if !ValidSIRET(r.SIRET) {
		return errors.New("siret must be exactly 14 digits")
	}
	if r.CommissionRate < 0 || r.CommissionRate > 100 {
		return errors.New("commission_rate must be between 0 and 100")
	}
	return nil
}

// PartnersListOptions controls paging and filtering for listing partners.
// Soft-deleted partners are excluded unless IncludeDeleted is set.
type PartnersListOptions struct {
	Limit          int
	Offset         int
	Q              *string        // substring match on name (ILIKE)
	Status         *PartnerStatus // exact match
	IncludeDeleted bool
}

// ValidEmail reports whether the value looks like an email address.
// Full RFC validation is left to the mail transport; this catches the
// obviously malformed before anything is persisted.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t\n")
}

// ValidSIRET reports whether the value is a 14-digit SIRET number.
func ValidSIRET(siret string) bool {
	siret = strings.TrimSpace(siret)
	if len(siret) != siretLen {
		return false
	}
	for _, r := range siret {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeEmail lowercases and trims an email for uniqueness comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
