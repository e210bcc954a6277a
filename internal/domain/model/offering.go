package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxOfferingNameLen = 255

// Offering is a catalog entry owned by an approved partner.
// (partner_id, name) is unique.
type Offering struct {
	ID          string    `json:"id"                    db:"id"`
	PartnerID   string    `json:"partner_id"            db:"partner_id"`
	Name        string    `json:"name"                  db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	PriceCents  int64     `json:"price_cents"           db:"price_cents"`
	Active      bool      `json:"active"                db:"active"`
	CreatedAt   time.Time `json:"created_at"            db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"            db:"updated_at"`
}

// CreateOfferingRequest represents parameters to create an Offering row.
type CreateOfferingRequest struct {
	PartnerID   string  `json:"partner_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	PriceCents  int64   `json:"price_cents"`
}

// Validate validates CreateOfferingRequest.
func (r *CreateOfferingRequest) Validate() error {
	if strings.TrimSpace(r.PartnerID) == "" {
		return errors.New("partner_id is required")
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxOfferingNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if r.PriceCents < 0 {
		return errors.New("price_cents cannot be negative")
	}
	return nil
}
