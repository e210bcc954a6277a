package model

import (
	"errors"
	"strings"
)

// RegisterPartnerRequest carries everything needed to register a partner
// together with its owner credential.
type RegisterPartnerRequest struct {
	Partner     CreatePartnerRequest `json:"partner"`
	OwnerEmail  string               `json:"owner_email,omitempty"`
	OwnerSecret string               `json:"owner_secret"`
}

// Validate validates RegisterPartnerRequest.
func (r *RegisterPartnerRequest) Validate() error {
	if err := r.Partner.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.OwnerSecret) == "" {
		return errors.New("owner_secret is required")
	}
	if strings.TrimSpace(r.OwnerEmail) != "" && !ValidEmail(r.OwnerEmail) {
		return errors.New("owner_email must be a valid address")
	}
	return nil
}

// ResolvedOwnerEmail returns the owner credential address, defaulting to the
// partner contact email when none was supplied.
func (r *RegisterPartnerRequest) ResolvedOwnerEmail() string {
	if strings.TrimSpace(r.OwnerEmail) != "" {
		return NormalizeEmail(r.OwnerEmail)
	}
	return NormalizeEmail(r.Partner.Email)
}
