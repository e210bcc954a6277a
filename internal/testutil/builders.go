// Package testutil provides testing utilities and helpers for the partner platform.
package testutil

import (
	"fmt"

	"github.com/vitrineapp/partner-go/internal/domain/model"
)

// RegisterRequestBuilder provides a fluent interface for building
// RegisterPartnerRequest objects for testing.
type RegisterRequestBuilder struct {
	req *model.RegisterPartnerRequest
}

// NewRegisterRequest creates a new RegisterRequestBuilder with sensible defaults.
func NewRegisterRequest() *RegisterRequestBuilder {
	return &RegisterRequestBuilder{
		req: &model.RegisterPartnerRequest{
			Partner: model.CreatePartnerRequest{
				Name:           "Boulangerie Martin",
				ContactName:    "Claire Martin",
				Email:          "contact@boulangerie-martin.fr",
				SIRET:          "12345678901234",
				CommissionRate: 10,
			},
			OwnerSecret: "s3cret-passphrase",
		},
	}
}

// WithName sets the company name.
func (b *RegisterRequestBuilder) WithName(name string) *RegisterRequestBuilder {
	b.req.Partner.Name = name
	return b
}

// WithEmail sets the partner contact email.
func (b *RegisterRequestBuilder) WithEmail(email string) *RegisterRequestBuilder {
	b.req.Partner.Email = email
	return b
}

// WithSIRET sets the SIRET number.
func (b *RegisterRequestBuilder) WithSIRET(siret string) *RegisterRequestBuilder {
	b.req.Partner.SIRET = siret
	return b
}

// WithCommissionRate sets the commission rate.
func (b *RegisterRequestBuilder) WithCommissionRate(rate float64) *RegisterRequestBuilder {
	b.req.Partner.CommissionRate = rate
	return b
}

// WithOwnerEmail sets a distinct owner credential email.
func (b *RegisterRequestBuilder) WithOwnerEmail(email string) *RegisterRequestBuilder {
	b.req.OwnerEmail = email
	return b
}

// WithOwnerSecret sets the owner credential secret.
func (b *RegisterRequestBuilder) WithOwnerSecret(secret string) *RegisterRequestBuilder {
	b.req.OwnerSecret = secret
	return b
}

// Build returns the constructed RegisterPartnerRequest.
func (b *RegisterRequestBuilder) Build() *model.RegisterPartnerRequest {
	return b.req
}

// UniqueRegisterRequest returns a request whose email, owner email, and SIRET
// carry the given suffix so several registrations can coexist in one test DB.
func UniqueRegisterRequest(n int) *model.RegisterPartnerRequest {
	siret := fmt.Sprintf("%014d", 10000000000000+n)
	return NewRegisterRequest().
		WithName(fmt.Sprintf("Partner %d", n)).
		WithEmail(fmt.Sprintf("contact-%d@partner.example", n)).
		WithOwnerEmail(fmt.Sprintf("owner-%d@partner.example", n)).
		WithSIRET(siret).
		Build()
}

// CreatePartnerRequestFixture returns a valid partner create request.
func CreatePartnerRequestFixture() *model.CreatePartnerRequest {
	req := NewRegisterRequest().Build().Partner
	return &req
}

// OfferingRequestFixture returns a valid offering create request for the partner.
func OfferingRequestFixture(partnerID string) *model.CreateOfferingRequest {
	return &model.CreateOfferingRequest{
		PartnerID:   partnerID,
		Name:        "Croissants artisanaux",
		Description: StringPtr("Livraison quotidienne de viennoiseries"),
		PriceCents:  2500,
	}
}

// EnqueueRequestFixture returns a valid welcome notification enqueue request.
func EnqueueRequestFixture(recipient string) *model.EnqueueNotificationRequest {
	return &model.EnqueueNotificationRequest{
		Kind:      model.KindPartnerWelcome,
		Recipient: recipient,
		Context: model.NotificationContext{
			"partner_name": "Boulangerie Martin",
			"contact_name": "Claire Martin",
		},
	}
}
