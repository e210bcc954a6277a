// Package mocks provides mock implementations for testing the partner onboarding system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockPartnerRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(partner, nil)
package mocks

// Generate mock for PartnerRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=partner_repository_mock.go github.com/vitrineapp/partner-go/internal/core PartnerRepository

// Generate mock for CredentialRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_repository_mock.go github.com/vitrineapp/partner-go/internal/core CredentialRepository

// Generate mock for RegistrationStore interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=registration_store_mock.go github.com/vitrineapp/partner-go/internal/core RegistrationStore

// Generate mock for NotificationQueue interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notification_queue_mock.go github.com/vitrineapp/partner-go/internal/core NotificationQueue

// Generate mock for OfferingRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=offering_repository_mock.go github.com/vitrineapp/partner-go/internal/core OfferingRepository

// Generate mock for PaymentProvider interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=payment_provider_mock.go github.com/vitrineapp/partner-go/internal/core PaymentProvider

// Generate mock for SecretHasher interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=secret_hasher_mock.go github.com/vitrineapp/partner-go/internal/core SecretHasher
