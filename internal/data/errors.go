package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Partner repository sentinels.
	ErrPartnerNotFound    = errors.New("partner not found")
	ErrPartnerEmailExists = errors.New("partner email already exists")
	ErrPartnerSIRETExists = errors.New("partner SIRET already exists")

	// Credential repository sentinels.
	ErrCredentialNotFound    = errors.New("credential not found")
	ErrCredentialEmailExists = errors.New("credential email already exists")

	// Offering repository sentinels.
	ErrOfferingNotFound   = errors.New("offering not found")
	ErrOfferingNameExists = errors.New("offering name already exists for partner")

	// Notification repository sentinels.
	ErrNotificationNotFound     = errors.New("notification not found")
	ErrNotificationNotDeletable = errors.New("notification cannot be deleted while processing under an active lease")
)

// Sort direction constants shared by list queries.
const (
	sortDirAsc  = "ASC"
	sortDirDesc = "DESC"
)
