package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NotificationKind identifies the template and required context of a notification.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type NotificationKind string

// NotificationStatus represents the delivery state of a notification job.
type NotificationStatus string

const (
	// KindPartnerWelcome is sent after a successful registration.
	KindPartnerWelcome NotificationKind = "partner-welcome"
	// KindPartnerApproved is sent to the owner when a partner is approved.
	KindPartnerApproved NotificationKind = "partner-approved"
	// KindPartnerRejected is sent to the owner when a partner is rejected.
	KindPartnerRejected NotificationKind = "partner-rejected"

	// NotificationStatusPending indicates a job is waiting to be claimed.
	NotificationStatusPending NotificationStatus = "pending"
	// NotificationStatusProcessing indicates a worker holds the job under lease.
	NotificationStatusProcessing NotificationStatus = "processing"
	// NotificationStatusDelivered indicates the transport accepted the message.
	NotificationStatusDelivered NotificationStatus = "delivered"
	// NotificationStatusFailed indicates attempts are exhausted; the row is
	// retained with its last error for operator inspection.
	NotificationStatusFailed NotificationStatus = "failed"
)

const (
	// DefaultMaxAttempts is the delivery attempt cap for every notification.
	DefaultMaxAttempts = 3
	// BackoffBase is the delay after the first failed attempt; it doubles per attempt.
	BackoffBase = 2 * time.Second
)

// Context keys shared between enqueue validation and templates.
const (
	ContextKeyPartnerName = "partner_name"
	ContextKeyContactName = "contact_name"
	ContextKeyReason      = "reason"
)

// requiredContextKeys maps each kind to the context keys it cannot render without.
var requiredContextKeys = map[NotificationKind][]string{
	KindPartnerWelcome:  {ContextKeyPartnerName},
	KindPartnerApproved: {ContextKeyPartnerName},
	KindPartnerRejected: {ContextKeyPartnerName},
}

// ErrNoNotificationsAvailable is returned when no jobs are available for reservation.
var ErrNoNotificationsAvailable = errors.New("no notifications available")

// UnmarshalText implements encoding.TextUnmarshaler for NotificationKind to allow env parsing.
func (k *NotificationKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	kind := NotificationKind(v)
	if kind.Valid() {
		*k = kind
		return nil
	}
	return fmt.Errorf("invalid NotificationKind: %q", v)
}

// Valid returns true if the NotificationKind is valid.
func (k NotificationKind) Valid() bool {
	return k == KindPartnerWelcome || k == KindPartnerApproved || k == KindPartnerRejected
}

// Valid returns true if the NotificationStatus is valid.
func (s NotificationStatus) Valid() bool {
	return s == NotificationStatusPending || s == NotificationStatusProcessing ||
		s == NotificationStatusDelivered || s == NotificationStatusFailed
}

// Terminal reports whether the status admits no further processing.
func (s NotificationStatus) Terminal() bool {
	return s == NotificationStatusDelivered || s == NotificationStatusFailed
}

// NotificationContext carries the key-value rendering context of a job.
// Required keys are fixed per kind and checked at enqueue time.
type NotificationContext map[string]string

// NotificationJob represents a durable notification delivery job.
type NotificationJob struct {
	ID             string              `json:"id"                         db:"id"`
	Kind           NotificationKind    `json:"kind"                       db:"kind"`
	Recipient      string              `json:"recipient"                  db:"recipient"`
	Context        NotificationContext `json:"context"                    db:"context"`
	Status         NotificationStatus  `json:"status"                     db:"status"`
	Attempts       int                 `json:"attempts"                   db:"attempts"`
	MaxAttempts    int                 `json:"max_attempts"               db:"max_attempts"`
	LastError      *string             `json:"last_error,omitempty"       db:"last_error"`
	ScheduledAt    time.Time           `json:"scheduled_at"               db:"scheduled_at"`
	LeaseExpiresAt *time.Time          `json:"lease_expires_at,omitempty" db:"lease_expires_at"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"     db:"delivered_at"`
	CreatedAt      time.Time           `json:"created_at"                 db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"                 db:"updated_at"`
}

// EnqueueNotificationRequest represents a request to enqueue a notification job.
type EnqueueNotificationRequest struct {
	Kind        NotificationKind    `json:"kind"`
	Recipient   string              `json:"recipient"`
	Context     NotificationContext `json:"context"`
	ScheduledAt *time.Time          `json:"scheduled_at,omitempty"`
}

// Validate validates the EnqueueNotificationRequest fields, including the
// per-kind required context keys. A malformed context fails here rather than
// at render time inside the worker.
func (r *EnqueueNotificationRequest) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("invalid notification kind: %q", r.Kind)
	}
	if !ValidEmail(r.Recipient) {
		return errors.New("recipient must be a valid address")
	}
	for _, key := range requiredContextKeys[r.Kind] {
		if strings.TrimSpace(r.Context[key]) == "" {
			return fmt.Errorf("context key %q is required for kind %q", key, r.Kind)
		}
	}
	return nil
}

// BackoffDelay returns the delay before the next attempt given the number of
// attempts already made: 2s after the first failure, then 4s, then 8s.
func BackoffDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return BackoffBase << (attempts - 1)
}

// NotificationStats represents counts of jobs per delivery state.
type NotificationStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Delivered  int `json:"delivered"`
	Failed     int `json:"failed"`
}
