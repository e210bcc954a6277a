package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotificationKind_Valid(t *testing.T) {
	assert.True(t, KindPartnerWelcome.Valid())
	assert.True(t, KindPartnerApproved.Valid())
	assert.True(t, KindPartnerRejected.Valid())
	assert.False(t, NotificationKind("partner-deleted").Valid())
	assert.False(t, NotificationKind("").Valid())
}

func TestNotificationKind_UnmarshalText(t *testing.T) {
	var kind NotificationKind
	assert.NoError(t, kind.UnmarshalText([]byte(" Partner-Welcome ")))
	assert.Equal(t, KindPartnerWelcome, kind)

	assert.Error(t, kind.UnmarshalText([]byte("bogus")))
}

func TestNotificationStatus_Terminal(t *testing.T) {
	assert.False(t, NotificationStatusPending.Terminal())
	assert.False(t, NotificationStatusProcessing.Terminal())
	assert.True(t, NotificationStatusDelivered.Terminal())
	assert.True(t, NotificationStatusFailed.Terminal())
}

func TestEnqueueNotificationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     EnqueueNotificationRequest
		wantErr bool
	}{
		{
			name: "valid welcome",
			req: EnqueueNotificationRequest{
				Kind:      KindPartnerWelcome,
				Recipient: "owner@partner.example",
				Context:   NotificationContext{ContextKeyPartnerName: "Atelier Dupont"},
			},
			wantErr: false,
		},
		{
			name: "valid rejected with reason",
			req: EnqueueNotificationRequest{
				Kind:      KindPartnerRejected,
				Recipient: "owner@partner.example",
				Context: NotificationContext{
					ContextKeyPartnerName: "Atelier Dupont",
					ContextKeyReason:      "Documents incomplets",
				},
			},
			wantErr: false,
		},
		{
			name: "rejected without reason is still valid",
			req: EnqueueNotificationRequest{
				Kind:      KindPartnerRejected,
				Recipient: "owner@partner.example",
				Context:   NotificationContext{ContextKeyPartnerName: "Atelier Dupont"},
			},
			wantErr: false,
		},
		{
			name: "invalid kind",
			req: EnqueueNotificationRequest{
				Kind:      NotificationKind("partner-deleted"),
				Recipient: "owner@partner.example",
				Context:   NotificationContext{ContextKeyPartnerName: "Atelier Dupont"},
			},
			wantErr: true,
		},
		{
			name: "invalid recipient",
			req: EnqueueNotificationRequest{
				Kind:      KindPartnerWelcome,
				Recipient: "not-an-email",
				Context:   NotificationContext{ContextKeyPartnerName: "Atelier Dupont"},
			},
			wantErr: true,
		},
		{
			name: "missing required context key",
			req: EnqueueNotificationRequest{
				Kind:      KindPartnerWelcome,
				Recipient: "owner@partner.example",
				Context:   NotificationContext{},
			},
			wantErr: true,
		},
		{
			name: "blank required context value",
			req: EnqueueNotificationRequest{
				Kind:      KindPartnerApproved,
				Recipient: "owner@partner.example",
				Context:   NotificationContext{ContextKeyPartnerName: "   "},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, BackoffDelay(1))
	assert.Equal(t, 4*time.Second, BackoffDelay(2))
	assert.Equal(t, 8*time.Second, BackoffDelay(3))
	// Attempt counts below 1 clamp to the first delay.
	assert.Equal(t, 2*time.Second, BackoffDelay(0))
}
