package config

// MailConfig contains mail transport configuration.
type MailConfig struct {
	// ResendAPIKey authenticates against the Resend API.
	// Required when the notification worker is enabled.
	ResendAPIKey string `env:"MAIL_RESEND_API_KEY"`

	// FromAddress is the sender address of every notification.
	FromAddress string `env:"MAIL_FROM_ADDRESS" envDefault:"no-reply@vitrine.example"`

	// FromName is the display name of the sender.
	FromName string `env:"MAIL_FROM_NAME" envDefault:"Vitrine"`
}

// PaymentsConfig contains payment provider configuration.
type PaymentsConfig struct {
	// BaseURL is the payment platform API root.
	BaseURL string `env:"PAYMENTS_BASE_URL"`

	// APIKey authenticates against the payment platform.
	APIKey string `env:"PAYMENTS_API_KEY"`

	// ReturnURL is where the provider redirects partners after onboarding.
	ReturnURL string `env:"PAYMENTS_RETURN_URL"`
}
