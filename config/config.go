package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database and Redis configuration
//   - services.go: Service mode and worker configuration
//   - mail.go: Mail transport and payment provider configuration
type AppConfig struct {
	// IsDev controls development mode behavior (pretty logging, looser
	// guardrails). Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Services is a comma-delimited list of enabled services.
	// Valid values: notify-worker, reaper
	Services string `env:"SERVICES" envDefault:"notify-worker"`

	// Notification worker configuration
	NotifyWorker NotifyWorkerConfig

	// Reaper configuration
	Reaper ReaperConfig

	// Mail transport configuration
	Mail MailConfig

	// Payment provider configuration
	Payments PaymentsConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.NotifyWorker.Sanitize()
	c.Reaper.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsNotifyWorkerEnabled returns true if the notification worker is enabled.
func (c *AppConfig) IsNotifyWorkerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeNotifyWorker]
}

// IsReaperEnabled returns true if the reaper service is enabled.
func (c *AppConfig) IsReaperEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeReaper]
}
