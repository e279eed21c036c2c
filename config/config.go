package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Session and OAuth/OIDC configuration
//   - database.go: Postgres and Redis configuration
//   - http.go: HTTP server configuration
//   - irc.go: IRC bridge configuration
//   - mail.go: SMTP configuration
type AppConfig struct {
	// IsDev controls development mode behavior (text logging, relaxed
	// cookie security). Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// IRC bridge configuration
	IRC IRCConfig `envPrefix:"IRC_"`

	// Outbound mail configuration
	Mail MailConfig `envPrefix:"MAIL_"`

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http,bridge"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.HTTP.Sanitize()
	c.IRC.Sanitize()
	c.Observability.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsBridgeEnabled returns true if the IRC bridge service is enabled.
func (c *AppConfig) IsBridgeEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeBridge]
}
