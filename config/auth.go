package config

import "time"

// OAuthConfig contains OAuth/OIDC configuration. When Enabled is false the
// OAuth login routes return not found and only password login is offered.
type OAuthConfig struct {
	Enabled      bool   `env:"ENABLED"       envDefault:"false"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	IssuerURL    string `env:"ISSUER_URL"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// SessionLifetime is how long a session record lives in the store.
	// The cookie max-age is derived from the same value.
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"168h"`

	// OAuth configuration (used when OAUTH_ENABLED=true).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionLifetime < time.Minute {
		a.SessionLifetime = time.Minute
	}
	if a.OAuth.Enabled && (a.OAuth.ClientID == "" || a.OAuth.IssuerURL == "") {
		a.OAuth.Enabled = false
	}
}
