package config

// MailConfig contains SMTP configuration for transactional email
// (verification, password reset, and two-factor codes).
type MailConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`

	// From is the sender address on outgoing mail.
	From string `env:"FROM" envDefault:"no-reply@wavechat.local"`

	// LinkBaseURL is the public frontend origin used to build verification
	// and reset links. Defaults to the HTTP base URL when empty.
	LinkBaseURL string `env:"LINK_BASE_URL"`
}
