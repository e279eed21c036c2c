package config

import (
	"strings"
	"time"
)

// IRCConfig contains IRC bridge connection configuration.
type IRCConfig struct {
	// Server is the IRC server address in host:port form.
	Server string `env:"SERVER" envDefault:"localhost:6667"`

	// Nick is the nickname the bridge registers with. Inbound messages from
	// this nick are ignored so relayed traffic never loops back.
	Nick string `env:"NICK" envDefault:"wavechat-bridge"`

	// Username is the IRC username (ident). Defaults to Nick when empty.
	Username string `env:"USERNAME"`

	// Password is the server password, if the network requires one.
	Password string `env:"PASSWORD"`

	// DefaultChannel is joined right after registration, before the chat
	// channels are rejoined.
	DefaultChannel string `env:"DEFAULT_CHANNEL" envDefault:"#wavechat"`

	// UseTLS enables TLS for the IRC connection.
	UseTLS bool `env:"USE_TLS" envDefault:"false"`

	// SkipTLSVerify disables certificate verification. Development only.
	SkipTLSVerify bool `env:"SKIP_TLS_VERIFY" envDefault:"false"`

	// HandlerTimeout bounds how long one inbound message may spend in the
	// persist-and-broadcast pipeline.
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to IRC configuration values.
func (c *IRCConfig) Sanitize() {
	c.Server = strings.TrimSpace(c.Server)
	c.Nick = strings.TrimSpace(c.Nick)
	c.DefaultChannel = strings.TrimSpace(c.DefaultChannel)
	if c.Username == "" {
		c.Username = c.Nick
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = 10 * time.Second
	}
}
