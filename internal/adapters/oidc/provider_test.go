package oidc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavechat/wavechat-api/internal/ports"
)

func TestNewProviderValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  ProviderConfig
	}{
		{"missing client id", ProviderConfig{ClientSecret: "s", RedirectURL: "r", IssuerURL: "i"}},
		{"missing client secret", ProviderConfig{ClientID: "c", RedirectURL: "r", IssuerURL: "i"}},
		{"missing redirect url", ProviderConfig{ClientID: "c", ClientSecret: "s", IssuerURL: "i"}},
		{"missing issuer", ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "r"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewProvider(tc.cfg)
			require.Error(t, err)
		})
	}
}

func TestRandomToken(t *testing.T) {
	t.Parallel()

	a, err := randomToken(32)
	require.NoError(t, err)
	b, err := randomToken(32)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Len(t, b, 32)
	assert.NotEqual(t, a, b)

	empty, err := randomToken(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestIDTokenClaimsIdentity(t *testing.T) {
	t.Parallel()

	t.Run("prefers name claim", func(t *testing.T) {
		t.Parallel()
		c := idTokenClaims{Email: "User@Example.Com", Name: "Ada Lovelace", GivenName: "Ada", FamilyName: "Lovelace"}
		got := c.identity()
		assert.Equal(t, "user@example.com", got.Email)
		assert.Equal(t, "Ada Lovelace", got.Name)
	})

	t.Run("composes given and family names", func(t *testing.T) {
		t.Parallel()
		c := idTokenClaims{Email: "g@example.com", GivenName: "Grace", FamilyName: "Hopper"}
		assert.Equal(t, "Grace Hopper", c.identity().Name)
	})

	t.Run("tolerates missing name claims", func(t *testing.T) {
		t.Parallel()
		c := idTokenClaims{Email: "anon@example.com"}
		got := c.identity()
		assert.Empty(t, got.Name)
		assert.False(t, strings.Contains(got.Name, " "))
	})
}

var _ ports.AuthProvider = (*Provider)(nil)
