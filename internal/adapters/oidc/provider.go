package oidc

// Package oidc implements the OAuth/OIDC login adapter. Accounts created
// through this path carry no local password.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/wavechat/wavechat-api/internal/ports"
	"golang.org/x/oauth2"
)

// Provider implements ports.AuthProvider against a discovered OIDC issuer.
type Provider struct {
	config   *oauth2.Config
	verifier *gooidc.IDTokenVerifier
	op       *gooidc.Provider
}

// ProviderConfig holds the settings needed to talk to the identity provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	IssuerURL    string
	HTTPClient   *http.Client // optional
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider performs OIDC discovery against the configured issuer and
// returns a ready provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("oidc: client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("oidc: client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("oidc: redirect URL is required")
	case cfg.IssuerURL == "":
		return nil, errors.New("oidc: issuer URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		op:       op,
	}, nil
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("oidc: redirect URL is required")
	}

	state, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.Identity, error) {
	switch {
	case in.Code == "":
		return ports.Identity{}, errors.New("oidc: authorization code is required")
	case in.Nonce == "":
		return ports.Identity{}, errors.New("oidc: nonce is required")
	}

	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return ports.Identity{}, fmt.Errorf("exchange code: %w", err)
	}

	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return ports.Identity{}, errors.New("oidc: missing id_token in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return ports.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return ports.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if claims.Nonce != in.Nonce {
		return ports.Identity{}, errors.New("oidc: nonce mismatch")
	}

	ident := claims.identity()
	if ident.Email == "" {
		if err := p.fillFromUserInfo(ctx, token, &ident); err != nil {
			return ports.Identity{}, fmt.Errorf("fetch userinfo: %w", err)
		}
	}
	if ident.Email == "" {
		return ports.Identity{}, errors.New("oidc: provider returned no email claim")
	}

	ident.ExpiresAt = time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		ident.ExpiresAt = token.Expiry
	}
	return ident, nil
}

type idTokenClaims struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Nonce      string `json:"nonce"`
}

func (c idTokenClaims) identity() ports.Identity {
	name := c.Name
	if name == "" {
		name = strings.TrimSpace(c.GivenName + " " + c.FamilyName)
	}
	return ports.Identity{Email: strings.ToLower(c.Email), Name: name}
}

func (p *Provider) fillFromUserInfo(ctx context.Context, token *oauth2.Token, ident *ports.Identity) error {
	ui, err := p.op.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return err
	}
	var claims idTokenClaims
	if err := ui.Claims(&claims); err != nil {
		return fmt.Errorf("decode userinfo claims: %w", err)
	}
	got := claims.identity()
	if ident.Email == "" {
		ident.Email = got.Email
	}
	if ident.Name == "" {
		ident.Name = got.Name
	}
	return nil
}

// randomToken returns a URL-safe random string of exactly n characters.
func randomToken(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
