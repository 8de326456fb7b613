package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/secretwall/secretwall/internal/config"
	"github.com/secretwall/secretwall/internal/errs"
	"github.com/secretwall/secretwall/pkg/logger"
	"golang.org/x/oauth2"
)

// Provider runs the authorization-code leg of the Google handshake: it builds
// the consent URL and turns a returned code into the provider's profile id.
type Provider struct {
	oauth    *oauth2.Config
	verifier TokenVerifier
}

func NewProvider(cfg *oauth2.Config, v TokenVerifier) *Provider {
	return &Provider{oauth: cfg, verifier: v}
}

// NewGoogleProvider discovers Google's endpoints and signing keys. In
// insecure mode discovery is skipped, the configured endpoints are used and
// ID token signatures are not checked.
func NewGoogleProvider(ctx context.Context, cfg config.GoogleConfig) (*Provider, error) {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile"},
	}
	if cfg.Insecure {
		logger.Warn("enabling insecure OIDC verifier (integration mode)")
		oc.Endpoint = oauth2.Endpoint{AuthURL: cfg.AuthURL, TokenURL: cfg.TokenURL}
		return NewProvider(oc, NewInsecureVerifier()), nil
	}
	ver, err := NewVerifier(ctx, cfg.Issuer, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	oc.Endpoint = ver.Endpoint()
	return NewProvider(oc, ver), nil
}

// AuthCodeURL is where the browser is sent to grant consent.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens, verifies the ID token
// and returns its subject. Every failure wraps errs.ErrProvider.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: code exchange: %v", errs.ErrProvider, err)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return "", fmt.Errorf("%w: token response has no id_token", errs.ErrProvider)
	}
	idt, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%w: verify id token: %v", errs.ErrProvider, err)
	}
	var claims struct {
		Sub string `json:"sub"`
	}
	if err := idt.Claims(&claims); err != nil {
		return "", fmt.Errorf("%w: parse claims: %v", errs.ErrProvider, err)
	}
	if claims.Sub == "" {
		return "", fmt.Errorf("%w: id token has no subject", errs.ErrProvider)
	}
	return claims.Sub, nil
}
