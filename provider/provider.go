package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/marcwael/sealsession"
)

var (
	// ErrNoIDToken is an exported constant or variable used by the provider client.
	ErrNoIDToken = errors.New("provider: token response carried no id_token")
	// ErrEmptyRefreshToken is an exported constant or variable used by the provider client.
	ErrEmptyRefreshToken = errors.New("provider: empty refresh token")
)

// Config carries the OIDC client settings resolved against one issuer.
type Config struct {
	// Issuer is the OIDC issuer URL used for discovery.
	Issuer string
	// ClientID and ClientSecret identify this relying party.
	ClientID     string
	ClientSecret string
	// RedirectURL receives the authorization code callback.
	RedirectURL string
	// Scopes defaults to openid, profile, email when empty.
	Scopes []string
	// SkipIDTokenVerify disables signature verification of id_tokens and
	// parses their claims without validation. Only for providers whose
	// responses arrive over an already-authenticated channel.
	SkipIDTokenVerify bool
}

// Provider is an identity provider client resolved through OIDC discovery.
// It implements [sealsession.Client] and, through [Factory], the factory
// interface the session store refreshes against.
type Provider struct {
	cfg      Config
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// New resolves the issuer's endpoints through OIDC discovery and returns a
// ready client. Discovery performs network I/O; ctx bounds it.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, errors.New("provider: issuer and client id are required")
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("provider: discovery failed: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	p := &Provider{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       scopes,
		},
	}
	if !cfg.SkipIDTokenVerify {
		p.verifier = oidcProvider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	}

	return p, nil
}

// NewState mints an unguessable state nonce for the authorization redirect.
func NewState() string {
	return uuid.NewString()
}

// AuthCodeURL builds the authorization URL carrying state. Offline access
// is requested so the provider issues a refresh token.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for a token set. The id_token is
// verified against the issuer keys unless verification was disabled, and
// its claims populate the token set.
func (p *Provider) Exchange(ctx context.Context, code string) (*sealsession.TokenSet, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("provider: code exchange failed: %w", err)
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		return nil, ErrNoIDToken
	}

	claims, err := p.claims(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	return &sealsession.TokenSet{
		IDToken:      rawIDToken,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
		Claims:       claims,
	}, nil
}

// Refresh exchanges refreshToken for a fresh token set using the refresh
// grant. Providers that return a new id_token get its claims decoded; ones
// that do not leave Claims nil so the session store keeps the stored
// profile.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*sealsession.TokenSet, error) {
	if refreshToken == "" {
		return nil, ErrEmptyRefreshToken
	}

	source := p.oauth.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		// Force the refresh grant even when the zero expiry would read as
		// "still valid".
		Expiry: time.Now().Add(-time.Minute),
	})

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("provider: refresh failed: %w", err)
	}

	out := &sealsession.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}

	if rawIDToken, _ := token.Extra("id_token").(string); rawIDToken != "" {
		out.IDToken = rawIDToken
		claims, err := p.claims(ctx, rawIDToken)
		if err != nil {
			return nil, err
		}
		out.Claims = claims
	}

	return out, nil
}

func (p *Provider) claims(ctx context.Context, rawIDToken string) (map[string]any, error) {
	if p.verifier != nil {
		idToken, err := p.verifier.Verify(ctx, rawIDToken)
		if err != nil {
			return nil, fmt.Errorf("provider: id_token verification failed: %w", err)
		}
		var claims map[string]any
		if err := idToken.Claims(&claims); err != nil {
			return nil, fmt.Errorf("provider: id_token claims parse failed: %w", err)
		}
		return claims, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return nil, fmt.Errorf("provider: id_token parse failed: %w", err)
	}
	return map[string]any(claims), nil
}

// Factory adapts a built [Provider] to [sealsession.ClientFactory]. The
// same client is handed out on every call; it is safe for concurrent use.
type Factory struct {
	provider *Provider
}

// NewFactory describes the newfactory operation and its observable behavior.
//
// NewFactory may return an error when input validation, dependency calls, or security checks fail.
// NewFactory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewFactory(p *Provider) *Factory {
	return &Factory{provider: p}
}

// Client describes the client operation and its observable behavior.
//
// Client may return an error when input validation, dependency calls, or security checks fail.
// Client does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *Factory) Client(context.Context) (sealsession.Client, error) {
	if f == nil || f.provider == nil {
		return nil, errors.New("provider: factory has no provider")
	}
	return f.provider, nil
}

// LazyFactory resolves the provider through discovery on first use instead
// of at construction. Useful when the issuer may be unreachable at startup.
type LazyFactory struct {
	cfg Config

	mu       sync.Mutex
	resolved *Provider
}

// NewLazyFactory describes the newlazyfactory operation and its observable behavior.
//
// NewLazyFactory may return an error when input validation, dependency calls, or security checks fail.
// NewLazyFactory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewLazyFactory(cfg Config) *LazyFactory {
	return &LazyFactory{cfg: cfg}
}

// Client resolves the provider on first call and caches it. A failed
// discovery is not cached; the next call retries.
func (f *LazyFactory) Client(ctx context.Context) (sealsession.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resolved != nil {
		return f.resolved, nil
	}

	p, err := New(ctx, f.cfg)
	if err != nil {
		return nil, err
	}
	f.resolved = p
	return p, nil
}
