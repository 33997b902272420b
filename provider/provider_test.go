package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	IDToken      string `json:"id_token,omitempty"`
}

type issuerStub struct {
	server *httptest.Server

	tokenHandler func(w http.ResponseWriter, r *http.Request)
	tokenCalls   int
	lastForm     map[string]string
}

func newIssuerStub(t *testing.T) *issuerStub {
	t.Helper()

	stub := &issuerStub{}
	mux := http.NewServeMux()

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 stub.server.URL,
			"authorization_endpoint": stub.server.URL + "/authorize",
			"token_endpoint":         stub.server.URL + "/token",
			"jwks_uri":               stub.server.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		stub.tokenCalls++
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		stub.lastForm = map[string]string{}
		for k := range r.Form {
			stub.lastForm[k] = r.Form.Get(k)
		}
		stub.tokenHandler(w, r)
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *issuerStub) config() Config {
	return Config{
		Issuer:            s.server.URL,
		ClientID:          "test-client",
		ClientSecret:      "test-secret",
		RedirectURL:       "http://localhost/callback",
		SkipIDTokenVerify: true,
	}
}

func signedIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("signing id_token: %v", err)
	}
	return token
}

func TestRefreshUsesRefreshGrant(t *testing.T) {
	stub := newIssuerStub(t)
	stub.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken:  "new-access",
			TokenType:    "Bearer",
			RefreshToken: "rotated-refresh",
			ExpiresIn:    3600,
		})
	}

	p, err := New(context.Background(), stub.config())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tokens, err := p.Refresh(context.Background(), "my-refresh-token")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if stub.tokenCalls != 1 {
		t.Fatalf("token endpoint called %d times, want 1", stub.tokenCalls)
	}
	if got := stub.lastForm["grant_type"]; got != "refresh_token" {
		t.Fatalf("grant_type = %q, want refresh_token", got)
	}
	if got := stub.lastForm["refresh_token"]; got != "my-refresh-token" {
		t.Fatalf("refresh_token = %q", got)
	}

	if tokens.AccessToken != "new-access" {
		t.Fatalf("AccessToken = %q", tokens.AccessToken)
	}
	if tokens.Expiry.IsZero() || time.Until(tokens.Expiry) <= 0 {
		t.Fatalf("Expiry = %v, want a future time", tokens.Expiry)
	}
	if tokens.Claims != nil {
		t.Fatalf("Claims = %v without an id_token, want nil", tokens.Claims)
	}
}

func TestRefreshDecodesIDTokenClaims(t *testing.T) {
	stub := newIssuerStub(t)
	idToken := signedIDToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "user@example.com",
	})
	stub.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "new-access",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
			IDToken:     idToken,
		})
	}

	p, err := New(context.Background(), stub.config())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tokens, err := p.Refresh(context.Background(), "my-refresh-token")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if tokens.IDToken != idToken {
		t.Fatal("IDToken not carried through")
	}
	if tokens.Claims["sub"] != "user-1" {
		t.Fatalf("Claims = %v", tokens.Claims)
	}
}

func TestRefreshEmptyToken(t *testing.T) {
	stub := newIssuerStub(t)
	stub.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint reached with an empty refresh token")
	}

	p, err := New(context.Background(), stub.config())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := p.Refresh(context.Background(), ""); err != ErrEmptyRefreshToken {
		t.Fatalf("Refresh(\"\") error = %v, want ErrEmptyRefreshToken", err)
	}
}

func TestRefreshProviderErrorPropagates(t *testing.T) {
	stub := newIssuerStub(t)
	stub.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}

	p, err := New(context.Background(), stub.config())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := p.Refresh(context.Background(), "revoked-token"); err == nil {
		t.Fatal("Refresh() succeeded against an invalid_grant response")
	}
}

func TestExchangeRequiresIDToken(t *testing.T) {
	stub := newIssuerStub(t)
	stub.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "access",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	}

	p, err := New(context.Background(), stub.config())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := p.Exchange(context.Background(), "auth-code"); err != ErrNoIDToken {
		t.Fatalf("Exchange() error = %v, want ErrNoIDToken", err)
	}
}

func TestExchangeDecodesTokenSet(t *testing.T) {
	stub := newIssuerStub(t)
	idToken := signedIDToken(t, jwt.MapClaims{"sub": "user-9"})
	stub.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken:  "access",
			TokenType:    "Bearer",
			RefreshToken: "refresh",
			ExpiresIn:    3600,
			IDToken:      idToken,
		})
	}

	p, err := New(context.Background(), stub.config())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tokens, err := p.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if got := stub.lastForm["grant_type"]; got != "authorization_code" {
		t.Fatalf("grant_type = %q, want authorization_code", got)
	}
	if tokens.RefreshToken != "refresh" {
		t.Fatalf("RefreshToken = %q", tokens.RefreshToken)
	}
	if tokens.Claims["sub"] != "user-9" {
		t.Fatalf("Claims = %v", tokens.Claims)
	}
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	stub := newIssuerStub(t)
	stub.tokenHandler = func(w http.ResponseWriter, r *http.Request) {}

	p, err := New(context.Background(), stub.config())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	state := NewState()
	if state == "" {
		t.Fatal("NewState() returned empty state")
	}

	url := p.AuthCodeURL(state)
	for _, want := range []string{"state=" + state, "client_id=test-client", "access_type=offline"} {
		if !strings.Contains(url, want) {
			t.Fatalf("AuthCodeURL = %q, missing %q", url, want)
		}
	}
}

func TestLazyFactoryRetriesFailedDiscovery(t *testing.T) {
	// Point at a closed listener so the first discovery fails.
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	f := NewLazyFactory(Config{
		Issuer:            deadURL,
		ClientID:          "test-client",
		SkipIDTokenVerify: true,
	})

	if _, err := f.Client(context.Background()); err == nil {
		t.Fatal("Client() succeeded against a dead issuer")
	}

	// Repoint at a live issuer; the factory must not have cached the failure.
	stub := newIssuerStub(t)
	stub.tokenHandler = func(w http.ResponseWriter, r *http.Request) {}
	f.cfg.Issuer = stub.server.URL

	client, err := f.Client(context.Background())
	if err != nil {
		t.Fatalf("Client() after recovery error = %v", err)
	}
	if client == nil {
		t.Fatal("Client() returned nil client")
	}

	again, err := f.Client(context.Background())
	if err != nil {
		t.Fatalf("second Client() error = %v", err)
	}
	if again != client {
		t.Fatal("LazyFactory did not cache the resolved provider")
	}
}
