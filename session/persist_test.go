package session

import (
	"testing"
)

func fullSession() *Session {
	return &Session{
		User:         map[string]any{"sub": "u-1", "email": "alice@example.com"},
		IDToken:      "id-tok",
		AccessToken:  "access-tok",
		RefreshToken: "refresh-tok",
		CreatedAt:    1700000000,
		ExpiresAt:    1700003600,
	}
}

func TestFilterAlwaysKeepsUserAndCreatedAt(t *testing.T) {
	p := Filter(fullSession(), StoreFlags{})

	if p.User == nil || p.User["sub"] != "u-1" {
		t.Fatalf("expected user claims to survive filtering, got %v", p.User)
	}
	if p.CreatedAt != 1700000000 {
		t.Fatalf("expected created_at to survive filtering, got %d", p.CreatedAt)
	}
	if p.IDToken != "" || p.AccessToken != "" || p.RefreshToken != "" {
		t.Fatalf("expected all tokens dropped with no flags, got %+v", p)
	}
	if p.ExpiresAt != 0 {
		t.Fatalf("expected expires_at dropped with no token flags, got %d", p.ExpiresAt)
	}
}

func TestFilterFlagGating(t *testing.T) {
	tests := []struct {
		name        string
		flags       StoreFlags
		wantID      string
		wantAccess  string
		wantRefresh string
		wantExpiry  int64
	}{
		{
			name:       "only access token flag",
			flags:      StoreFlags{AccessToken: true},
			wantAccess: "access-tok",
			wantExpiry: 1700003600,
		},
		{
			name:        "refresh flag keeps expiry too",
			flags:       StoreFlags{RefreshToken: true},
			wantRefresh: "refresh-tok",
			wantExpiry:  1700003600,
		},
		{
			name:        "all flags",
			flags:       StoreFlags{IDToken: true, AccessToken: true, RefreshToken: true},
			wantID:      "id-tok",
			wantAccess:  "access-tok",
			wantRefresh: "refresh-tok",
			wantExpiry:  1700003600,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Filter(fullSession(), tt.flags)
			if p.IDToken != tt.wantID {
				t.Fatalf("id token: want %q, got %q", tt.wantID, p.IDToken)
			}
			if p.AccessToken != tt.wantAccess {
				t.Fatalf("access token: want %q, got %q", tt.wantAccess, p.AccessToken)
			}
			if p.RefreshToken != tt.wantRefresh {
				t.Fatalf("refresh token: want %q, got %q", tt.wantRefresh, p.RefreshToken)
			}
			if p.ExpiresAt != tt.wantExpiry {
				t.Fatalf("expires_at: want %d, got %d", tt.wantExpiry, p.ExpiresAt)
			}
		})
	}
}

func TestFilterNeverInventsFields(t *testing.T) {
	s := fullSession()
	s.AccessToken = ""
	s.ExpiresAt = 0

	p := Filter(s, StoreFlags{IDToken: true, AccessToken: true, RefreshToken: true})

	if p.AccessToken != "" {
		t.Fatalf("flag on but source empty: access token must stay empty, got %q", p.AccessToken)
	}
	if p.ExpiresAt != 0 {
		t.Fatalf("flags on but source has no expiry: expires_at must stay zero, got %d", p.ExpiresAt)
	}
}

func TestFilterNilSessionYieldsEmptyRecord(t *testing.T) {
	p := Filter(nil, StoreFlags{IDToken: true})
	if !p.Empty() {
		t.Fatalf("expected empty persisted record for nil session, got %+v", p)
	}
}

func TestPersistedRoundTripThroughLive(t *testing.T) {
	p := Filter(fullSession(), StoreFlags{IDToken: true, AccessToken: true, RefreshToken: true})
	live := p.Live()

	if live.IDToken != "id-tok" || live.AccessToken != "access-tok" || live.RefreshToken != "refresh-tok" {
		t.Fatalf("tokens lost in persisted->live conversion: %+v", live)
	}
	if live.CreatedAt != 1700000000 || live.ExpiresAt != 1700003600 {
		t.Fatalf("timestamps lost in persisted->live conversion: %+v", live)
	}
}

func TestEmptyDetection(t *testing.T) {
	var nilRecord *Persisted
	if !nilRecord.Empty() {
		t.Fatal("nil record must be empty")
	}
	if !(&Persisted{}).Empty() {
		t.Fatal("zero record must be empty")
	}
	if (&Persisted{CreatedAt: 1}).Empty() {
		t.Fatal("record with created_at must not be empty")
	}
	if (&Persisted{User: map[string]any{"sub": "x"}}).Empty() {
		t.Fatal("record with user claims must not be empty")
	}
}
