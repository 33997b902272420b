package session

// Session is the fully populated in-memory authentication state for one
// user. All token fields are opaque bearer strings; User carries the raw
// identity claims as decoded from the provider's ID token.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	User map[string]any

	IDToken      string
	AccessToken  string
	RefreshToken string

	// CreatedAt and ExpiresAt are Unix timestamps in seconds. ExpiresAt is
	// the access-token expiry instant, not the cookie lifetime.
	CreatedAt int64
	ExpiresAt int64
}

// Persisted is the subset of a [Session] allowed to leave the process
// inside the sealed cookie. Token fields are present only when the
// matching store flag was enabled at filter time.
type Persisted struct {
	User      map[string]any `json:"user,omitempty"`
	CreatedAt int64          `json:"created_at,omitempty"`

	IDToken      string `json:"id_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`

	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// StoreFlags selects which token fields survive into the sealed cookie.
type StoreFlags struct {
	IDToken      bool
	AccessToken  bool
	RefreshToken bool
}

// Any reports whether at least one token kind is persisted. ExpiresAt is
// only meaningful in the cookie when some token accompanies it.
func (f StoreFlags) Any() bool {
	return f.IDToken || f.AccessToken || f.RefreshToken
}

// Empty reports whether p carries no session state at all. An unsealed
// cookie that decodes to an empty record is treated as "no session".
func (p *Persisted) Empty() bool {
	if p == nil {
		return true
	}
	return len(p.User) == 0 &&
		p.CreatedAt == 0 &&
		p.IDToken == "" &&
		p.AccessToken == "" &&
		p.RefreshToken == "" &&
		p.ExpiresAt == 0
}

// Live converts a persisted record back into a [Session]. Fields absent
// from the cookie stay zero; no value is invented.
func (p *Persisted) Live() *Session {
	if p == nil {
		return nil
	}
	return &Session{
		User:         p.User,
		IDToken:      p.IDToken,
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		CreatedAt:    p.CreatedAt,
		ExpiresAt:    p.ExpiresAt,
	}
}
