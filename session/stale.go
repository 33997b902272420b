package session

import "time"

// DefaultSkew is the clock-skew margin subtracted from the expiry check so
// a token is refreshed slightly before its true expiry rather than exactly
// at it.
const DefaultSkew = 60 * time.Second

// Stale reports whether the session's access token must be refreshed
// before the session is usable. A session is stale only when BOTH an
// expiry and a refresh token are present and the expiry instant, pulled
// forward by skew, has passed. Sessions without a refresh token are never
// stale: there is nothing to refresh them with.
func (s *Session) Stale(now time.Time, skew time.Duration) bool {
	if s == nil || s.ExpiresAt == 0 || s.RefreshToken == "" {
		return false
	}
	return s.ExpiresAt*1000-skew.Milliseconds() < now.UnixMilli()
}
