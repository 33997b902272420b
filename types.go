package sealsession

import (
	"context"
	"net/http"
	"time"

	"github.com/marcwael/sealsession/session"
)

// Session is the authentication state carried by one sealed cookie. See
// [session.Session] for field semantics.
type Session = session.Session

// TokenSet is the result of one token exchange against the identity
// provider. Claims carries the decoded ID-token claims when the provider
// client extracted them.
//
// TokenSet instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenSet struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Claims       map[string]any
}

// Session maps the token set into a live [Session] created at now. The
// refresh token is carried over as-is; [Store.Read] overrides it with the
// cookie's token after a refresh regardless.
func (t *TokenSet) Session(now time.Time) *Session {
	if t == nil {
		return nil
	}

	s := &Session{
		User:         t.Claims,
		IDToken:      t.IDToken,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		CreatedAt:    now.Unix(),
	}
	if !t.Expiry.IsZero() {
		s.ExpiresAt = t.Expiry.Unix()
	}
	return s
}

// Codec seals a structured record into an opaque string bound to a cookie
// name and reverses that transform. Implementations must fail on any
// integrity or format violation instead of returning partial data.
// [seal.Sealer] is the default implementation.
type Codec interface {
	Seal(name string, v any) (string, error)
	Unseal(name, value string, dst any) error
}

// Client exchanges a refresh token for a new token set against the
// identity provider. The call may block on network I/O; cancellation is
// caller-driven through ctx and no timeout is imposed by the store.
type Client interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}

// ClientFactory produces identity provider clients. The factory is invoked
// once per refresh, never for reads that resolve without one.
type ClientFactory interface {
	Client(ctx context.Context) (Client, error)
}

// ClientFactoryFunc adapts a plain function to the [ClientFactory]
// interface.
type ClientFactoryFunc func(ctx context.Context) (Client, error)

// Client describes the client operation and its observable behavior.
//
// Client may return an error when input validation, dependency calls, or security checks fail.
// Client does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f ClientFactoryFunc) Client(ctx context.Context) (Client, error) {
	return f(ctx)
}

// CookieTransport extracts the named cookie from an inbound request and
// serializes cookies onto an outbound response. The default implementation
// uses net/http directly.
type CookieTransport interface {
	Cookie(r *http.Request, name string) (string, bool)
	SetCookie(w http.ResponseWriter, cookie *http.Cookie)
}

type httpTransport struct{}

func (httpTransport) Cookie(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (httpTransport) SetCookie(w http.ResponseWriter, cookie *http.Cookie) {
	http.SetCookie(w, cookie)
}
