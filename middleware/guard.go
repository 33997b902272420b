package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/marcwael/sealsession"
)

type sessionContextKey struct{}

// SessionFromContext returns the session a guard injected for this request.
func SessionFromContext(ctx context.Context) (*sealsession.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*sealsession.Session)
	return sess, ok
}

// Populate resolves the request's session and injects it into the context
// when one exists. Requests without a session, and requests whose cookie or
// refresh fails, continue without one; the guard never rejects.
func Populate(store *sealsession.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := identityContext(r)

			sess, err := store.Read(ctx, w, r)
			if err != nil || sess == nil {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = context.WithValue(ctx, sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require resolves the request's session and rejects with 401 when there is
// none or the read fails.
func Require(store *sealsession.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := identityContext(r)

			sess, err := store.Read(ctx, w, r)
			if err != nil || sess == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityContext threads the caller's IP and a request correlation ID into
// the context for audit attribution. An inbound X-Request-ID wins; otherwise
// one is minted.
func identityContext(r *http.Request) context.Context {
	ctx := r.Context()

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		ctx = sealsession.WithClientIP(ctx, host)
	} else if r.RemoteAddr != "" {
		ctx = sealsession.WithClientIP(ctx, r.RemoteAddr)
	}

	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return sealsession.WithRequestID(ctx, requestID)
}
