package sealsession

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/marcwael/sealsession/internal/flows"
	"github.com/marcwael/sealsession/session"
)

var errNilTokenSet = errors.New("sealsession: provider returned nil token set")

// Store defines a public type used by sealsession APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	config    Config
	flags     session.StoreFlags
	codec     Codec
	transport CookieTransport
	factory   ClientFactory
	audit     *auditDispatcher
	metrics   *Metrics
	now       func() time.Time
}

// Read resolves the caller's session from the sealed cookie on r. A missing
// or empty cookie yields (nil, nil). When the access token is stale and a
// refresh token is present, Read refreshes against the identity provider,
// reseals the result onto w, and returns the refreshed session; the refresh
// token from the cookie is kept through the exchange. Collaborator errors
// come back unmodified.
func (s *Store) Read(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	if s == nil || s.codec == nil {
		return nil, ErrStoreNotReady
	}
	if r == nil {
		return nil, ErrNilRequest
	}
	if w == nil {
		return nil, ErrNilResponse
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := s.now()

	result := flows.RunRead(ctx, flows.ReadDeps{
		CookieValue: func() (string, bool) {
			return s.transport.Cookie(r, s.config.Cookie.Name)
		},
		Unseal: func(value string) (*session.Persisted, error) {
			var p session.Persisted
			if err := s.codec.Unseal(s.config.Cookie.Name, value, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		Now:  s.now,
		Skew: s.config.Refresh.Skew,
		NewClient: func(ctx context.Context) (flows.RefreshFunc, error) {
			client, err := s.factory.Client(ctx)
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context, refreshToken string) (*session.Session, error) {
				tokens, err := client.Refresh(ctx, refreshToken)
				if err != nil {
					return nil, err
				}
				if tokens == nil {
					return nil, errNilTokenSet
				}
				return tokens.Session(s.now()), nil
			}, nil
		},
		Save: func(ctx context.Context, next *session.Session) (*session.Session, error) {
			return s.save(ctx, w, next)
		},
	})

	s.metrics.Observe(MetricReadLatency, s.now().Sub(start))

	switch result.Failure {
	case flows.ReadFailureUnseal:
		s.metrics.Inc(MetricUnsealFailure)
		s.emitAudit(ctx, auditEventUnsealRejected, "", false, result.Err, nil)
		return nil, result.Err
	case flows.ReadFailureClientFactory:
		s.metrics.Inc(MetricClientFactoryFailure)
		s.emitAudit(ctx, auditEventClientUnavailable, "", false, result.Err, nil)
		return nil, result.Err
	case flows.ReadFailureRefresh:
		s.metrics.Inc(MetricRefreshFailure)
		s.emitAudit(ctx, auditEventRefreshFailed, "", false, result.Err, nil)
		return nil, result.Err
	case flows.ReadFailureSave:
		// The save path already recorded its own metric and audit event.
		return nil, result.Err
	}

	if result.Absent {
		s.metrics.Inc(MetricReadMiss)
		return nil, nil
	}

	s.metrics.Inc(MetricReadHit)
	if result.Refreshed {
		s.metrics.Inc(MetricRefreshSuccess)
		s.emitAudit(ctx, auditEventSessionRefreshed, subjectOf(result.Session), true, nil, nil)
	}

	return result.Session, nil
}

// Save filters sess down to the configured store flags, seals the result,
// and writes it as a cookie on w. The returned session is the filtered
// record, never the input.
func (s *Store) Save(ctx context.Context, w http.ResponseWriter, sess *Session) (*Session, error) {
	if s == nil || s.codec == nil {
		return nil, ErrStoreNotReady
	}
	if w == nil {
		return nil, ErrNilResponse
	}
	if sess == nil {
		return nil, ErrNilSession
	}
	if ctx == nil {
		ctx = context.Background()
	}

	return s.save(ctx, w, sess)
}

func (s *Store) save(ctx context.Context, w http.ResponseWriter, sess *session.Session) (*session.Session, error) {
	result := flows.RunSave(ctx, sess, flows.SaveDeps{
		Flags: s.flags,
		Seal: func(p *session.Persisted) (string, error) {
			return s.codec.Seal(s.config.Cookie.Name, p)
		},
		WriteCookie: func(value string) {
			s.transport.SetCookie(w, s.cookie(value, int(s.config.Cookie.Lifetime.Seconds())))
		},
	})

	if result.Failure == flows.SaveFailureSeal {
		s.metrics.Inc(MetricSealFailure)
		s.emitAudit(ctx, auditEventSealFailed, subjectOf(sess), false, result.Err, nil)
		return nil, result.Err
	}

	s.metrics.Inc(MetricSaveSuccess)
	s.emitAudit(ctx, auditEventSessionSaved, subjectOf(result.Session), true, nil, nil)

	return result.Session, nil
}

// Clear expires the session cookie on w. It never fails on session content
// because there is nothing to decode.
func (s *Store) Clear(ctx context.Context, w http.ResponseWriter) error {
	if s == nil || s.codec == nil {
		return ErrStoreNotReady
	}
	if w == nil {
		return ErrNilResponse
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.transport.SetCookie(w, s.cookie("", -1))

	s.metrics.Inc(MetricSessionCleared)
	s.emitAudit(ctx, auditEventSessionCleared, "", true, nil, nil)

	return nil
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.config.Cookie.Name,
		Value:    value,
		Path:     s.config.Cookie.Path,
		Domain:   s.config.Cookie.Domain,
		MaxAge:   maxAge,
		SameSite: s.config.Cookie.SameSite,
		Secure:   s.config.Cookie.Secure,
		HttpOnly: s.config.Cookie.HTTPOnly,
	}
}

// CookieName describes the cookiename operation and its observable behavior.
//
// CookieName may return an error when input validation, dependency calls, or security checks fail.
// CookieName does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) CookieName() string {
	if s == nil {
		return ""
	}
	return s.config.Cookie.Name
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// Close drains and stops the audit dispatcher. The store stays usable for
// reads and saves afterwards; further audit events are discarded.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.audit.Close()
}
