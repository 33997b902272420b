package flows

import (
	"context"
	"time"

	"github.com/marcwael/sealsession/session"
)

// ReadFailureKind classifies read flow failures for root-level mapping.
type ReadFailureKind int

const (
	ReadFailureNone ReadFailureKind = iota
	ReadFailureUnseal
	ReadFailureClientFactory
	ReadFailureRefresh
	ReadFailureSave
)

// RefreshFunc exchanges a refresh token for a new live session. The root
// package builds it from the provider client and the token-set mapping.
type RefreshFunc func(ctx context.Context, refreshToken string) (*session.Session, error)

// ReadDeps captures read flow dependencies.
type ReadDeps struct {
	CookieValue func() (string, bool)
	Unseal      func(value string) (*session.Persisted, error)
	Now         func() time.Time
	Skew        time.Duration
	NewClient   func(ctx context.Context) (RefreshFunc, error)
	Save        func(ctx context.Context, s *session.Session) (*session.Session, error)
}

// ReadResult carries either the resolved session or failure metadata.
// Absent means "no session" — a normal outcome, not a failure.
type ReadResult struct {
	Failure   ReadFailureKind
	Err       error
	Absent    bool
	Refreshed bool
	Session   *session.Session
}

// RunRead executes the read/refresh protocol without root package
// dependencies. Collaborator errors are carried through unmodified: no
// retry, no downgrade of an integrity failure to an absent session, no
// fallback to the stale token when the refresh call fails.
func RunRead(ctx context.Context, deps ReadDeps) ReadResult {
	value, ok := deps.CookieValue()
	if !ok || value == "" {
		return ReadResult{Absent: true}
	}

	persisted, err := deps.Unseal(value)
	if err != nil {
		return ReadResult{
			Failure: ReadFailureUnseal,
			Err:     err,
		}
	}
	if persisted.Empty() {
		return ReadResult{Absent: true}
	}

	live := persisted.Live()
	if !live.Stale(deps.Now(), deps.Skew) {
		return ReadResult{Session: live}
	}

	refresh, err := deps.NewClient(ctx)
	if err != nil {
		return ReadResult{
			Failure: ReadFailureClientFactory,
			Err:     err,
		}
	}

	next, err := refresh(ctx, live.RefreshToken)
	if err != nil {
		return ReadResult{
			Failure: ReadFailureRefresh,
			Err:     err,
		}
	}

	// Refresh responses are assumed not to rotate the refresh token, so
	// the one from the cookie stays authoritative.
	next.RefreshToken = live.RefreshToken

	saved, err := deps.Save(ctx, next)
	if err != nil {
		return ReadResult{
			Failure: ReadFailureSave,
			Err:     err,
		}
	}

	return ReadResult{
		Refreshed: true,
		Session:   saved,
	}
}
