package flows

import (
	"context"

	"github.com/marcwael/sealsession/session"
)

// SaveFailureKind classifies save flow failures for root-level mapping.
type SaveFailureKind int

const (
	SaveFailureNone SaveFailureKind = iota
	SaveFailureSeal
)

// SaveDeps captures save flow dependencies.
type SaveDeps struct {
	Flags       session.StoreFlags
	Seal        func(p *session.Persisted) (string, error)
	WriteCookie func(value string)
}

// SaveResult carries either the persisted session or failure metadata.
type SaveResult struct {
	Failure SaveFailureKind
	Err     error
	Session *session.Session
}

// RunSave filters the session down to its persisted subset, seals it, and
// writes the cookie. The returned session is the filtered record, never
// the input.
func RunSave(_ context.Context, s *session.Session, deps SaveDeps) SaveResult {
	persisted := session.Filter(s, deps.Flags)

	sealed, err := deps.Seal(persisted)
	if err != nil {
		return SaveResult{
			Failure: SaveFailureSeal,
			Err:     err,
		}
	}

	deps.WriteCookie(sealed)

	return SaveResult{Session: persisted.Live()}
}
