// Package session defines the two resolutions of authentication state handled by
// sealsession: the fully populated in-memory [Session] and the cookie-bound
// [Persisted] subset, connected by the total filtering function [Filter].
//
// # Two record types
//
// A live [Session] exists only for the duration of one request. The [Persisted]
// record is what actually survives inside the sealed cookie; which token fields it
// carries is decided exclusively by [StoreFlags] at filter time. The two types
// stay distinct: a field either went through [Filter] or it does not exist on
// the wire.
//
// # Architecture boundaries
//
// This package owns the session model, the persisted-field filtering rule, and the
// staleness rule ([Session.Stale]). It does NOT seal, parse cookies, or talk to an
// identity provider — those responsibilities belong to the Store and its
// collaborators.
//
// # What this package must NOT do
//
//   - Perform I/O of any kind.
//   - Import sealsession, seal, or provider (no upward imports).
//   - Mutate a session it did not create.
package session
