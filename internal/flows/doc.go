// Package flows implements the session read/refresh/write protocol free of root
// package dependencies.
//
// Each flow takes a Deps struct of injected functions and returns a Result value
// carrying either the outcome or a failure kind plus the unmodified collaborator
// error. The root package owns the mapping from failure kinds to metrics and
// audit events; this package owns only the decision logic: when a cookie yields a
// session, when that session is stale, and how a refreshed session is rebuilt and
// persisted.
//
// # What this package must NOT do
//
//   - Touch net/http, the codec, or the identity provider directly.
//   - Retry, wrap, or reclassify collaborator errors.
//   - Import sealsession (no upward imports).
package flows
