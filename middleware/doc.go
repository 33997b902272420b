// Package middleware exposes HTTP middleware adapters for session-backed
// request handling built on top of sealsession.Store reads.
//
// # Guards
//
//   - [Populate] — resolves the session when present, continues either way.
//   - [Require] — rejects requests that do not resolve to a session.
//
// Each guard calls Store.Read, which transparently refreshes stale tokens
// and reseals the cookie, then injects the resolved session into the
// request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Store calls. It does NOT
// implement session logic itself — reading, refreshing, and resealing are
// delegated to Store.Read.
//
// # What this package must NOT do
//
//   - Unseal cookies directly (delegates to the Store codec).
//   - Call the identity provider (Store.Read drives refresh).
//   - Distinguish error causes beyond pass/reject.
package middleware
