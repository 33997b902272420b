// Package sealsession implements stateless HTTP sessions sealed into a
// single client-held cookie. The cookie is the only persistence: a session
// record is filtered down to a configured subset, encrypted and signed into
// an opaque value, and reconstructed on the next request. When the access
// token inside the record has gone stale, Read transparently refreshes it
// against the identity provider and reseals the result before handing the
// session back.
//
// # Architecture boundaries
//
// The root package wires configuration, the cookie codec, the provider
// client factory, metrics, and audit together behind the Store API. The
// read/refresh and filter/seal protocols themselves live in internal/flows
// and stay free of HTTP, metrics, and audit concerns. Cryptography is
// confined to the seal package; provider specifics to the provider package.
//
// # What this package must NOT do
//
// The store never persists session state server-side, never retries a
// failed refresh, never falls back to a stale token after a refresh error,
// and never rewrites a collaborator error into a softer outcome. An
// unreadable cookie is reported as the error it is, not as an absent
// session.
package sealsession
