// Package provider implements the identity provider client side of the
// session store: OIDC discovery, the authorization-code login flow, and
// the refresh-token grant the store invokes when a session goes stale.
//
// # Architecture boundaries
//
// This package talks to the identity provider and nothing else. It never
// reads or writes cookies, never touches session filtering, and returns
// token material as plain facts for the root package to store or reject.
package provider
