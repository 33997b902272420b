// Package seal provides the authenticated-encryption codec that turns session
// records into opaque cookie values and back.
//
// # Sealing
//
// Values are serialized as JSON, encrypted with AES-256, and authenticated with
// HMAC-SHA256 via gorilla/securecookie. Both keys are derived from a single
// pre-shared secret with distinct labels. The sealed value is bound to the cookie
// name it was sealed under.
//
// # Key rotation
//
// [WithRotatedSecrets] keeps older secrets valid for unsealing while all new
// values are sealed with the primary secret, so secrets can be rotated without
// invalidating every live session at once.
//
// # Architecture boundaries
//
// This package owns key derivation and the seal/unseal transform. It does NOT
// decide what goes into the cookie, parse HTTP requests, or interpret session
// fields — the Store and the session package do.
//
// # What this package must NOT do
//
//   - Import sealsession or session (no upward imports).
//   - Swallow integrity failures: a bad value is always an error.
//   - Log or record secrets in any form.
package seal
