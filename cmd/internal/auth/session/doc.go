// Package session implements Atrium's session manager.
//
// It orchestrates account creation, credential verification, opaque
// session-token issuance, token resolution with expiry enforcement, and
// revocation against the identity and session stores.
//
// Tokens are opaque random strings handed to the client exactly once;
// the stores keep only their digests. A session is valid iff it exists
// and now < expires_at; validity is re-checked on every resolution and
// never cached.
package session
