// Package token provides session token generation and hashing primitives for Atrium.
//
// It is the single source of truth for bearer-token handling:
//   - New mints opaque, cryptographically random tokens (hex-encoded).
//   - Stored sessions keep only a digest of the token, never the plaintext.
//
// Digest behavior:
//   - Default dev/back-compat mode: SHA-256(token) when no HMAC key is configured.
//   - Production-enforced mode: HMAC-SHA256(token, key) when policy requires it.
//   - Stable 64-char hex output for storage and constant-time comparison.
//
// Environment:
//   - ATRIUM_TOKEN_HMAC_KEY: when set, enables HMAC mode.
//
// Policy:
//   - If RequireTokenHMAC=true, callers MUST enforce a minimum key size (>= 32 bytes)
//     and MUST use HMAC (no SHA fallback).
package token
