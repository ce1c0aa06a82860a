// Package auth provides credential handling for catalog accounts.
//
// It covers:
//   - Argon2id password hashing in PHC string format
//   - Signed JWT access tokens (HS256) identifying an account
//
// Tokens are validated by signature and expiry only; no database lookup is
// needed to authenticate a request.
package auth
