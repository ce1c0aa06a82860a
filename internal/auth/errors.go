package auth

import "errors"

var (
	// ErrTokenInvalid is returned when a token fails signature, expiry or
	// claim validation.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrMalformedHash is returned when a stored password hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed password hash")

	// ErrMissingSecret is returned when a token issuer has no signing secret.
	ErrMissingSecret = errors.New("token signing secret is empty")
)
