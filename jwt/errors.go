package jwt

import "errors"

var (
	// ErrMalformedToken is returned when a token does not have exactly three segments.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature is returned when the signature does not match the secret.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMalformedPayload is returned when an authenticated payload is not a JSON object.
	ErrMalformedPayload = errors.New("malformed token payload")
	// ErrExpiredToken is returned when exp is missing, non-numeric, or in the past.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidTTL is returned for an expiresIn value outside the supported shapes.
	ErrInvalidTTL = errors.New("invalid token ttl")
	// ErrMissingSecret is returned when the signing secret is empty.
	ErrMissingSecret = errors.New("missing token secret")
)
