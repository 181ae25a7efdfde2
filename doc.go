// Package consoleauth is the credential and session core of a login-gated
// configuration console: scrypt password verification, HS256 session tokens,
// and an [Engine] that ties them to a user store.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// consoleauth is the public surface. It exposes [Engine], [Builder], [Config]
// and value types. Hashing lives in password/, token encoding in jwt/, and
// throttling, audit dispatch and metric storage under internal/.
//
// # What this package must NOT do
//
//   - Log or audit passwords, stored hashes, tokens or the signing secret.
//   - Tell callers why authentication failed. Every credential failure is
//     [ErrInvalidCredentials] and every token failure is [ErrUnauthorized].
//   - Keep server-side session state. Tokens are valid until exp.
//
// # Cost
//
// Login, ChangePassword and ProvisionUser each run the scrypt KDF (tens of
// milliseconds, ~16 MiB). Authenticate is one HMAC and a JSON decode.
package consoleauth
