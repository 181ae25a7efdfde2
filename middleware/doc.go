// Package middleware adapts consoleauth.Engine to net/http.
//
// [Guard] reads the Authorization header, calls Engine.Authenticate and
// stores the resulting identity in the request context. Every failure is a
// bare 401 so callers cannot tell an expired token from a forged one.
//
// This package does not parse tokens or touch Redis itself.
package middleware
