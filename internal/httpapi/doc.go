// Package httpapi wires the consoleauth engine to HTTP routes.
//
//	POST /auth/login  {"username","password"} -> {"accessToken","user"}
//	GET  /auth/me     bearer-guarded identity
//	GET  /metrics     Prometheus exposition
//	GET  /healthz     liveness
package httpapi
