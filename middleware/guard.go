package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/MrEthical07/consoleauth"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the identity stored by [Guard].
func AuthResultFromContext(ctx context.Context) (*consoleauth.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*consoleauth.AuthResult)
	return res, ok
}

// Guard rejects requests without a valid bearer token with 401.
//
// The client IP and user agent are attached to the request context before
// authentication so token rejections carry them in audit events.
func Guard(engine *consoleauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := RequestContext(r)
			res, err := engine.Authenticate(ctx, token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestContext returns r's context carrying the client IP and user agent.
func RequestContext(r *http.Request) context.Context {
	return consoleauth.WithRequestInfo(r.Context(), consoleauth.RequestInfo{
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
