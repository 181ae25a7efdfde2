package consoleauth

import (
	"context"
	"net/netip"
	"strings"
	"unicode/utf8"
)

// maxUserAgentLen caps the user agent carried into audit records.
const maxUserAgentLen = 256

// RequestInfo is the caller metadata the Engine reads from a context for
// per-IP throttling and audit records.
type RequestInfo struct {
	ClientIP  string
	UserAgent string
}

type requestInfoContextKey struct{}

// WithRequestInfo attaches info to ctx. ClientIP is canonicalized so every
// spelling of one address shares a throttle bucket: brackets and zones are
// dropped and IPv4-mapped IPv6 addresses become plain IPv4. An unparsable
// ClientIP is kept trimmed. UserAgent is cut to 256 bytes.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	info.ClientIP = normalizeClientIP(info.ClientIP)
	info.UserAgent = truncateUTF8(strings.TrimSpace(info.UserAgent), maxUserAgentLen)
	return context.WithValue(ctx, requestInfoContextKey{}, info)
}

// WithClientIP attaches the caller's IP address to ctx, keeping any user
// agent already present.
func WithClientIP(ctx context.Context, ip string) context.Context {
	info := requestInfoFromContext(ctx)
	info.ClientIP = ip
	return WithRequestInfo(ctx, info)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx, keeping any
// client IP already present.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	info := requestInfoFromContext(ctx)
	info.UserAgent = userAgent
	return WithRequestInfo(ctx, info)
}

// RequestInfoFromContext returns the metadata attached by [WithRequestInfo].
func RequestInfoFromContext(ctx context.Context) RequestInfo {
	return requestInfoFromContext(ctx)
}

func requestInfoFromContext(ctx context.Context) RequestInfo {
	if ctx == nil {
		return RequestInfo{}
	}

	info, _ := ctx.Value(requestInfoContextKey{}).(RequestInfo)
	return info
}

func clientIPFromContext(ctx context.Context) string {
	return requestInfoFromContext(ctx).ClientIP
}

func normalizeClientIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if strings.HasPrefix(ip, "[") && strings.HasSuffix(ip, "]") {
		ip = ip[1 : len(ip)-1]
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip
	}
	return addr.WithZone("").Unmap().String()
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
