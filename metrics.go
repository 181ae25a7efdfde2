package consoleauth

import (
	internalmetrics "github.com/MrEthical07/consoleauth/internal/metrics"
)

// MetricID identifies a counter or histogram in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts logins that issued a token.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure counts logins rejected with invalid credentials.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricLoginRateLimited counts logins refused by the throttle.
	MetricLoginRateLimited = MetricID(internalmetrics.MetricLoginRateLimited)
	// MetricTokenIssued counts session tokens issued.
	MetricTokenIssued = MetricID(internalmetrics.MetricTokenIssued)
	// MetricAuthenticateSuccess counts accepted tokens.
	MetricAuthenticateSuccess = MetricID(internalmetrics.MetricAuthenticateSuccess)
	// MetricTokenMalformed counts tokens without three segments.
	MetricTokenMalformed = MetricID(internalmetrics.MetricTokenMalformed)
	// MetricTokenInvalidSignature counts tokens with a bad signature.
	MetricTokenInvalidSignature = MetricID(internalmetrics.MetricTokenInvalidSignature)
	// MetricTokenMalformedPayload counts signed tokens whose payload is not an object.
	MetricTokenMalformedPayload = MetricID(internalmetrics.MetricTokenMalformedPayload)
	// MetricTokenExpired counts expired tokens, including ones without exp.
	MetricTokenExpired = MetricID(internalmetrics.MetricTokenExpired)
	// MetricPasswordChangeSuccess counts completed password changes.
	MetricPasswordChangeSuccess = MetricID(internalmetrics.MetricPasswordChangeSuccess)
	// MetricPasswordChangeInvalidOld counts password changes with a wrong old password.
	MetricPasswordChangeInvalidOld = MetricID(internalmetrics.MetricPasswordChangeInvalidOld)
	// MetricPasswordChangeReuseRejected counts password changes rejected for reuse.
	MetricPasswordChangeReuseRejected = MetricID(internalmetrics.MetricPasswordChangeReuseRejected)
	// MetricUserProvisioned counts users created or updated by ProvisionUser.
	MetricUserProvisioned = MetricID(internalmetrics.MetricUserProvisioned)
	// MetricRateLimitHit counts throttle checks that denied a request.
	MetricRateLimitHit = MetricID(internalmetrics.MetricRateLimitHit)
	// MetricAuthenticateLatency is the Authenticate latency histogram.
	MetricAuthenticateLatency = MetricID(internalmetrics.MetricAuthenticateLatency)
	// MetricPasswordKDFLatency is the scrypt derive latency histogram.
	MetricPasswordKDFLatency = MetricID(internalmetrics.MetricPasswordKDFLatency)
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When Enabled is false, all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
