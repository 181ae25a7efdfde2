// Package prometheus renders consoleauth metrics in the Prometheus text
// exposition format.
//
// [NewPrometheusExporter] wraps a consoleauth.Engine and exposes an
// [http.Handler]. Related outcomes share a labeled family:
//
//	consoleauth_login_total{outcome="success|failure|rate_limited"}
//	consoleauth_token_rejected_total{reason="malformed|invalid_signature|malformed_payload|expired"}
//	consoleauth_password_change_total{outcome="success|invalid_old|reuse_rejected"}
//
// The remaining counters are unlabeled consoleauth_*_total series and the
// latency histograms are consoleauth_*_latency_seconds.
//
// Nothing is registered globally; callers mount the handler.
package prometheus
