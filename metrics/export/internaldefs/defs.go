package internaldefs

import (
	"github.com/MrEthical07/consoleauth"
)

// Series is one counter inside a [Family]. Value is the label value and is
// empty for unlabeled families.
type Series struct {
	ID    consoleauth.MetricID
	Value string
}

// Family is a counter family. Related outcomes share one name and are told
// apart by Label, so a dashboard can sum or split them.
type Family struct {
	Name   string
	Help   string
	Label  string
	Series []Series
}

// Labeled reports whether the family carries a label.
func (f Family) Labeled() bool { return f.Label != "" }

// Total sums every series of the family in counters.
func (f Family) Total(counters map[consoleauth.MetricID]uint64) uint64 {
	var total uint64
	for _, s := range f.Series {
		total += counters[s.ID]
	}
	return total
}

// HistogramDef names a latency histogram for exporters.
type HistogramDef struct {
	ID   consoleauth.MetricID
	Name string
	Help string
}

func single(id consoleauth.MetricID) []Series { return []Series{{ID: id}} }

// Families lists every exported counter family in output order.
var Families = []Family{
	{
		Name:  "consoleauth_login_total",
		Help:  "Login attempts by outcome.",
		Label: "outcome",
		Series: []Series{
			{ID: consoleauth.MetricLoginSuccess, Value: "success"},
			{ID: consoleauth.MetricLoginFailure, Value: "failure"},
			{ID: consoleauth.MetricLoginRateLimited, Value: "rate_limited"},
		},
	},
	{Name: "consoleauth_token_issued_total", Help: "Session tokens issued.", Series: single(consoleauth.MetricTokenIssued)},
	{Name: "consoleauth_authenticate_success_total", Help: "Accepted session tokens.", Series: single(consoleauth.MetricAuthenticateSuccess)},
	{
		Name:  "consoleauth_token_rejected_total",
		Help:  "Session tokens rejected by reason.",
		Label: "reason",
		Series: []Series{
			{ID: consoleauth.MetricTokenMalformed, Value: "malformed"},
			{ID: consoleauth.MetricTokenInvalidSignature, Value: "invalid_signature"},
			{ID: consoleauth.MetricTokenMalformedPayload, Value: "malformed_payload"},
			{ID: consoleauth.MetricTokenExpired, Value: "expired"},
		},
	},
	{
		Name:  "consoleauth_password_change_total",
		Help:  "Password change attempts by outcome.",
		Label: "outcome",
		Series: []Series{
			{ID: consoleauth.MetricPasswordChangeSuccess, Value: "success"},
			{ID: consoleauth.MetricPasswordChangeInvalidOld, Value: "invalid_old"},
			{ID: consoleauth.MetricPasswordChangeReuseRejected, Value: "reuse_rejected"},
		},
	},
	{Name: "consoleauth_user_provisioned_total", Help: "Users created or updated by provisioning.", Series: single(consoleauth.MetricUserProvisioned)},
	{Name: "consoleauth_rate_limit_hit_total", Help: "Rate-limit checks that denied requests.", Series: single(consoleauth.MetricRateLimitHit)},
}

// Audit drop counter. It is read from the dispatcher, not the snapshot.
const (
	AuditDroppedName = "consoleauth_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: consoleauth.MetricAuthenticateLatency, Name: "consoleauth_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
	{ID: consoleauth.MetricPasswordKDFLatency, Name: "consoleauth_password_kdf_latency_seconds", Help: "Password KDF latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, in Prometheus form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets copies raw into a fixed-size bucket array. Missing
// buckets are zero and extra ones are ignored.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
