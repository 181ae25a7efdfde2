package otel

import (
	"context"
	"sync"
	"testing"

	"github.com/MrEthical07/consoleauth"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot consoleauth.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() consoleauth.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := consoleauth.MetricsSnapshot{
		Counters:   make(map[consoleauth.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[consoleauth.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return reader, provider
}

// findInt64 returns the data point of name whose attributes include
// key=value. An empty key matches a point with no attributes.
func findInt64(rm metricdata.ResourceMetrics, name, key, value string) (int64, bool) {
	match := func(set attribute.Set) bool {
		if key == "" {
			return set.Len() == 0
		}
		v, ok := set.Value(attribute.Key(key))
		return ok && v.AsString() == value
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					if match(dp.Attributes) {
						return dp.Value, true
					}
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					if match(dp.Attributes) {
						return dp.Value, true
					}
				}
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newTestMeter()
	meter := provider.Meter("consoleauth-test")

	src := &fakeSource{
		snapshot: consoleauth.MetricsSnapshot{
			Counters: map[consoleauth.MetricID]uint64{
				consoleauth.MetricLoginSuccess:          3,
				consoleauth.MetricLoginRateLimited:      2,
				consoleauth.MetricTokenInvalidSignature: 5,
				consoleauth.MetricTokenIssued:           3,
			},
			Histograms: map[consoleauth.MetricID][]uint64{
				consoleauth.MetricAuthenticateLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	tests := []struct {
		name  string
		key   string
		value string
		want  int64
	}{
		{"consoleauth_login_total", "outcome", "success", 3},
		{"consoleauth_login_total", "outcome", "failure", 0},
		{"consoleauth_login_total", "outcome", "rate_limited", 2},
		{"consoleauth_token_rejected_total", "reason", "invalid_signature", 5},
		{"consoleauth_token_rejected_total", "reason", "expired", 0},
		{"consoleauth_token_issued_total", "", "", 3},
		{"consoleauth_audit_dropped_total", "", "", 1},
		{"consoleauth_authenticate_latency_seconds_bucket", "le", "0.005", 1},
		{"consoleauth_authenticate_latency_seconds_bucket", "le", "+Inf", 8},
		{"consoleauth_authenticate_latency_seconds_count", "", "", 8},
		{"consoleauth_password_kdf_latency_seconds_count", "", "", 0},
	}
	for _, tt := range tests {
		got, ok := findInt64(rm, tt.name, tt.key, tt.value)
		if !ok {
			t.Fatalf("metric %s{%s=%q} not collected", tt.name, tt.key, tt.value)
		}
		if got != tt.want {
			t.Fatalf("%s{%s=%q} = %d, want %d", tt.name, tt.key, tt.value, got, tt.want)
		}
	}

	for _, name := range []string{"consoleauth_login_success_total", "consoleauth_token_expired_total"} {
		if _, ok := findInt64(rm, name, "", ""); ok {
			t.Fatalf("ungrouped instrument %s still registered", name)
		}
	}
}

func TestExporterReportsEveryRejectionReason(t *testing.T) {
	reader, provider := newTestMeter()
	meter := provider.Meter("consoleauth-test")

	src := &fakeSource{snapshot: consoleauth.MetricsSnapshot{
		Counters: map[consoleauth.MetricID]uint64{
			consoleauth.MetricTokenMalformed:        1,
			consoleauth.MetricTokenInvalidSignature: 2,
			consoleauth.MetricTokenMalformedPayload: 3,
			consoleauth.MetricTokenExpired:          4,
		},
	}}
	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	t.Cleanup(func() { _ = exp.Close() })

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	for reason, want := range map[string]int64{
		"malformed":         1,
		"invalid_signature": 2,
		"malformed_payload": 3,
		"expired":           4,
	} {
		got, ok := findInt64(rm, "consoleauth_token_rejected_total", "reason", reason)
		if !ok || got != want {
			t.Fatalf("token_rejected{reason=%q} = %d (found=%v), want %d", reason, got, ok, want)
		}
	}
}

func TestExporterRejectsNilArguments(t *testing.T) {
	_, provider := newTestMeter()
	meter := provider.Meter("consoleauth-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterCloseNil(t *testing.T) {
	var exp *OTelExporter
	if err := exp.Close(); err != nil {
		t.Fatalf("Close on nil exporter: %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newTestMeter()
	meter := provider.Meter("consoleauth-test")

	src := &fakeSource{
		snapshot: consoleauth.MetricsSnapshot{
			Counters: map[consoleauth.MetricID]uint64{
				consoleauth.MetricLoginSuccess: 1,
			},
			Histograms: map[consoleauth.MetricID][]uint64{
				consoleauth.MetricPasswordKDFLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[consoleauth.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
