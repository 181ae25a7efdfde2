package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrEthical07/consoleauth"
	"github.com/MrEthical07/consoleauth/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() consoleauth.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders engine metrics in Prometheus text exposition format.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates an exporter that reads from engine.
func NewPrometheusExporter(engine *consoleauth.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource creates an exporter over any metrics source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves [PrometheusExporter.Render] as text/plain.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics. It returns "" when nothing has been
// recorded and no audit events were dropped.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, fam := range internaldefs.Families {
		writeFamily(&b, fam, snapshot.Counters)
	}

	for _, def := range internaldefs.HistogramDefs {
		nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
		writeHistogram(&b, def, internaldefs.CumulativeBuckets(nonCumulative))
	}

	writeHeader(&b, internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, "counter")
	writeSample(&b, internaldefs.AuditDroppedName, "", "", dropped)

	return b.String()
}

// writeFamily writes one HELP/TYPE block followed by a sample per series.
// Zero series are written so label values never disappear from a scrape.
func writeFamily(b *strings.Builder, fam internaldefs.Family, counters map[consoleauth.MetricID]uint64) {
	writeHeader(b, fam.Name, fam.Help, "counter")
	for _, s := range fam.Series {
		writeSample(b, fam.Name, fam.Label, s.Value, counters[s.ID])
	}
}

func writeHistogram(b *strings.Builder, def internaldefs.HistogramDef, cumulative [8]uint64) {
	writeHeader(b, def.Name, def.Help, "histogram")
	bucket := def.Name + "_bucket"
	for i, le := range internaldefs.HistogramBounds {
		writeSample(b, bucket, "le", le, cumulative[i])
	}
	writeSample(b, def.Name+"_count", "", "", cumulative[len(cumulative)-1])
	// Snapshots carry no sum.
	writeSample(b, def.Name+"_sum", "", "", 0)
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteString("\n# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')
}

func writeSample(b *strings.Builder, name, label, value string, v uint64) {
	b.WriteString(name)
	if label != "" {
		b.WriteByte('{')
		b.WriteString(label)
		b.WriteString(`="`)
		b.WriteString(escapeLabel(value))
		b.WriteString(`"}`)
	}
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(v, 10))
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}

func escapeLabel(value string) string {
	value = escapeHelp(value)
	return strings.ReplaceAll(value, `"`, `\"`)
}
