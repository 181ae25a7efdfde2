// Package internaldefs holds the counter families, histogram names and
// bucket bounds shared by the Prometheus and OTel exporters, so both
// publish identical series.
//
// It performs no I/O.
package internaldefs
