package copier

import (
	"io"
	"log/slog"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Metrics counts what a run did.
type Metrics struct {
	Registry metrics.Registry

	Containers metrics.Counter
	Blobs      metrics.Counter
	Skipped    metrics.Counter
	Retries    metrics.Counter
	Bytes      metrics.Meter
	BlobTime   metrics.Timer
}

// NewMetrics produces a Metrics with its own registry.
func NewMetrics() *Metrics {
	r := metrics.NewRegistry()
	return &Metrics{
		Registry:   r,
		Containers: metrics.NewRegisteredCounter("containers.copied", r),
		Blobs:      metrics.NewRegisteredCounter("blobs.copied", r),
		Skipped:    metrics.NewRegisteredCounter("blobs.skipped", r),
		Retries:    metrics.NewRegisteredCounter("blobs.retried", r),
		Bytes:      metrics.NewRegisteredMeter("bytes.copied", r),
		BlobTime:   metrics.NewRegisteredTimer("blob.copy", r),
	}
}

// Log writes a one-line summary.
func (m *Metrics) Log(elapsed time.Duration) {
	slog.Info("Copy summary",
		"containers", m.Containers.Count(),
		"blobs", m.Blobs.Count(),
		"skipped", m.Skipped.Count(),
		"retries", m.Retries.Count(),
		"bytes", m.Bytes.Count(),
		"meanBlobTime", time.Duration(m.BlobTime.Mean()),
		"elapsed", elapsed)
}

// WriteStats dumps every metric in the registry to w.
func (m *Metrics) WriteStats(w io.Writer) {
	metrics.WriteOnce(m.Registry, w)
}
