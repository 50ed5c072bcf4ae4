package chunk

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus instrumentation for a RecordWriter. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	chunksFlushedTotal     *prometheus.CounterVec
	recordsCommittedTotal  prometheus.Counter
	frameBytesWrittenTotal prometheus.Counter
	flushDuration          prometheus.Histogram
	inspectorMessagesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers writer metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		chunksFlushedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chunkstream_chunks_flushed_total",
				Help: "Total number of chunks flushed to the destination stream",
			},
			[]string{"mode"},
		),

		recordsCommittedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chunkstream_records_committed_total",
				Help: "Total number of records committed across all flushes",
			},
		),

		frameBytesWrittenTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chunkstream_frame_bytes_written_total",
				Help: "Total bytes of chunk frames written to the destination stream",
			},
		),

		flushDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chunkstream_flush_duration_seconds",
				Help:    "Time spent assembling and writing one chunk",
				Buckets: prometheus.DefBuckets,
			},
		),

		inspectorMessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chunkstream_inspector_messages_total",
				Help: "Total number of inspector messages by severity",
			},
			[]string{"severity"},
		),
	}
}

// ObserveFlush records one successful flush.
func (m *Metrics) ObserveFlush(mode FlushMode, records, frameBytes int, duration time.Duration) {
	if m == nil {
		return
	}
	m.chunksFlushedTotal.WithLabelValues(mode.String()).Inc()
	m.recordsCommittedTotal.Add(float64(records))
	m.frameBytesWrittenTotal.Add(float64(frameBytes))
	m.flushDuration.Observe(duration.Seconds())
}

// ObserveMessage records one inspector message.
func (m *Metrics) ObserveMessage(severity Severity) {
	if m == nil {
		return
	}
	m.inspectorMessagesTotal.WithLabelValues(string(severity)).Inc()
}
