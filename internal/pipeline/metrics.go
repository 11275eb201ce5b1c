package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opPreprocess  = "preprocess"
	opPostprocess = "postprocess"

	statusOK    = "ok"
	statusError = "error"

	// unknownDirection labels calls whose direction did not resolve.
	unknownDirection = "unknown"
)

// Metrics holds the Prometheus metrics of a Pipeline.
type Metrics struct {
	sentencesTotal   *prometheus.CounterVec
	sentenceDuration *prometheus.HistogramVec
}

// NewMetrics creates the pipeline metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sentencesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prepost_sentences_total",
				Help: "Total number of sentences processed by direction, operation and status",
			},
			[]string{"direction", "operation", "status"},
		),

		sentenceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prepost_sentence_duration_seconds",
				Help:    "Sentence processing latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"direction", "operation"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.sentencesTotal, m.sentenceDuration)
	}

	return m
}

// RecordSentence records one processed sentence.
func (m *Metrics) RecordSentence(direction, operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}

	status := statusOK
	if err != nil {
		status = statusError
	}

	m.sentencesTotal.WithLabelValues(direction, operation, status).Inc()
	m.sentenceDuration.WithLabelValues(direction, operation).Observe(duration.Seconds())
}
