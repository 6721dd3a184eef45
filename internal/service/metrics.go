package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the domain counters of the QA service. A nil *Metrics is a no-op.
type Metrics struct {
	extractions       *prometheus.CounterVec
	answers           *prometheus.CounterVec
	inferenceDuration prometheus.Histogram
}

// NewMetrics registers the service metrics on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docqa_extractions_total",
				Help: "Document text extractions by file type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docqa_answers_total",
				Help: "Question answering calls by outcome.",
			},
			[]string{"outcome"},
		),
		inferenceDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docqa_inference_duration_seconds",
				Help:    "Latency of answer engine calls.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
	}

	for _, c := range []prometheus.Collector{m.extractions, m.answers, m.inferenceDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) extraction(fileType, outcome string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(fileType, outcome).Inc()
}

func (m *Metrics) answer(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.answers.WithLabelValues(outcome).Inc()
	m.inferenceDuration.Observe(elapsed.Seconds())
}
