package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests     *prometheus.CounterVec
	chainLatency prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medicalbot",
			Name:      "chat_requests_total",
			Help:      "Chat requests by response status code.",
		}, []string{"code"}),
		chainLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medicalbot",
			Name:      "chain_duration_seconds",
			Help:      "Latency of retrieve-then-generate calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
	}
	reg.MustRegister(m.requests, m.chainLatency)
	return m
}

func (m *metrics) observeRequest(code int) {
	m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *metrics) observeChain(start time.Time) {
	m.chainLatency.Observe(time.Since(start).Seconds())
}
