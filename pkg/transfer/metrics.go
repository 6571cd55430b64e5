// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records transfer activity. A nil *Metrics records nothing.
type Metrics struct {
	bytes    *prometheus.CounterVec
	parts    *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storageclient_transfer_bytes_total",
			Help: "Bytes moved to or from the storage service",
		}, []string{"direction"}),
		parts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storageclient_transfer_parts_total",
			Help: "Multipart upload parts by outcome",
		}, []string{"result"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storageclient_transfer_retries_total",
			Help: "Retried requests",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storageclient_transfer_duration_seconds",
			Help:    "Duration of whole transfers in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"op", "result"}),
	}
}

// Register adds the collectors to reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.bytes, m.parts, m.retries, m.duration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) moved(direction string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytes.WithLabelValues(direction).Add(float64(n))
}

func (m *Metrics) part(err error) {
	if m == nil {
		return
	}
	m.parts.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) retried(op string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(op).Inc()
}

func (m *Metrics) finished(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op, result(err)).Observe(time.Since(start).Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
