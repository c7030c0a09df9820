// Package prometheus records update activity as Prometheus metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

const namespace = "rawrepo_update"

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

// Metrics is a driven.Metrics backed by a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry
	saved    *prometheus.CounterVec
	deleted  *prometheus.CounterVec
	enqueued prometheus.Counter
	updates  *prometheus.CounterVec
}

// New creates the collectors and registers them on a new registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		saved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_saved_total",
			Help:      "Physical records written, by mime type.",
		}, []string{"mime_type"}),
		deleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_deleted_total",
			Help:      "Tombstones written, by mime type.",
		}, []string{"mime_type"}),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_enqueued_total",
			Help:      "Change signals registered for downstream processing.",
		}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Finished update calls, by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.saved, m.deleted, m.enqueued, m.updates)
	return m
}

// RecordSaved counts a physical record write.
func (m *Metrics) RecordSaved(mime domain.MimeType) {
	m.saved.WithLabelValues(string(mime)).Inc()
}

// RecordDeleted counts a tombstone write.
func (m *Metrics) RecordDeleted(mime domain.MimeType) {
	m.deleted.WithLabelValues(string(mime)).Inc()
}

// RecordEnqueued counts a change signal.
func (m *Metrics) RecordEnqueued() {
	m.enqueued.Inc()
}

// UpdateFinished counts a finished update call.
func (m *Metrics) UpdateFinished(kind string) {
	m.updates.WithLabelValues(kind).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
