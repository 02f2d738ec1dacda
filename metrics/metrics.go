// Package metrics exposes Prometheus counters for verdicts, classifications
// and blocklist syncs. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"security-assistant/vetting"
)

const namespace = "security_assistant"

// Metrics owns a private registry so tests and multiple servers don't collide.
type Metrics struct {
	registry        *prometheus.Registry
	verdicts        *prometheus.CounterVec
	classifications *prometheus.CounterVec
	blocklistSize   prometheus.Gauge
	feedSyncs       *prometheus.CounterVec
}

// New creates and registers all collectors, including the Go runtime ones.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_verdicts_total",
			Help:      "Domain verdicts by status.",
		}, []string{"status"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_classifications_total",
			Help:      "Message classifications by result.",
		}, []string{"result"}),
		blocklistSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blocklist_domains",
			Help:      "Domains in the active blocklist.",
		}),
		feedSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocklist_syncs_total",
			Help:      "Blocklist source syncs by source and result.",
		}, []string{"feed", "result"}),
	}
	m.registry.MustRegister(
		m.verdicts,
		m.classifications,
		m.blocklistSize,
		m.feedSyncs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveVerdict(status vetting.Status) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ObserveClassification(isSpam bool) {
	if m == nil {
		return
	}
	result := "safe"
	if isSpam {
		result = "spam"
	}
	m.classifications.WithLabelValues(result).Inc()
}

func (m *Metrics) SetBlocklistSize(n int) {
	if m == nil {
		return
	}
	m.blocklistSize.Set(float64(n))
}

func (m *Metrics) ObserveFeedSync(feed string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.feedSyncs.WithLabelValues(feed, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
