// Package metrics exposes Prometheus counters for the authorization flow, sync
// admissions and outbound Shopify calls.
package metrics

import (
	"errors"
	"net/http"

	"shopify-workspace-connector/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopify_connector"

// Metrics holds the service's collectors on a dedicated registry
type Metrics struct {
	registry *prometheus.Registry

	callbackOutcomes *prometheus.CounterVec
	syncTriggers     *prometheus.CounterVec
	shopifyCalls     *prometheus.CounterVec
	webhooks         *prometheus.CounterVec
}

// New creates the collectors and registers them, plus Go and process collectors,
// on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		callbackOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oauth_callbacks_total",
			Help:      "Authorization callbacks by outcome.",
		}, []string{"outcome"}),
		syncTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_triggers_total",
			Help:      "Sync job admission attempts by trigger and result.",
		}, []string{"trigger", "result"}),
		shopifyCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shopify_calls_total",
			Help:      "Outbound Shopify calls by operation and result.",
		}, []string{"operation", "result"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Webhook deliveries by topic and result.",
		}, []string{"topic", "result"}),
	}
	m.registry.MustRegister(
		m.callbackOutcomes,
		m.syncTriggers,
		m.shopifyCalls,
		m.webhooks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCallback counts a finished authorization callback
func (m *Metrics) ObserveCallback(outcome domain.CallbackOutcome) {
	label := string(outcome)
	if outcome == domain.CallbackProceed {
		label = "success"
	}
	m.callbackOutcomes.WithLabelValues(label).Inc()
}

// ObserveSyncTrigger counts a sync admission attempt
func (m *Metrics) ObserveSyncTrigger(trigger domain.SyncTriggerType, err error) {
	m.syncTriggers.WithLabelValues(string(trigger), resultLabel(err)).Inc()
}

// ObserveShopifyCall counts an outbound Shopify call
func (m *Metrics) ObserveShopifyCall(operation string, err error) {
	m.shopifyCalls.WithLabelValues(operation, resultLabel(err)).Inc()
}

// ObserveWebhook counts a webhook delivery
func (m *Metrics) ObserveWebhook(topic string, err error) {
	m.webhooks.WithLabelValues(topic, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	}
	return "error"
}
