package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sds-studio/sds/internal/config"
)

// Metrics exposes the application-level prometheus instruments.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	paymentEvents   *prometheus.CounterVec
	contactIntakes  *prometheus.CounterVec
	checkoutStarted *prometheus.CounterVec
}

func New(cfg config.Config) *Metrics {
	return newMetrics(prometheus.DefaultRegisterer, cfg)
}

func newMetrics(registerer prometheus.Registerer, cfg config.Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "sds"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "sds_http_requests_total",
		Help:        "HTTP requests by route, method and status class.",
		ConstLabels: constLabels,
	}, []string{"route", "method", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "sds_http_request_duration_seconds",
		Help:        "HTTP request latency by route.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"route"})
	paymentEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "sds_payment_events_total",
		Help:        "Webhook payment events by provider and kind.",
		ConstLabels: constLabels,
	}, []string{"provider", "kind"})
	contactIntakes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "sds_contact_intakes_total",
		Help:        "Contact form submissions by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	checkoutStarted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "sds_checkout_started_total",
		Help:        "Checkout sessions opened by provider.",
		ConstLabels: constLabels,
	}, []string{"provider"})

	// Re-registration happens in tests that rebuild the app; keep the
	// first collector in that case.
	for _, collector := range []prometheus.Collector{
		httpRequests, httpDuration, paymentEvents, contactIntakes, checkoutStarted,
	} {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}

	return &Metrics{
		httpRequests:    httpRequests,
		httpDuration:    httpDuration,
		paymentEvents:   paymentEvents,
		contactIntakes:  contactIntakes,
		checkoutStarted: checkoutStarted,
	}
}

func (m *Metrics) RecordPaymentEvent(provider, kind string) {
	if m == nil {
		return
	}
	m.paymentEvents.WithLabelValues(provider, kind).Inc()
}

func (m *Metrics) RecordContactIntake(outcome string) {
	if m == nil {
		return
	}
	m.contactIntakes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCheckoutStarted(provider string) {
	if m == nil {
		return
	}
	m.checkoutStarted.WithLabelValues(provider).Inc()
}
