package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the service metrics. A nil *Registry is valid and records nothing.
type Registry struct {
	AccessDecisions      *prometheus.CounterVec
	CreditConsumptions   *prometheus.CounterVec
	BillingWebhookEvents *prometheus.CounterVec
	BillingCallDuration  *prometheus.HistogramVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Registry{
		AccessDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "access_decisions_total",
				Help: "Access gate decisions by outcome",
			},
			[]string{"outcome", "reason", "entitlement"},
		),
		CreditConsumptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_consumptions_total",
				Help: "Metered credit consume attempts by result",
			},
			[]string{"result"},
		),
		BillingWebhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_webhook_events_total",
				Help: "Billing webhook events by type and result",
			},
			[]string{"event_type", "result"},
		),
		BillingCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billing_call_duration_seconds",
				Help:    "Billing provider call duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation", "status"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Registry) RecordAccessDecision(allowed bool, reason, entitlement string) {
	if r == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	r.AccessDecisions.WithLabelValues(outcome, reason, entitlement).Inc()
}

func (r *Registry) RecordCreditConsumption(result string) {
	if r == nil {
		return
	}
	r.CreditConsumptions.WithLabelValues(result).Inc()
}

func (r *Registry) RecordWebhookEvent(eventType, result string) {
	if r == nil {
		return
	}
	r.BillingWebhookEvents.WithLabelValues(eventType, result).Inc()
}

func (r *Registry) ObserveBillingCall(operation string, err error, started time.Time) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.BillingCallDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

// GinMiddleware records request counts and latency keyed by the route template.
func (r *Registry) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		r.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		r.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
