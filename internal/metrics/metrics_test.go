package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegistryRecordsDecisions(t *testing.T) {
	reg := New(prometheus.NewRegistry())

	reg.RecordAccessDecision(true, "", "subscription")
	reg.RecordAccessDecision(false, "missing-token", "")
	reg.RecordAccessDecision(false, "missing-token", "")
	reg.RecordCreditConsumption("ok")
	reg.RecordWebhookEvent("invoice.paid", "processed")

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.AccessDecisions.WithLabelValues("allowed", "", "subscription")))
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.AccessDecisions.WithLabelValues("denied", "missing-token", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CreditConsumptions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.BillingWebhookEvents.WithLabelValues("invoice.paid", "processed")))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var reg *Registry
	assert.NotPanics(t, func() {
		reg.RecordAccessDecision(true, "", "subscription")
		reg.RecordCreditConsumption("ok")
		reg.RecordWebhookEvent("x", "ignored")
		reg.ObserveBillingCall("list", nil, time.Now())
	})
}

func TestGinMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := New(prometheus.NewRegistry())

	router := gin.New()
	router.Use(reg.GinMiddleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "204")))
}
