// metrics/metrics.go
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

type Metrics struct {
	Decisions        *prometheus.CounterVec
	ResolverFailures *prometheus.CounterVec
	HandoffOutcomes  *prometheus.CounterVec
	BreakerState     *prometheus.GaugeVec
	RequestDuration  *prometheus.HistogramVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obd_access_decisions_total",
			Help: "Permission gate decisions by app, action and outcome",
		}, []string{"app", "action", "outcome"}),
		ResolverFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obd_tenant_resolve_failures_total",
			Help: "Gate checks that failed before the matrix, by error code",
		}, []string{"code"}),
		HandoffOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obd_handoff_operations_total",
			Help: "Handoff store operations by outcome",
		}, []string{"op", "outcome"}),
		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "obd_store_breaker_open",
			Help: "1 while the membership store breaker is open, 0.5 half-open, 0 closed",
		}, []string{"breaker"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "obd_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) ObserveDecision(e pdp_model.DecisionEvent) {
	if e.Role == "" {
		m.ResolverFailures.WithLabelValues(e.Code).Inc()
		return
	}
	outcome := "allowed"
	if !e.Allowed {
		outcome = e.Reason
	}
	m.Decisions.WithLabelValues(string(e.App), string(e.Action), outcome).Inc()
}

// Subscribe feeds access.decided events into the decision counters.
func (m *Metrics) Subscribe(bus *util.EventBus) {
	bus.Subscribe(pdp_model.EventAccessDecided, func(_ context.Context, e util.Event) error {
		if decision, ok := e.Payload.(pdp_model.DecisionEvent); ok {
			m.ObserveDecision(decision)
		}
		return nil
	})
}

func (m *Metrics) HandoffOutcome(op, outcome string) {
	m.HandoffOutcomes.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) BreakerChanged(name, state string) {
	value := 0.0
	switch state {
	case "open":
		value = 1
	case "half-open":
		value = 0.5
	}
	m.BreakerState.WithLabelValues(name).Set(value)
}

// Middleware records request latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
