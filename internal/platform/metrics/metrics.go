package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	gatherer        prometheus.Gatherer
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	decisions       *prometheus.CounterVec
	roleChanges     *prometheus.CounterVec
}

// New registers the collectors on reg. Tests pass a fresh registry so
// repeated construction does not collide.
func New(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		gatherer: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workforce_http_requests_total",
			Help: "HTTP requests by status class",
		}, []string{"status"}),
		requestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "workforce_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workforce_role_decisions_total",
			Help: "Role and delegated-action decisions by action and outcome",
		}, []string{"action", "outcome"}),
		roleChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workforce_role_changes_total",
			Help: "Applied role changes by destination role",
		}, []string{"role"}),
	}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.requests.WithLabelValues(strconv.Itoa(status/100) + "xx").Inc()
	c.requestDuration.Observe(duration.Seconds())
}

// ObserveDecision counts one decision; outcome is "allowed" or an error kind.
func (c *Collector) ObserveDecision(action, outcome string) {
	c.decisions.WithLabelValues(action, outcome).Inc()
}

func (c *Collector) ObserveRoleChange(role string) {
	c.roleChanges.WithLabelValues(role).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
