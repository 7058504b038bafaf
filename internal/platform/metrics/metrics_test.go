package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.Record(http.StatusOK, 10*time.Millisecond)
	c.Record(http.StatusForbidden, time.Millisecond)
	c.Record(http.StatusInternalServerError, time.Millisecond)
	c.ObserveDecision("promote", "allowed")
	c.ObserveDecision("promote", "InsufficientPermissions")
	c.ObserveRoleChange("EMPLOYEE")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("5xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.decisions.WithLabelValues("promote", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.roleChanges.WithLabelValues("EMPLOYEE")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New(prometheus.NewRegistry())
	c.ObserveDecision("demote", "allowed")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "workforce_role_decisions_total"))
}
