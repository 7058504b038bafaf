package audithandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/roles"
	"workforce/internal/transport/http/middleware"
)

type fakeLog struct {
	filter audit.Filter
	events []audit.Event
}

func (f *fakeLog) Count(_ context.Context, filter audit.Filter) (int, error) {
	f.filter = filter
	return len(f.events), nil
}

func (f *fakeLog) List(_ context.Context, filter audit.Filter, _, _ int) ([]audit.Event, error) {
	f.filter = filter
	return f.events, nil
}

func get(t *testing.T, log *fakeLog, path string, role roles.Role) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h := NewHandler(log)
	h.Now = func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) }
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "u1", Role: role}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var sample = []audit.Event{{
	ID:           "ev1",
	ActorID:      "admin",
	ActorRole:    "ADMIN",
	Action:       audit.ActionRolePromote,
	EntityType:   audit.EntityEmployee,
	EntityID:     "e1",
	PreviousRole: "INTERN",
	NewRole:      "EMPLOYEE",
	CreatedAt:    time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
}}

func TestListEventsRequiresAdmin(t *testing.T) {
	rec := get(t, &fakeLog{}, "/audit/events", roles.Manager)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListEventsFilters(t *testing.T) {
	log := &fakeLog{events: sample}
	rec := get(t, log, "/audit/events?action=role.&actorId=admin&from=2026-03-01&to=2026-03-31", roles.Admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, "role.", log.filter.ActionPrefix)
	assert.Equal(t, "admin", log.filter.ActorID)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), log.filter.From)

	rec = get(t, log, "/audit/events?from=2026-04-01&to=2026-03-01", roles.Admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	rec := get(t, &fakeLog{events: sample}, "/audit/events/export", roles.SuperAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "ev1,admin,ADMIN,role.promote,employee,e1,INTERN,EMPLOYEE"))
}

func TestRoleChangesPDF(t *testing.T) {
	log := &fakeLog{events: sample}
	rec := get(t, log, "/audit/role-changes.pdf?action=task.", roles.Admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	assert.Equal(t, "role.", log.filter.ActionPrefix)
	assert.Equal(t, audit.EntityEmployee, log.filter.EntityType)
}
