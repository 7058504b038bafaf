package reportshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/core"
	"workforce/internal/domain/reports"
	"workforce/internal/domain/roles"
	"workforce/internal/transport/http/middleware"
)

type fakeDashboards struct {
	viewer roles.Subject
}

func (f *fakeDashboards) Employee(_ context.Context, id string) (reports.EmployeeDashboard, error) {
	f.viewer = roles.Subject{ID: id}
	return reports.EmployeeDashboard{OpenTasks: 2}, nil
}

func (f *fakeDashboards) Manager(_ context.Context, viewer roles.Subject) (reports.ManagerDashboard, error) {
	f.viewer = viewer
	if viewer.DepartmentID == "" {
		return reports.ManagerDashboard{}, roles.ErrScopeViolation
	}
	return reports.ManagerDashboard{DepartmentID: viewer.DepartmentID}, nil
}

func (f *fakeDashboards) Admin(_ context.Context, viewer roles.Subject) (reports.AdminDashboard, error) {
	f.viewer = viewer
	return reports.AdminDashboard{SuperAdmins: 1}, nil
}

type fakeEmployees map[string]core.Employee

func (f fakeEmployees) GetEmployee(_ context.Context, id string) (core.Employee, error) {
	emp, ok := f[id]
	if !ok {
		return core.Employee{}, core.ErrNotFound
	}
	return emp, nil
}

func serve(t *testing.T, dash *fakeDashboards, path string, user auth.UserContext) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	employees := fakeEmployees{
		"e1": {ID: "e1", Role: roles.Employee, DepartmentID: "eng"},
		"m1": {ID: "m1", Role: roles.Manager, DepartmentID: "eng"},
		"m2": {ID: "m2", Role: roles.Manager},
		"a1": {ID: "a1", Role: roles.Admin},
	}
	r := chi.NewRouter()
	NewHandler(dash, employees).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestEmployeeDashboardUsesCaller(t *testing.T) {
	dash := &fakeDashboards{}
	rec, env := serve(t, dash, "/reports/dashboard/employee", auth.UserContext{UserID: "e1", Role: roles.Employee})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "e1", dash.viewer.ID)
	assert.Equal(t, float64(2), env["data"].(map[string]any)["openTasks"])
}

func TestManagerDashboardUsesStoredDepartment(t *testing.T) {
	dash := &fakeDashboards{}
	// Token claims a different department; storage wins.
	rec, _ := serve(t, dash, "/reports/dashboard/manager", auth.UserContext{UserID: "m1", Role: roles.Manager, DepartmentID: "sales"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "eng", dash.viewer.DepartmentID)

	rec, env := serve(t, dash, "/reports/dashboard/manager", auth.UserContext{UserID: "m2", Role: roles.Manager})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "scope_violation", env["error"].(map[string]any)["code"])
}

func TestDashboardRouteGates(t *testing.T) {
	dash := &fakeDashboards{}
	rec, _ := serve(t, dash, "/reports/dashboard/admin", auth.UserContext{UserID: "m1", Role: roles.Manager})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(t, dash, "/reports/dashboard/admin", auth.UserContext{UserID: "a1", Role: roles.Admin})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := serve(t, dash, "/reports/dashboard/employee", auth.UserContext{UserID: "ghost", Role: roles.Employee})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "actor_not_found", env["error"].(map[string]any)["code"])
}
