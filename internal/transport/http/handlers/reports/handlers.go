package reportshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/core"
	"workforce/internal/domain/reports"
	"workforce/internal/domain/roles"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
)

type Dashboards interface {
	Employee(ctx context.Context, employeeID string) (reports.EmployeeDashboard, error)
	Manager(ctx context.Context, viewer roles.Subject) (reports.ManagerDashboard, error)
	Admin(ctx context.Context, viewer roles.Subject) (reports.AdminDashboard, error)
}

type EmployeeReader interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
}

type Handler struct {
	Dashboards Dashboards
	Employees  EmployeeReader
}

func NewHandler(dashboards Dashboards, employees EmployeeReader) *Handler {
	return &Handler{Dashboards: dashboards, Employees: employees}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports/dashboard", func(r chi.Router) {
		r.Get("/employee", h.handleEmployeeDashboard)
		r.With(middleware.RequireRole(roles.Manager)).Get("/manager", h.handleManagerDashboard)
		r.With(middleware.RequireRole(roles.Admin)).Get("/admin", h.handleAdminDashboard)
	})
}

func (h *Handler) handleEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	payload, err := h.Dashboards.Employee(r.Context(), viewer.ID)
	h.respond(w, r, payload, err)
}

func (h *Handler) handleManagerDashboard(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	payload, err := h.Dashboards.Manager(r.Context(), viewer)
	h.respond(w, r, payload, err)
}

func (h *Handler) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	payload, err := h.Dashboards.Admin(r.Context(), viewer)
	h.respond(w, r, payload, err)
}

// viewer resolves the caller from storage so a stale token cannot widen the
// dashboard scope.
func (h *Handler) viewer(w http.ResponseWriter, r *http.Request) (roles.Subject, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", requestID)
		return roles.Subject{}, false
	}
	emp, err := h.Employees.GetEmployee(r.Context(), user.UserID)
	if errors.Is(err, core.ErrNotFound) {
		api.FailError(w, roles.ErrActorNotFound, requestID)
		return roles.Subject{}, false
	}
	if err != nil {
		slog.Error("dashboard viewer lookup failed", "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load dashboard", requestID)
		return roles.Subject{}, false
	}
	return emp.Subject(), true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, payload any, err error) {
	requestID := middleware.GetRequestID(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, payload, requestID)
}
