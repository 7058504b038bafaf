package employeeshandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/core"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Directory interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
	ListEmployees(ctx context.Context, departmentID string, limit, offset int) ([]core.Employee, error)
	ListDepartments(ctx context.Context) ([]core.Department, error)
}

type Handler struct {
	Directory Directory
}

func NewHandler(directory Directory) *Handler {
	return &Handler{Directory: directory}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Get("/employees", h.handleList)
	r.Get("/employees/{employeeID}", h.handleGet)
	r.Get("/departments", h.handleDepartments)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	emp, err := h.Directory.GetEmployee(r.Context(), user.UserID)
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_fetch_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	employees, err := h.Directory.ListEmployees(r.Context(), r.URL.Query().Get("departmentId"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	for i := range employees {
		core.FilterEmployeeFields(&employees[i], user)
	}
	if employees == nil {
		employees = []core.Employee{}
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Directory.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_fetch_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	core.FilterEmployeeFields(&emp, user)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Directory.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	if departments == nil {
		departments = []core.Department{}
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}
