package assignmentshandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/assignments"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Assigner interface {
	AssignTask(ctx context.Context, req assignments.Request) (assignments.Task, error)
	AssignProject(ctx context.Context, req assignments.Request) (assignments.Project, error)
	AddTeamMember(ctx context.Context, req assignments.Request) (assignments.Team, error)
	RemoveTeamMember(ctx context.Context, req assignments.Request) (assignments.Team, error)
}

type Handler struct {
	Service Assigner
}

func NewHandler(service Assigner) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/tasks/{taskID}/assign", h.handleAssignTask)
	r.Post("/projects/{projectID}/members", h.handleAssignProject)
	r.Post("/teams/{teamID}/members", h.handleAddTeamMember)
	r.Delete("/teams/{teamID}/members/{employeeID}", h.handleRemoveTeamMember)
}

type memberRequest struct {
	EmployeeID string `json:"employeeId" validate:"notblank"`
}

func (h *Handler) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "taskID")
	if !ok {
		return
	}
	task, err := h.Service.AssignTask(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, task, req.RequestID)
}

func (h *Handler) handleAssignProject(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "projectID")
	if !ok {
		return
	}
	project, err := h.Service.AssignProject(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, project, req.RequestID)
}

func (h *Handler) handleAddTeamMember(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "teamID")
	if !ok {
		return
	}
	team, err := h.Service.AddTeamMember(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, team, req.RequestID)
}

func (h *Handler) handleRemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	req := assignments.Request{
		ActorID:    user.UserID,
		ResourceID: chi.URLParam(r, "teamID"),
		EmployeeID: chi.URLParam(r, "employeeID"),
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         shared.ClientIP(r),
	}
	team, err := h.Service.RemoveTeamMember(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, team, req.RequestID)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, param string) (assignments.Request, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", requestID)
		return assignments.Request{}, false
	}
	var body memberRequest
	if !shared.DecodeJSON(w, r, requestID, &body) {
		return assignments.Request{}, false
	}
	return assignments.Request{
		ActorID:    user.UserID,
		ResourceID: chi.URLParam(r, param),
		EmployeeID: strings.TrimSpace(body.EmployeeID),
		RequestID:  requestID,
		IP:         shared.ClientIP(r),
	}, true
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, assignments.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, assignments.ErrNotMember):
		api.Fail(w, http.StatusNotFound, "not_member", err.Error(), requestID)
	default:
		api.FailError(w, err, requestID)
	}
}
