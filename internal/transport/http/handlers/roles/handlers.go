package roleshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/core"
	"workforce/internal/domain/promotion"
	"workforce/internal/domain/roles"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type RoleChanger interface {
	Apply(ctx context.Context, req promotion.Request) (promotion.Outcome, error)
}

type EmployeeReader interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
}

type HistoryReader interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Changer     RoleChanger
	Employees   EmployeeReader
	History     HistoryReader
	Idempotency middleware.Idempotency
}

func NewHandler(changer RoleChanger, employees EmployeeReader, history HistoryReader, idem middleware.Idempotency) *Handler {
	return &Handler{Changer: changer, Employees: employees, History: history, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.handleLadder)
		r.Post("/check", h.handleCheck)
		r.With(middleware.RequireRole(roles.Manager)).Post("/promote", h.handleMutation(roles.ActionPromote))
		r.With(middleware.RequireRole(roles.Manager)).Post("/demote", h.handleMutation(roles.ActionDemote))
		r.With(middleware.RequireRole(roles.SuperAdmin)).Post("/transfer-super-admin", h.handleMutation(roles.ActionTransferSuperAdmin))
	})
	r.With(middleware.RequireRole(roles.Manager)).Put("/employees/{employeeID}/role", h.handleChangeRole)
	r.Get("/employees/{employeeID}/role-history", h.handleHistory)
}

type ladderEntry struct {
	Role     roles.Role `json:"role"`
	Rank     int        `json:"rank"`
	Next     roles.Role `json:"next,omitempty"`
	Previous roles.Role `json:"previous,omitempty"`
}

func (h *Handler) handleLadder(w http.ResponseWriter, r *http.Request) {
	ladder := roles.Ladder()
	out := make([]ladderEntry, 0, len(ladder))
	for _, role := range ladder {
		entry := ladderEntry{Role: role, Rank: role.Rank()}
		entry.Next, _ = roles.Next(role)
		entry.Previous, _ = roles.Previous(role)
		out = append(out, entry)
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

type checkRequest struct {
	TargetID string `json:"targetId" validate:"notblank"`
	Action   string `json:"action" validate:"notblank"`
	NewRole  string `json:"newRole" validate:"omitempty,role"`
}

// handleCheck answers whether the caller may perform an action without
// changing anything.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.FailError(w, roles.ErrUnauthenticated, requestID)
		return
	}

	var body checkRequest
	if !shared.DecodeJSON(w, r, requestID, &body) {
		return
	}
	action, ok := roles.ParseAction(body.Action)
	if !ok {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "action", Reason: "is not a known action"}})
		return
	}
	newRole, _ := roles.Normalize(body.NewRole)

	actor, err := h.Employees.GetEmployee(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, notFoundAs(err, roles.ErrActorNotFound), requestID)
		return
	}
	target, err := h.Employees.GetEmployee(r.Context(), body.TargetID)
	if err != nil {
		api.FailError(w, notFoundAs(err, roles.ErrTargetNotFound), requestID)
		return
	}

	api.Success(w, roles.Check(actor.Subject(), target.Subject(), action, newRole), requestID)
}

type mutationRequest struct {
	TargetID string `json:"targetId" validate:"notblank"`
	NewRole  string `json:"newRole" validate:"omitempty,role"`
	Reason   string `json:"reason" validate:"max=500"`
}

func (h *Handler) handleMutation(action roles.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetRequestID(r.Context())
		var body mutationRequest
		if !shared.DecodeJSON(w, r, requestID, &body) {
			return
		}
		newRole, _ := roles.Normalize(body.NewRole)
		h.apply(w, r, promotion.Request{
			Action:   action,
			TargetID: strings.TrimSpace(body.TargetID),
			NewRole:  newRole,
			Reason:   strings.TrimSpace(body.Reason),
		})
	}
}

type changeRoleRequest struct {
	NewRole string `json:"newRole" validate:"required,role"`
	Reason  string `json:"reason" validate:"max=500"`
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var body changeRoleRequest
	if !shared.DecodeJSON(w, r, requestID, &body) {
		return
	}
	newRole, _ := roles.Normalize(body.NewRole)
	h.apply(w, r, promotion.Request{
		TargetID: chi.URLParam(r, "employeeID"),
		NewRole:  newRole,
		Reason:   strings.TrimSpace(body.Reason),
	})
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, req promotion.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.FailError(w, roles.ErrUnauthenticated, requestID)
		return
	}
	req.ActorID = user.UserID
	req.RequestID = requestID
	req.IP = shared.ClientIP(r)

	endpoint := "roles." + string(req.Action)
	if req.Action == "" {
		endpoint = "roles.change"
	}
	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey == "" || h.Idempotency == nil {
		out, err := h.Changer.Apply(r.Context(), req)
		if err != nil {
			api.FailError(w, err, requestID)
			return
		}
		api.Success(w, out, requestID)
		return
	}

	requestHash := middleware.RequestHash([]byte(strings.Join([]string{req.TargetID, req.NewRole.String(), req.Reason}, "|")))
	stored, replay, err := h.Idempotency.Claim(r.Context(), user.UserID, endpoint, idempotencyKey, requestHash)
	switch {
	case errors.Is(err, middleware.ErrIdempotencyConflict):
		api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
		return
	case errors.Is(err, middleware.ErrIdempotencyInProgress):
		api.Fail(w, http.StatusConflict, "idempotency_in_progress", err.Error(), requestID)
		return
	case err != nil:
		slog.Error("idempotency claim failed", "err", err, "request_id", requestID)
		api.Fail(w, http.StatusServiceUnavailable, "idempotency_unavailable", "idempotency store unavailable, retry later", requestID)
		return
	case replay:
		api.Success(w, stored, requestID)
		return
	}

	// The claim outlives a dropped client connection.
	claimCtx := context.WithoutCancel(r.Context())
	out, err := h.Changer.Apply(r.Context(), req)
	if err != nil {
		if releaseErr := h.Idempotency.Release(claimCtx, user.UserID, endpoint, idempotencyKey, requestHash); releaseErr != nil {
			slog.Warn("idempotency release failed", "err", releaseErr, "request_id", requestID)
		}
		api.FailError(w, err, requestID)
		return
	}

	payload, err := json.Marshal(out)
	if err == nil {
		err = h.Idempotency.Complete(claimCtx, user.UserID, endpoint, idempotencyKey, requestHash, payload)
	}
	if err != nil {
		slog.Warn("idempotency complete failed", "err", err, "request_id", requestID)
	}

	api.Success(w, out, requestID)
}

// handleHistory lists role changes of one employee. Employees may read their
// own history; admins may read anyone's.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.FailError(w, roles.ErrUnauthenticated, requestID)
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID != user.UserID && user.Role.Rank() < roles.Admin.Rank() {
		api.FailError(w, roles.ErrInsufficientPermissions, requestID)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	filter := audit.Filter{ActionPrefix: "role.", EntityType: audit.EntityEmployee, EntityID: employeeID}
	total, err := h.History.Count(r.Context(), filter)
	if err != nil {
		slog.Warn("role history count failed", "err", err)
		total = -1
	}
	events, err := h.History.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_history_failed", "failed to load role history", requestID)
		return
	}

	shared.SetTotal(w, total)
	api.Success(w, events, requestID)
}

func notFoundAs(err, kind error) error {
	if errors.Is(err, core.ErrNotFound) {
		return kind
	}
	return err
}
