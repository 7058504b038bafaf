package audithandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/roles"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

const exportLimit = 1000

type EventLog interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Service EventLog
	Now     func() time.Time
}

func NewHandler(service EventLog) *Handler {
	return &Handler{Service: service, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireRole(roles.Admin))
		r.Get("/events", h.handleListEvents)
		r.Get("/events/export", h.handleExportEvents)
		r.Get("/role-changes.pdf", h.handleRoleChangesPDF)
	})
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) (audit.Filter, bool) {
	q := r.URL.Query()
	v := shared.NewValidator()
	from := v.Date("from", q.Get("from"))
	to := v.Date("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return audit.Filter{}, false
	}
	return audit.Filter{
		ActionPrefix: q.Get("action"),
		EntityType:   q.Get("entityType"),
		EntityID:     q.Get("entityId"),
		ActorID:      q.Get("actorId"),
		From:         from,
		To:           to,
	}, true
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		slog.Warn("audit count failed", "err", err)
		total = -1
	}

	events, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	shared.SetTotal(w, total)
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	events, err := h.Service.List(r.Context(), filter, exportLimit, 0)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actorId", "actorRole", "action", "entityType", "entityId", "previousRole", "newRole", "reason", "requestId", "ip", "createdAt"}); err != nil {
		slog.Warn("audit export header failed", "err", err)
	}
	for _, evt := range events {
		if err := writer.Write([]string{evt.ID, evt.ActorID, evt.ActorRole, evt.Action, evt.EntityType, evt.EntityID, evt.PreviousRole, evt.NewRole, evt.Reason, evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			slog.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("audit export flush failed", "err", err)
	}
}

func (h *Handler) handleRoleChangesPDF(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	filter.ActionPrefix = "role."
	filter.EntityType = audit.EntityEmployee

	events, err := h.Service.List(r.Context(), filter, exportLimit, 0)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to load role changes", middleware.GetRequestID(r.Context()))
		return
	}

	pdf, err := audit.RenderRoleChangesPDF(events, h.Now())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_render_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=role-changes.pdf")
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("role change pdf write failed", "err", err)
	}
}
