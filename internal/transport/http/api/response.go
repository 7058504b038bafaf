package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"workforce/internal/domain/roles"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

var kindStatus = map[string]int{
	"Unauthenticated":             http.StatusUnauthorized,
	"ActorNotFound":               http.StatusNotFound,
	"TargetNotFound":              http.StatusNotFound,
	"InsufficientPermissions":     http.StatusForbidden,
	"ScopeViolation":              http.StatusForbidden,
	"CannotPromoteFurther":        http.StatusConflict,
	"CannotDemoteFurther":         http.StatusConflict,
	"CannotDemoteLastSuperAdmin":  http.StatusConflict,
	"InvalidTransition":           http.StatusUnprocessableEntity,
	"ExternalCollaboratorFailure": http.StatusBadGateway,
}

// StatusFor maps a role engine error to its HTTP status and envelope code.
// Unclassified errors are 500 with code "internal_error".
func StatusFor(err error) (int, string) {
	kind := roles.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		return http.StatusInternalServerError, "internal_error"
	}
	return status, SnakeCase(kind)
}

// FailError writes err using StatusFor. Internal errors are logged and
// reported without their message.
func FailError(w http.ResponseWriter, err error, requestID string) {
	status, code := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("unhandled error", "requestId", requestID, "err", err)
		message = "internal server error"
	}
	if errors.Is(err, roles.ErrExternalCollaboratorFailure) {
		slog.Warn("collaborator failure", "requestId", requestID, "err", err)
		message = roles.ErrExternalCollaboratorFailure.Error()
	}
	Fail(w, status, code, message, requestID)
}

func SnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
