package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/roles"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{roles.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{roles.ErrTargetNotFound, http.StatusNotFound, "target_not_found"},
		{roles.ErrActorNotFound, http.StatusNotFound, "actor_not_found"},
		{roles.ErrInsufficientPermissions, http.StatusForbidden, "insufficient_permissions"},
		{roles.ErrScopeViolation, http.StatusForbidden, "scope_violation"},
		{roles.ErrCannotPromoteFurther, http.StatusConflict, "cannot_promote_further"},
		{roles.ErrCannotDemoteLastSuperAdmin, http.StatusConflict, "cannot_demote_last_super_admin"},
		{fmt.Errorf("%w: MANAGER only", roles.ErrInvalidTransition), http.StatusUnprocessableEntity, "invalid_transition"},
		{roles.ErrExternalCollaboratorFailure, http.StatusBadGateway, "external_collaborator_failure"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := StatusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestFailErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, fmt.Errorf("%w: %w", roles.ErrExternalCollaboratorFailure, errors.New("dial tcp 10.0.0.1:5432")), "req-1")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "req-1", env.RequestID)
	assert.Equal(t, "external_collaborator_failure", env.Error.Code)
	assert.NotContains(t, env.Error.Message, "10.0.0.1")

	rec = httptest.NewRecorder()
	FailError(rec, errors.New("secret detail"), "req-2")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}
