package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/app/server"
	"workforce/internal/domain/auth"
	"workforce/internal/platform/config"
)

const journeySecret = "journey-secret-journey-secret-0123"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

func startApp(t *testing.T) *server.App {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          journeySecret,
		Environment:        "test",
		LogFormat:          "text",
		RunMigrations:      true,
		MigrationsDir:      migrationsDir(t),
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		RequestTimeout:     10 * time.Second,
	}

	app, err := server.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func insertEmployee(t *testing.T, app *server.App, role, departmentID string) string {
	t.Helper()
	var id string
	var dept any
	if departmentID != "" {
		dept = departmentID
	}
	err := app.DB.QueryRow(context.Background(), `
    INSERT INTO employees (first_name, last_name, email, role, department_id)
    VALUES ('Journey', $1, $2, $1, $3)
    RETURNING id::text
  `, role, fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano()), dept).Scan(&id)
	require.NoError(t, err)
	return id
}

func tokenFor(t *testing.T, employeeID, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(journeySecret, auth.Claims{UserID: employeeID, RoleName: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any, headers ...string) (int, envelope) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestPromotionJourney(t *testing.T) {
	app := startApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	adminID := insertEmployee(t, app, "ADMIN", "")
	internID := insertEmployee(t, app, "INTERN", "")
	adminToken := tokenFor(t, adminID, "ADMIN")

	status, env := call(t, ts, http.MethodPost, "/api/v1/roles/promote", adminToken, map[string]string{
		"targetId": internID,
		"newRole":  "EMPLOYEE",
		"reason":   "journey",
	})
	require.Equal(t, http.StatusOK, status, string(env.Data))

	var outcome struct {
		ResultingRole string `json:"resultingRole"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.Equal(t, "EMPLOYEE", outcome.ResultingRole)

	var role string
	require.NoError(t, app.DB.QueryRow(context.Background(), "SELECT role FROM employees WHERE id = $1", internID).Scan(&role))
	assert.Equal(t, "EMPLOYEE", role)

	var audits, notes int
	require.NoError(t, app.DB.QueryRow(context.Background(), "SELECT COUNT(1) FROM audit_events WHERE entity_id = $1 AND action = 'role.promote'", internID).Scan(&audits))
	require.NoError(t, app.DB.QueryRow(context.Background(), "SELECT COUNT(1) FROM notifications WHERE recipient_id = $1", internID).Scan(&notes))
	assert.Equal(t, 1, audits)
	assert.Equal(t, 1, notes)

	status, env = call(t, ts, http.MethodPost, "/api/v1/roles/promote", adminToken, map[string]string{
		"targetId": internID,
		"newRole":  "ADMIN",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_transition", env.Error.Code)
}

func TestTransferJourney(t *testing.T) {
	app := startApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	saID := insertEmployee(t, app, "SUPER_ADMIN", "")
	adminID := insertEmployee(t, app, "ADMIN", "")

	status, _ := call(t, ts, http.MethodPost, "/api/v1/roles/transfer-super-admin", tokenFor(t, saID, "SUPER_ADMIN"), map[string]string{
		"targetId": adminID,
	})
	require.Equal(t, http.StatusOK, status)

	var saRole, adminRole string
	require.NoError(t, app.DB.QueryRow(context.Background(), "SELECT role FROM employees WHERE id = $1", saID).Scan(&saRole))
	require.NoError(t, app.DB.QueryRow(context.Background(), "SELECT role FROM employees WHERE id = $1", adminID).Scan(&adminRole))
	assert.Equal(t, "ADMIN", saRole)
	assert.Equal(t, "SUPER_ADMIN", adminRole)
}

func TestManagerScopeJourney(t *testing.T) {
	app := startApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	ctx := context.Background()
	var engID, salesID, taskID string
	suffix := time.Now().UnixNano()
	require.NoError(t, app.DB.QueryRow(ctx, "INSERT INTO departments (name) VALUES ($1) RETURNING id::text", fmt.Sprintf("eng-%d", suffix)).Scan(&engID))
	require.NoError(t, app.DB.QueryRow(ctx, "INSERT INTO departments (name) VALUES ($1) RETURNING id::text", fmt.Sprintf("sales-%d", suffix)).Scan(&salesID))
	require.NoError(t, app.DB.QueryRow(ctx, "INSERT INTO tasks (title, department_id) VALUES ('journey task', $1) RETURNING id::text", engID).Scan(&taskID))

	managerID := insertEmployee(t, app, "MANAGER", engID)
	engEmployee := insertEmployee(t, app, "EMPLOYEE", engID)
	salesEmployee := insertEmployee(t, app, "EMPLOYEE", salesID)
	token := tokenFor(t, managerID, "MANAGER")

	status, env := call(t, ts, http.MethodPost, "/api/v1/tasks/"+taskID+"/assign", token, map[string]string{"employeeId": salesEmployee})
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "scope_violation", env.Error.Code)

	status, _ = call(t, ts, http.MethodPost, "/api/v1/tasks/"+taskID+"/assign", token, map[string]string{"employeeId": engEmployee})
	assert.Equal(t, http.StatusOK, status)
}

func TestConcurrentIdempotentPromoteJourney(t *testing.T) {
	app := startApp(t)
	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	adminID := insertEmployee(t, app, "ADMIN", "")
	internID := insertEmployee(t, app, "INTERN", "")
	adminToken := tokenFor(t, adminID, "ADMIN")
	key := fmt.Sprintf("journey-%d", time.Now().UnixNano())
	body := map[string]string{"targetId": internID}

	const n = 4
	var wg sync.WaitGroup
	statuses := make([]int, n)
	codes := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var payload bytes.Buffer
			_ = json.NewEncoder(&payload).Encode(body)
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/roles/promote", &payload)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+adminToken)
			req.Header.Set("Idempotency-Key", key)
			resp, err := ts.Client().Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			var env envelope
			_ = json.NewDecoder(resp.Body).Decode(&env)
			statuses[i] = resp.StatusCode
			if env.Error != nil {
				codes[i] = env.Error.Code
			}
		}()
	}
	wg.Wait()

	for i, status := range statuses {
		if status != http.StatusOK {
			assert.Equal(t, http.StatusConflict, status)
			assert.Equal(t, "idempotency_in_progress", codes[i])
		}
	}

	var role string
	require.NoError(t, app.DB.QueryRow(context.Background(), "SELECT role FROM employees WHERE id = $1", internID).Scan(&role))
	assert.Equal(t, "EMPLOYEE", role)

	var audits int
	require.NoError(t, app.DB.QueryRow(context.Background(), "SELECT COUNT(1) FROM audit_events WHERE entity_id = $1 AND action = 'role.promote'", internID).Scan(&audits))
	assert.Equal(t, 1, audits)

	status, _ := call(t, ts, http.MethodPost, "/api/v1/roles/promote", adminToken, body, "Idempotency-Key", key)
	assert.Equal(t, http.StatusOK, status)
	require.NoError(t, app.DB.QueryRow(context.Background(), "SELECT role FROM employees WHERE id = $1", internID).Scan(&role))
	assert.Equal(t, "EMPLOYEE", role)
}
