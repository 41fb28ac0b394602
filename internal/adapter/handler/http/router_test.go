package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/patient_records/internal/adapter/logger"
	"github.com/sm8ta/patient_records/internal/adapter/memory"
	metrics "github.com/sm8ta/patient_records/internal/adapter/prometheus"
	"github.com/sm8ta/patient_records/internal/adapter/token"
	"github.com/sm8ta/patient_records/internal/config"
	"github.com/sm8ta/patient_records/internal/core/services"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLoggerAdapter("local", "error", io.Discard)
	reg := prometheus.NewRegistry()
	svc := services.NewPatientService(memory.NewPatientStore(), log, services.NewValidator())

	router, err := NewRouter(&config.HTTP{
		Env:            "local",
		AllowedOrigins: "http://localhost:5173",
	}, token.AnyBearer{}, reg, NewPatientHandler(svc, log, metrics.NewPrometheusAdapter(reg, "test")))
	require.NoError(t, err)
	return router
}

func serve(r *Router, method, path, body string, authed bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if authed {
		req.Header.Set("Authorization", "Bearer demo-jwt-token-1")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{"name":"Ada","email":"ada@example.com","address":"London","dateOfBirth":"1815-12-10","registeredDate":"2024-01-01"}`

func TestRouterHealth(t *testing.T) {
	w := serve(newTestRouter(t), http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRequiresBearer(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/patients", "", false).Code)

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterPatientLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodPost, "/patients", validBody, true)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "1815-12-10", created["dataOfBirth"])
	_, hasRegistered := created["registeredDate"]
	assert.False(t, hasRegistered)

	w = serve(r, http.MethodGet, "/patients", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created["id"], list[0]["id"])

	w = serve(r, http.MethodPut, "/patients/"+created["id"], strings.Replace(validBody, "Ada", "Augusta", 1), true)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodDelete, "/patients/"+created["id"], "", true).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodDelete, "/patients/"+created["id"], "", true).Code)
}

func TestRouterValidationErrors(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodPost, "/patients", `{"name":"Ada","email":"nope"}`, true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Email is invalid", resp.Fields["email"])
	assert.Contains(t, resp.Fields, "address")

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/patients", `{`, true).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPut, "/patients/missing", validBody, true).Code)
}

func TestRouterExposesMetrics(t *testing.T) {
	r := newTestRouter(t)
	serve(r, http.MethodGet, "/patients", "", true)

	w := serve(r, http.MethodGet, "/metrics", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `path="/patients"`)
}
