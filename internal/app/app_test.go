package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashu12122005/ppp-management/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(config.Config{
		HTTPAddr:    ":0",
		TokenSecret: "0123456789abcdef0123456789abcdef",
		TokenIssuer: "ppp-api",
	}, nil)
	require.NoError(t, err)
	return a
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUnknownRouteReturns404(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/nope", nil)
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	a := newTestApp(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/students"},
		{http.MethodPost, "/v1/imports/students"},
		{http.MethodGet, "/v1/dashboard"},
		{http.MethodGet, "/v1/accounts"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		a.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestRequireTLS(t *testing.T) {
	a := newTestApp(t)
	a.cfg.RequireTLS = true

	req := httptest.NewRequest(http.MethodGet, "/v1/students", nil)
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUpgradeRequired, rec.Code)

	// healthz stays reachable for plain HTTP probes.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A terminated-TLS proxy hop is accepted.
	req = httptest.NewRequest(http.MethodGet, "/v1/students", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutePattern(t *testing.T) {
	assert.Equal(t, "/healthz", routePattern("/healthz"))
	assert.Equal(t, "/v1/students", routePattern("/v1/students"))
	assert.Equal(t, "/v1/students", routePattern("/v1/students/abc-123"))
	assert.Equal(t, "/v1/accounts", routePattern("/v1/accounts/abc/reset-password"))
}
