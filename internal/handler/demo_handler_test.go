package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-service/pkg/config"
)

func demoRequest(t *testing.T, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/demo-account", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, DemoLogin(c)
}

func fullDemoConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Env: "development"},
		Demo: config.DemoConfig{
			Password:        "letmein",
			AdminEmail:      "demo-admin@example.org",
			DonorEmail:      "demo-donor@example.org",
			MissionaryEmail: "demo-m@example.org",
		},
	}
}

// Every demo failure mode must produce the same body, so a probe cannot
// learn which precondition is missing.
func TestDemoLogin_UniformFailure(t *testing.T) {
	defer SetConfig(nil)

	configs := []*config.Config{
		nil, // nothing configured
		{Demo: config.DemoConfig{Password: "letmein"}},                // no emails
		{Demo: config.DemoConfig{AdminEmail: "demo@example.org"}},     // no password
		func() *config.Config { // configured, but production without the opt-in
			c := fullDemoConfig()
			c.Server.Env = "production"
			return c
		}(),
	}

	for _, c := range configs {
		SetConfig(c)
		rec, err := demoRequest(t, `{"role":"admin","password":"letmein"}`)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"error":"Demo login unavailable"}`, rec.Body.String())
	}
}

func TestDemoLogin_WrongPasswordIsAlsoUniform(t *testing.T) {
	SetConfig(fullDemoConfig())
	defer SetConfig(nil)

	rec, err := demoRequest(t, `{"role":"admin","password":"wrong"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"Demo login unavailable"}`, rec.Body.String())
}

func TestDemoLogin_UnknownRole(t *testing.T) {
	SetConfig(fullDemoConfig())
	defer SetConfig(nil)

	rec, err := demoRequest(t, `{"role":"super_admin","password":"letmein"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"Demo login unavailable"}`, rec.Body.String())
}

func TestCheckDemoAccount_ReportsPerRole(t *testing.T) {
	cfg := fullDemoConfig()
	cfg.Demo.MissionaryEmail = ""
	SetConfig(cfg)
	defer SetConfig(nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/demo-account", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, CheckDemoAccount(e.NewContext(req, rec)))

	var resp struct {
		Available map[string]bool `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Available["admin"])
	assert.True(t, resp.Available["donor"])
	assert.False(t, resp.Available["missionary"])
}
