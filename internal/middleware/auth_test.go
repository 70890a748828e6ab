package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-service/internal/authz"
	"mission-service/pkg/config"
	"mission-service/pkg/jwtutil"
)

func issueToken(t *testing.T, role string) string {
	t.Helper()
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	tenantID, profileID := uint(1), uint(2)
	token, err := jwtutil.GenerateToken("u@example.org", 3, &tenantID, &profileID, role)
	require.NoError(t, err)
	return token
}

func runMiddleware(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, AuthMiddleware(next)(c))
	return rec
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	called := false
	rec := runMiddleware(t, "", func(c echo.Context) error {
		called = true
		return nil
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called, "handler must not run without a token")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	rec := runMiddleware(t, "Basic abc123", func(c echo.Context) error { return nil })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	rec := runMiddleware(t, "Bearer not.a.token", func(c echo.Context) error { return nil })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_ValidTokenPopulatesContext(t *testing.T) {
	token := issueToken(t, "admin")
	var got authz.Context
	rec := runMiddleware(t, "Bearer "+token, func(c echo.Context) error {
		got = authz.FromEcho(c)
		return c.NoContent(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.Authenticated)
	assert.Equal(t, uint(3), got.UserID)
	assert.Equal(t, uint(1), got.TenantID)
	assert.Equal(t, uint(2), got.ProfileID)
	assert.Equal(t, "admin", got.Role)
}

func TestRequireRoles_DeniesWithoutSideEffect(t *testing.T) {
	token := issueToken(t, "donor")
	called := false
	rec := runMiddleware(t, "Bearer "+token, func(c echo.Context) error {
		return RequireRoles("admin", "super_admin")(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})(c)
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called, "gated handler must not run for the wrong role")
}

func TestRequireRoles_AllowsListedRole(t *testing.T) {
	token := issueToken(t, "super_admin")
	rec := runMiddleware(t, "Bearer "+token, func(c echo.Context) error {
		return RequireRoles("admin", "super_admin")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
