package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-service/internal/authz"
	"mission-service/pkg/config"
)

func authedContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	authz.Store(c, authz.Context{UserID: 1, ProfileID: 1, TenantID: 1, Role: "donor", Authenticated: true})
	return c, rec
}

func TestCloudinarySignature_UnconfiguredIsUnavailable(t *testing.T) {
	SetConfig(&config.Config{})
	defer SetConfig(nil)

	c, rec := authedContext(http.MethodPost, "/api/upload/cloudinary/signature")
	require.NoError(t, CloudinarySignature(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUploadImage_UnconfiguredIsUnavailable(t *testing.T) {
	SetConfig(&config.Config{})
	defer SetConfig(nil)

	c, rec := authedContext(http.MethodPost, "/api/upload/image")
	require.NoError(t, UploadImage(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpload_RequiresAuth(t *testing.T) {
	SetConfig(&config.Config{})
	defer SetConfig(nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, UploadImage(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Without an initialized database every data handler degrades to 503
// instead of panicking on a nil handle.
func TestHandlers_DatabaseUnavailable(t *testing.T) {
	handlers := map[string]echo.HandlerFunc{
		"ListPosts":     ListPosts,
		"ListDonations": ListDonations,
		"GetFeed":       GetFeed,
	}
	for name, h := range handlers {
		c, rec := authedContext(http.MethodGet, "/")
		require.NoError(t, h(c), name)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, name)
	}
}
