package apperr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf_KnownKinds(t *testing.T) {
	cases := map[Kind]int{
		Validation:   http.StatusBadRequest,
		Unauthorized: http.StatusUnauthorized,
		Forbidden:    http.StatusForbidden,
		NotFound:     http.StatusNotFound,
		Conflict:     http.StatusConflict,
		Unavailable:  http.StatusServiceUnavailable,
		Internal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusOf(E(kind, "x")))
	}
}

func TestKindOf_UntaggedDefaultsToInternal(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := errors.New("db down")
	err := Wrap(Unavailable, "service unavailable", inner)
	assert.Equal(t, Unavailable, KindOf(err))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "db down")
}

func TestRespond_TaggedError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Respond(c, E(NotFound, "post not found"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"post not found"}`, rec.Body.String())
}

func TestRespond_UntaggedErrorIsSanitized(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Respond(c, errors.New("pq: secret detail"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}
