package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-service/internal/apperr"
	"mission-service/pkg/jwtutil"
)

func uintPtr(v uint) *uint { return &v }

func TestFromClaims_FullClaims(t *testing.T) {
	claims := &jwtutil.UserClaims{
		UserID:    7,
		TenantID:  uintPtr(3),
		ProfileID: uintPtr(11),
		Role:      "admin",
	}
	ctx := FromClaims(claims)
	assert.True(t, ctx.Authenticated)
	assert.Equal(t, uint(7), ctx.UserID)
	assert.Equal(t, uint(3), ctx.TenantID)
	assert.Equal(t, uint(11), ctx.ProfileID)
	assert.Equal(t, "admin", ctx.Role)
}

func TestFromClaims_FailsClosed(t *testing.T) {
	assert.False(t, FromClaims(nil).Authenticated)
	assert.False(t, FromClaims(&jwtutil.UserClaims{UserID: 7}).Authenticated)
	assert.False(t, FromClaims(&jwtutil.UserClaims{UserID: 7, TenantID: uintPtr(3)}).Authenticated)
}

func TestRequireAuth(t *testing.T) {
	full := Context{UserID: 1, ProfileID: 2, TenantID: 3, Role: "donor", Authenticated: true}
	require.NoError(t, RequireAuth(full))

	cases := []Context{
		{},
		{UserID: 1, TenantID: 3, Role: "donor"}, // not authenticated
		{UserID: 1, Role: "donor", Authenticated: true},
		{UserID: 1, TenantID: 3, Authenticated: true},
	}
	for _, ctx := range cases {
		err := RequireAuth(ctx)
		require.Error(t, err)
		assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	}
}

func TestRequireRole(t *testing.T) {
	admin := Context{UserID: 1, ProfileID: 2, TenantID: 3, Role: "admin", Authenticated: true}
	donor := Context{UserID: 1, ProfileID: 2, TenantID: 3, Role: "donor", Authenticated: true}

	require.NoError(t, RequireRole(admin, "admin", "super_admin"))

	err := RequireRole(donor, "admin", "super_admin")
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// an unauthenticated caller is unauthorized before role is considered
	err = RequireRole(Context{}, "admin")
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}
