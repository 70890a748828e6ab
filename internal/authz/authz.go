// Package authz resolves the caller's identity for one request and
// provides the role guards used by every protected handler.
package authz

import (
	"github.com/labstack/echo/v4"

	"mission-service/internal/apperr"
	"mission-service/pkg/jwtutil"
)

const contextKey = "auth_context"

// Context is the per-request caller identity. It is resolved from the
// request's token on every request and never cached across requests.
type Context struct {
	UserID        uint
	ProfileID     uint
	TenantID      uint
	Role          string
	Authenticated bool
}

// FromClaims builds an authenticated context from validated JWT claims.
// Claims without a tenant or profile yield an unauthenticated context,
// so downstream guards fail closed.
func FromClaims(claims *jwtutil.UserClaims) Context {
	if claims == nil || claims.TenantID == nil || claims.ProfileID == nil {
		return Context{}
	}
	return Context{
		UserID:        claims.UserID,
		ProfileID:     *claims.ProfileID,
		TenantID:      *claims.TenantID,
		Role:          claims.Role,
		Authenticated: true,
	}
}

// Store attaches ctx to the echo context.
func Store(c echo.Context, ctx Context) {
	c.Set(contextKey, ctx)
}

// FromEcho retrieves the caller context; absence means unauthenticated.
func FromEcho(c echo.Context) Context {
	ctx, ok := c.Get(contextKey).(Context)
	if !ok {
		return Context{}
	}
	return ctx
}

// RequireAuth fails with Unauthorized unless the context is fully
// populated. On success callers may rely on UserID/TenantID/Role being
// set without further checks.
func RequireAuth(ctx Context) error {
	if !ctx.Authenticated || ctx.UserID == 0 || ctx.TenantID == 0 || ctx.Role == "" {
		return apperr.E(apperr.Unauthorized, "Unauthorized")
	}
	return nil
}

// RequireRole runs RequireAuth, then fails with Forbidden unless the
// caller's role is in the allowed set.
func RequireRole(ctx Context, roles ...string) error {
	if err := RequireAuth(ctx); err != nil {
		return err
	}
	for _, r := range roles {
		if ctx.Role == r {
			return nil
		}
	}
	return apperr.E(apperr.Forbidden, "insufficient role")
}
