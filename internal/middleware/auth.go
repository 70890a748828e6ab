package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mission-service/internal/apperr"
	"mission-service/internal/authz"
	"mission-service/pkg/jwtutil"
	"mission-service/pkg/logger"
	"mission-service/prometheus"
)

// AuthMiddleware resolves the caller's identity from the Authorization
// header and stores it as an authz.Context. Resolution happens on every
// request; a missing or invalid token leaves the context unauthenticated
// so the guards downstream fail closed.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			prometheus.RecordAuthError("missing_token")
			return apperr.Respond(c, apperr.E(apperr.Unauthorized, "Unauthorized"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return apperr.Respond(c, apperr.E(apperr.Unauthorized, "Unauthorized"))
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return apperr.Respond(c, apperr.E(apperr.Unauthorized, "Unauthorized"))
		}

		authz.Store(c, authz.FromClaims(claims))
		return next(c)
	}
}

// RequireRoles gates a route group to the given roles. Handlers behind
// it may still call authz.RequireRole themselves; this rejects early so
// no handler code runs for the wrong role.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := authz.FromEcho(c)
			if err := authz.RequireRole(ctx, roles...); err != nil {
				if apperr.KindOf(err) == apperr.Forbidden {
					prometheus.RecordTenantError(ctx.TenantID, "role_denied")
				}
				return apperr.Respond(c, err)
			}
			return next(c)
		}
	}
}
