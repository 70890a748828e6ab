package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mission-service/internal/apperr"
	"mission-service/internal/model"
	"mission-service/pkg/jwtutil"
	"mission-service/pkg/logger"
	"mission-service/prometheus"
)

// demoRoles are the roles a demo account can exist for.
var demoRoles = []string{model.RoleAdmin, model.RoleDonor, model.RoleMissionary}

// errDemoUnavailable is the uniform demo failure. Every precondition
// failure returns exactly this error so callers cannot tell which
// environment variable or row is missing.
var errDemoUnavailable = apperr.E(apperr.Unavailable, "Demo login unavailable")

// CheckDemoAccount reports which demo roles can currently log in.
func CheckDemoAccount(c echo.Context) error {
	available := map[string]bool{}
	for _, role := range demoRoles {
		available[role] = cfg != nil && cfg.DemoAvailable(role)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": available})
}

// DemoLogin issues a token for the demo account of the requested role.
func DemoLogin(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}
	prometheus.DemoLoginCounter.WithLabelValues(req.Role).Inc()

	if cfg == nil || !cfg.DemoAvailable(req.Role) {
		return apperr.Respond(c, errDemoUnavailable)
	}
	if req.Password != cfg.Demo.Password {
		return apperr.Respond(c, errDemoUnavailable)
	}

	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, errDemoUnavailable)
	}

	email := cfg.Demo.EmailForRole(req.Role)
	var user model.User
	if result := db.Where("email = ?", email).First(&user); result.Error != nil {
		log.Warn("Demo account row missing", zap.String("role", req.Role))
		return apperr.Respond(c, errDemoUnavailable)
	}

	var profile model.Profile
	if result := db.Where("user_id = ? AND role = ?", user.ID, req.Role).First(&profile); result.Error != nil {
		log.Warn("Demo profile missing", zap.String("role", req.Role))
		return apperr.Respond(c, errDemoUnavailable)
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, &profile.TenantID, &profile.ID, profile.Role)
	if err != nil {
		return apperr.Respond(c, errDemoUnavailable)
	}

	log.Info("Demo login", zap.String("role", req.Role), zap.Uint("tenant_id", profile.TenantID))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"profile": map[string]interface{}{
			"id":        profile.ID,
			"tenant_id": profile.TenantID,
			"role":      profile.Role,
		},
	})
}
