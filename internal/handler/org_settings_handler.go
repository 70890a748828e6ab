package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mission-service/internal/apperr"
	"mission-service/internal/authz"
	"mission-service/internal/model"
	"mission-service/pkg/logger"
	"mission-service/prometheus"
)

// GetOrgSettings returns the caller's tenant settings.
func GetOrgSettings(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}

	var tenant model.Tenant
	if result := db.First(&tenant, ctx.TenantID); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "organization not found"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"settings": map[string]interface{}{
			"name":                tenant.Name,
			"slug":                tenant.Slug,
			"org_post_visibility": tenant.OrgPostVisibility,
		},
	})
}

// UpdateOrgSettings applies org-wide setting changes. Admin only; the
// only writable setting today is the org post visibility toggle.
func UpdateOrgSettings(c echo.Context) error {
	log := logger.FromContext(c)
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleAdmin, model.RoleSuperAdmin); err != nil {
		return apperr.Respond(c, err)
	}

	var req struct {
		OrgPostVisibility *string `json:"org_post_visibility"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}

	var tenant model.Tenant
	if result := db.First(&tenant, ctx.TenantID); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "organization not found"))
	}

	updateData := map[string]interface{}{"updated_at": time.Now()}
	if req.OrgPostVisibility != nil {
		switch *req.OrgPostVisibility {
		case model.OrgPostVisibilityEveryone, model.OrgPostVisibilityFollowers:
			updateData["org_post_visibility"] = *req.OrgPostVisibility
		default:
			return apperr.Respond(c, apperr.E(apperr.Validation, "invalid org_post_visibility"))
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := db.Model(&tenant).Updates(updateData); result.Error != nil {
		log.Error("Failed to update org settings", zap.Error(result.Error))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "settings update failed", result.Error))
	}

	log.Info("Org settings updated", zap.Uint("tenant_id", tenant.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"settings": map[string]interface{}{
			"name":                tenant.Name,
			"slug":                tenant.Slug,
			"org_post_visibility": tenant.OrgPostVisibility,
		},
	})
}
