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

// ListLocations returns the tenant's map pins. Non-admins only see
// published pins; admins also see drafts.
func ListLocations(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}

	query := db.Scopes(tenantScope(ctx.TenantID)).Order("sort_key ASC, created_at DESC")
	if ctx.Role != model.RoleAdmin && ctx.Role != model.RoleSuperAdmin {
		query = query.Where("status = ?", model.LocationStatusPublished)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var locations []model.Location
	if result := query.Find(&locations); result.Error != nil {
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "failed to list locations", result.Error))
	}
	return c.JSON(http.StatusOK, echo.Map{"locations": locations})
}

// CreateLocation adds a map pin to the caller's tenant.
func CreateLocation(c echo.Context) error {
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
		Name     string   `json:"name"`
		Lat      *float64 `json:"lat"`
		Lng      *float64 `json:"lng"`
		Type     string   `json:"type"`
		LinkedID *uint    `json:"linked_id"`
		SortKey  int      `json:"sort_key"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}
	if req.Lat == nil || req.Lng == nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "lat and lng are required"))
	}

	location := model.Location{
		TenantID: ctx.TenantID,
		Name:     req.Name,
		Lat:      *req.Lat,
		Lng:      *req.Lng,
		Type:     req.Type,
		LinkedID: req.LinkedID,
		Status:   model.LocationStatusDraft,
		SortKey:  req.SortKey,
	}
	if location.Type == "" {
		location.Type = model.LocationTypeCustom
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := db.Create(&location); result.Error != nil {
		log.Error("Failed to create location", zap.Error(result.Error))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "location creation failed", result.Error))
	}
	return c.JSON(http.StatusCreated, echo.Map{"location": location})
}

// UpdateLocation applies a partial update to a map pin.
func UpdateLocation(c echo.Context) error {
	log := logger.FromContext(c)
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleAdmin, model.RoleSuperAdmin); err != nil {
		return apperr.Respond(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var req struct {
		Name    *string  `json:"name"`
		Lat     *float64 `json:"lat"`
		Lng     *float64 `json:"lng"`
		Status  *string  `json:"status"`
		SortKey *int     `json:"sort_key"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}

	var location model.Location
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&location, id); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "location not found"))
	}

	updateData := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != nil {
		updateData["name"] = *req.Name
	}
	if req.Lat != nil {
		updateData["lat"] = *req.Lat
	}
	if req.Lng != nil {
		updateData["lng"] = *req.Lng
	}
	if req.Status != nil {
		switch *req.Status {
		case model.LocationStatusDraft, model.LocationStatusPublished:
			updateData["status"] = *req.Status
		default:
			return apperr.Respond(c, apperr.E(apperr.Validation, "invalid status"))
		}
	}
	if req.SortKey != nil {
		updateData["sort_key"] = *req.SortKey
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := db.Model(&location).Updates(updateData); result.Error != nil {
		log.Error("Failed to update location", zap.Error(result.Error))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "location update failed", result.Error))
	}
	return c.JSON(http.StatusOK, echo.Map{"location": location})
}

// DeleteLocation removes a map pin.
func DeleteLocation(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleAdmin, model.RoleSuperAdmin); err != nil {
		return apperr.Respond(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var location model.Location
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&location, id); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "location not found"))
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := db.Delete(&location); result.Error != nil {
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "location deletion failed", result.Error))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
