package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mission-service/internal/apperr"
	"mission-service/internal/authz"
	"mission-service/internal/model"
	"mission-service/pkg/database"
	"mission-service/pkg/logger"
	"mission-service/prometheus"
)

// ListMissionaries returns the tenant's missionaries with their
// profiles preloaded.
func ListMissionaries(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var missionaries []model.Missionary
	if result := db.Scopes(tenantScope(ctx.TenantID)).
		Preload("Profile").Find(&missionaries); result.Error != nil {
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "failed to list missionaries", result.Error))
	}
	return c.JSON(http.StatusOK, echo.Map{"missionaries": missionaries})
}

// CreateMissionary promotes an existing profile in the tenant to a
// missionary, switching its role and creating the missionary record in
// one transaction.
func CreateMissionary(c echo.Context) error {
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
		ProfileID uint   `json:"profile_id"`
		Bio       string `json:"bio"`
		Region    string `json:"region"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}
	if req.ProfileID == 0 {
		return apperr.Respond(c, apperr.E(apperr.Validation, "profile_id is required"))
	}

	var profile model.Profile
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&profile, req.ProfileID); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "profile not found"))
	}

	missionary := model.Missionary{
		ProfileID: profile.ID,
		TenantID:  ctx.TenantID,
		Bio:       req.Bio,
		Region:    req.Region,
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&missionary).Error; err != nil {
			return err
		}
		return tx.Model(&profile).Updates(map[string]interface{}{
			"role":       model.RoleMissionary,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		if database.IsDuplicate(err) {
			return apperr.Respond(c, apperr.E(apperr.Conflict, "profile is already a missionary"))
		}
		log.Error("Failed to create missionary", zap.Error(err))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "missionary creation failed", err))
	}

	if feedStore != nil {
		feedStore.UpsertMissionary(missionary)
		feedStore.UpsertProfile(profile)
	}
	return c.JSON(http.StatusCreated, echo.Map{"missionary": missionary})
}

// GetSupporters returns the supporter list with giving aggregates for
// one missionary. Missionaries can only see their own list; admins can
// see any list in their tenant.
func GetSupporters(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx,
		model.RoleMissionary, model.RoleAdmin, model.RoleSuperAdmin); err != nil {
		return apperr.Respond(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var missionary model.Missionary
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&missionary, id); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "missionary not found"))
	}
	if ctx.Role == model.RoleMissionary && missionary.ProfileID != ctx.ProfileID {
		return apperr.Respond(c, apperr.E(apperr.Forbidden, "insufficient role"))
	}

	if feedStore == nil {
		return apperr.Respond(c, apperr.E(apperr.Unavailable, "service unavailable"))
	}
	return c.JSON(http.StatusOK, echo.Map{"supporters": feedStore.SupporterList(missionary.ID)})
}

// GetMissionaryFunds returns a missionary's funds with progress.
func GetMissionaryFunds(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var missionary model.Missionary
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&missionary, id); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "missionary not found"))
	}

	if feedStore == nil {
		return apperr.Respond(c, apperr.E(apperr.Unavailable, "service unavailable"))
	}
	return c.JSON(http.StatusOK, echo.Map{"funds": feedStore.MissionaryFunds(missionary.ID)})
}

// FollowMissionary subscribes the calling donor to a missionary's
// posts. Double-following is a conflict.
func FollowMissionary(c echo.Context) error {
	log := logger.FromContext(c)
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleDonor); err != nil {
		return apperr.Respond(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var missionary model.Missionary
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&missionary, id); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "missionary not found"))
	}

	donor, err := donorForProfile(c, ctx)
	if err != nil {
		return apperr.Respond(c, err)
	}

	follow := model.Follow{
		TenantID:     ctx.TenantID,
		DonorID:      donor.ID,
		MissionaryID: missionary.ID,
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := db.Create(&follow); result.Error != nil {
		if database.IsDuplicate(result.Error) {
			return apperr.Respond(c, apperr.E(apperr.Conflict, "already following"))
		}
		log.Error("Failed to create follow", zap.Error(result.Error))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "follow failed", result.Error))
	}

	if feedStore != nil {
		feedStore.UpsertFollow(follow)
	}
	return c.JSON(http.StatusCreated, echo.Map{"follow": follow})
}

// UnfollowMissionary removes the calling donor's subscription.
func UnfollowMissionary(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleDonor); err != nil {
		return apperr.Respond(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	donor, err := donorForProfile(c, ctx)
	if err != nil {
		return apperr.Respond(c, err)
	}

	var follow model.Follow
	if result := db.Where("donor_id = ? AND missionary_id = ?", donor.ID, id).
		First(&follow); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "not following"))
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := db.Delete(&follow); result.Error != nil {
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "unfollow failed", result.Error))
	}

	if feedStore != nil {
		feedStore.DeleteFollow(follow.ID)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
