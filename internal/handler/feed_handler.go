package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mission-service/internal/apperr"
	"mission-service/internal/authz"
	"mission-service/internal/feedview"
	"mission-service/internal/model"
	"mission-service/pkg/logger"
	"mission-service/prometheus"
)

// GetFeed returns the calling donor's feed, assembled from the posts of
// followed missionaries plus org posts per the donor's preferences.
func GetFeed(c echo.Context) error {
	if _, err := currentDB(); err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleDonor); err != nil {
		return apperr.Respond(c, err)
	}

	donor, err := donorForProfile(c, ctx)
	if err != nil {
		return apperr.Respond(c, err)
	}

	if feedStore == nil {
		return apperr.Respond(c, apperr.E(apperr.Unavailable, "service unavailable"))
	}
	feed := feedStore.DonorFeed(donor.ID)
	if feed == nil {
		feed = []feedview.FeedPost{} // keep the JSON an array, not null
	}
	return c.JSON(http.StatusOK, echo.Map{"feed": feed})
}

// GetFeedPreferences returns the donor's feed settings, creating the
// default row on first access.
func GetFeedPreferences(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleDonor); err != nil {
		return apperr.Respond(c, err)
	}

	donor, err := donorForProfile(c, ctx)
	if err != nil {
		return apperr.Respond(c, err)
	}

	var prefs model.DonorFeedPreferences
	result := db.Where("donor_id = ? AND tenant_id = ?", donor.ID, ctx.TenantID).First(&prefs)
	if result.Error != nil {
		prefs = model.DonorFeedPreferences{
			DonorID:           donor.ID,
			TenantID:          ctx.TenantID,
			ShowUpdates:       true,
			ShowPrayers:       true,
			ShowAnnouncements: true,
			FollowsOrg:        true,
		}
		if err := db.Create(&prefs).Error; err != nil {
			return apperr.Respond(c, apperr.Wrap(apperr.Internal, "failed to load preferences", err))
		}
		if feedStore != nil {
			feedStore.UpsertPreferences(prefs)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"preferences": prefs})
}

// UpdateFeedPreferences upserts the donor's feed settings, applying
// only the fields present in the body.
func UpdateFeedPreferences(c echo.Context) error {
	log := logger.FromContext(c)
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleDonor); err != nil {
		return apperr.Respond(c, err)
	}

	var req struct {
		ShowUpdates       *bool `json:"show_updates"`
		ShowPrayers       *bool `json:"show_prayer_requests"`
		ShowAnnouncements *bool `json:"show_announcements"`
		FollowsOrg        *bool `json:"follows_org"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}

	donor, err := donorForProfile(c, ctx)
	if err != nil {
		return apperr.Respond(c, err)
	}

	var prefs model.DonorFeedPreferences
	result := db.Where("donor_id = ? AND tenant_id = ?", donor.ID, ctx.TenantID).First(&prefs)
	if result.Error != nil {
		prefs = model.DonorFeedPreferences{
			DonorID:           donor.ID,
			TenantID:          ctx.TenantID,
			ShowUpdates:       true,
			ShowPrayers:       true,
			ShowAnnouncements: true,
			FollowsOrg:        true,
		}
	}

	if req.ShowUpdates != nil {
		prefs.ShowUpdates = *req.ShowUpdates
	}
	if req.ShowPrayers != nil {
		prefs.ShowPrayers = *req.ShowPrayers
	}
	if req.ShowAnnouncements != nil {
		prefs.ShowAnnouncements = *req.ShowAnnouncements
	}
	if req.FollowsOrg != nil {
		prefs.FollowsOrg = *req.FollowsOrg
	}
	prefs.UpdatedAt = time.Now()

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Save(&prefs).Error; err != nil {
		log.Error("Failed to save feed preferences", zap.Error(err))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "failed to save preferences", err))
	}

	if feedStore != nil {
		feedStore.UpsertPreferences(prefs)
	}
	return c.JSON(http.StatusOK, echo.Map{"preferences": prefs})
}
