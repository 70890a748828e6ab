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

// donorForProfile loads the donor row backing the caller's profile.
func donorForProfile(c echo.Context, ctx authz.Context) (*model.Donor, error) {
	db, err := currentDB()
	if err != nil {
		return nil, err
	}
	var donor model.Donor
	if result := db.Scopes(tenantScope(ctx.TenantID)).
		Where("profile_id = ?", ctx.ProfileID).First(&donor); result.Error != nil {
		return nil, apperr.E(apperr.NotFound, "donor record not found")
	}
	return &donor, nil
}

// ListDonations returns donations visible to the caller: donors see
// their own giving history, admins and staff see the whole tenant.
func ListDonations(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx,
		model.RoleDonor, model.RoleAdmin, model.RoleStaff, model.RoleSuperAdmin); err != nil {
		return apperr.Respond(c, err)
	}

	if ctx.Role == model.RoleDonor {
		donor, err := donorForProfile(c, ctx)
		if err != nil {
			return apperr.Respond(c, err)
		}
		if feedStore != nil {
			return c.JSON(http.StatusOK, echo.Map{"donations": feedStore.GivingHistory(donor.ID)})
		}
		var donations []model.Donation
		if result := db.Where("donor_id = ?", donor.ID).
			Order("created_at DESC").Find(&donations); result.Error != nil {
			return apperr.Respond(c, apperr.Wrap(apperr.Internal, "failed to list donations", result.Error))
		}
		return c.JSON(http.StatusOK, echo.Map{"donations": donations})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var donations []model.Donation
	if result := db.Scopes(tenantScope(ctx.TenantID)).
		Order("created_at DESC").Find(&donations); result.Error != nil {
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "failed to list donations", result.Error))
	}
	return c.JSON(http.StatusOK, echo.Map{"donations": donations})
}

// CreateDonation records a pending donation from the calling donor.
// Status moves off pending when the payment processor reports back,
// which is outside this service.
func CreateDonation(c echo.Context) error {
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
		AmountCents       int64  `json:"amount_cents"`
		Currency          string `json:"currency"`
		MissionaryID      *uint  `json:"missionary_id"`
		FundID            *uint  `json:"fund_id"`
		Recurring         bool   `json:"recurring"`
		RecurringInterval string `json:"recurring_interval"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}
	if req.AmountCents <= 0 {
		return apperr.Respond(c, apperr.E(apperr.Validation, "amount_cents must be positive"))
	}
	if req.Recurring && req.RecurringInterval == "" {
		return apperr.Respond(c, apperr.E(apperr.Validation, "recurring_interval is required for recurring donations"))
	}

	donor, err := donorForProfile(c, ctx)
	if err != nil {
		return apperr.Respond(c, err)
	}

	if req.MissionaryID != nil {
		var missionary model.Missionary
		if result := db.Scopes(tenantScope(ctx.TenantID)).First(&missionary, *req.MissionaryID); result.Error != nil {
			return apperr.Respond(c, apperr.E(apperr.NotFound, "missionary not found"))
		}
	}
	if req.FundID != nil {
		var fund model.Fund
		if result := db.Scopes(tenantScope(ctx.TenantID)).
			Where("active = ?", true).First(&fund, *req.FundID); result.Error != nil {
			return apperr.Respond(c, apperr.E(apperr.NotFound, "fund not found"))
		}
	}

	donation := model.Donation{
		TenantID:          ctx.TenantID,
		DonorID:           donor.ID,
		MissionaryID:      req.MissionaryID,
		FundID:            req.FundID,
		AmountCents:       req.AmountCents,
		Currency:          req.Currency,
		Status:            model.DonationStatusPending,
		Recurring:         req.Recurring,
		RecurringInterval: req.RecurringInterval,
	}
	if donation.Currency == "" {
		donation.Currency = "USD"
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := db.Create(&donation); result.Error != nil {
		log.Error("Failed to create donation", zap.Error(result.Error))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "donation creation failed", result.Error))
	}

	if feedStore != nil {
		feedStore.UpsertDonation(donation)
	}
	prometheus.DonationCounter.WithLabelValues(donation.Status).Inc()

	log.Info("Donation recorded",
		zap.Uint("id", donation.ID),
		zap.Int64("amount_cents", donation.AmountCents),
		zap.Uint("tenant_id", donation.TenantID))
	return c.JSON(http.StatusCreated, echo.Map{"donation": donation})
}
