package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mission-service/internal/apperr"
	"mission-service/internal/authz"
	"mission-service/internal/model"
	"mission-service/pkg/jwtutil"
	"mission-service/pkg/logger"
	"mission-service/prometheus"
)

// Login authenticates a user and issues a token carrying the tenant,
// profile and role of the caller.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := db.Where("email = ?", req.Email).First(&user); result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return apperr.Respond(c, apperr.E(apperr.Unauthorized, "invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return apperr.Respond(c, apperr.E(apperr.Unauthorized, "invalid credentials"))
	}

	var profile model.Profile
	if result := db.Where("user_id = ?", user.ID).First(&profile); result.Error != nil {
		log.Error("No profile for user", zap.Uint("user_id", user.ID))
		prometheus.RecordAuthError("no_profile")
		return apperr.Respond(c, apperr.E(apperr.Unauthorized, "invalid credentials"))
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, &profile.TenantID, &profile.ID, profile.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "token error", err))
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", profile.TenantID),
		zap.String("role", profile.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"profile": map[string]interface{}{
			"id":        profile.ID,
			"tenant_id": profile.TenantID,
			"role":      profile.Role,
			"name":      profile.DisplayName(),
		},
	})
}

// Register creates a user with a donor profile in the tenant identified
// by slug. Elevated roles are only ever assigned by admins, never at
// registration.
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}

	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		TenantSlug string `json:"tenant_slug"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}
	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return apperr.Respond(c, apperr.E(apperr.Validation, "email and password are required"))
	}
	if req.TenantSlug == "" {
		return apperr.Respond(c, apperr.E(apperr.Validation, "tenant_slug is required"))
	}

	var tenant model.Tenant
	if result := db.Where("slug = ? AND active = ?", req.TenantSlug, true).First(&tenant); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "organization not found"))
	}

	var existing model.User
	if result := db.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		prometheus.RecordAuthError("email_taken")
		return apperr.Respond(c, apperr.E(apperr.Conflict, "email already registered"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "registration failed", err))
	}

	user := model.User{Email: req.Email, Password: string(hashed)}
	profile := model.Profile{
		TenantID:  tenant.ID,
		Role:      model.RoleDonor,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	donor := model.Donor{TenantID: tenant.ID}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		donor.ProfileID = profile.ID
		return tx.Create(&donor).Error
	})
	if err != nil {
		log.Error("Failed to register user", zap.Error(err))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "registration failed", err))
	}

	if feedStore != nil {
		feedStore.UpsertProfile(profile)
		feedStore.UpsertDonor(donor)
	}

	log.Info("User registered",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", tenant.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"user": map[string]interface{}{
			"id":         user.ID,
			"email":      user.Email,
			"profile_id": profile.ID,
			"tenant_id":  tenant.ID,
		},
	})
}

// GetProfile returns the caller's own profile.
func GetProfile(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}

	var profile model.Profile
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&profile, ctx.ProfileID); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "profile not found"))
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": profile})
}

// UpdateProfile applies the provided display fields to the caller's
// profile, leaving everything else untouched.
func UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}

	var profile model.Profile
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&profile, ctx.ProfileID); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "profile not found"))
	}

	updateData := map[string]interface{}{"updated_at": time.Now()}
	if req.FirstName != nil {
		updateData["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updateData["last_name"] = *req.LastName
	}
	if req.AvatarURL != nil {
		updateData["avatar_url"] = *req.AvatarURL
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := db.Model(&profile).Updates(updateData); result.Error != nil {
		log.Error("Failed to update profile", zap.Error(result.Error))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "profile update failed", result.Error))
	}

	if feedStore != nil {
		feedStore.UpsertProfile(profile)
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": profile})
}
