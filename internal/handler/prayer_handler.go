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

// counterColumn maps a reaction kind to the post counter it maintains.
var counterColumn = map[string]string{
	model.ReactionPrayer: "prayer_count",
	model.ReactionLike:   "like_count",
}

// addReaction inserts a reaction row and bumps the matching post
// counter in one transaction, so the count can never drift from the
// rows. A duplicate insert is reported as a conflict and moves the
// counter zero times.
func addReaction(c echo.Context, kind string) error {
	log := logger.FromContext(c)
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var post model.Post
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&post, postID); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "post not found"))
	}

	reaction := model.PostReaction{
		TenantID: ctx.TenantID,
		PostID:   post.ID,
		UserID:   ctx.UserID,
		Kind:     kind,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reaction).Error; err != nil {
			return err
		}
		column := counterColumn[kind]
		return tx.Model(&model.Post{}).Where("id = ?", post.ID).
			UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	})
	if err != nil {
		if database.IsDuplicate(err) {
			return apperr.Respond(c, apperr.E(apperr.Conflict, "already reacted"))
		}
		log.Error("Failed to add reaction", zap.String("kind", kind), zap.Error(err))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "reaction failed", err))
	}

	prometheus.ReactionCounter.WithLabelValues(kind, "add").Inc()
	if feedStore != nil {
		switch kind {
		case model.ReactionPrayer:
			post.PrayerCount++
		case model.ReactionLike:
			post.LikeCount++
		}
		feedStore.UpsertPost(post)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

// removeReaction deletes the caller's reaction and decrements the
// counter, again in one transaction. Removing a reaction that was never
// added is not found.
func removeReaction(c echo.Context, kind string) error {
	log := logger.FromContext(c)
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var post model.Post
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&post, postID); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "post not found"))
	}

	var reaction model.PostReaction
	if result := db.Where("post_id = ? AND user_id = ? AND kind = ?",
		post.ID, ctx.UserID, kind).First(&reaction); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "reaction not found"))
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&reaction).Error; err != nil {
			return err
		}
		column := counterColumn[kind]
		return tx.Model(&model.Post{}).Where("id = ?", post.ID).
			UpdateColumn(column, gorm.Expr(column+" - 1")).Error
	})
	if err != nil {
		log.Error("Failed to remove reaction", zap.String("kind", kind), zap.Error(err))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "reaction removal failed", err))
	}

	prometheus.ReactionCounter.WithLabelValues(kind, "remove").Inc()
	if feedStore != nil {
		switch kind {
		case model.ReactionPrayer:
			post.PrayerCount--
		case model.ReactionLike:
			post.LikeCount--
		}
		feedStore.UpsertPost(post)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// AddPrayer handles POST /api/posts/:id/prayer.
func AddPrayer(c echo.Context) error {
	return addReaction(c, model.ReactionPrayer)
}

// RemovePrayer handles DELETE /api/posts/:id/prayer.
func RemovePrayer(c echo.Context) error {
	return removeReaction(c, model.ReactionPrayer)
}

// AddLike handles POST /api/posts/:id/like.
func AddLike(c echo.Context) error {
	return addReaction(c, model.ReactionLike)
}

// RemoveLike handles DELETE /api/posts/:id/like.
func RemoveLike(c echo.Context) error {
	return removeReaction(c, model.ReactionLike)
}
