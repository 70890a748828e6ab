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
	"mission-service/pkg/logger"
	"mission-service/prometheus"
)

// ListComments returns the tenant's comments, optionally filtered to
// one post.
func ListComments(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleAdmin, model.RoleSuperAdmin); err != nil {
		return apperr.Respond(c, err)
	}

	query := db.Scopes(tenantScope(ctx.TenantID)).Order("created_at DESC")
	if postID := c.QueryParam("post_id"); postID != "" {
		query = query.Where("post_id = ?", postID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var comments []model.PostComment
	if result := query.Find(&comments); result.Error != nil {
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "failed to list comments", result.Error))
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

// CreateComment adds a comment (or a reply when parent_id is set) to a
// post in the caller's tenant, bumping the post's comment counter in
// the same transaction as the insert.
func CreateComment(c echo.Context) error {
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

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}
	if req.Content == "" {
		return apperr.Respond(c, apperr.E(apperr.Validation, "content is required"))
	}

	var post model.Post
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&post, postID); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "post not found"))
	}

	if req.ParentID != nil {
		var parent model.PostComment
		if result := db.Scopes(tenantScope(ctx.TenantID)).
			Where("post_id = ?", post.ID).First(&parent, *req.ParentID); result.Error != nil {
			return apperr.Respond(c, apperr.E(apperr.NotFound, "parent comment not found"))
		}
	}

	comment := model.PostComment{
		TenantID: ctx.TenantID,
		PostID:   post.ID,
		UserID:   ctx.UserID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		log.Error("Failed to create comment", zap.Error(err))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "comment creation failed", err))
	}

	if feedStore != nil {
		feedStore.UpsertComment(comment)
		post.CommentCount++
		feedStore.UpsertPost(post)
	}
	return c.JSON(http.StatusCreated, echo.Map{"comment": comment})
}

// UpdateComment applies a partial update to a comment in the caller's
// tenant.
func UpdateComment(c echo.Context) error {
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
		Content *string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}

	var comment model.PostComment
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&comment, id); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "comment not found"))
	}

	updateData := map[string]interface{}{"updated_at": time.Now()}
	if req.Content != nil {
		updateData["content"] = *req.Content
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := db.Model(&comment).Updates(updateData); result.Error != nil {
		log.Error("Failed to update comment", zap.Error(result.Error))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "comment update failed", result.Error))
	}

	if feedStore != nil {
		feedStore.UpsertComment(comment)
	}
	return c.JSON(http.StatusOK, echo.Map{"comment": comment})
}

// DeleteComment removes a comment and its direct replies. The cascade
// stops one level down; replies-to-replies are left alone. The deletes
// and the post counter adjustment share one transaction.
func DeleteComment(c echo.Context) error {
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

	var comment model.PostComment
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&comment, id); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "comment not found"))
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	removed := int64(1)
	err = db.Transaction(func(tx *gorm.DB) error {
		replies := tx.Where("parent_id = ?", comment.ID).Delete(&model.PostComment{})
		if replies.Error != nil {
			return replies.Error
		}
		removed += replies.RowsAffected
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", removed)).Error
	})
	if err != nil {
		log.Error("Failed to delete comment", zap.Uint("id", comment.ID), zap.Error(err))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "comment deletion failed", err))
	}

	if feedStore != nil {
		feedStore.DeleteComment(comment.ID)
	}

	log.Info("Comment deleted",
		zap.Uint("id", comment.ID),
		zap.Int64("rows_removed", removed))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
