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

// postActions maps moderation verbs to the field assignments they
// apply. New verbs are added here, not as new code paths.
var postActions = map[string]map[string]interface{}{
	"approve": {"status": model.PostStatusPublished},
	"restore": {"status": model.PostStatusPublished},
	"hide":    {"status": model.PostStatusHidden},
	"flag":    {"status": model.PostStatusFlagged},
	"pin":     {"is_pinned": true},
	"unpin":   {"is_pinned": false},
}

// ActionPatch returns the field assignments for a moderation verb.
// Unknown verbs yield an empty patch.
func ActionPatch(action string) map[string]interface{} {
	patch := map[string]interface{}{}
	for k, v := range postActions[action] {
		patch[k] = v
	}
	return patch
}

// ListPosts returns the tenant's posts with dashboard aggregates.
func ListPosts(c echo.Context) error {
	db, err := currentDB()
	if err != nil {
		return apperr.Respond(c, err)
	}
	ctx := authz.FromEcho(c)
	if err := authz.RequireRole(ctx, model.RoleAdmin, model.RoleSuperAdmin); err != nil {
		return apperr.Respond(c, err)
	}

	query := db.Scopes(tenantScope(ctx.TenantID)).Order("created_at DESC")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var posts []model.Post
	if result := query.Find(&posts); result.Error != nil {
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "failed to list posts", result.Error))
	}

	resp := echo.Map{"posts": posts}
	if feedStore != nil {
		resp["stats"] = feedStore.TenantStats(ctx.TenantID)
	}
	return c.JSON(http.StatusOK, resp)
}

// CreatePost creates a post in the caller's tenant. MissionaryID left
// empty makes it an org-authored post.
func CreatePost(c echo.Context) error {
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
		Content      string `json:"content"`
		MediaURL     string `json:"media_url"`
		MissionaryID *uint  `json:"missionary_id"`
		PostType     string `json:"post_type"`
		Visibility   string `json:"visibility"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}
	if req.Content == "" {
		return apperr.Respond(c, apperr.E(apperr.Validation, "content is required"))
	}

	if req.MissionaryID != nil {
		var missionary model.Missionary
		if result := db.Scopes(tenantScope(ctx.TenantID)).First(&missionary, *req.MissionaryID); result.Error != nil {
			return apperr.Respond(c, apperr.E(apperr.NotFound, "missionary not found"))
		}
	}

	post := model.Post{
		TenantID:     ctx.TenantID,
		MissionaryID: req.MissionaryID,
		Content:      req.Content,
		MediaURL:     req.MediaURL,
		Status:       model.PostStatusPublished,
		PostType:     req.PostType,
		Visibility:   req.Visibility,
	}
	if post.PostType == "" {
		post.PostType = model.PostTypeUpdate
	}
	if post.Visibility == "" {
		post.Visibility = model.OrgPostVisibilityEveryone
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := db.Create(&post); result.Error != nil {
		log.Error("Failed to create post", zap.Error(result.Error))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "post creation failed", result.Error))
	}

	if feedStore != nil {
		feedStore.UpsertPost(post)
	}
	prometheus.RecordPostOperation("create")

	log.Info("Post created",
		zap.Uint("id", post.ID),
		zap.Uint("tenant_id", post.TenantID))
	return c.JSON(http.StatusCreated, echo.Map{"post": post})
}

// GetPost returns one post from the caller's tenant. Posts belonging to
// other tenants are reported as not found.
func GetPost(c echo.Context) error {
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

	var post model.Post
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&post, id); result.Error != nil {
		prometheus.RecordTenantError(ctx.TenantID, "post_not_found")
		return apperr.Respond(c, apperr.E(apperr.NotFound, "post not found"))
	}

	resp := echo.Map{"post": post}
	if feedStore != nil {
		resp["comments"] = feedStore.CommentThread(post.ID)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdatePost applies a partial update and/or a moderation action to a
// post. Only fields present in the body change; updated_at is always
// set. Action verbs resolve through the lookup table.
func UpdatePost(c echo.Context) error {
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
		Action     *string `json:"action"`
		Content    *string `json:"content"`
		MediaURL   *string `json:"media_url"`
		PostType   *string `json:"post_type"`
		Visibility *string `json:"visibility"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}

	var post model.Post
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&post, id); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "post not found"))
	}

	updateData := map[string]interface{}{"updated_at": time.Now()}
	if req.Content != nil {
		updateData["content"] = *req.Content
	}
	if req.MediaURL != nil {
		updateData["media_url"] = *req.MediaURL
	}
	if req.PostType != nil {
		updateData["post_type"] = *req.PostType
	}
	if req.Visibility != nil {
		updateData["visibility"] = *req.Visibility
	}
	if req.Action != nil {
		for k, v := range ActionPatch(*req.Action) {
			updateData[k] = v
		}
		prometheus.RecordPostOperation(*req.Action)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := db.Model(&post).Updates(updateData); result.Error != nil {
		log.Error("Failed to update post", zap.Error(result.Error))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "post update failed", result.Error))
	}

	if feedStore != nil {
		feedStore.UpsertPost(post)
	}
	prometheus.RecordPostOperation("update")

	return c.JSON(http.StatusOK, echo.Map{"post": post})
}

// DeletePost removes a post together with its reactions and comments.
// The dependent deletes and the post delete run in one transaction so a
// mid-sequence failure leaves nothing orphaned.
func DeletePost(c echo.Context) error {
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

	var post model.Post
	if result := db.Scopes(tenantScope(ctx.TenantID)).First(&post, id); result.Error != nil {
		return apperr.Respond(c, apperr.E(apperr.NotFound, "post not found"))
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.PostReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.PostComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		log.Error("Failed to delete post", zap.Uint("id", post.ID), zap.Error(err))
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "post deletion failed", err))
	}

	if feedStore != nil {
		feedStore.DeletePost(post.ID)
	}
	prometheus.RecordPostOperation("delete")

	log.Info("Post deleted", zap.Uint("id", post.ID), zap.Uint("tenant_id", ctx.TenantID))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
