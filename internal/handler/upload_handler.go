package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mission-service/internal/apperr"
	"mission-service/internal/authz"
	"mission-service/pkg/logger"
	"mission-service/prometheus"
)

// newCloudinary builds a client from configuration, or reports the
// upload pipeline unavailable when it was never configured.
func newCloudinary() (*cloudinary.Cloudinary, error) {
	if cfg == nil || !cfg.Cloudinary.Enabled() {
		return nil, apperr.E(apperr.Unavailable, "image uploads are not configured")
	}
	cld, err := cloudinary.NewFromURL(cfg.Cloudinary.URL)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "image uploads are not configured", err)
	}
	return cld, nil
}

// CloudinarySignature signs upload parameters so the browser can upload
// directly to the CDN without the API secret ever leaving the server.
func CloudinarySignature(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}

	cld, err := newCloudinary()
	if err != nil {
		prometheus.UploadCounter.WithLabelValues("signature_unavailable").Inc()
		return apperr.Respond(c, err)
	}

	var req struct {
		Folder   string `json:"folder"`
		PublicID string `json:"public_id"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "invalid request"))
	}

	folder := cfg.Cloudinary.UploadFolder
	if req.Folder != "" {
		// callers may only pick subfolders of the configured root
		folder = cfg.Cloudinary.UploadFolder + "/" + req.Folder
	}

	timestamp := time.Now().Unix()
	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))
	params.Set("folder", folder)
	if req.PublicID != "" {
		params.Set("public_id", req.PublicID)
	}

	signature, err := api.SignParameters(params, cld.Config.Cloud.APISecret)
	if err != nil {
		log.Error("Failed to sign upload parameters", zap.Error(err))
		prometheus.UploadCounter.WithLabelValues("signature_failed").Inc()
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "signature failed", err))
	}

	prometheus.UploadCounter.WithLabelValues("signature_ok").Inc()
	return c.JSON(http.StatusOK, echo.Map{
		"signature":  signature,
		"timestamp":  timestamp,
		"api_key":    cld.Config.Cloud.APIKey,
		"cloud_name": cld.Config.Cloud.CloudName,
		"folder":     folder,
	})
}

// UploadImage accepts a multipart image and pushes it through the CDN
// resize pipeline server-side, returning the delivery URL.
func UploadImage(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := authz.FromEcho(c)
	if err := authz.RequireAuth(ctx); err != nil {
		return apperr.Respond(c, err)
	}

	cld, err := newCloudinary()
	if err != nil {
		prometheus.UploadCounter.WithLabelValues("upload_unavailable").Inc()
		return apperr.Respond(c, err)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return apperr.Respond(c, apperr.E(apperr.Validation, "no image file provided"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "failed to read upload", err))
	}
	defer file.Close()

	uploadParams := uploader.UploadParams{
		Folder:         cfg.Cloudinary.UploadFolder,
		PublicID:       fmt.Sprintf("u%d_%d", ctx.UserID, time.Now().Unix()),
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	}

	result, err := cld.Upload.Upload(c.Request().Context(), file, uploadParams)
	if err != nil {
		log.Error("Image upload failed", zap.Error(err))
		prometheus.UploadCounter.WithLabelValues("upload_failed").Inc()
		return apperr.Respond(c, apperr.Wrap(apperr.Internal, "image upload failed", err))
	}

	prometheus.UploadCounter.WithLabelValues("upload_ok").Inc()
	log.Info("Image uploaded", zap.String("public_id", result.PublicID))
	return c.JSON(http.StatusOK, echo.Map{"url": result.SecureURL})
}
