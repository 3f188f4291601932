// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/middleware"
	businessflow "github.com/mzwakhe/izaziso/business_flow"
)

// MediaHandler handles photo upload and serving HTTP requests
type MediaHandler struct {
	mediaFlow businessflow.MediaFlow
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaFlow businessflow.MediaFlow) *MediaHandler {
	return &MediaHandler{
		mediaFlow: mediaFlow,
	}
}

// Upload handles photo upload for authenticated accounts
// @Summary Upload Photo
// @Description Upload a photo (jpg/jpeg/png/gif/webp, <=5MB) for use in ads and notices
// @Tags Media
// @Accept mpfd
// @Produce json
// @Param file formData file true "Photo file (<=5MB)"
// @Success 201 {object} dto.APIResponse{data=dto.UploadMediaResponse} "Upload successful"
// @Failure 400 {object} dto.APIResponse "Invalid request or file"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/media/upload [post]
func (h *MediaHandler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return errorResponse(c, fiber.StatusBadRequest, "file is required", "INVALID_FILE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}
	defer file.Close()

	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	req := dto.UploadMediaRequest{
		AccountID:        accountID,
		OriginalFilename: fileHeader.Filename,
		FileSize:         fileHeader.Size,
		ContentType:      fileHeader.Header.Get("Content-Type"),
		File:             file,
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.mediaFlow.UploadPhoto(requestContext(c, "/api/v1/media/upload"), &req, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsMediaTooLarge(err) {
			return errorResponse(c, fiber.StatusBadRequest, "File too large", "FILE_TOO_LARGE", nil)
		}
		if businessflow.IsMediaUnsupportedFormat(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unsupported file type", "INVALID_FILE_TYPE", nil)
		}
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INVALID_FILE", "INVALID_REQUEST":
				return errorResponse(c, fiber.StatusBadRequest, "Invalid file", be.Code, be.Error())
			}
		}

		log.Println("Photo upload failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to upload photo", "UPLOAD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Upload successful", result)
}

// Serve streams a stored photo by UUID
// @Summary Serve Photo
// @Description Serve a stored photo inline by uuid
// @Tags Media
// @Produce image/jpeg
// @Param uuid path string true "Photo UUID"
// @Success 200 {string} string "Binary image"
// @Failure 404 {object} dto.APIResponse "Photo not found"
// @Router /api/v1/media/{uuid} [get]
func (h *MediaHandler) Serve(c fiber.Ctx) error {
	photoUUID := c.Params("uuid")

	filename, contentType, data, err := h.mediaFlow.ServePhoto(requestContext(c, "/api/v1/media/:uuid"), photoUUID)
	if err != nil {
		if businessflow.IsPhotoNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Photo not found", "PHOTO_NOT_FOUND", nil)
		}

		log.Println("Serving photo failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to serve photo", "SERVE_FAILED", nil)
	}

	if contentType != "" {
		c.Set("Content-Type", contentType)
	}
	c.Set("Content-Disposition", "inline; filename="+filename)
	return c.Send(data)
}

// ServeThumbnail streams a stored photo thumbnail by UUID
// @Summary Serve Photo Thumbnail
// @Description Serve the thumbnail of a stored photo inline by uuid
// @Tags Media
// @Produce image/jpeg
// @Param uuid path string true "Photo UUID"
// @Success 200 {string} string "Binary image"
// @Failure 404 {object} dto.APIResponse "Photo not found"
// @Router /api/v1/media/{uuid}/thumbnail [get]
func (h *MediaHandler) ServeThumbnail(c fiber.Ctx) error {
	photoUUID := c.Params("uuid")

	filename, contentType, data, err := h.mediaFlow.ServeThumbnail(requestContext(c, "/api/v1/media/:uuid/thumbnail"), photoUUID)
	if err != nil {
		if businessflow.IsPhotoNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Photo not found", "PHOTO_NOT_FOUND", nil)
		}

		log.Println("Serving thumbnail failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to serve thumbnail", "SERVE_FAILED", nil)
	}

	if contentType != "" {
		c.Set("Content-Type", contentType)
	}
	c.Set("Content-Disposition", "inline; filename="+filename)
	return c.Send(data)
}
