// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/middleware"
	businessflow "github.com/mzwakhe/izaziso/business_flow"
)

// AdAdminHandler handles ad moderation HTTP requests
type AdAdminHandler struct {
	adminFlow businessflow.AdAdminFlow
	validator *validator.Validate
}

// NewAdAdminHandler creates a new ad moderation handler
func NewAdAdminHandler(adminFlow businessflow.AdAdminFlow) *AdAdminHandler {
	return &AdAdminHandler{
		adminFlow: adminFlow,
		validator: newValidator(),
	}
}

func (h *AdAdminHandler) listRequest(c fiber.Ctx) *dto.AdminListAdsRequest {
	req := &dto.AdminListAdsRequest{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if v := c.Query("status"); v != "" {
		req.Status = &v
	}
	return req
}

// ListAds returns the moderation queue, optionally filtered by status
// @Summary List Ads (admin)
// @Description List submitted ads for moderation, optionally filtered by review status
// @Tags Admin
// @Produce json
// @Param status query string false "Review status filter" Enums(pending, approved, rejected)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListAdsResponse} "Ads listed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/admin/ads [get]
func (h *AdAdminHandler) ListAds(c fiber.Ctx) error {
	req := h.listRequest(c)
	if err := h.validator.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.adminFlow.ListAds(requestContext(c, "/api/v1/admin/ads"), req)
	if err != nil {
		log.Println("Listing ads for moderation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list ads", "LIST_ADS_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ReviewAd applies a moderation decision to an ad
// @Summary Review Ad (admin)
// @Description Apply a review decision; the version must match the loaded ad or the request conflicts
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body dto.AdminReviewAdRequest true "Review decision"
// @Success 200 {object} dto.APIResponse{data=dto.AdminReviewAdResponse} "Review applied"
// @Failure 400 {object} dto.APIResponse "Invalid decision"
// @Failure 404 {object} dto.APIResponse "Ad not found"
// @Failure 409 {object} dto.APIResponse "Stale version"
// @Router /api/v1/admin/ads/{id}/review [put]
func (h *AdAdminHandler) ReviewAd(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin ID not found in context", "MISSING_ADMIN_ID", nil)
	}

	adID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid ad ID", "INVALID_AD_ID", nil)
	}

	var req dto.AdminReviewAdRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.adminFlow.ReviewAd(requestContext(c, "/api/v1/admin/ads/:id/review"), adminID, uint(adID), &req, metadata)
	if err != nil {
		if businessflow.IsAdNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Ad not found", "AD_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidAdStatus(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid review status", "INVALID_STATUS", nil)
		}
		if businessflow.IsRejectionReasonRequired(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Rejection reason is required when rejecting", "REJECTION_REASON_REQUIRED", nil)
		}
		if businessflow.IsReviewConflict(err) {
			return errorResponse(c, fiber.StatusConflict, "Ad was modified by another reviewer", "REVIEW_CONFLICT", nil)
		}

		log.Println("Ad review failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Ad review failed", "AD_REVIEW_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// DeleteAd permanently removes an ad
// @Summary Delete Ad (admin)
// @Description Permanently delete an ad and its review history
// @Tags Admin
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} dto.APIResponse{data=dto.AdminDeleteAdResponse} "Ad deleted"
// @Failure 404 {object} dto.APIResponse "Ad not found"
// @Router /api/v1/admin/ads/{id} [delete]
func (h *AdAdminHandler) DeleteAd(c fiber.Ctx) error {
	adminID, ok := middleware.GetAdminIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Admin ID not found in context", "MISSING_ADMIN_ID", nil)
	}

	adID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid ad ID", "INVALID_AD_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.adminFlow.DeleteAd(requestContext(c, "/api/v1/admin/ads/:id"), adminID, uint(adID), metadata)
	if err != nil {
		if businessflow.IsAdNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Ad not found", "AD_NOT_FOUND", nil)
		}

		log.Println("Ad deletion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Ad deletion failed", "AD_DELETION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ExportAds streams the moderation queue as an Excel workbook
// @Summary Export Ads (admin)
// @Description Export the filtered moderation queue as an xlsx file
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Review status filter" Enums(pending, approved, rejected)
// @Success 200 {string} string "Binary xlsx file"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/admin/ads/export [get]
func (h *AdAdminHandler) ExportAds(c fiber.Ctx) error {
	req := h.listRequest(c)
	if err := h.validator.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	data, filename, err := h.adminFlow.ExportAds(requestContext(c, "/api/v1/admin/ads/export"), req)
	if err != nil {
		log.Println("Ad export failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Ad export failed", "AD_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}
