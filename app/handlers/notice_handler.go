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

// NoticeHandler handles notice submission and public browsing HTTP requests
type NoticeHandler struct {
	noticeFlow businessflow.NoticeFlow
	validator  *validator.Validate
}

// NewNoticeHandler creates a new notice handler
func NewNoticeHandler(noticeFlow businessflow.NoticeFlow) *NoticeHandler {
	return &NoticeHandler{
		noticeFlow: noticeFlow,
		validator:  newValidator(),
	}
}

// SubmitNotice handles new notice submissions
// @Summary Submit Notice
// @Description Submit a death notice, memorial service, or tombstone unveiling; returns the payment checkout handle
// @Tags Notices
// @Accept json
// @Produce json
// @Param request body dto.SubmitNoticeRequest true "Notice draft"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitNoticeResponse} "Notice submitted, payment initiated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/notices [post]
func (h *NoticeHandler) SubmitNotice(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	var req dto.SubmitNoticeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.noticeFlow.SubmitNotice(requestContext(c, "/api/v1/notices"), accountID, &req, adMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		if businessflow.IsInvalidNoticeType(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid notice type", "INVALID_NOTICE_TYPE", nil)
		}
		if businessflow.IsNoticeDraftMissing(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Notice draft does not match the declared type", "NOTICE_DRAFT_MISSING", nil)
		}
		if businessflow.IsEventDateRequired(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Event date is required", "EVENT_DATE_REQUIRED", nil)
		}
		if businessflow.IsPhotoNotFound(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Photo not found", "PHOTO_NOT_FOUND", nil)
		}
		if businessflow.IsPhotoAccessDenied(err) {
			return errorResponse(c, fiber.StatusForbidden, "Photo belongs to another account", "PHOTO_ACCESS_DENIED", nil)
		}

		middleware.RecordCheckout("notice", false)
		log.Println("Notice submission failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Notice submission failed", "NOTICE_SUBMISSION_FAILED", nil)
	}

	middleware.RecordCheckout("notice", true)
	return successResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListNotices returns the public notice listing
// @Summary List Notices
// @Description List published notices, newest first, with optional type and name filters
// @Tags Notices
// @Produce json
// @Param notice_type query string false "Notice type filter" Enums(death_notice, memorial_service, tombstone_unveiling)
// @Param search query string false "Name search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListNoticesResponse} "Notices listed"
// @Router /api/v1/notices [get]
func (h *NoticeHandler) ListNotices(c fiber.Ctx) error {
	req := &dto.ListNoticesRequest{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if v := c.Query("notice_type"); v != "" {
		req.NoticeType = &v
	}
	if v := c.Query("search"); v != "" {
		req.Search = &v
	}

	if err := h.validator.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.noticeFlow.ListNotices(requestContext(c, "/api/v1/notices"), req)
	if err != nil {
		log.Println("Listing notices failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list notices", "LIST_NOTICES_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// GetNotice returns one published notice in full
// @Summary Get Notice
// @Description Get a published notice with its full details
// @Tags Notices
// @Produce json
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetNoticeResponse} "Notice"
// @Failure 404 {object} dto.APIResponse "Notice not found"
// @Router /api/v1/notices/{id} [get]
func (h *NoticeHandler) GetNotice(c fiber.Ctx) error {
	noticeID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid notice ID", "INVALID_NOTICE_ID", nil)
	}

	result, err := h.noticeFlow.GetNotice(requestContext(c, "/api/v1/notices/:id"), uint(noticeID))
	if err != nil {
		if businessflow.IsNoticeNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Notice not found", "NOTICE_NOT_FOUND", nil)
		}

		log.Println("Get notice failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load notice", "GET_NOTICE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// AddTribute records a tribute on a published notice
// @Summary Add Tribute
// @Description Atomically record a tribute on a published notice
// @Tags Notices
// @Produce json
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.APIResponse{data=dto.TributeResponse} "Tribute recorded"
// @Failure 404 {object} dto.APIResponse "Notice not found"
// @Router /api/v1/notices/{id}/tribute [post]
func (h *NoticeHandler) AddTribute(c fiber.Ctx) error {
	noticeID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid notice ID", "INVALID_NOTICE_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.noticeFlow.AddTribute(requestContext(c, "/api/v1/notices/:id/tribute"), uint(noticeID), metadata)
	if err != nil {
		if businessflow.IsNoticeNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Notice not found", "NOTICE_NOT_FOUND", nil)
		}

		log.Println("Recording tribute failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to record tribute", "TRIBUTE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// DeleteNotice removes the caller's own notice
// @Summary Delete Notice
// @Description Delete a notice owned by the authenticated account
// @Tags Notices
// @Produce json
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.APIResponse "Notice deleted"
// @Failure 403 {object} dto.APIResponse "Notice belongs to another account"
// @Failure 404 {object} dto.APIResponse "Notice not found"
// @Router /api/v1/notices/{id} [delete]
func (h *NoticeHandler) DeleteNotice(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	noticeID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid notice ID", "INVALID_NOTICE_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	if err := h.noticeFlow.DeleteNotice(requestContext(c, "/api/v1/notices/:id"), accountID, uint(noticeID), metadata); err != nil {
		if businessflow.IsNoticeNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Notice not found", "NOTICE_NOT_FOUND", nil)
		}
		if businessflow.IsNoticeAccessDenied(err) {
			return errorResponse(c, fiber.StatusForbidden, "Notice belongs to another account", "NOTICE_ACCESS_DENIED", nil)
		}

		log.Println("Notice deletion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Notice deletion failed", "NOTICE_DELETION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Notice deleted successfully", nil)
}
