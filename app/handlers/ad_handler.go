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

// AdHandler handles ad placement and public display HTTP requests
type AdHandler struct {
	adFlow      businessflow.AdFlow
	displayFlow businessflow.AdDisplayFlow
	validator   *validator.Validate
}

// NewAdHandler creates a new ad handler
func NewAdHandler(adFlow businessflow.AdFlow, displayFlow businessflow.AdDisplayFlow) *AdHandler {
	return &AdHandler{
		adFlow:      adFlow,
		displayFlow: displayFlow,
		validator:   newValidator(),
	}
}

// adMetadata builds client metadata carrying the session scope for checkout tracking
func adMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if claims, ok := middleware.GetTokenClaimsFromContext(c); ok {
		metadata.SetSessionID(claims.TokenID)
	}
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}

// SubmitAd handles new ad submissions by organization accounts
// @Summary Submit Ad
// @Description Submit a new ad for a paid placement window; returns the payment checkout handle
// @Tags Ads
// @Accept json
// @Produce json
// @Param request body dto.SubmitAdRequest true "Ad content and tier"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitAdResponse} "Ad submitted, payment initiated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Account is not an organization"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/ads [post]
func (h *AdHandler) SubmitAd(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	var req dto.SubmitAdRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.adFlow.SubmitAd(requestContext(c, "/api/v1/ads"), accountID, &req, adMetadata(c))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		if businessflow.IsNotOrganization(err) {
			return errorResponse(c, fiber.StatusForbidden, "Only organization accounts may place ads", "NOT_ORGANIZATION", nil)
		}
		if businessflow.IsInvalidTier(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid placement tier", "INVALID_TIER", nil)
		}
		if businessflow.IsPhotoNotFound(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Photo not found", "PHOTO_NOT_FOUND", nil)
		}
		if businessflow.IsPhotoAccessDenied(err) {
			return errorResponse(c, fiber.StatusForbidden, "Photo belongs to another account", "PHOTO_ACCESS_DENIED", nil)
		}

		middleware.RecordCheckout("ad", false)
		log.Println("Ad submission failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Ad submission failed", "AD_SUBMISSION_FAILED", nil)
	}

	middleware.RecordCheckout("ad", true)
	return successResponse(c, fiber.StatusCreated, result.Message, result)
}

// ResubmitAd handles edited resubmission of a rejected ad
// @Summary Resubmit Ad
// @Description Resubmit a rejected ad with edits; no new payment is taken
// @Tags Ads
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body dto.ResubmitAdRequest true "Edited ad content"
// @Success 200 {object} dto.APIResponse{data=dto.ResubmitAdResponse} "Ad resubmitted for review"
// @Failure 400 {object} dto.APIResponse "Ad is not in a resubmittable state"
// @Failure 403 {object} dto.APIResponse "Ad belongs to another account"
// @Failure 404 {object} dto.APIResponse "Ad not found"
// @Router /api/v1/ads/{id} [put]
func (h *AdHandler) ResubmitAd(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	adID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid ad ID", "INVALID_AD_ID", nil)
	}

	var req dto.ResubmitAdRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.adFlow.ResubmitAd(requestContext(c, "/api/v1/ads/:id"), accountID, uint(adID), &req, adMetadata(c))
	if err != nil {
		if businessflow.IsAdNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Ad not found", "AD_NOT_FOUND", nil)
		}
		if businessflow.IsAdAccessDenied(err) {
			return errorResponse(c, fiber.StatusForbidden, "Ad belongs to another account", "AD_ACCESS_DENIED", nil)
		}
		if businessflow.IsAdNotResubmittable(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Only rejected ads can be resubmitted", "AD_NOT_RESUBMITTABLE", nil)
		}
		if businessflow.IsPhotoNotFound(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Photo not found", "PHOTO_NOT_FOUND", nil)
		}
		if businessflow.IsPhotoAccessDenied(err) {
			return errorResponse(c, fiber.StatusForbidden, "Photo belongs to another account", "PHOTO_ACCESS_DENIED", nil)
		}

		log.Println("Ad resubmission failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Ad resubmission failed", "AD_RESUBMISSION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ListMyAds returns the caller's ads with their review and payment state
// @Summary List My Ads
// @Description List the authenticated account's ads
// @Tags Ads
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListMyAdsResponse} "Ads listed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/ads/mine [get]
func (h *AdHandler) ListMyAds(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	result, err := h.adFlow.ListMyAds(requestContext(c, "/api/v1/ads/mine"), accountID, page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("Listing ads failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list ads", "LIST_ADS_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ActiveAds returns the ads currently eligible for public display
// @Summary Active Ads
// @Description List approved, active, unexpired ads for public display, newest first
// @Tags Ads
// @Produce json
// @Param limit query int false "Maximum number of ads"
// @Success 200 {object} dto.APIResponse{data=dto.ActiveAdsResponse} "Active ads"
// @Router /api/v1/ads/active [get]
func (h *AdHandler) ActiveAds(c fiber.Ctx) error {
	limit := queryInt(c, "limit", 20)

	result, err := h.displayFlow.ActiveAds(requestContext(c, "/api/v1/ads/active"), limit)
	if err != nil {
		log.Println("Listing active ads failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list active ads", "LIST_ACTIVE_ADS_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ClickAd records a click on a displayed ad and returns its target link
// @Summary Click Ad
// @Description Atomically record a click on a displayed ad
// @Tags Ads
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClickAdResponse} "Click recorded"
// @Failure 404 {object} dto.APIResponse "Ad not found or not displayable"
// @Router /api/v1/ads/{id}/click [post]
func (h *AdHandler) ClickAd(c fiber.Ctx) error {
	adID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid ad ID", "INVALID_AD_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.displayFlow.ClickAd(requestContext(c, "/api/v1/ads/:id/click"), uint(adID), metadata)
	if err != nil {
		if businessflow.IsAdNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Ad not found", "AD_NOT_FOUND", nil)
		}

		log.Println("Recording ad click failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to record click", "CLICK_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// queryInt parses an integer query parameter with a fallback
func queryInt(c fiber.Ctx, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key, strconv.Itoa(fallback))); err == nil {
		return v
	}
	return fallback
}
