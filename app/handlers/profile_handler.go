// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/middleware"
	businessflow "github.com/mzwakhe/izaziso/business_flow"
)

// ProfileHandler handles the authenticated account's profile endpoints
type ProfileHandler struct {
	profileFlow businessflow.ProfileFlow
	validator   *validator.Validate
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileFlow businessflow.ProfileFlow) *ProfileHandler {
	return &ProfileHandler{
		profileFlow: profileFlow,
		validator:   newValidator(),
	}
}

// GetProfile returns the caller's profile
// @Summary Get Profile
// @Description Get the authenticated account's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.GetProfileResponse} "Profile"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	result, err := h.profileFlow.GetProfile(requestContext(c, "/api/v1/profile"), accountID)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}

		log.Println("Get profile failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load profile", "GET_PROFILE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// UpdateProfile applies partial edits to the caller's profile
// @Summary Update Profile
// @Description Update the authenticated account's profile fields
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Editable profile fields"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateProfileResponse} "Profile updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/profile [put]
func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	var req dto.UpdateProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.profileFlow.UpdateProfile(requestContext(c, "/api/v1/profile"), accountID, &req, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsNotOrganization(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Organization name is only editable on organization accounts", "NOT_ORGANIZATION", nil)
		}

		log.Println("Update profile failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update profile", "UPDATE_PROFILE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}
