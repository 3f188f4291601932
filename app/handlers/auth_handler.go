// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/mzwakhe/izaziso/app/dto"
	businessflow "github.com/mzwakhe/izaziso/business_flow"
	"github.com/mzwakhe/izaziso/utils"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Signup(c fiber.Ctx) error
	VerifyOTP(c fiber.Ctx) error
	ResendOTP(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	RefreshToken(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	ForgotPassword(c fiber.Ctx) error
	ResetPassword(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	signupFlow businessflow.SignupFlow
	loginFlow  businessflow.LoginFlow
	validator  *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(signupFlow businessflow.SignupFlow, loginFlow businessflow.LoginFlow) *AuthHandler {
	return &AuthHandler{
		signupFlow: signupFlow,
		loginFlow:  loginFlow,
		validator:  newValidator(),
	}
}

// Signup handles account registration
// @Summary Account Registration
// @Description Register a new account with email verification
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Account registration data"
// @Success 200 {object} dto.APIResponse{data=dto.SignupResponse} "Registration initiated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Email already registered"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.signupFlow.Signup(requestContext(c, "/api/v1/auth/signup"), &req, metadata)
	if err != nil {
		if businessflow.IsEmailAlreadyExists(err) {
			return errorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}
		if businessflow.IsOrganizationNameRequired(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Organization name is required for organization accounts", "ORGANIZATION_NAME_REQUIRED", nil)
		}

		log.Println("Signup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Signup failed", "SIGNUP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"account_id": result.AccountID,
		"otp_sent":   result.OTPSent,
		"otp_target": result.OTPTarget,
	})
}

// VerifyOTP handles OTP verification for account registration
// @Summary Verify OTP
// @Description Verify OTP code sent to the account's email address
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.OTPVerificationRequest true "OTP verification data"
// @Success 200 {object} dto.APIResponse{data=object{access_token=string,refresh_token=string,token_type=string,expires_in=int,account=dto.AccountDTO}} "OTP verified successfully"
// @Failure 400 {object} dto.APIResponse "Invalid OTP or request"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/verify [post]
func (h *AuthHandler) VerifyOTP(c fiber.Ctx) error {
	var req dto.OTPVerificationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.signupFlow.VerifyOTP(requestContext(c, "/api/v1/auth/verify"), &req, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		if businessflow.IsNoValidOTPFound(err) {
			return errorResponse(c, fiber.StatusBadRequest, "No valid OTP found", "NO_VALID_OTP", nil)
		}
		if businessflow.IsInvalidOTPCode(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid OTP code", "INVALID_OTP_CODE", nil)
		}
		if businessflow.IsInvalidOTPType(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid OTP type", "INVALID_OTP_TYPE", nil)
		}
		if businessflow.IsOTPExpired(err) {
			return errorResponse(c, fiber.StatusBadRequest, "OTP expired", "OTP_EXPIRED", nil)
		}

		log.Println("OTP verification failed", err)
		return errorResponse(c, fiber.StatusBadRequest, "OTP verification failed", "OTP_VERIFICATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"access_token":  result.Token,
		"refresh_token": result.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    int(utils.AccessTokenTTL.Seconds()),
		"account":       result.Account,
	})
}

// ResendOTP handles resending an OTP to the account's email address
// @Summary Resend OTP
// @Description Resend OTP code to the account's email address
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.OTPResendRequest true "OTP resend request"
// @Success 200 {object} dto.APIResponse{data=object{otp_sent=bool,otp_target=string}} "OTP resent successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c fiber.Ctx) error {
	var req dto.OTPResendRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.signupFlow.ResendOTP(requestContext(c, "/api/v1/auth/resend-otp"), &req, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		if businessflow.IsAlreadyVerified(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Account is already verified", "ACCOUNT_ALREADY_VERIFIED", nil)
		}

		log.Println("Resend OTP failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to resend OTP", "RESEND_OTP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"otp_sent":   result.OTPSent,
		"otp_target": result.MaskedOTPTarget,
	})
}

// Login handles account authentication
// @Summary Account Login
// @Description Authenticate with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.loginFlow.Login(requestContext(c, "/api/v1/auth/login"), &req, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) || businessflow.IsIncorrectPassword(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		if businessflow.IsEmailNotVerified(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Email address is not verified", "EMAIL_NOT_VERIFIED", nil)
		}

		log.Println("Login failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// RefreshToken exchanges a refresh token for a new session
// @Summary Refresh Token
// @Description Exchange a valid refresh token for a new token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Token refreshed"
// @Failure 401 {object} dto.APIResponse "Invalid or expired refresh token"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.loginFlow.RefreshToken(requestContext(c, "/api/v1/auth/refresh"), &req, metadata)
	if err != nil {
		if businessflow.IsSessionNotFound(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid or expired refresh token", "INVALID_REFRESH_TOKEN", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Token refresh failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Token refresh failed", "REFRESH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// Logout revokes the caller's session
// @Summary Logout
// @Description Revoke the current session and access token
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if token == "" {
		return errorResponse(c, fiber.StatusUnauthorized, "Access token is required", "MISSING_ACCESS_TOKEN", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	if err := h.loginFlow.Logout(requestContext(c, "/api/v1/auth/logout"), token, metadata); err != nil {
		if businessflow.IsSessionNotFound(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Session not found", "SESSION_NOT_FOUND", nil)
		}

		log.Println("Logout failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Logout failed", "LOGOUT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Logged out successfully", nil)
}

// ForgotPassword initiates a password reset via email OTP
// @Summary Forgot Password
// @Description Send a password reset OTP to the account's email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.APIResponse{data=dto.ForgotPasswordResponse} "Reset OTP sent"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.loginFlow.ForgotPassword(requestContext(c, "/api/v1/auth/forgot-password"), &req, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Forgot password failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to initiate password reset", "FORGOT_PASSWORD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ResetPassword completes a password reset with the emailed OTP
// @Summary Reset Password
// @Description Reset the account password using the OTP sent by email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset data"
// @Success 200 {object} dto.APIResponse{data=dto.ResetPasswordResponse} "Password reset"
// @Failure 400 {object} dto.APIResponse "Invalid OTP"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.loginFlow.ResetPassword(requestContext(c, "/api/v1/auth/reset-password"), &req, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsNoValidOTPFound(err) || businessflow.IsInvalidOTPCode(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid OTP code", "INVALID_OTP_CODE", nil)
		}
		if businessflow.IsOTPExpired(err) {
			return errorResponse(c, fiber.StatusBadRequest, "OTP expired", "OTP_EXPIRED", nil)
		}

		log.Println("Password reset failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Password reset failed", "RESET_PASSWORD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// Health handles health check requests
// @Summary Health Check
// @Description Check the health status of the API
// @Tags Health
// @Produce json
// @Success 200 {object} dto.APIResponse "Service is healthy"
// @Router /api/v1/health [get]
func (h *AuthHandler) Health(c fiber.Ctx) error {
	return successResponse(c, fiber.StatusOK, "Service is healthy", fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "izaziso-api",
	})
}
