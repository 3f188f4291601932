// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// LoginRequest represents the request payload for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	Message string     `json:"message"`
	Account AccountDTO `json:"account"`
	Session SessionDTO `json:"session"`
}

// RefreshTokenRequest represents the request to exchange a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest represents the request to initiate password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// ForgotPasswordResponse represents the response after requesting password reset
type ForgotPasswordResponse struct {
	Message     string `json:"message"`
	AccountID   uint   `json:"account_id"`
	MaskedEmail string `json:"masked_email"`
	ExpiresIn   int    `json:"expires_in"`
}

// ResetPasswordRequest represents the request to reset password with OTP
type ResetPasswordRequest struct {
	AccountID       uint   `json:"account_id" validate:"required"`
	OTPCode         string `json:"otp_code" validate:"required,len=6,numeric"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=100,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// ResetPasswordResponse represents the response after successful password reset
type ResetPasswordResponse struct {
	Message           string    `json:"message"`
	PasswordChangedAt time.Time `json:"password_changed_at"`
}

// Common error codes for auth operations
const (
	ErrorAccountNotFound   = "ACCOUNT_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
	ErrorInvalidOTP        = "INVALID_OTP"
	ErrorOTPExpired        = "OTP_EXPIRED"
	ErrorTooManyAttempts   = "TOO_MANY_ATTEMPTS"
)

// MaskEmail hides most of the local part of an email address
func MaskEmail(email string) string {
	at := -1
	for i, r := range email {
		if r == '@' {
			at = i
			break
		}
	}
	if at <= 1 {
		return email
	}
	visible := 2
	if at <= visible {
		visible = 1
	}
	return email[:visible] + "*****" + email[at:]
}
