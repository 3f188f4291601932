// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// SignupRequest represents the signup form data
type SignupRequest struct {
	FirstName     string `json:"first_name" validate:"required,max=255,alpha_space"`
	LastName      string `json:"last_name" validate:"required,max=255,alpha_space"`
	Email         string `json:"email" validate:"required,email,max=255"`
	ContactNumber string `json:"contact_number" validate:"required,min=7,max=20"`

	// Organization accounts may place ads; the name is mandatory for them
	Organization     bool    `json:"organization"`
	OrganizationName *string `json:"organization_name,omitempty" validate:"omitempty,max=120"`

	Password        string `json:"password" validate:"required,min=8,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// SignupResponse represents the response after successful signup initiation
type SignupResponse struct {
	Message   string `json:"message"`
	AccountID uint   `json:"account_id"`
	OTPSent   bool   `json:"otp_sent"`
	OTPTarget string `json:"otp_target"` // Email address (masked for security)
}

// OTPVerificationRequest represents the OTP verification request
type OTPVerificationRequest struct {
	AccountID uint   `json:"account_id" validate:"required"`
	OTPCode   string `json:"otp_code" validate:"required,len=6,numeric"`
	OTPType   string `json:"otp_type" validate:"required,oneof=email password_reset"`
}

// OTPVerificationResponse represents the response after successful OTP verification
type OTPVerificationResponse struct {
	Message      string     `json:"message"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refresh_token"`
	Account      AccountDTO `json:"account"`
}

// OTPResendRequest represents the request to resend an OTP
type OTPResendRequest struct {
	AccountID uint   `json:"account_id" validate:"required"`
	OTPType   string `json:"otp_type" validate:"required,oneof=email password_reset"`
}

// OTPResendResponse represents the response after resending an OTP
type OTPResendResponse struct {
	Message         string `json:"message"`
	OTPSent         bool   `json:"otp_sent"`
	MaskedOTPTarget string `json:"masked_otp_target"`
}

// AccountDTO represents account data for API responses
type AccountDTO struct {
	ID               uint      `json:"id"`
	UUID             string    `json:"uuid"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	ContactNumber    string    `json:"contact_number"`
	Organization     *bool     `json:"organization"`
	OrganizationName *string   `json:"organization_name,omitempty"`
	IsAdmin          *bool     `json:"is_admin"`
	IsEmailVerified  *bool     `json:"is_email_verified"`
	IsActive         *bool     `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// SessionDTO carries issued tokens back to the client
type SessionDTO struct {
	SessionToken string  `json:"session_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresIn    int     `json:"expires_in"`
	TokenType    string  `json:"token_type"`
	CreatedAt    string  `json:"created_at"`
}
