package dto

import "time"

// ProfileDTO represents the authenticated account's own profile
type ProfileDTO struct {
	ID               uint       `json:"id"`
	UUID             string     `json:"uuid"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	ContactNumber    string     `json:"contact_number"`
	Organization     *bool      `json:"organization"`
	OrganizationName *string    `json:"organization_name,omitempty"`
	IsAdmin          *bool      `json:"is_admin"`
	IsActive         *bool      `json:"is_active"`
	IsEmailVerified  *bool      `json:"is_email_verified"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// GetProfileResponse wraps the profile payload
type GetProfileResponse struct {
	Message string     `json:"message"`
	Account ProfileDTO `json:"account"`
}

// UpdateProfileRequest represents editable profile fields
type UpdateProfileRequest struct {
	FirstName        *string `json:"first_name,omitempty" validate:"omitempty,max=255,alpha_space"`
	LastName         *string `json:"last_name,omitempty" validate:"omitempty,max=255,alpha_space"`
	ContactNumber    *string `json:"contact_number,omitempty" validate:"omitempty,min=7,max=20"`
	OrganizationName *string `json:"organization_name,omitempty" validate:"omitempty,max=120"`
}

// UpdateProfileResponse wraps the updated profile payload
type UpdateProfileResponse struct {
	Message string     `json:"message"`
	Account ProfileDTO `json:"account"`
}
