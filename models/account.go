// Package models contains domain entities and business models for the notice platform
package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_accounts_uuid" json:"uuid"`

	FirstName     string `gorm:"size:255;not null" json:"first_name"`
	LastName      string `gorm:"size:255;not null" json:"last_name"`
	Email         string `gorm:"size:255;not null;uniqueIndex:idx_accounts_email" json:"email"`
	ContactNumber string `gorm:"size:20;not null" json:"contact_number"`
	PasswordHash  string `gorm:"size:255;not null" json:"-"`

	// Organization accounts are the only ones allowed to purchase ad placement.
	Organization     *bool   `gorm:"default:false;index:idx_accounts_organization" json:"organization"`
	OrganizationName *string `gorm:"size:120" json:"organization_name,omitempty"`

	IsAdmin *bool `gorm:"default:false;index:idx_accounts_is_admin" json:"is_admin"`

	// Status and verification
	IsEmailVerified *bool `gorm:"default:false" json:"is_email_verified"`
	IsActive        *bool `gorm:"default:true;index:idx_accounts_is_active" json:"is_active"`

	// Timestamps
	CreatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`

	// Relations
	OTPVerifications []OTPVerification `gorm:"foreignKey:AccountID" json:"-"`
	Sessions         []AccountSession  `gorm:"foreignKey:AccountID" json:"-"`
	AuditLogs        []AuditLog        `gorm:"foreignKey:AccountID" json:"-"`
	Ads              []Ad              `gorm:"foreignKey:AccountID" json:"-"`
	Notices          []Notice          `gorm:"foreignKey:AccountID" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	Email           *string
	Organization    *bool
	IsAdmin         *bool
	IsEmailVerified *bool
	IsActive        *bool
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}

func (a *Account) IsOrganization() bool {
	return a.Organization != nil && *a.Organization
}

// RequiresOrganizationName reports whether the organization_name field is
// mandatory for this account.
func (a *Account) RequiresOrganizationName() bool {
	return a.IsOrganization()
}

func (a *Account) CanModerate() bool {
	return a.IsAdmin != nil && *a.IsAdmin
}
