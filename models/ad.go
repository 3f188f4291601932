package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/utils"
)

// AdStatus represents the moderation status of an advertisement
type AdStatus string

const (
	AdStatusPending  AdStatus = "pending"
	AdStatusApproved AdStatus = "approved"
	AdStatusRejected AdStatus = "rejected"
)

// String returns the string representation of the status
func (s AdStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s AdStatus) Valid() bool {
	switch s {
	case AdStatusPending, AdStatusApproved, AdStatusRejected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for AdStatus
func (s *AdStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = AdStatus(v)
	case []byte:
		*s = AdStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AdStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AdStatus
func (s AdStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid AdStatus: %s", s)
	}
	return string(s), nil
}

// AdTier is a paid display duration in days.
type AdTier int

const (
	AdTierWeek      AdTier = 7
	AdTierFortnight AdTier = 14
	AdTierMonth     AdTier = 30
)

// AdTierPrices maps each tier to its flat USD price.
var AdTierPrices = map[AdTier]uint64{
	AdTierWeek:      100,
	AdTierFortnight: 200,
	AdTierMonth:     350,
}

// Valid checks if the tier is one of the sold durations
func (t AdTier) Valid() bool {
	_, ok := AdTierPrices[t]
	return ok
}

// Price returns the flat price for the tier
func (t AdTier) Price() uint64 {
	return AdTierPrices[t]
}

// Ad represents one paid placement request and its moderation lifecycle.
type Ad struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	AccountID uint   `gorm:"not null;index:idx_ads_account_id" json:"account_id"`
	Name      string `gorm:"size:120;not null" json:"name"`
	Text      string `gorm:"size:500;not null" json:"text"`
	Link      string `gorm:"size:2048;not null" json:"link"`
	PhotoID   string `gorm:"size:255;not null" json:"photo_id"`

	// Commercial fields
	Tier            AdTier  `gorm:"not null" json:"tier"`
	Total           uint64  `gorm:"not null" json:"total"`
	Currency        string  `gorm:"size:3;not null;default:'USD'" json:"currency"`
	ReferenceNumber *string `gorm:"size:64;index:idx_ads_reference_number" json:"reference_number,omitempty"`
	Paid            *bool   `gorm:"default:false;index:idx_ads_paid" json:"paid"`

	// Lifecycle fields
	Status          AdStatus  `gorm:"type:ad_status;not null;default:'pending';index:idx_ads_status" json:"status"`
	Active          *bool     `gorm:"default:false;index:idx_ads_active" json:"active"`
	RejectionReason *string   `gorm:"type:text" json:"rejection_reason,omitempty"`
	Expires         time.Time `gorm:"type:date;not null;index:idx_ads_expires" json:"expires"`

	// Engagement; incremented server-side, never written from client state
	Clicks uint64 `gorm:"not null;default:0" json:"clicks"`

	// Optimistic-lock token carried through review read-modify-write cycles
	Version uint `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_ads_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Account *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
}

// TableName returns the table name for the model
func (Ad) TableName() string {
	return "ads"
}

// BeforeCreate is called before creating a new record
func (a *Ad) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = AdStatusPending
	}
	if a.Currency == "" {
		a.Currency = utils.USDCurrency
	}
	if a.Version == 0 {
		a.Version = 1
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (a *Ad) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = utils.UTCNowPtr()
	return nil
}

// IsResubmittable checks if the owner may edit and resubmit the ad
func (a *Ad) IsResubmittable() bool {
	return a.Status == AdStatusRejected
}

// IsDisplayable checks whether the ad qualifies for the public rotation
func (a *Ad) IsDisplayable(today time.Time) bool {
	return a.Status == AdStatusApproved &&
		utils.IsTrue(a.Active) &&
		!a.Expires.Before(today)
}

// ConsistentLifecycle verifies the cross-field lifecycle invariants:
// active implies approved, and a rejection reason is present exactly when
// the ad is rejected.
func (a *Ad) ConsistentLifecycle() bool {
	if utils.IsTrue(a.Active) && a.Status != AdStatusApproved {
		return false
	}
	hasReason := a.RejectionReason != nil && *a.RejectionReason != ""
	return hasReason == (a.Status == AdStatusRejected)
}

// AdFilter represents filter criteria for ad queries
type AdFilter struct {
	ID               *uint
	AccountID        *uint
	Status           *AdStatus
	Tier             *AdTier
	Active           *bool
	Paid             *bool
	ReferenceNumber  *string
	ExpiresOnOrAfter *time.Time
	CreatedAfter     *time.Time
	CreatedBefore    *time.Time
}
