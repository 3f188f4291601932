package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/utils"
)

// PaymentRequestStatus represents the status of a payment request
type PaymentRequestStatus string

const (
	PaymentRequestStatusCreated   PaymentRequestStatus = "created"   // Checkout created, waiting for gateway redirect
	PaymentRequestStatusPending   PaymentRequestStatus = "pending"   // User redirected to gateway, payment in progress
	PaymentRequestStatusCompleted PaymentRequestStatus = "completed" // Payment completed successfully
	PaymentRequestStatusFailed    PaymentRequestStatus = "failed"    // Payment failed or was declined
	PaymentRequestStatusCancelled PaymentRequestStatus = "cancelled" // User cancelled at the gateway
	PaymentRequestStatusExpired   PaymentRequestStatus = "expired"   // Checkout expired before completion
)

// PaymentRequestKind distinguishes what the payment is for.
type PaymentRequestKind string

const (
	PaymentRequestKindAd     PaymentRequestKind = "ad"
	PaymentRequestKindNotice PaymentRequestKind = "notice"
)

// PaymentRequest represents a checkout created against the payment gateway
// for an ad or notice placement.
type PaymentRequest struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	CorrelationID uuid.UUID `gorm:"type:uuid;index;not null" json:"correlation_id"` // Links related records

	// Owner and subject
	AccountID uint               `gorm:"not null;index" json:"account_id"`
	Kind      PaymentRequestKind `gorm:"type:varchar(10);not null;index" json:"kind"`
	AdID      *uint              `gorm:"index" json:"ad_id,omitempty"`
	NoticeID  *uint              `gorm:"index" json:"notice_id,omitempty"`

	// Payment details
	Amount      uint64 `gorm:"not null" json:"amount"` // Amount in whole USD
	Currency    string `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Description string `gorm:"type:text" json:"description"`

	// Gateway request parameters
	InvoiceNumber string `gorm:"type:varchar(255);uniqueIndex;not null" json:"invoice_number"` // Merchant-side unique ID
	RedirectURL   string `gorm:"type:text;not null" json:"redirect_url"`                       // Return URL after payment

	// Gateway response data
	ReferenceNumber string `gorm:"type:varchar(255);index" json:"reference_number"` // Gateway checkout reference
	PaymentURL      string `gorm:"type:text" json:"payment_url"`                    // URL the user is sent to
	GatewayStatus   string `gorm:"type:varchar(50)" json:"gateway_status"`          // Raw status string from the gateway

	// Status tracking
	Status       PaymentRequestStatus `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	StatusReason string               `gorm:"type:text" json:"status_reason"`

	// Metadata and audit
	Metadata  json.RawMessage `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`

	// Expiration tracking
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`

	// Relationships
	Account Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"account,omitempty"`
	Ad      *Ad     `gorm:"foreignKey:AdID;constraint:OnDelete:SET NULL" json:"ad,omitempty"`
	Notice  *Notice `gorm:"foreignKey:NoticeID;constraint:OnDelete:SET NULL" json:"notice,omitempty"`
}

// TableName returns the table name for the PaymentRequest model
func (PaymentRequest) TableName() string {
	return "payment_requests"
}

// BeforeCreate ensures UUID and CorrelationID are set
func (pr *PaymentRequest) BeforeCreate(tx *gorm.DB) error {
	if pr.UUID == uuid.Nil {
		pr.UUID = uuid.New()
	}
	if pr.CorrelationID == uuid.Nil {
		pr.CorrelationID = uuid.New()
	}
	return nil
}

// IsFinal returns true if the payment request is in a final state
func (pr *PaymentRequest) IsFinal() bool {
	return pr.Status == PaymentRequestStatusCompleted ||
		pr.Status == PaymentRequestStatusFailed ||
		pr.Status == PaymentRequestStatusCancelled ||
		pr.Status == PaymentRequestStatusExpired
}

// IsPending returns true if the payment request is still being processed
func (pr *PaymentRequest) IsPending() bool {
	return pr.Status == PaymentRequestStatusCreated ||
		pr.Status == PaymentRequestStatusPending
}

// IsExpired returns true if the payment request has expired
func (pr *PaymentRequest) IsExpired() bool {
	if pr.ExpiresAt == nil {
		return false
	}
	return utils.UTCNow().After(*pr.ExpiresAt)
}

// CanBeProcessed returns true if the payment request can still be processed
func (pr *PaymentRequest) CanBeProcessed() bool {
	return pr.IsPending() && !pr.IsExpired()
}

// PaymentRequestFilter represents filter criteria for payment request queries
type PaymentRequestFilter struct {
	ID              *uint                 `json:"id,omitempty"`
	UUID            *uuid.UUID            `json:"uuid,omitempty"`
	AccountID       *uint                 `json:"account_id,omitempty"`
	Kind            *PaymentRequestKind   `json:"kind,omitempty"`
	AdID            *uint                 `json:"ad_id,omitempty"`
	NoticeID        *uint                 `json:"notice_id,omitempty"`
	InvoiceNumber   *string               `json:"invoice_number,omitempty"`
	ReferenceNumber *string               `json:"reference_number,omitempty"`
	Status          *PaymentRequestStatus `json:"status,omitempty"`
	CreatedAfter    *time.Time            `json:"created_after,omitempty"`
	CreatedBefore   *time.Time            `json:"created_before,omitempty"`
}
