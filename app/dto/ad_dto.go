package dto

import "time"

// SubmitAdRequest represents a new ad placement submission
type SubmitAdRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Text    string `json:"text" validate:"required,max=500"`
	Link    string `json:"link" validate:"required,url,max=2048"`
	PhotoID string `json:"photo_id" validate:"required,uuid4"`
	Tier    int    `json:"tier" validate:"required,oneof=7 14 30"`
}

// ResubmitAdRequest represents an edited resubmission of a rejected ad
type ResubmitAdRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Text    string `json:"text" validate:"required,max=500"`
	Link    string `json:"link" validate:"required,url,max=2048"`
	PhotoID string `json:"photo_id" validate:"required,uuid4"`
}

// AdDTO represents ad data returned to its owner
type AdDTO struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Text            string     `json:"text"`
	Link            string     `json:"link"`
	PhotoID         string     `json:"photo_id"`
	PhotoURL        string     `json:"photo_url,omitempty"`
	Tier            int        `json:"tier"`
	Total           uint64     `json:"total"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	Active          *bool      `json:"active"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	Expires         time.Time  `json:"expires"`
	Clicks          uint64     `json:"clicks"`
	Paid            *bool      `json:"paid"`
	ReferenceNumber *string    `json:"reference_number,omitempty"`
	Version         uint       `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// SubmitAdResponse carries the stored ad plus checkout details
type SubmitAdResponse struct {
	Message string                `json:"message"`
	Ad      AdDTO                 `json:"ad"`
	Payment *PaymentInitiationDTO `json:"payment,omitempty"`
}

// ResubmitAdResponse carries the ad after a resubmission reset it to pending
type ResubmitAdResponse struct {
	Message string `json:"message"`
	Ad      AdDTO  `json:"ad"`
}

// ListMyAdsResponse carries the owner's ads with pagination metadata
type ListMyAdsResponse struct {
	Message    string        `json:"message"`
	Ads        []AdDTO       `json:"ads"`
	Pagination PaginationDTO `json:"pagination"`
}

// PublicAdDTO is the trimmed shape served to the public rotation
type PublicAdDTO struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Text     string `json:"text"`
	Link     string `json:"link"`
	PhotoID  string `json:"photo_id"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// ActiveAdsResponse carries the current public rotation
type ActiveAdsResponse struct {
	Message string        `json:"message"`
	Ads     []PublicAdDTO `json:"ads"`
}

// ClickAdResponse acknowledges a recorded click
type ClickAdResponse struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

// PaginationDTO carries list paging metadata
type PaginationDTO struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}
