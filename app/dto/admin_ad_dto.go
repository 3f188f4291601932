package dto

// AdminListAdsRequest filters the moderation queue
type AdminListAdsRequest struct {
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
	Page     int     `json:"page" validate:"omitempty,min=1"`
	PageSize int     `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// AdminAdDTO extends the owner view with submitter details for moderation
type AdminAdDTO struct {
	AdDTO
	AccountID        uint    `json:"account_id"`
	SubmitterName    string  `json:"submitter_name"`
	SubmitterEmail   string  `json:"submitter_email"`
	OrganizationName *string `json:"organization_name,omitempty"`
}

// AdminListAdsResponse carries a page of the moderation queue
type AdminListAdsResponse struct {
	Message    string        `json:"message"`
	Ads        []AdminAdDTO  `json:"ads"`
	Pagination PaginationDTO `json:"pagination"`
}

// AdminReviewAdRequest applies a moderation decision. Version must match the
// version the reviewer loaded; a stale value is rejected.
type AdminReviewAdRequest struct {
	Status          string  `json:"status" validate:"required,oneof=pending approved rejected"`
	Active          bool    `json:"active"`
	RejectionReason *string `json:"rejection_reason,omitempty" validate:"omitempty,max=1000"`
	Version         uint    `json:"version" validate:"required,min=1"`
}

// AdminReviewAdResponse carries the ad after the decision
type AdminReviewAdResponse struct {
	Message string `json:"message"`
	Ad      AdDTO  `json:"ad"`
}

// AdminDeleteAdResponse acknowledges a hard delete
type AdminDeleteAdResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}
