package dto

import "time"

// Notice drafts form a discriminated union: the request names the notice type
// and carries exactly the draft for that type. Shared fields about the person
// live in NoticeSubjectDraft; each kind adds what it alone needs.

// NoticeSubjectDraft holds the deceased person's details shared by every draft
type NoticeSubjectDraft struct {
	FirstName    string  `json:"first_name" validate:"required,max=120"`
	MiddleName   *string `json:"middle_name,omitempty" validate:"omitempty,max=120"`
	MaidenName   *string `json:"maiden_name,omitempty" validate:"omitempty,max=120"`
	Nickname     *string `json:"nickname,omitempty" validate:"omitempty,max=120"`
	LastName     string  `json:"last_name" validate:"required,max=120"`
	Location     string  `json:"location" validate:"required,max=255"`
	DOB          string  `json:"dob" validate:"required,datetime=2006-01-02"`
	DOP          *string `json:"dop,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Relationship string  `json:"relationship" validate:"required,max=120"`
	PhotoID      *string `json:"photo_id,omitempty" validate:"omitempty,uuid4"`
}

// DeathNoticeDraft announces a passing and the funeral arrangements
type DeathNoticeDraft struct {
	Subject      NoticeSubjectDraft `json:"subject" validate:"required"`
	Obituary     string             `json:"obituary" validate:"required,max=5000"`
	EventDate    string             `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventDetails string             `json:"event_details" validate:"required,max=2000"`
}

// MemorialServiceDraft announces a memorial gathering
type MemorialServiceDraft struct {
	Subject      NoticeSubjectDraft `json:"subject" validate:"required"`
	EventDate    string             `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventDetails string             `json:"event_details" validate:"required,max=2000"`
	Announcement *string            `json:"announcement,omitempty" validate:"omitempty,max=5000"`
}

// TombstoneUnveilingDraft announces an unveiling ceremony
type TombstoneUnveilingDraft struct {
	Subject      NoticeSubjectDraft `json:"subject" validate:"required"`
	EventDate    string             `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventDetails string             `json:"event_details" validate:"required,max=2000"`
	Announcement *string            `json:"announcement,omitempty" validate:"omitempty,max=5000"`
}

// SubmitNoticeRequest selects a notice type and carries the matching draft
type SubmitNoticeRequest struct {
	NoticeType string `json:"notice_type" validate:"required,oneof=death_notice memorial_service tombstone_unveiling"`

	DeathNotice        *DeathNoticeDraft        `json:"death_notice,omitempty"`
	MemorialService    *MemorialServiceDraft    `json:"memorial_service,omitempty"`
	TombstoneUnveiling *TombstoneUnveilingDraft `json:"tombstone_unveiling,omitempty"`
}

// NoticeDTO represents a notice in list responses
type NoticeDTO struct {
	ID         uint      `json:"id"`
	NoticeType string    `json:"notice_type"`
	FullName   string    `json:"full_name"`
	Nickname   *string   `json:"nickname,omitempty"`
	Location   string    `json:"location"`
	YearRange  string    `json:"year_range"`
	EventDate  time.Time `json:"event_date"`
	PhotoID    *string   `json:"photo_id,omitempty"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	Tributes   uint64    `json:"tributes"`
	CreatedAt  time.Time `json:"created_at"`
}

// NoticeDetailDTO is the full notice view
type NoticeDetailDTO struct {
	NoticeDTO
	FirstName    string     `json:"first_name"`
	MiddleName   *string    `json:"middle_name,omitempty"`
	MaidenName   *string    `json:"maiden_name,omitempty"`
	LastName     string     `json:"last_name"`
	DOB          time.Time  `json:"dob"`
	DOP          *time.Time `json:"dop,omitempty"`
	Age          *int       `json:"age,omitempty"`
	EventDetails string     `json:"event_details"`
	Obituary     *string    `json:"obituary,omitempty"`
	Announcement *string    `json:"announcement,omitempty"`
	Relationship string     `json:"relationship"`
}

// SubmitNoticeResponse carries the stored notice plus checkout details
type SubmitNoticeResponse struct {
	Message string                `json:"message"`
	Notice  NoticeDetailDTO       `json:"notice"`
	Payment *PaymentInitiationDTO `json:"payment,omitempty"`
}

// ListNoticesRequest filters the public notice listing
type ListNoticesRequest struct {
	NoticeType *string `json:"notice_type,omitempty" validate:"omitempty,oneof=death_notice memorial_service tombstone_unveiling"`
	Search     *string `json:"search,omitempty" validate:"omitempty,max=120"`
	Page       int     `json:"page" validate:"omitempty,min=1"`
	PageSize   int     `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListNoticesResponse carries a page of notices
type ListNoticesResponse struct {
	Message    string        `json:"message"`
	Notices    []NoticeDTO   `json:"notices"`
	Pagination PaginationDTO `json:"pagination"`
}

// GetNoticeResponse carries one notice in full
type GetNoticeResponse struct {
	Message string          `json:"message"`
	Notice  NoticeDetailDTO `json:"notice"`
}

// TributeResponse acknowledges a recorded tribute
type TributeResponse struct {
	Message  string `json:"message"`
	Tributes uint64 `json:"tributes"`
}
