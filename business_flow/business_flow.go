// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAccountDTO converts an account model to AccountDTO for authentication responses
func ToAccountDTO(account models.Account) dto.AccountDTO {
	return dto.AccountDTO{
		ID:               account.ID,
		UUID:             account.UUID.String(),
		FirstName:        account.FirstName,
		LastName:         account.LastName,
		Email:            account.Email,
		ContactNumber:    account.ContactNumber,
		Organization:     account.Organization,
		OrganizationName: account.OrganizationName,
		IsAdmin:          account.IsAdmin,
		IsEmailVerified:  account.IsEmailVerified,
		IsActive:         account.IsActive,
		CreatedAt:        account.CreatedAt,
	}
}

// ToSessionDTO converts a session model to SessionDTO
func ToSessionDTO(session models.AccountSession) dto.SessionDTO {
	return dto.SessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToProfileDTO converts an account model to the profile view
func ToProfileDTO(account models.Account) dto.ProfileDTO {
	return dto.ProfileDTO{
		ID:               account.ID,
		UUID:             account.UUID.String(),
		FirstName:        account.FirstName,
		LastName:         account.LastName,
		Email:            account.Email,
		ContactNumber:    account.ContactNumber,
		Organization:     account.Organization,
		OrganizationName: account.OrganizationName,
		IsAdmin:          account.IsAdmin,
		IsActive:         account.IsActive,
		IsEmailVerified:  account.IsEmailVerified,
		LastLoginAt:      account.LastLoginAt,
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
	}
}

// ToAdDTO converts an ad model to its owner-facing DTO
func ToAdDTO(ad models.Ad) dto.AdDTO {
	return dto.AdDTO{
		ID:              ad.ID,
		Name:            ad.Name,
		Text:            ad.Text,
		Link:            ad.Link,
		PhotoID:         ad.PhotoID,
		Tier:            int(ad.Tier),
		Total:           ad.Total,
		Currency:        ad.Currency,
		Status:          ad.Status.String(),
		Active:          ad.Active,
		RejectionReason: ad.RejectionReason,
		Expires:         ad.Expires,
		Clicks:          ad.Clicks,
		Paid:            ad.Paid,
		ReferenceNumber: ad.ReferenceNumber,
		Version:         ad.Version,
		CreatedAt:       ad.CreatedAt,
		UpdatedAt:       ad.UpdatedAt,
	}
}

// ToPublicAdDTO converts an ad model to the trimmed public rotation shape
func ToPublicAdDTO(ad models.Ad) dto.PublicAdDTO {
	return dto.PublicAdDTO{
		ID:      ad.ID,
		Name:    ad.Name,
		Text:    ad.Text,
		Link:    ad.Link,
		PhotoID: ad.PhotoID,
	}
}

// ToNoticeDTO converts a notice model to its listing shape
func ToNoticeDTO(notice models.Notice) dto.NoticeDTO {
	return dto.NoticeDTO{
		ID:         notice.ID,
		NoticeType: notice.NoticeType.String(),
		FullName:   notice.FullName(),
		Nickname:   notice.Nickname,
		Location:   notice.Location,
		YearRange:  utils.FormatYearRange(notice.DOB, notice.DOP),
		EventDate:  notice.EventDate,
		PhotoID:    notice.PhotoID,
		Tributes:   notice.Tributes,
		CreatedAt:  notice.CreatedAt,
	}
}

// ToNoticeDetailDTO converts a notice model to its full view
func ToNoticeDetailDTO(notice models.Notice) dto.NoticeDetailDTO {
	detail := dto.NoticeDetailDTO{
		NoticeDTO:    ToNoticeDTO(notice),
		FirstName:    notice.FirstName,
		MiddleName:   notice.MiddleName,
		MaidenName:   notice.MaidenName,
		LastName:     notice.LastName,
		DOB:          notice.DOB,
		DOP:          notice.DOP,
		EventDetails: notice.EventDetails,
		Obituary:     notice.Obituary,
		Announcement: notice.Announcement,
		Relationship: notice.Relationship,
	}
	detail.Age = utils.AgeAt(notice.DOB, notice.DOP)
	return detail
}

// ToPaymentInitiationDTO converts a payment request model to checkout details
func ToPaymentInitiationDTO(pr models.PaymentRequest) dto.PaymentInitiationDTO {
	return dto.PaymentInitiationDTO{
		ReferenceNumber: pr.ReferenceNumber,
		PaymentURL:      pr.PaymentURL,
		Amount:          pr.Amount,
		Currency:        pr.Currency,
		InvoiceNumber:   pr.InvoiceNumber,
		ExpiresAt:       pr.ExpiresAt,
	}
}
