// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mzwakhe/izaziso/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AccountRepository defines operations for accounts
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	ByEmail(ctx context.Context, email string) (*models.Account, error)
	ByUUID(ctx context.Context, uuid string) (*models.Account, error)
	UpdateVerificationStatus(ctx context.Context, accountID uint, isEmailVerified *bool, emailVerifiedAt *time.Time) error
	UpdateLastLogin(ctx context.Context, accountID uint, at time.Time) error
	UpdatePassword(ctx context.Context, accountID uint, passwordHash string) error
	Update(ctx context.Context, account *models.Account) error
}

// OTPVerificationRepository defines operations for OTP verifications
type OTPVerificationRepository interface {
	Repository[models.OTPVerification, models.OTPVerificationFilter]
	ByAccountAndType(ctx context.Context, accountID uint, otpType string) ([]*models.OTPVerification, error)
	ListActiveOTPs(ctx context.Context, accountID uint) ([]*models.OTPVerification, error)
	ExpireOldOTPs(ctx context.Context, accountID uint, otpType string) error
	GetLatestByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*models.OTPVerification, error)
}

// AccountSessionRepository defines operations for account sessions
type AccountSessionRepository interface {
	Repository[models.AccountSession, models.AccountSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.AccountSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.AccountSession, error)
	ListActiveSessionsByAccount(ctx context.Context, accountID uint) ([]*models.AccountSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
	ExpireAllAccountSessions(ctx context.Context, accountID uint) error
	CleanupExpiredSessions(ctx context.Context) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

// AdRepository defines the operations the ad lifecycle needs. It deliberately
// exposes a narrow surface instead of generic CRUD: every mutation of an ad
// after creation goes through a purpose-built method.
type AdRepository interface {
	ByID(ctx context.Context, id uint) (*models.Ad, error)
	ByReferenceNumber(ctx context.Context, reference string) (*models.Ad, error)
	ByFilter(ctx context.Context, filter models.AdFilter, orderBy string, limit, offset int) ([]*models.Ad, error)
	Count(ctx context.Context, filter models.AdFilter) (int64, error)
	Save(ctx context.Context, ad *models.Ad) error
	Update(ctx context.Context, ad *models.Ad) error
	// UpdateReviewed applies a moderation decision guarded by the version the
	// reviewer loaded. Returns ErrVersionConflict when the row moved on.
	UpdateReviewed(ctx context.Context, ad *models.Ad, expectedVersion uint) error
	// ListDisplayable returns approved, active, unexpired ads ordered id DESC.
	ListDisplayable(ctx context.Context, today time.Time, limit, offset int) ([]*models.Ad, error)
	// IncrementClicks bumps the click counter atomically in SQL.
	IncrementClicks(ctx context.Context, adID uint) error
	MarkPaid(ctx context.Context, adID uint, reference string) error
	DeleteHard(ctx context.Context, adID uint) error
}

// NoticeRepository defines operations for notices
type NoticeRepository interface {
	Repository[models.Notice, models.NoticeFilter]
	ByReferenceNumber(ctx context.Context, reference string) (*models.Notice, error)
	Update(ctx context.Context, notice *models.Notice) error
	MarkPaid(ctx context.Context, noticeID uint, reference string) error
	IncrementTributes(ctx context.Context, noticeID uint) error
	DeleteHard(ctx context.Context, noticeID uint) error
}

// PaymentRequestRepository defines operations for payment requests
type PaymentRequestRepository interface {
	Repository[models.PaymentRequest, models.PaymentRequestFilter]
	ByUUID(ctx context.Context, uuid string) (*models.PaymentRequest, error)
	ByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.PaymentRequest, error)
	ByReferenceNumber(ctx context.Context, reference string) (*models.PaymentRequest, error)
	ByAccountID(ctx context.Context, accountID uint, limit, offset int) ([]*models.PaymentRequest, error)
	Update(ctx context.Context, request *models.PaymentRequest) error
	UpdateStatus(ctx context.Context, requestID uint, status models.PaymentRequestStatus, reason string) error
	ExpireStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// MediaAssetRepository defines operations for media assets
type MediaAssetRepository interface {
	Repository[models.MediaAsset, models.MediaAssetFilter]
	ByUUID(ctx context.Context, uuid string) (*models.MediaAsset, error)
	ByAccountID(ctx context.Context, accountID uint, limit, offset int) ([]*models.MediaAsset, error)
}
