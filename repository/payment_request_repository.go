package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/models"
)

// PaymentRequestRepositoryImpl implements PaymentRequestRepository interface
type PaymentRequestRepositoryImpl struct {
	*BaseRepository[models.PaymentRequest, models.PaymentRequestFilter]
}

// NewPaymentRequestRepository creates a new payment request repository
func NewPaymentRequestRepository(db *gorm.DB) PaymentRequestRepository {
	return &PaymentRequestRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PaymentRequest, models.PaymentRequestFilter](db),
	}
}

// ByUUID finds a payment request by UUID
func (r *PaymentRequestRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.PaymentRequest, error) {
	db := r.getDB(ctx)
	var request models.PaymentRequest
	err := db.Where("uuid = ?", uuidStr).Last(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// ByInvoiceNumber finds a payment request by invoice number
func (r *PaymentRequestRepositoryImpl) ByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.PaymentRequest, error) {
	db := r.getDB(ctx)
	var request models.PaymentRequest
	err := db.Where("invoice_number = ?", invoiceNumber).Last(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// ByReferenceNumber finds a payment request by the gateway checkout reference
func (r *PaymentRequestRepositoryImpl) ByReferenceNumber(ctx context.Context, reference string) (*models.PaymentRequest, error) {
	db := r.getDB(ctx)
	var request models.PaymentRequest
	err := db.Where("reference_number = ?", reference).Last(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// ByAccountID finds payment requests by account ID
func (r *PaymentRequestRepositoryImpl) ByAccountID(ctx context.Context, accountID uint, limit, offset int) ([]*models.PaymentRequest, error) {
	return r.ByFilter(ctx, models.PaymentRequestFilter{AccountID: &accountID}, "created_at DESC", limit, offset)
}

// applyFilter applies filter criteria to a GORM query
func (r *PaymentRequestRepositoryImpl) applyFilter(query *gorm.DB, filter models.PaymentRequestFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.AdID != nil {
		query = query.Where("ad_id = ?", *filter.AdID)
	}
	if filter.NoticeID != nil {
		query = query.Where("notice_id = ?", *filter.NoticeID)
	}
	if filter.InvoiceNumber != nil {
		query = query.Where("invoice_number = ?", *filter.InvoiceNumber)
	}
	if filter.ReferenceNumber != nil {
		query = query.Where("reference_number = ?", *filter.ReferenceNumber)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves payment requests based on filter criteria
func (r *PaymentRequestRepositoryImpl) ByFilter(ctx context.Context, filter models.PaymentRequestFilter, orderBy string, limit, offset int) ([]*models.PaymentRequest, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PaymentRequest{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var requests []*models.PaymentRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to find payment requests by filter: %w", err)
	}
	return requests, nil
}

// Count returns the number of payment requests matching the filter
func (r *PaymentRequestRepositoryImpl) Count(ctx context.Context, filter models.PaymentRequestFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PaymentRequest{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count payment requests: %w", err)
	}
	return count, nil
}

// Exists checks if any payment request matches the filter
func (r *PaymentRequestRepositoryImpl) Exists(ctx context.Context, filter models.PaymentRequestFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists all fields of an already-loaded payment request
func (r *PaymentRequestRepositoryImpl) Update(ctx context.Context, request *models.PaymentRequest) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(request).Error
	if err != nil {
		return fmt.Errorf("failed to update payment request: %w", err)
	}
	return nil
}

// UpdateStatus moves a payment request to a new status with a reason
func (r *PaymentRequestRepositoryImpl) UpdateStatus(ctx context.Context, requestID uint, status models.PaymentRequestStatus, reason string) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	res := db.Model(&models.PaymentRequest{}).
		Where("id = ?", requestID).
		Updates(map[string]any{
			"status":        status,
			"status_reason": reason,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		err = fmt.Errorf("failed to update payment request status: %w", res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
		return err
	}
	return nil
}

// ExpireStale marks non-final requests older than the cutoff as expired
func (r *PaymentRequestRepositoryImpl) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	res := db.Model(&models.PaymentRequest{}).
		Where("status IN ? AND created_at < ?",
			[]models.PaymentRequestStatus{models.PaymentRequestStatusCreated, models.PaymentRequestStatusPending},
			olderThan).
		Updates(map[string]any{
			"status":        models.PaymentRequestStatusExpired,
			"status_reason": "checkout expired without completion",
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		err = fmt.Errorf("failed to expire stale payment requests: %w", res.Error)
		return 0, err
	}
	return res.RowsAffected, nil
}
