package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/models"
)

// ErrVersionConflict is returned when a guarded update finds the row was
// modified after the caller loaded it.
var ErrVersionConflict = errors.New("row version conflict")

// AdRepositoryImpl implements AdRepository interface
type AdRepositoryImpl struct {
	*BaseRepository[models.Ad, models.AdFilter]
}

// NewAdRepository creates a new ad repository
func NewAdRepository(db *gorm.DB) AdRepository {
	return &AdRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Ad, models.AdFilter](db),
	}
}

// ByReferenceNumber retrieves an ad by its payment reference number
func (r *AdRepositoryImpl) ByReferenceNumber(ctx context.Context, reference string) (*models.Ad, error) {
	db := r.getDB(ctx)
	var ad models.Ad
	err := db.Where("reference_number = ?", reference).Last(&ad).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ad by reference number: %w", err)
	}
	return &ad, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *AdRepositoryImpl) applyFilter(query *gorm.DB, filter models.AdFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Paid != nil {
		query = query.Where("paid = ?", *filter.Paid)
	}
	if filter.Tier != nil {
		query = query.Where("tier = ?", *filter.Tier)
	}
	if filter.ReferenceNumber != nil {
		query = query.Where("reference_number = ?", *filter.ReferenceNumber)
	}
	if filter.ExpiresOnOrAfter != nil {
		query = query.Where("expires >= ?", *filter.ExpiresOnOrAfter)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves ads based on filter criteria
func (r *AdRepositoryImpl) ByFilter(ctx context.Context, filter models.AdFilter, orderBy string, limit, offset int) ([]*models.Ad, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Ad{}), filter)

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

	var ads []*models.Ad
	if err := query.Find(&ads).Error; err != nil {
		return nil, fmt.Errorf("failed to find ads by filter: %w", err)
	}
	return ads, nil
}

// Count returns the number of ads matching the filter
func (r *AdRepositoryImpl) Count(ctx context.Context, filter models.AdFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Ad{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ads: %w", err)
	}
	return count, nil
}

// Update persists all fields of an already-loaded ad
func (r *AdRepositoryImpl) Update(ctx context.Context, ad *models.Ad) error {
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

	err = db.Save(ad).Error
	if err != nil {
		return fmt.Errorf("failed to update ad: %w", err)
	}
	return nil
}

// UpdateReviewed applies a moderation decision guarded by the version the
// reviewer loaded. The version column is bumped with the same statement, so
// two concurrent reviews cannot both win.
func (r *AdRepositoryImpl) UpdateReviewed(ctx context.Context, ad *models.Ad, expectedVersion uint) error {
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

	res := db.Model(&models.Ad{}).
		Where("id = ? AND version = ?", ad.ID, expectedVersion).
		Updates(map[string]any{
			"status":           ad.Status,
			"active":           ad.Active,
			"rejection_reason": ad.RejectionReason,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		err = fmt.Errorf("failed to update reviewed ad: %w", res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = ErrVersionConflict
		return err
	}
	ad.Version = expectedVersion + 1
	return nil
}

// ListDisplayable returns approved, active, unexpired ads ordered id DESC
func (r *AdRepositoryImpl) ListDisplayable(ctx context.Context, today time.Time, limit, offset int) ([]*models.Ad, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Ad{}).
		Where("status = ? AND active = ? AND expires >= ?", models.AdStatusApproved, true, today).
		Order("id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var ads []*models.Ad
	if err := query.Find(&ads).Error; err != nil {
		return nil, fmt.Errorf("failed to list displayable ads: %w", err)
	}
	return ads, nil
}

// IncrementClicks bumps the click counter atomically in SQL
func (r *AdRepositoryImpl) IncrementClicks(ctx context.Context, adID uint) error {
	db := r.getDB(ctx)

	res := db.Model(&models.Ad{}).
		Where("id = ?", adID).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment ad clicks: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkPaid records a successful payment against the ad
func (r *AdRepositoryImpl) MarkPaid(ctx context.Context, adID uint, reference string) error {
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

	res := db.Model(&models.Ad{}).
		Where("id = ?", adID).
		Updates(map[string]any{
			"paid":             true,
			"reference_number": reference,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		err = fmt.Errorf("failed to mark ad paid: %w", res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
		return err
	}
	return nil
}

// DeleteHard permanently removes an ad row
func (r *AdRepositoryImpl) DeleteHard(ctx context.Context, adID uint) error {
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

	res := db.Unscoped().Delete(&models.Ad{}, adID)
	if res.Error != nil {
		err = fmt.Errorf("failed to delete ad: %w", res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
		return err
	}
	return nil
}
