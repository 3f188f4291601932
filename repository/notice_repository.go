package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/models"
)

// NoticeRepositoryImpl implements NoticeRepository interface
type NoticeRepositoryImpl struct {
	*BaseRepository[models.Notice, models.NoticeFilter]
}

// NewNoticeRepository creates a new notice repository
func NewNoticeRepository(db *gorm.DB) NoticeRepository {
	return &NoticeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Notice, models.NoticeFilter](db),
	}
}

// ByReferenceNumber retrieves a notice by its payment reference number
func (r *NoticeRepositoryImpl) ByReferenceNumber(ctx context.Context, reference string) (*models.Notice, error) {
	db := r.getDB(ctx)
	var notice models.Notice
	err := db.Where("reference_number = ?", reference).Last(&notice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find notice by reference number: %w", err)
	}
	return &notice, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *NoticeRepositoryImpl) applyFilter(query *gorm.DB, filter models.NoticeFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.NoticeType != nil {
		query = query.Where("notice_type = ?", *filter.NoticeType)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Paid != nil {
		query = query.Where("paid = ?", *filter.Paid)
	}
	if filter.ReferenceNumber != nil {
		query = query.Where("reference_number = ?", *filter.ReferenceNumber)
	}
	if filter.NamePattern != nil {
		pattern := "%" + *filter.NamePattern + "%"
		query = query.Where(
			"first_name ILIKE ? OR middle_name ILIKE ? OR maiden_name ILIKE ? OR nickname ILIKE ? OR last_name ILIKE ? OR location ILIKE ?",
			pattern, pattern, pattern, pattern, pattern, pattern)
	}
	if filter.EventAfter != nil {
		query = query.Where("event_date > ?", *filter.EventAfter)
	}
	if filter.EventBefore != nil {
		query = query.Where("event_date < ?", *filter.EventBefore)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves notices based on filter criteria
func (r *NoticeRepositoryImpl) ByFilter(ctx context.Context, filter models.NoticeFilter, orderBy string, limit, offset int) ([]*models.Notice, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Notice{}), filter)

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

	var notices []*models.Notice
	if err := query.Find(&notices).Error; err != nil {
		return nil, fmt.Errorf("failed to find notices by filter: %w", err)
	}
	return notices, nil
}

// Count returns the number of notices matching the filter
func (r *NoticeRepositoryImpl) Count(ctx context.Context, filter models.NoticeFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Notice{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count notices: %w", err)
	}
	return count, nil
}

// Exists checks if any notice matches the filter
func (r *NoticeRepositoryImpl) Exists(ctx context.Context, filter models.NoticeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists all fields of an already-loaded notice
func (r *NoticeRepositoryImpl) Update(ctx context.Context, notice *models.Notice) error {
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

	err = db.Save(notice).Error
	if err != nil {
		return fmt.Errorf("failed to update notice: %w", err)
	}
	return nil
}

// MarkPaid records a successful payment against the notice
func (r *NoticeRepositoryImpl) MarkPaid(ctx context.Context, noticeID uint, reference string) error {
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

	res := db.Model(&models.Notice{}).
		Where("id = ?", noticeID).
		Updates(map[string]any{
			"paid":             true,
			"active":           true,
			"reference_number": reference,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		err = fmt.Errorf("failed to mark notice paid: %w", res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
		return err
	}
	return nil
}

// IncrementTributes bumps the tribute counter atomically in SQL
func (r *NoticeRepositoryImpl) IncrementTributes(ctx context.Context, noticeID uint) error {
	db := r.getDB(ctx)

	res := db.Model(&models.Notice{}).
		Where("id = ?", noticeID).
		UpdateColumn("tributes", gorm.Expr("tributes + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment notice tributes: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteHard permanently removes a notice row
func (r *NoticeRepositoryImpl) DeleteHard(ctx context.Context, noticeID uint) error {
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

	res := db.Unscoped().Delete(&models.Notice{}, noticeID)
	if res.Error != nil {
		err = fmt.Errorf("failed to delete notice: %w", res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
		return err
	}
	return nil
}
