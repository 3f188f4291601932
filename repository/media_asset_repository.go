package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/models"
)

// MediaAssetRepositoryImpl implements MediaAssetRepository interface.
type MediaAssetRepositoryImpl struct {
	*BaseRepository[models.MediaAsset, models.MediaAssetFilter]
}

// NewMediaAssetRepository creates a new media asset repository.
func NewMediaAssetRepository(db *gorm.DB) MediaAssetRepository {
	return &MediaAssetRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MediaAsset, models.MediaAssetFilter](db),
	}
}

// ByUUID retrieves a media asset by UUID.
func (r *MediaAssetRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.MediaAsset, error) {
	parsed, err := uuid.Parse(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.MediaAssetFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByAccountID retrieves media assets for an account.
func (r *MediaAssetRepositoryImpl) ByAccountID(ctx context.Context, accountID uint, limit, offset int) ([]*models.MediaAsset, error) {
	return r.ByFilter(ctx, models.MediaAssetFilter{AccountID: &accountID}, "id DESC", limit, offset)
}

// applyFilter applies filter criteria to a GORM query.
func (r *MediaAssetRepositoryImpl) applyFilter(query *gorm.DB, filter models.MediaAssetFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves media assets based on filter criteria.
func (r *MediaAssetRepositoryImpl) ByFilter(ctx context.Context, filter models.MediaAssetFilter, orderBy string, limit, offset int) ([]*models.MediaAsset, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MediaAsset{}), filter)

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

	var rows []*models.MediaAsset
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of media assets matching filter.
func (r *MediaAssetRepositoryImpl) Count(ctx context.Context, filter models.MediaAssetFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MediaAsset{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any media asset matches the filter.
func (r *MediaAssetRepositoryImpl) Exists(ctx context.Context, filter models.MediaAssetFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
