// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/models"
)

// AccountRepositoryImpl implements AccountRepository interface
type AccountRepositoryImpl struct {
	*BaseRepository[models.Account, models.AccountFilter]
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Account, models.AccountFilter](db),
	}
}

// ByEmail retrieves an account by email address
func (r *AccountRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.Account, error) {
	accounts, err := r.ByFilter(ctx, models.AccountFilter{Email: &email}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return accounts[0], nil
}

// ByUUID retrieves an account by UUID
func (r *AccountRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Account, error) {
	db := r.getDB(ctx)

	var account models.Account
	err := db.Where("uuid = ?", uuidStr).Last(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account by uuid: %w", err)
	}
	return &account, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *AccountRepositoryImpl) applyFilter(query *gorm.DB, filter models.AccountFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.Organization != nil {
		query = query.Where("organization = ?", *filter.Organization)
	}
	if filter.IsAdmin != nil {
		query = query.Where("is_admin = ?", *filter.IsAdmin)
	}
	if filter.IsEmailVerified != nil {
		query = query.Where("is_email_verified = ?", *filter.IsEmailVerified)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves accounts based on filter criteria
func (r *AccountRepositoryImpl) ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Account{}), filter)

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

	var accounts []*models.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to find accounts by filter: %w", err)
	}
	return accounts, nil
}

// Count returns the number of accounts matching the filter
func (r *AccountRepositoryImpl) Count(ctx context.Context, filter models.AccountFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Account{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// Exists checks if any account matches the filter
func (r *AccountRepositoryImpl) Exists(ctx context.Context, filter models.AccountFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateVerificationStatus updates email verification fields for an account
func (r *AccountRepositoryImpl) UpdateVerificationStatus(ctx context.Context, accountID uint, isEmailVerified *bool, emailVerifiedAt *time.Time) error {
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

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if isEmailVerified != nil {
		updates["is_email_verified"] = *isEmailVerified
	}
	if emailVerifiedAt != nil {
		updates["email_verified_at"] = *emailVerifiedAt
	}

	err = db.Model(&models.Account{}).Where("id = ?", accountID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update verification status: %w", err)
	}
	return nil
}

// UpdateLastLogin records the most recent successful login
func (r *AccountRepositoryImpl) UpdateLastLogin(ctx context.Context, accountID uint, at time.Time) error {
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

	err = db.Model(&models.Account{}).Where("id = ?", accountID).
		Updates(map[string]any{"last_login_at": at, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// Update persists in-place changes to an account row
func (r *AccountRepositoryImpl) Update(ctx context.Context, account *models.Account) error {
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

	err = db.Save(account).Error
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *AccountRepositoryImpl) UpdatePassword(ctx context.Context, accountID uint, passwordHash string) error {
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

	err = db.Model(&models.Account{}).Where("id = ?", accountID).
		Updates(map[string]any{"password_hash": passwordHash, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
