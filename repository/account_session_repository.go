// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/models"
)

// AccountSessionRepositoryImpl implements AccountSessionRepository interface
type AccountSessionRepositoryImpl struct {
	*BaseRepository[models.AccountSession, models.AccountSessionFilter]
}

// NewAccountSessionRepository creates a new account session repository
func NewAccountSessionRepository(db *gorm.DB) AccountSessionRepository {
	return &AccountSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AccountSession, models.AccountSessionFilter](db),
	}
}

// BySessionToken retrieves a session by session token
func (r *AccountSessionRepositoryImpl) BySessionToken(ctx context.Context, token string) (*models.AccountSession, error) {
	db := r.getDB(ctx)

	var session models.AccountSession
	err := db.Where("session_token = ? AND is_active = ? AND expires_at > ?",
		token, true, time.Now()).
		Preload("Account").
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by token: %w", err)
	}

	return &session, nil
}

// ByRefreshToken retrieves a session by refresh token
func (r *AccountSessionRepositoryImpl) ByRefreshToken(ctx context.Context, token string) (*models.AccountSession, error) {
	db := r.getDB(ctx)

	var session models.AccountSession
	err := db.Where("refresh_token = ? AND is_active = ? AND expires_at > ?",
		token, true, time.Now()).
		Preload("Account").
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by refresh token: %w", err)
	}

	return &session, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *AccountSessionRepositoryImpl) applyFilter(query *gorm.DB, filter models.AccountSessionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CorrelationID != nil {
		query = query.Where("correlation_id = ?", *filter.CorrelationID)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IPAddress != nil {
		query = query.Where("ip_address = ?", *filter.IPAddress)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.ExpiresAfter != nil {
		query = query.Where("expires_at > ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		query = query.Where("expires_at < ?", *filter.ExpiresBefore)
	}
	if filter.IsExpired != nil {
		if *filter.IsExpired {
			query = query.Where("expires_at <= ?", time.Now())
		} else {
			query = query.Where("expires_at > ?", time.Now())
		}
	}
	return query
}

// ByFilter retrieves sessions based on filter criteria
func (r *AccountSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.AccountSessionFilter, orderBy string, limit, offset int) ([]*models.AccountSession, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.AccountSession{}), filter)

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

	var sessions []*models.AccountSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to find sessions by filter: %w", err)
	}
	return sessions, nil
}

// Count returns the number of sessions matching the filter
func (r *AccountSessionRepositoryImpl) Count(ctx context.Context, filter models.AccountSessionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.AccountSession{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Exists checks if any session matches the filter
func (r *AccountSessionRepositoryImpl) Exists(ctx context.Context, filter models.AccountSessionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListActiveSessionsByAccount retrieves all active sessions for an account
func (r *AccountSessionRepositoryImpl) ListActiveSessionsByAccount(ctx context.Context, accountID uint) ([]*models.AccountSession, error) {
	isActive := true
	isExpired := false
	filter := models.AccountSessionFilter{
		AccountID: &accountID,
		IsActive:  &isActive,
		IsExpired: &isExpired,
	}

	sessions, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions by account: %w", err)
	}
	return sessions, nil
}

// ExpireSession deactivates a session in place
func (r *AccountSessionRepositoryImpl) ExpireSession(ctx context.Context, sessionID uint) error {
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

	now := time.Now()
	err = db.Model(&models.AccountSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{"is_active": false, "expires_at": now, "last_accessed_at": now}).Error
	if err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}
	return nil
}

// ExpireAllAccountSessions deactivates every active session for an account
func (r *AccountSessionRepositoryImpl) ExpireAllAccountSessions(ctx context.Context, accountID uint) error {
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

	now := time.Now()
	err = db.Model(&models.AccountSession{}).
		Where("account_id = ? AND is_active = ?", accountID, true).
		Updates(map[string]any{"is_active": false, "expires_at": now, "last_accessed_at": now}).Error
	if err != nil {
		return fmt.Errorf("failed to expire account sessions: %w", err)
	}
	return nil
}

// CleanupExpiredSessions deactivates sessions that passed their expiry
func (r *AccountSessionRepositoryImpl) CleanupExpiredSessions(ctx context.Context) error {
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

	err = db.Model(&models.AccountSession{}).
		Where("is_active = ? AND expires_at <= ?", true, time.Now()).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	return nil
}
