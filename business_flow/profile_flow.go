package businessflow

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	"github.com/mzwakhe/izaziso/utils"
)

// ProfileFlow exposes the authenticated account's own profile
type ProfileFlow interface {
	GetProfile(ctx context.Context, accountID uint) (*dto.GetProfileResponse, error)
	UpdateProfile(ctx context.Context, accountID uint, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UpdateProfileResponse, error)
}

type ProfileFlowImpl struct {
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

func NewProfileFlow(accountRepo repository.AccountRepository, auditRepo repository.AuditLogRepository, db *gorm.DB) ProfileFlow {
	return &ProfileFlowImpl{accountRepo: accountRepo, auditRepo: auditRepo, db: db}
}

func (f *ProfileFlowImpl) GetProfile(ctx context.Context, accountID uint) (*dto.GetProfileResponse, error) {
	account, err := f.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to load profile", err)
	}
	if account == nil {
		return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to load profile", ErrAccountNotFound)
	}

	return &dto.GetProfileResponse{
		Message: "Profile retrieved successfully",
		Account: ToProfileDTO(*account),
	}, nil
}

func (f *ProfileFlowImpl) UpdateProfile(ctx context.Context, accountID uint, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UpdateProfileResponse, error) {
	var account *models.Account

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		account, err = f.accountRepo.ByID(txCtx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		if req.FirstName != nil {
			account.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			account.LastName = *req.LastName
		}
		if req.ContactNumber != nil {
			account.ContactNumber = *req.ContactNumber
		}
		if req.OrganizationName != nil {
			if !account.IsOrganization() {
				return ErrNotOrganization
			}
			account.OrganizationName = req.OrganizationName
		}
		account.UpdatedAt = utils.UTCNow()

		return f.accountRepo.Update(txCtx, account)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Profile update failed: %s", err.Error())
		_ = f.logProfileEvent(ctx, accountID, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("UPDATE_PROFILE_FAILED", "Profile update failed", err)
	}

	msg := fmt.Sprintf("Profile updated successfully: %d", accountID)
	_ = f.logProfileEvent(ctx, accountID, msg, true, nil, metadata)

	return &dto.UpdateProfileResponse{
		Message: "Profile updated successfully",
		Account: ToProfileDTO(*account),
	}, nil
}

func (f *ProfileFlowImpl) logProfileEvent(ctx context.Context, accountID uint, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    &accountID,
		Action:       models.AuditActionProfileUpdated,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	return f.auditRepo.Save(ctx, audit)
}
