// Package businessflow contains the moderation queue for paid ad placement
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	"github.com/mzwakhe/izaziso/utils"
)

// AdAdminFlow handles the admin moderation queue
type AdAdminFlow interface {
	ListAds(ctx context.Context, req *dto.AdminListAdsRequest) (*dto.AdminListAdsResponse, error)
	ReviewAd(ctx context.Context, adminID, adID uint, req *dto.AdminReviewAdRequest, metadata *ClientMetadata) (*dto.AdminReviewAdResponse, error)
	DeleteAd(ctx context.Context, adminID, adID uint, metadata *ClientMetadata) (*dto.AdminDeleteAdResponse, error)
	ExportAds(ctx context.Context, req *dto.AdminListAdsRequest) ([]byte, string, error)
}

// AdAdminFlowImpl implements the moderation business flow
type AdAdminFlowImpl struct {
	adRepo      repository.AdRepository
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewAdAdminFlow creates a new moderation flow instance
func NewAdAdminFlow(
	adRepo repository.AdRepository,
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) AdAdminFlow {
	return &AdAdminFlowImpl{
		adRepo:      adRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// ListAds returns the moderation queue across all owners, newest first,
// optionally narrowed to one status
func (f *AdAdminFlowImpl) ListAds(ctx context.Context, req *dto.AdminListAdsRequest) (*dto.AdminListAdsResponse, error) {
	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LIST_ADS_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter := models.AdFilter{}
	if req.Status != nil {
		status := models.AdStatus(*req.Status)
		filter.Status = &status
	}

	total, err := f.adRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LIST_ADS_FAILED", "Failed to list ads", err)
	}

	ads, err := f.adRepo.ByFilter(ctx, filter, "id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LIST_ADS_FAILED", "Failed to list ads", err)
	}

	items := make([]dto.AdminAdDTO, 0, len(ads))
	for _, ad := range ads {
		items = append(items, f.toAdminAdDTO(ctx, ad))
	}

	return &dto.AdminListAdsResponse{
		Message:    "Ads retrieved successfully",
		Ads:        items,
		Pagination: buildPagination(page, pageSize, total),
	}, nil
}

// ReviewAd applies a moderation decision. The caller's version token must
// match the stored row; a stale token means another admin got there first.
func (f *AdAdminFlowImpl) ReviewAd(ctx context.Context, adminID, adID uint, req *dto.AdminReviewAdRequest, metadata *ClientMetadata) (*dto.AdminReviewAdResponse, error) {
	status := models.AdStatus(req.Status)
	if !status.Valid() {
		return nil, NewBusinessError("AD_REVIEW_VALIDATION_FAILED", "Ad review validation failed", ErrInvalidAdStatus)
	}

	var ad *models.Ad

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		ad, err = f.adRepo.ByID(txCtx, adID)
		if err != nil {
			return err
		}
		if ad == nil {
			return ErrAdNotFound
		}

		switch status {
		case models.AdStatusRejected:
			if req.RejectionReason == nil || *req.RejectionReason == "" {
				return ErrRejectionReasonRequired
			}
			ad.Status = models.AdStatusRejected
			ad.RejectionReason = req.RejectionReason
			ad.Active = utils.ToPtr(false)
		case models.AdStatusApproved:
			ad.Status = models.AdStatusApproved
			ad.RejectionReason = nil
			ad.Active = utils.ToPtr(req.Active)
		case models.AdStatusPending:
			ad.Status = models.AdStatusPending
			ad.RejectionReason = nil
			ad.Active = utils.ToPtr(false)
		}

		if err := f.adRepo.UpdateReviewed(txCtx, ad, req.Version); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return ErrReviewConflict
			}
			return err
		}

		return nil
	})

	action := models.AuditActionAdApproved
	if status == models.AdStatusRejected {
		action = models.AuditActionAdRejected
	}

	if err != nil {
		errMsg := fmt.Sprintf("Ad review failed: %s", err.Error())
		_ = f.createAuditLog(ctx, &adminID, action, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("AD_REVIEW_FAILED", "Ad review failed", err)
	}

	msg := fmt.Sprintf("Ad %d reviewed by admin %d: %s", adID, adminID, status)
	_ = f.createAuditLog(ctx, &adminID, action, msg, true, nil, metadata)

	return &dto.AdminReviewAdResponse{
		Message: fmt.Sprintf("Ad %s", status),
		Ad:      ToAdDTO(*ad),
	}, nil
}

// DeleteAd removes the ad permanently. There is no undo.
func (f *AdAdminFlowImpl) DeleteAd(ctx context.Context, adminID, adID uint, metadata *ClientMetadata) (*dto.AdminDeleteAdResponse, error) {
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		ad, err := f.adRepo.ByID(txCtx, adID)
		if err != nil {
			return err
		}
		if ad == nil {
			return ErrAdNotFound
		}

		return f.adRepo.DeleteHard(txCtx, adID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Ad deletion failed: %s", err.Error())
		_ = f.createAuditLog(ctx, &adminID, models.AuditActionAdDeleted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("AD_DELETION_FAILED", "Ad deletion failed", err)
	}

	msg := fmt.Sprintf("Ad %d deleted by admin %d", adID, adminID)
	_ = f.createAuditLog(ctx, &adminID, models.AuditActionAdDeleted, msg, true, nil, metadata)

	return &dto.AdminDeleteAdResponse{
		Message: "Ad deleted",
		ID:      adID,
	}, nil
}

// ExportAds writes the moderation queue to an xlsx workbook
func (f *AdAdminFlowImpl) ExportAds(ctx context.Context, req *dto.AdminListAdsRequest) ([]byte, string, error) {
	filter := models.AdFilter{}
	if req.Status != nil {
		status := models.AdStatus(*req.Status)
		filter.Status = &status
	}

	ads, err := f.adRepo.ByFilter(ctx, filter, "id DESC", 0, 0)
	if err != nil {
		return nil, "", NewBusinessError("ADMIN_EXPORT_ADS_FAILED", "Failed to export ads", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "ads"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "account_id", "name", "text", "link", "tier", "total", "currency", "status", "active", "rejection_reason", "expires", "clicks", "paid", "reference_number", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, ad := range ads {
		reason := ""
		if ad.RejectionReason != nil {
			reason = *ad.RejectionReason
		}
		reference := ""
		if ad.ReferenceNumber != nil {
			reference = *ad.ReferenceNumber
		}
		row := []any{
			strconv.FormatUint(uint64(ad.ID), 10),
			strconv.FormatUint(uint64(ad.AccountID), 10),
			ad.Name,
			ad.Text,
			ad.Link,
			int(ad.Tier),
			ad.Total,
			ad.Currency,
			ad.Status.String(),
			utils.IsTrue(ad.Active),
			reason,
			ad.Expires.Format("2006-01-02"),
			ad.Clicks,
			utils.IsTrue(ad.Paid),
			reference,
			ad.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &row)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, "", NewBusinessError("ADMIN_EXPORT_ADS_FAILED", "Failed to export ads", err)
	}

	filename := fmt.Sprintf("ads_export_%s.xlsx", utils.UTCNow().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

// Private helper methods

func (f *AdAdminFlowImpl) toAdminAdDTO(ctx context.Context, ad *models.Ad) dto.AdminAdDTO {
	item := dto.AdminAdDTO{
		AdDTO:     ToAdDTO(*ad),
		AccountID: ad.AccountID,
	}

	account, err := f.accountRepo.ByID(ctx, ad.AccountID)
	if err == nil && account != nil {
		item.SubmitterName = account.FirstName + " " + account.LastName
		item.SubmitterEmail = account.Email
		item.OrganizationName = account.OrganizationName
	}

	return item
}

func (f *AdAdminFlowImpl) createAuditLog(ctx context.Context, accountID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    accountID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return f.auditRepo.Save(ctx, audit)
}
