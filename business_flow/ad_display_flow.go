// Package businessflow contains the public display selector for paid ads
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

// AdDisplayFlow serves the public ad rotation. No authentication involved.
type AdDisplayFlow interface {
	ActiveAds(ctx context.Context, limit int) (*dto.ActiveAdsResponse, error)
	ClickAd(ctx context.Context, adID uint, metadata *ClientMetadata) (*dto.ClickAdResponse, error)
}

// AdDisplayFlowImpl implements the public display business flow
type AdDisplayFlowImpl struct {
	adRepo    repository.AdRepository
	auditRepo repository.AuditLogRepository
	db        *gorm.DB
}

// NewAdDisplayFlow creates a new display flow instance
func NewAdDisplayFlow(adRepo repository.AdRepository, auditRepo repository.AuditLogRepository, db *gorm.DB) AdDisplayFlow {
	return &AdDisplayFlowImpl{adRepo: adRepo, auditRepo: auditRepo, db: db}
}

// ActiveAds returns the ads eligible for the public rotation: approved,
// switched on and not yet past their paid window, newest first. An empty
// list is a normal answer.
func (f *AdDisplayFlowImpl) ActiveAds(ctx context.Context, limit int) (*dto.ActiveAdsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	ads, err := f.adRepo.ListDisplayable(ctx, utils.UTCToday(), limit, 0)
	if err != nil {
		return nil, NewBusinessError("ACTIVE_ADS_FAILED", "Failed to load active ads", err)
	}

	items := make([]dto.PublicAdDTO, 0, len(ads))
	for _, ad := range ads {
		items = append(items, ToPublicAdDTO(*ad))
	}

	return &dto.ActiveAdsResponse{
		Message: "Active ads retrieved successfully",
		Ads:     items,
	}, nil
}

// ClickAd bumps the click counter atomically and hands back the destination
// link for the redirect. Only displayable ads accept clicks.
func (f *AdDisplayFlowImpl) ClickAd(ctx context.Context, adID uint, metadata *ClientMetadata) (*dto.ClickAdResponse, error) {
	var link string

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		ad, err := f.adRepo.ByID(txCtx, adID)
		if err != nil {
			return err
		}
		if ad == nil {
			return ErrAdNotFound
		}
		if !ad.IsDisplayable(utils.UTCToday()) {
			return ErrAdNotFound
		}

		if err := f.adRepo.IncrementClicks(txCtx, adID); err != nil {
			return err
		}

		link = ad.Link
		return nil
	})

	if err != nil {
		return nil, NewBusinessError("AD_CLICK_FAILED", "Failed to record click", err)
	}

	msg := fmt.Sprintf("Ad clicked: %d", adID)
	_ = f.logClick(ctx, adID, msg, metadata)

	return &dto.ClickAdResponse{
		Message: "Click recorded",
		Link:    link,
	}, nil
}

func (f *AdDisplayFlowImpl) logClick(ctx context.Context, adID uint, description string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		Action:      models.AuditActionAdClicked,
		Description: &description,
		Success:     utils.ToPtr(true),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	return f.auditRepo.Save(ctx, audit)
}
