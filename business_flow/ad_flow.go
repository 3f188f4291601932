// Package businessflow contains the core business logic for paid ad placement
package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/services"
	"github.com/mzwakhe/izaziso/config"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	"github.com/mzwakhe/izaziso/utils"
)

// AdFlow handles ad placement submission and the owner's view of their ads
type AdFlow interface {
	SubmitAd(ctx context.Context, accountID uint, req *dto.SubmitAdRequest, metadata *ClientMetadata) (*dto.SubmitAdResponse, error)
	ResubmitAd(ctx context.Context, accountID, adID uint, req *dto.ResubmitAdRequest, metadata *ClientMetadata) (*dto.ResubmitAdResponse, error)
	ListMyAds(ctx context.Context, accountID uint, page, pageSize int) (*dto.ListMyAdsResponse, error)
}

// AdFlowImpl implements the ad placement business flow
type AdFlowImpl struct {
	adRepo      repository.AdRepository
	accountRepo repository.AccountRepository
	mediaRepo   repository.MediaAssetRepository
	paymentRepo repository.PaymentRequestRepository
	auditRepo   repository.AuditLogRepository
	gateway     services.PaymentGateway
	paymentCfg  config.PayFastConfig
	cacheConfig *config.CacheConfig
	rc          *redis.Client
	db          *gorm.DB
}

// NewAdFlow creates a new ad flow instance
func NewAdFlow(
	adRepo repository.AdRepository,
	accountRepo repository.AccountRepository,
	mediaRepo repository.MediaAssetRepository,
	paymentRepo repository.PaymentRequestRepository,
	auditRepo repository.AuditLogRepository,
	gateway services.PaymentGateway,
	paymentCfg config.PayFastConfig,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
	db *gorm.DB,
) AdFlow {
	return &AdFlowImpl{
		adRepo:      adRepo,
		accountRepo: accountRepo,
		mediaRepo:   mediaRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		gateway:     gateway,
		paymentCfg:  paymentCfg,
		cacheConfig: cacheConfig,
		rc:          rc,
		db:          db,
	}
}

// SubmitAd persists a new placement and opens a checkout with the gateway.
// The ad starts out pending, unpaid and inactive; nothing is half-committed
// when the gateway refuses the checkout.
func (f *AdFlowImpl) SubmitAd(ctx context.Context, accountID uint, req *dto.SubmitAdRequest, metadata *ClientMetadata) (*dto.SubmitAdResponse, error) {
	account, err := f.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if account == nil {
		return nil, NewBusinessError("AD_SUBMISSION_FAILED", "Ad submission failed", ErrAccountNotFound)
	}

	// Validate business rules
	if err := f.validateSubmitAdRequest(ctx, account, req); err != nil {
		return nil, NewBusinessError("AD_VALIDATION_FAILED", "Ad validation failed", err)
	}

	tier := models.AdTier(req.Tier)

	var ad *models.Ad
	var paymentReq *models.PaymentRequest

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		ad, err = f.createAd(txCtx, account, req, tier)
		if err != nil {
			return err
		}

		paymentReq, err = f.createPaymentRequest(txCtx, account, ad, tier)
		if err != nil {
			return err
		}

		// Open the checkout while still inside the transaction so a gateway
		// refusal rolls back the ad and the payment request together.
		checkout, err := f.gateway.CreateCheckout(txCtx, services.CheckoutInput{
			Amount:        paymentReq.Amount,
			Currency:      paymentReq.Currency,
			InvoiceNumber: paymentReq.InvoiceNumber,
			Description:   paymentReq.Description,
			ReturnURL:     f.paymentCfg.ReturnURL,
			CancelURL:     f.paymentCfg.CancelURL,
			NotifyURL:     f.paymentCfg.NotifyURL,
			BuyerEmail:    account.Email,
		})
		if err != nil {
			return err
		}

		paymentReq.ReferenceNumber = checkout.ReferenceNumber
		paymentReq.PaymentURL = checkout.PaymentURL
		paymentReq.Status = models.PaymentRequestStatusPending
		if checkout.ExpiresAt != nil {
			paymentReq.ExpiresAt = checkout.ExpiresAt
		}
		if err := f.paymentRepo.Update(txCtx, paymentReq); err != nil {
			return err
		}

		ad.ReferenceNumber = &checkout.ReferenceNumber
		return f.adRepo.Update(txCtx, ad)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Ad submission failed: %s", err.Error())
		_ = f.createAuditLog(ctx, &accountID, models.AuditActionAdSubmitted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("AD_SUBMISSION_FAILED", "Ad submission failed", err)
	}

	msg := fmt.Sprintf("Ad submitted successfully: %d", ad.ID)
	_ = f.createAuditLog(ctx, &accountID, models.AuditActionAdSubmitted, msg, true, nil, metadata)
	payMsg := fmt.Sprintf("Payment initiated for ad %d: %s", ad.ID, paymentReq.ReferenceNumber)
	_ = f.createAuditLog(ctx, &accountID, models.AuditActionPaymentInitiated, payMsg, true, nil, metadata)

	// Remember the open checkout server-side, scoped to this session, so the
	// client can recover the reference without carrying it across tabs.
	if metadata != nil && metadata.SessionID != "" {
		storePendingReference(ctx, f.rc, f.cacheConfig, metadata.SessionID, paymentReq.ReferenceNumber)
	}

	payment := ToPaymentInitiationDTO(*paymentReq)
	return &dto.SubmitAdResponse{
		Message: "Ad submitted successfully. Complete the payment to queue it for review.",
		Ad:      ToAdDTO(*ad),
		Payment: &payment,
	}, nil
}

// ResubmitAd lets the owner edit and resubmit a rejected ad. The ad returns
// to the review queue with its rejection reason cleared; the original paid
// window is preserved and no new payment is opened.
func (f *AdFlowImpl) ResubmitAd(ctx context.Context, accountID, adID uint, req *dto.ResubmitAdRequest, metadata *ClientMetadata) (*dto.ResubmitAdResponse, error) {
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
		if ad.AccountID != accountID {
			return ErrAdAccessDenied
		}
		if !ad.IsResubmittable() {
			return ErrAdNotResubmittable
		}

		if req.PhotoID != ad.PhotoID {
			if err := f.validatePhoto(txCtx, accountID, req.PhotoID); err != nil {
				return err
			}
		}

		ad.Name = req.Name
		ad.Text = req.Text
		ad.Link = req.Link
		ad.PhotoID = req.PhotoID
		ad.Status = models.AdStatusPending
		ad.RejectionReason = nil
		ad.Active = utils.ToPtr(false)
		// Expires stays untouched: the owner already paid for the window.

		return f.adRepo.Update(txCtx, ad)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Ad resubmission failed: %s", err.Error())
		_ = f.createAuditLog(ctx, &accountID, models.AuditActionAdResubmitted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("AD_RESUBMISSION_FAILED", "Ad resubmission failed", err)
	}

	msg := fmt.Sprintf("Ad resubmitted successfully: %d", ad.ID)
	_ = f.createAuditLog(ctx, &accountID, models.AuditActionAdResubmitted, msg, true, nil, metadata)

	return &dto.ResubmitAdResponse{
		Message: "Ad resubmitted successfully. It is back in the review queue.",
		Ad:      ToAdDTO(*ad),
	}, nil
}

// ListMyAds returns the owner's ads, newest first
func (f *AdFlowImpl) ListMyAds(ctx context.Context, accountID uint, page, pageSize int) (*dto.ListMyAdsResponse, error) {
	page, pageSize, err := normalizePagination(page, pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_ADS_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter := models.AdFilter{AccountID: &accountID}

	total, err := f.adRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_ADS_FAILED", "Failed to list ads", err)
	}

	ads, err := f.adRepo.ByFilter(ctx, filter, "id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_ADS_FAILED", "Failed to list ads", err)
	}

	items := make([]dto.AdDTO, 0, len(ads))
	for _, ad := range ads {
		items = append(items, ToAdDTO(*ad))
	}

	return &dto.ListMyAdsResponse{
		Message:    "Ads retrieved successfully",
		Ads:        items,
		Pagination: buildPagination(page, pageSize, total),
	}, nil
}

// Private helper methods

func (f *AdFlowImpl) validateSubmitAdRequest(ctx context.Context, account *models.Account, req *dto.SubmitAdRequest) error {
	if !utils.IsTrue(account.IsActive) {
		return ErrAccountInactive
	}

	// Only organization accounts may purchase placement
	if !account.IsOrganization() {
		return ErrNotOrganization
	}

	if !models.AdTier(req.Tier).Valid() {
		return ErrInvalidTier
	}

	return f.validatePhoto(ctx, account.ID, req.PhotoID)
}

func (f *AdFlowImpl) validatePhoto(ctx context.Context, accountID uint, photoID string) error {
	asset, err := f.mediaRepo.ByUUID(ctx, photoID)
	if err != nil {
		return err
	}
	if asset == nil {
		return ErrPhotoNotFound
	}
	if asset.AccountID != accountID {
		return ErrPhotoAccessDenied
	}
	return nil
}

func (f *AdFlowImpl) createAd(ctx context.Context, account *models.Account, req *dto.SubmitAdRequest, tier models.AdTier) (*models.Ad, error) {
	ad := &models.Ad{
		AccountID: account.ID,
		Name:      req.Name,
		Text:      req.Text,
		Link:      req.Link,
		PhotoID:   req.PhotoID,
		Tier:      tier,
		Total:     tier.Price(),
		Currency:  utils.USDCurrency,
		Status:    models.AdStatusPending,
		Active:    utils.ToPtr(false),
		Paid:      utils.ToPtr(false),
		Expires:   utils.UTCToday().AddDate(0, 0, int(tier)),
	}

	if err := f.adRepo.Save(ctx, ad); err != nil {
		return nil, err
	}

	return ad, nil
}

func (f *AdFlowImpl) createPaymentRequest(ctx context.Context, account *models.Account, ad *models.Ad, tier models.AdTier) (*models.PaymentRequest, error) {
	paymentReq := &models.PaymentRequest{
		UUID:          uuid.New(),
		CorrelationID: uuid.New(),
		AccountID:     account.ID,
		Kind:          models.PaymentRequestKindAd,
		AdID:          &ad.ID,
		Amount:        tier.Price(),
		Currency:      utils.USDCurrency,
		Description:   fmt.Sprintf("%d-day ad placement: %s", int(tier), ad.Name),
		InvoiceNumber: fmt.Sprintf("AD-%s", uuid.New().String()),
		RedirectURL:   f.paymentCfg.ReturnURL,
		Status:        models.PaymentRequestStatusCreated,
		ExpiresAt:     utils.UTCNowAddPtr(utils.PaymentRequestTTL),
	}

	if err := f.paymentRepo.Save(ctx, paymentReq); err != nil {
		return nil, err
	}

	return paymentReq, nil
}

func (f *AdFlowImpl) createAuditLog(ctx context.Context, accountID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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

func normalizePagination(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}

func buildPagination(page, pageSize int, total int64) dto.PaginationDTO {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return dto.PaginationDTO{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
