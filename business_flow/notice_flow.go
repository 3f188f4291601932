// Package businessflow contains the memorial notice lifecycle
package businessflow

import (
	"context"
	"fmt"
	"time"

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

// NoticeFlow handles submission, browsing and tributes for memorial notices
type NoticeFlow interface {
	SubmitNotice(ctx context.Context, accountID uint, req *dto.SubmitNoticeRequest, metadata *ClientMetadata) (*dto.SubmitNoticeResponse, error)
	ListNotices(ctx context.Context, req *dto.ListNoticesRequest) (*dto.ListNoticesResponse, error)
	GetNotice(ctx context.Context, noticeID uint) (*dto.GetNoticeResponse, error)
	AddTribute(ctx context.Context, noticeID uint, metadata *ClientMetadata) (*dto.TributeResponse, error)
	DeleteNotice(ctx context.Context, accountID, noticeID uint, metadata *ClientMetadata) error
}

// NoticeFlowImpl implements the notice business flow
type NoticeFlowImpl struct {
	noticeRepo  repository.NoticeRepository
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

// NewNoticeFlow creates a new notice flow instance
func NewNoticeFlow(
	noticeRepo repository.NoticeRepository,
	accountRepo repository.AccountRepository,
	mediaRepo repository.MediaAssetRepository,
	paymentRepo repository.PaymentRequestRepository,
	auditRepo repository.AuditLogRepository,
	gateway services.PaymentGateway,
	paymentCfg config.PayFastConfig,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
	db *gorm.DB,
) NoticeFlow {
	return &NoticeFlowImpl{
		noticeRepo:  noticeRepo,
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

// SubmitNotice persists a typed notice draft and opens a checkout. The
// notice stays invisible until the flat placement fee clears.
func (f *NoticeFlowImpl) SubmitNotice(ctx context.Context, accountID uint, req *dto.SubmitNoticeRequest, metadata *ClientMetadata) (*dto.SubmitNoticeResponse, error) {
	account, err := f.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	if account == nil {
		return nil, NewBusinessError("NOTICE_SUBMISSION_FAILED", "Notice submission failed", ErrAccountNotFound)
	}
	if !utils.IsTrue(account.IsActive) {
		return nil, NewBusinessError("NOTICE_SUBMISSION_FAILED", "Notice submission failed", ErrAccountInactive)
	}

	notice, err := f.noticeFromDraft(ctx, accountID, req)
	if err != nil {
		return nil, NewBusinessError("NOTICE_VALIDATION_FAILED", "Notice validation failed", err)
	}

	var paymentReq *models.PaymentRequest

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.noticeRepo.Save(txCtx, notice); err != nil {
			return err
		}

		paymentReq = &models.PaymentRequest{
			UUID:          uuid.New(),
			CorrelationID: uuid.New(),
			AccountID:     accountID,
			Kind:          models.PaymentRequestKindNotice,
			NoticeID:      &notice.ID,
			Amount:        utils.NoticePlacementPrice,
			Currency:      utils.USDCurrency,
			Description:   fmt.Sprintf("%s placement: %s", notice.NoticeType.DisplayName(), notice.FullName()),
			InvoiceNumber: fmt.Sprintf("NT-%s", uuid.New().String()),
			RedirectURL:   f.paymentCfg.ReturnURL,
			Status:        models.PaymentRequestStatusCreated,
			ExpiresAt:     utils.UTCNowAddPtr(utils.PaymentRequestTTL),
		}
		if err := f.paymentRepo.Save(txCtx, paymentReq); err != nil {
			return err
		}

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

		notice.ReferenceNumber = &checkout.ReferenceNumber
		return f.noticeRepo.Update(txCtx, notice)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Notice submission failed: %s", err.Error())
		_ = f.createAuditLog(ctx, &accountID, models.AuditActionNoticeSubmitted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("NOTICE_SUBMISSION_FAILED", "Notice submission failed", err)
	}

	msg := fmt.Sprintf("Notice submitted successfully: %d", notice.ID)
	_ = f.createAuditLog(ctx, &accountID, models.AuditActionNoticeSubmitted, msg, true, nil, metadata)
	payMsg := fmt.Sprintf("Payment initiated for notice %d: %s", notice.ID, paymentReq.ReferenceNumber)
	_ = f.createAuditLog(ctx, &accountID, models.AuditActionPaymentInitiated, payMsg, true, nil, metadata)

	if metadata != nil && metadata.SessionID != "" {
		storePendingReference(ctx, f.rc, f.cacheConfig, metadata.SessionID, paymentReq.ReferenceNumber)
	}

	payment := ToPaymentInitiationDTO(*paymentReq)
	return &dto.SubmitNoticeResponse{
		Message: "Notice submitted successfully. Complete the payment to publish it.",
		Notice:  ToNoticeDetailDTO(*notice),
		Payment: &payment,
	}, nil
}

// ListNotices returns published notices, newest first, optionally narrowed
// by type or a name/location search
func (f *NoticeFlowImpl) ListNotices(ctx context.Context, req *dto.ListNoticesRequest) (*dto.ListNoticesResponse, error) {
	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_NOTICES_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter := models.NoticeFilter{
		Active: utils.ToPtr(true),
		Paid:   utils.ToPtr(true),
	}
	if req.NoticeType != nil {
		noticeType := models.NoticeType(*req.NoticeType)
		filter.NoticeType = &noticeType
	}
	if req.Search != nil && *req.Search != "" {
		filter.NamePattern = req.Search
	}

	total, err := f.noticeRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_NOTICES_FAILED", "Failed to list notices", err)
	}

	notices, err := f.noticeRepo.ByFilter(ctx, filter, "id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_NOTICES_FAILED", "Failed to list notices", err)
	}

	items := make([]dto.NoticeDTO, 0, len(notices))
	for _, notice := range notices {
		items = append(items, ToNoticeDTO(*notice))
	}

	return &dto.ListNoticesResponse{
		Message:    "Notices retrieved successfully",
		Notices:    items,
		Pagination: buildPagination(page, pageSize, total),
	}, nil
}

// GetNotice returns one published notice in full
func (f *NoticeFlowImpl) GetNotice(ctx context.Context, noticeID uint) (*dto.GetNoticeResponse, error) {
	notice, err := f.noticeRepo.ByID(ctx, noticeID)
	if err != nil {
		return nil, NewBusinessError("GET_NOTICE_FAILED", "Failed to load notice", err)
	}
	if notice == nil || !utils.IsTrue(notice.Active) || !utils.IsTrue(notice.Paid) {
		return nil, NewBusinessError("GET_NOTICE_FAILED", "Failed to load notice", ErrNoticeNotFound)
	}

	return &dto.GetNoticeResponse{
		Message: "Notice retrieved successfully",
		Notice:  ToNoticeDetailDTO(*notice),
	}, nil
}

// AddTribute bumps the tribute counter atomically, like ad clicks
func (f *NoticeFlowImpl) AddTribute(ctx context.Context, noticeID uint, metadata *ClientMetadata) (*dto.TributeResponse, error) {
	var tributes uint64

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		notice, err := f.noticeRepo.ByID(txCtx, noticeID)
		if err != nil {
			return err
		}
		if notice == nil || !utils.IsTrue(notice.Active) || !utils.IsTrue(notice.Paid) {
			return ErrNoticeNotFound
		}

		if err := f.noticeRepo.IncrementTributes(txCtx, noticeID); err != nil {
			return err
		}

		tributes = notice.Tributes + 1
		return nil
	})

	if err != nil {
		return nil, NewBusinessError("TRIBUTE_FAILED", "Failed to record tribute", err)
	}

	return &dto.TributeResponse{
		Message:  "Tribute recorded",
		Tributes: tributes,
	}, nil
}

// DeleteNotice removes the owner's notice permanently
func (f *NoticeFlowImpl) DeleteNotice(ctx context.Context, accountID, noticeID uint, metadata *ClientMetadata) error {
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		notice, err := f.noticeRepo.ByID(txCtx, noticeID)
		if err != nil {
			return err
		}
		if notice == nil {
			return ErrNoticeNotFound
		}
		if notice.AccountID != accountID {
			return ErrNoticeAccessDenied
		}

		return f.noticeRepo.DeleteHard(txCtx, noticeID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Notice deletion failed: %s", err.Error())
		_ = f.createAuditLog(ctx, &accountID, models.AuditActionNoticeDeleted, errMsg, false, &errMsg, metadata)

		return NewBusinessError("NOTICE_DELETION_FAILED", "Notice deletion failed", err)
	}

	msg := fmt.Sprintf("Notice %d deleted by account %d", noticeID, accountID)
	_ = f.createAuditLog(ctx, &accountID, models.AuditActionNoticeDeleted, msg, true, nil, metadata)

	return nil
}

// Private helper methods

// noticeFromDraft folds the discriminated union into the storage model.
// Exactly the draft matching the declared type must be present.
func (f *NoticeFlowImpl) noticeFromDraft(ctx context.Context, accountID uint, req *dto.SubmitNoticeRequest) (*models.Notice, error) {
	noticeType := models.NoticeType(req.NoticeType)
	if !noticeType.Valid() {
		return nil, ErrInvalidNoticeType
	}

	var subject dto.NoticeSubjectDraft
	notice := &models.Notice{
		AccountID:  accountID,
		NoticeType: noticeType,
		Active:     utils.ToPtr(false),
		Paid:       utils.ToPtr(false),
	}

	switch noticeType {
	case models.NoticeTypeDeath:
		if req.DeathNotice == nil {
			return nil, ErrNoticeDraftMissing
		}
		draft := req.DeathNotice
		subject = draft.Subject
		notice.Obituary = &draft.Obituary
		eventDate, err := parseEventDate(draft.EventDate)
		if err != nil {
			return nil, err
		}
		notice.EventDate = eventDate
		notice.EventDetails = draft.EventDetails
	case models.NoticeTypeMemorial:
		if req.MemorialService == nil {
			return nil, ErrNoticeDraftMissing
		}
		draft := req.MemorialService
		subject = draft.Subject
		eventDate, err := parseEventDate(draft.EventDate)
		if err != nil {
			return nil, err
		}
		notice.EventDate = eventDate
		notice.EventDetails = draft.EventDetails
		notice.Announcement = draft.Announcement
	case models.NoticeTypeUnveiling:
		if req.TombstoneUnveiling == nil {
			return nil, ErrNoticeDraftMissing
		}
		draft := req.TombstoneUnveiling
		subject = draft.Subject
		eventDate, err := parseEventDate(draft.EventDate)
		if err != nil {
			return nil, err
		}
		notice.EventDate = eventDate
		notice.EventDetails = draft.EventDetails
		notice.Announcement = draft.Announcement
	}

	notice.FirstName = subject.FirstName
	notice.MiddleName = subject.MiddleName
	notice.MaidenName = subject.MaidenName
	notice.Nickname = subject.Nickname
	notice.LastName = subject.LastName
	notice.Location = subject.Location
	notice.Relationship = subject.Relationship

	dob, err := parseDateField(subject.DOB)
	if err != nil {
		return nil, err
	}
	notice.DOB = dob

	if subject.DOP != nil {
		dop, err := parseDateField(*subject.DOP)
		if err != nil {
			return nil, err
		}
		notice.DOP = &dop
	}

	if subject.PhotoID != nil {
		asset, err := f.mediaRepo.ByUUID(ctx, *subject.PhotoID)
		if err != nil {
			return nil, err
		}
		if asset == nil {
			return nil, ErrPhotoNotFound
		}
		if asset.AccountID != accountID {
			return nil, ErrPhotoAccessDenied
		}
		notice.PhotoID = subject.PhotoID
	}

	return notice, nil
}

func parseDateField(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func parseEventDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrEventDateRequired
	}
	return parseDateField(value)
}

func (f *NoticeFlowImpl) createAuditLog(ctx context.Context, accountID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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
