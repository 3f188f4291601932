// Package businessflow contains the payment lifecycle for ad and notice placement
package businessflow

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/services"
	"github.com/mzwakhe/izaziso/config"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	"github.com/mzwakhe/izaziso/utils"
)

// PaymentFlow handles on-demand payment status checks and gateway
// notifications. Status is polled when the caller asks; there is no
// background retry loop.
type PaymentFlow interface {
	CheckAdPaymentStatus(ctx context.Context, accountID uint, reference string, metadata *ClientMetadata) (*dto.CheckPaymentStatusResponse, error)
	CheckNoticePaymentStatus(ctx context.Context, accountID uint, reference string, metadata *ClientMetadata) (*dto.CheckPaymentStatusResponse, error)
	PendingReference(ctx context.Context, sessionID string) (*dto.PendingReferenceResponse, error)
	HandleNotification(ctx context.Context, req *dto.PaymentNotificationRequest, metadata *ClientMetadata) error
}

// PaymentFlowImpl implements the payment business flow
type PaymentFlowImpl struct {
	paymentRepo repository.PaymentRequestRepository
	adRepo      repository.AdRepository
	noticeRepo  repository.NoticeRepository
	auditRepo   repository.AuditLogRepository
	gateway     services.PaymentGateway
	cacheConfig *config.CacheConfig
	rc          *redis.Client
	db          *gorm.DB
}

// NewPaymentFlow creates a new payment flow instance
func NewPaymentFlow(
	paymentRepo repository.PaymentRequestRepository,
	adRepo repository.AdRepository,
	noticeRepo repository.NoticeRepository,
	auditRepo repository.AuditLogRepository,
	gateway services.PaymentGateway,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
	db *gorm.DB,
) PaymentFlow {
	return &PaymentFlowImpl{
		paymentRepo: paymentRepo,
		adRepo:      adRepo,
		noticeRepo:  noticeRepo,
		auditRepo:   auditRepo,
		gateway:     gateway,
		cacheConfig: cacheConfig,
		rc:          rc,
		db:          db,
	}
}

// CheckAdPaymentStatus performs a single on-demand status check for an ad checkout
func (f *PaymentFlowImpl) CheckAdPaymentStatus(ctx context.Context, accountID uint, reference string, metadata *ClientMetadata) (*dto.CheckPaymentStatusResponse, error) {
	return f.checkStatus(ctx, accountID, reference, models.PaymentRequestKindAd, metadata)
}

// CheckNoticePaymentStatus performs a single on-demand status check for a notice checkout
func (f *PaymentFlowImpl) CheckNoticePaymentStatus(ctx context.Context, accountID uint, reference string, metadata *ClientMetadata) (*dto.CheckPaymentStatusResponse, error) {
	return f.checkStatus(ctx, accountID, reference, models.PaymentRequestKindNotice, metadata)
}

// PendingReference reports the open checkout remembered for this session.
// An empty answer is normal: it just means nothing is awaiting payment.
func (f *PaymentFlowImpl) PendingReference(ctx context.Context, sessionID string) (*dto.PendingReferenceResponse, error) {
	if sessionID == "" || f.rc == nil {
		return &dto.PendingReferenceResponse{Message: "No pending payment", Pending: false}, nil
	}

	reference, err := f.rc.Get(ctx, pendingReferenceKey(f.cacheConfig, sessionID)).Result()
	if err == redis.Nil {
		return &dto.PendingReferenceResponse{Message: "No pending payment", Pending: false}, nil
	}
	if err != nil {
		return nil, NewBusinessError("PENDING_REFERENCE_FAILED", "Failed to read pending reference", err)
	}

	return &dto.PendingReferenceResponse{
		Message:         "Pending payment found",
		ReferenceNumber: reference,
		Pending:         true,
	}, nil
}

// HandleNotification processes the gateway's server-to-server notification.
// Replays of already-settled checkouts are acknowledged without changes.
func (f *PaymentFlowImpl) HandleNotification(ctx context.Context, req *dto.PaymentNotificationRequest, metadata *ClientMetadata) error {
	params := map[string]string{
		"m_payment_id":   req.InvoiceNumber,
		"pf_payment_id":  req.ReferenceNumber,
		"payment_status": req.PaymentStatus,
		"amount_gross":   req.AmountGross,
		"signature":      req.Signature,
	}
	if !f.gateway.VerifyNotification(params) {
		return NewBusinessError("PAYMENT_NOTIFICATION_REJECTED", "Payment notification rejected", ErrGatewaySignatureInvalid)
	}

	var paymentReq *models.PaymentRequest

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		paymentReq, err = f.paymentRepo.ByInvoiceNumber(txCtx, req.InvoiceNumber)
		if err != nil {
			return err
		}
		if paymentReq == nil {
			return ErrPaymentRequestNotFound
		}
		if paymentReq.IsFinal() {
			// Gateways resend notifications; settled requests stay settled.
			return nil
		}

		if paymentReq.ReferenceNumber == "" {
			paymentReq.ReferenceNumber = req.ReferenceNumber
		}
		paymentReq.GatewayStatus = req.PaymentStatus

		return f.settle(txCtx, paymentReq, services.CheckoutStatus{
			ReferenceNumber: paymentReq.ReferenceNumber,
			Status:          normalizeNotificationStatus(req.PaymentStatus),
			RawStatus:       req.PaymentStatus,
		})
	})

	if err != nil {
		errMsg := fmt.Sprintf("Payment notification failed: %s", err.Error())
		_ = f.createAuditLog(ctx, nil, models.AuditActionPaymentFailed, errMsg, false, &errMsg, metadata)

		return NewBusinessError("PAYMENT_NOTIFICATION_FAILED", "Payment notification failed", err)
	}

	msg := fmt.Sprintf("Payment notification processed: %s (%s)", req.InvoiceNumber, req.PaymentStatus)
	_ = f.createAuditLog(ctx, &paymentReq.AccountID, models.AuditActionPaymentCompleted, msg, true, nil, metadata)

	return nil
}

// Private helper methods

func (f *PaymentFlowImpl) checkStatus(ctx context.Context, accountID uint, reference string, kind models.PaymentRequestKind, metadata *ClientMetadata) (*dto.CheckPaymentStatusResponse, error) {
	paymentReq, err := f.paymentRepo.ByReferenceNumber(ctx, reference)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_CHECK_FAILED", "Payment status check failed", err)
	}
	if paymentReq == nil || paymentReq.Kind != kind {
		return nil, NewBusinessError("PAYMENT_CHECK_FAILED", "Payment status check failed", ErrPaymentRequestNotFound)
	}
	if paymentReq.AccountID != accountID {
		return nil, NewBusinessError("PAYMENT_CHECK_FAILED", "Payment status check failed", ErrPaymentReferenceMismatch)
	}

	// Settled requests answer from the database, no gateway round-trip
	if paymentReq.IsFinal() {
		return f.buildStatusResponse(paymentReq), nil
	}

	// Single on-demand poll of the gateway
	status, err := f.gateway.QueryStatus(ctx, reference)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_CHECK_FAILED", "Payment status check failed", err)
	}

	if status == nil {
		// The gateway has not seen the payment yet; still pending
		_ = f.createAuditLog(ctx, &accountID, models.AuditActionPaymentChecked,
			fmt.Sprintf("Payment status checked: %s (unknown at gateway)", reference), true, nil, metadata)
		return f.buildStatusResponse(paymentReq), nil
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		// Reload inside the transaction so a concurrent notification wins
		fresh, err := f.paymentRepo.ByReferenceNumber(txCtx, reference)
		if err != nil {
			return err
		}
		if fresh == nil {
			return ErrPaymentRequestNotFound
		}
		if fresh.IsFinal() {
			paymentReq = fresh
			return nil
		}

		fresh.GatewayStatus = status.RawStatus
		if err := f.settle(txCtx, fresh, *status); err != nil {
			return err
		}
		paymentReq = fresh
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Payment status check failed: %s", err.Error())
		_ = f.createAuditLog(ctx, &accountID, models.AuditActionPaymentChecked, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PAYMENT_CHECK_FAILED", "Payment status check failed", err)
	}

	msg := fmt.Sprintf("Payment status checked: %s (%s)", reference, paymentReq.Status)
	_ = f.createAuditLog(ctx, &accountID, models.AuditActionPaymentChecked, msg, true, nil, metadata)

	if paymentReq.Status == models.PaymentRequestStatusCompleted && metadata != nil && metadata.SessionID != "" {
		clearPendingReference(ctx, f.rc, f.cacheConfig, metadata.SessionID)
	}

	return f.buildStatusResponse(paymentReq), nil
}

// settle applies a definitive gateway answer to the payment request and, on
// completion, marks the paid subject as purchased.
func (f *PaymentFlowImpl) settle(ctx context.Context, paymentReq *models.PaymentRequest, status services.CheckoutStatus) error {
	switch status.Status {
	case services.GatewayStatusComplete:
		paymentReq.Status = models.PaymentRequestStatusCompleted
		paymentReq.StatusReason = "confirmed by gateway"
	case services.GatewayStatusFailed:
		paymentReq.Status = models.PaymentRequestStatusFailed
		paymentReq.StatusReason = fmt.Sprintf("gateway reported %s", status.RawStatus)
	case services.GatewayStatusCancelled:
		paymentReq.Status = models.PaymentRequestStatusCancelled
		paymentReq.StatusReason = "cancelled at gateway"
	default:
		// Still pending at the gateway; record the raw status only
		if paymentReq.Status == models.PaymentRequestStatusCreated {
			paymentReq.Status = models.PaymentRequestStatusPending
		}
	}

	if err := f.paymentRepo.Update(ctx, paymentReq); err != nil {
		return err
	}

	if paymentReq.Status != models.PaymentRequestStatusCompleted {
		return nil
	}

	switch paymentReq.Kind {
	case models.PaymentRequestKindAd:
		if paymentReq.AdID == nil {
			return ErrAdNotFound
		}
		return f.adRepo.MarkPaid(ctx, *paymentReq.AdID, paymentReq.ReferenceNumber)
	case models.PaymentRequestKindNotice:
		if paymentReq.NoticeID == nil {
			return ErrNoticeNotFound
		}
		return f.noticeRepo.MarkPaid(ctx, *paymentReq.NoticeID, paymentReq.ReferenceNumber)
	default:
		return fmt.Errorf("unknown payment request kind: %s", paymentReq.Kind)
	}
}

func (f *PaymentFlowImpl) buildStatusResponse(paymentReq *models.PaymentRequest) *dto.CheckPaymentStatusResponse {
	paid := paymentReq.Status == models.PaymentRequestStatusCompleted

	message := "Payment is still pending"
	switch paymentReq.Status {
	case models.PaymentRequestStatusCompleted:
		message = "Payment completed successfully"
	case models.PaymentRequestStatusFailed:
		message = "Payment failed"
	case models.PaymentRequestStatusCancelled:
		message = "Payment was cancelled"
	case models.PaymentRequestStatusExpired:
		message = "Payment request expired"
	}

	return &dto.CheckPaymentStatusResponse{
		Message:         message,
		ReferenceNumber: paymentReq.ReferenceNumber,
		Status:          string(paymentReq.Status),
		Paid:            paid,
	}
}

func (f *PaymentFlowImpl) createAuditLog(ctx context.Context, accountID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
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

func normalizeNotificationStatus(raw string) string {
	switch raw {
	case "COMPLETE":
		return services.GatewayStatusComplete
	case "FAILED":
		return services.GatewayStatusFailed
	case "CANCELLED":
		return services.GatewayStatusCancelled
	default:
		return services.GatewayStatusPending
	}
}

// Pending-reference storage: one open checkout per session, server-side

func redisKey(cfg *config.CacheConfig, key string) string {
	if cfg != nil && cfg.RedisPrefix != "" {
		return cfg.RedisPrefix + ":" + key
	}
	return key
}

func pendingReferenceKey(cfg *config.CacheConfig, sessionID string) string {
	return redisKey(cfg, fmt.Sprintf("pending_payment_ref:%s", sessionID))
}

func storePendingReference(ctx context.Context, rc *redis.Client, cfg *config.CacheConfig, sessionID, reference string) {
	if rc == nil {
		return
	}
	// Best effort: the database remains the source of truth
	_ = rc.Set(ctx, pendingReferenceKey(cfg, sessionID), reference, utils.PaymentRequestTTL).Err()
}

func clearPendingReference(ctx context.Context, rc *redis.Client, cfg *config.CacheConfig, sessionID string) {
	if rc == nil {
		return
	}
	_ = rc.Del(ctx, pendingReferenceKey(cfg, sessionID)).Err()
}
