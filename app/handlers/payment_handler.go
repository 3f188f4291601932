// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/middleware"
	businessflow "github.com/mzwakhe/izaziso/business_flow"
)

// PaymentHandler handles payment status checks and gateway notifications
type PaymentHandler struct {
	paymentFlow businessflow.PaymentFlow
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentFlow businessflow.PaymentFlow) *PaymentHandler {
	return &PaymentHandler{
		paymentFlow: paymentFlow,
	}
}

func (h *PaymentHandler) checkStatusErrors(c fiber.Ctx, err error) error {
	if businessflow.IsPaymentRequestNotFound(err) {
		return errorResponse(c, fiber.StatusNotFound, "Payment request not found", "PAYMENT_REQUEST_NOT_FOUND", nil)
	}
	if businessflow.IsPaymentReferenceMismatch(err) {
		return errorResponse(c, fiber.StatusForbidden, "Payment request belongs to another account", "PAYMENT_REFERENCE_MISMATCH", nil)
	}
	if businessflow.IsPaymentNotInitiated(err) {
		return errorResponse(c, fiber.StatusBadRequest, "Payment has not been initiated", "PAYMENT_NOT_INITIATED", nil)
	}

	log.Println("Payment status check failed", err)
	return errorResponse(c, fiber.StatusInternalServerError, "Payment status check failed", "STATUS_CHECK_FAILED", nil)
}

// CheckAdPaymentStatus queries the gateway for an ad checkout and settles it
// @Summary Check Ad Payment Status
// @Description Query the gateway for the current state of an ad checkout and settle it if final
// @Tags Payments
// @Produce json
// @Param reference_number path string true "Gateway reference number"
// @Success 200 {object} dto.APIResponse{data=dto.CheckPaymentStatusResponse} "Current payment status"
// @Failure 404 {object} dto.APIResponse "Payment request not found"
// @Router /api/v1/transactions/check-ad-status/{reference_number} [get]
func (h *PaymentHandler) CheckAdPaymentStatus(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	reference := c.Params("reference_number")
	if reference == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Reference number is required", "MISSING_REFERENCE", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.paymentFlow.CheckAdPaymentStatus(requestContext(c, "/api/v1/transactions/check-ad-status/:reference_number"), accountID, reference, metadata)
	if err != nil {
		return h.checkStatusErrors(c, err)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// CheckNoticePaymentStatus queries the gateway for a notice checkout and settles it
// @Summary Check Notice Payment Status
// @Description Query the gateway for the current state of a notice checkout and settle it if final
// @Tags Payments
// @Produce json
// @Param reference_number path string true "Gateway reference number"
// @Success 200 {object} dto.APIResponse{data=dto.CheckPaymentStatusResponse} "Current payment status"
// @Failure 404 {object} dto.APIResponse "Payment request not found"
// @Router /api/v1/transactions/check-notice-status/{reference_number} [get]
func (h *PaymentHandler) CheckNoticePaymentStatus(c fiber.Ctx) error {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Account ID not found in context", "MISSING_ACCOUNT_ID", nil)
	}

	reference := c.Params("reference_number")
	if reference == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Reference number is required", "MISSING_REFERENCE", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.paymentFlow.CheckNoticePaymentStatus(requestContext(c, "/api/v1/transactions/check-notice-status/:reference_number"), accountID, reference, metadata)
	if err != nil {
		return h.checkStatusErrors(c, err)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// PendingReference returns the open checkout reference for the caller's session
// @Summary Pending Payment Reference
// @Description Return the checkout reference stored for the caller's session, if one is open
// @Tags Payments
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PendingReferenceResponse} "Pending reference, if any"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/payments/pending-reference [get]
func (h *PaymentHandler) PendingReference(c fiber.Ctx) error {
	claims, ok := middleware.GetTokenClaimsFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Token claims not found in context", "MISSING_TOKEN_CLAIMS", nil)
	}

	result, err := h.paymentFlow.PendingReference(requestContext(c, "/api/v1/payments/pending-reference"), claims.TokenID)
	if err != nil {
		log.Println("Pending reference lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to look up pending reference", "PENDING_REFERENCE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// Notify receives the gateway's server-to-server payment notification
// @Summary Payment Notification
// @Description Receive and verify a gateway ITN callback; idempotent for replays
// @Tags Payments
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} dto.APIResponse "Notification processed"
// @Failure 400 {object} dto.APIResponse "Invalid signature or unknown invoice"
// @Router /api/v1/payments/notify [post]
func (h *PaymentHandler) Notify(c fiber.Ctx) error {
	var req dto.PaymentNotificationRequest
	if err := c.Bind().Form(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid notification payload", "INVALID_NOTIFICATION", err.Error())
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	if err := h.paymentFlow.HandleNotification(requestContext(c, "/api/v1/payments/notify"), &req, metadata); err != nil {
		if businessflow.IsGatewaySignatureInvalid(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid notification signature", "INVALID_SIGNATURE", nil)
		}
		if businessflow.IsPaymentRequestNotFound(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown invoice number", "PAYMENT_REQUEST_NOT_FOUND", nil)
		}

		log.Println("Payment notification failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to process notification", "NOTIFICATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Notification processed", nil)
}
