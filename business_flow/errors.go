// Package businessflow contains the core business logic and use cases for the platform
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrNotOrganization    = errors.New("account is not registered as an organization")
	ErrNotAdmin           = errors.New("account does not have admin privileges")

	ErrOrganizationNameRequired = errors.New("organization name is required for organization accounts")

	// OTP-related errors
	ErrNoValidOTPFound = errors.New("no valid OTP found")
	ErrInvalidOTPCode  = errors.New("invalid OTP code")
	ErrInvalidOTPType  = errors.New("invalid OTP type")
	ErrOTPExpired      = errors.New("OTP has expired")

	ErrAlreadyVerified = errors.New("already verified")

	// Session errors
	ErrSessionNotFound = errors.New("session not found or expired")

	// Ad-related errors
	ErrAdNotFound              = errors.New("ad not found")
	ErrAdAccessDenied          = errors.New("ad access denied")
	ErrAdNotResubmittable      = errors.New("only rejected ads can be resubmitted")
	ErrAdAlreadyReviewed       = errors.New("ad has already been reviewed")
	ErrInvalidTier             = errors.New("tier must be 7, 14, or 30 days")
	ErrInvalidAdStatus         = errors.New("invalid ad status")
	ErrRejectionReasonRequired = errors.New("rejection reason is required when rejecting an ad")
	ErrReviewConflict          = errors.New("ad was modified by another admin, reload and retry")
	ErrPhotoNotFound           = errors.New("photo not found")
	ErrPhotoAccessDenied       = errors.New("photo belongs to another account")

	// Notice-related errors
	ErrNoticeNotFound     = errors.New("notice not found")
	ErrNoticeAccessDenied = errors.New("notice access denied")
	ErrInvalidNoticeType  = errors.New("invalid notice type")
	ErrNoticeDraftMissing = errors.New("notice draft does not match the declared notice type")
	ErrEventDateRequired  = errors.New("event date is required for this notice type")

	// Payment-related errors
	ErrPaymentRequestNotFound         = errors.New("payment request not found")
	ErrPaymentRequestAlreadyProcessed = errors.New("payment request already processed")
	ErrPaymentRequestExpired          = errors.New("payment request expired")
	ErrPaymentNotInitiated            = errors.New("no payment has been initiated for this reference")
	ErrPaymentReferenceMismatch       = errors.New("payment reference does not belong to this account")
	ErrGatewaySignatureInvalid        = errors.New("gateway notification signature is invalid")

	// Media-related errors
	ErrMediaTooLarge          = errors.New("file exceeds the maximum allowed size")
	ErrMediaUnsupportedFormat = errors.New("unsupported image format")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsEmailNotVerified(err error) bool {
	return errors.Is(err, ErrEmailNotVerified)
}

func IsNotOrganization(err error) bool {
	return errors.Is(err, ErrNotOrganization)
}

func IsNotAdmin(err error) bool {
	return errors.Is(err, ErrNotAdmin)
}

func IsOrganizationNameRequired(err error) bool {
	return errors.Is(err, ErrOrganizationNameRequired)
}

func IsNoValidOTPFound(err error) bool {
	return errors.Is(err, ErrNoValidOTPFound)
}

func IsInvalidOTPCode(err error) bool {
	return errors.Is(err, ErrInvalidOTPCode)
}

func IsInvalidOTPType(err error) bool {
	return errors.Is(err, ErrInvalidOTPType)
}

func IsOTPExpired(err error) bool {
	return errors.Is(err, ErrOTPExpired)
}

func IsAlreadyVerified(err error) bool {
	return errors.Is(err, ErrAlreadyVerified)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsAdNotFound(err error) bool {
	return errors.Is(err, ErrAdNotFound)
}

func IsAdAccessDenied(err error) bool {
	return errors.Is(err, ErrAdAccessDenied)
}

func IsAdNotResubmittable(err error) bool {
	return errors.Is(err, ErrAdNotResubmittable)
}

func IsAdAlreadyReviewed(err error) bool {
	return errors.Is(err, ErrAdAlreadyReviewed)
}

func IsInvalidTier(err error) bool {
	return errors.Is(err, ErrInvalidTier)
}

func IsInvalidAdStatus(err error) bool {
	return errors.Is(err, ErrInvalidAdStatus)
}

func IsRejectionReasonRequired(err error) bool {
	return errors.Is(err, ErrRejectionReasonRequired)
}

func IsReviewConflict(err error) bool {
	return errors.Is(err, ErrReviewConflict)
}

func IsPhotoNotFound(err error) bool {
	return errors.Is(err, ErrPhotoNotFound)
}

func IsPhotoAccessDenied(err error) bool {
	return errors.Is(err, ErrPhotoAccessDenied)
}

func IsNoticeNotFound(err error) bool {
	return errors.Is(err, ErrNoticeNotFound)
}

func IsNoticeAccessDenied(err error) bool {
	return errors.Is(err, ErrNoticeAccessDenied)
}

func IsInvalidNoticeType(err error) bool {
	return errors.Is(err, ErrInvalidNoticeType)
}

func IsNoticeDraftMissing(err error) bool {
	return errors.Is(err, ErrNoticeDraftMissing)
}

func IsEventDateRequired(err error) bool {
	return errors.Is(err, ErrEventDateRequired)
}

func IsPaymentRequestNotFound(err error) bool {
	return errors.Is(err, ErrPaymentRequestNotFound)
}

func IsPaymentRequestAlreadyProcessed(err error) bool {
	return errors.Is(err, ErrPaymentRequestAlreadyProcessed)
}

func IsPaymentRequestExpired(err error) bool {
	return errors.Is(err, ErrPaymentRequestExpired)
}

func IsPaymentNotInitiated(err error) bool {
	return errors.Is(err, ErrPaymentNotInitiated)
}

func IsPaymentReferenceMismatch(err error) bool {
	return errors.Is(err, ErrPaymentReferenceMismatch)
}

func IsGatewaySignatureInvalid(err error) bool {
	return errors.Is(err, ErrGatewaySignatureInvalid)
}

func IsMediaTooLarge(err error) bool {
	return errors.Is(err, ErrMediaTooLarge)
}

func IsMediaUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrMediaUnsupportedFormat)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
