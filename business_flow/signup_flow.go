// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/services"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	"github.com/mzwakhe/izaziso/utils"
)

// SignupFlow handles the complete signup business logic
type SignupFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
	VerifyOTP(ctx context.Context, req *dto.OTPVerificationRequest, metadata *ClientMetadata) (*dto.OTPVerificationResponse, error)
	ResendOTP(ctx context.Context, req *dto.OTPResendRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	accountRepo     repository.AccountRepository
	otpRepo         repository.OTPVerificationRepository
	sessionRepo     repository.AccountSessionRepository
	auditRepo       repository.AuditLogRepository
	tokenService    services.TokenService
	notificationSvc services.NotificationService
	db              *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(
	accountRepo repository.AccountRepository,
	otpRepo repository.OTPVerificationRepository,
	sessionRepo repository.AccountSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	notificationSvc services.NotificationService,
	db *gorm.DB,
) SignupFlow {
	return &SignupFlowImpl{
		accountRepo:     accountRepo,
		otpRepo:         otpRepo,
		sessionRepo:     sessionRepo,
		auditRepo:       auditRepo,
		tokenService:    tokenService,
		notificationSvc: notificationSvc,
		db:              db,
	}
}

// Signup handles the complete signup process
func (s *SignupFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	// Validate business rules
	if err := s.validateSignupRequest(ctx, req); err != nil {
		return nil, NewBusinessError("SIGNUP_VALIDATION_FAILED", "Signup validation failed", err)
	}

	// Use transaction for atomicity
	var account *models.Account
	var otpCode string

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// Create account
		var err error
		account, err = s.createAccount(txCtx, req)
		if err != nil {
			return err
		}

		// Generate and save OTP
		otpCode, err = s.generateAndSaveOTP(txCtx, account.ID, account.Email, models.OTPTypeEmail, metadata)
		if err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Signup initiation failed: %s", err.Error())
		_ = s.createAuditLog(ctx, account, models.AuditActionSignupInitiated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	} else {
		msg := fmt.Sprintf("Signup initiated successfully: %d", account.ID)
		_ = s.createAuditLog(ctx, account, models.AuditActionSignupInitiated, msg, true, nil, metadata)
	}

	// Send OTP via email (outside transaction to avoid rollback on delivery failure)
	go func() {
		body := fmt.Sprintf("Your verification code is: %s. Valid for 5 minutes.", otpCode)
		err := s.notificationSvc.SendEmail(account.Email, "Verify your email address", body)
		if err != nil {
			errMsg := fmt.Sprintf("Failed to send verification email: %v", err)
			_ = s.createAuditLog(context.Background(), account, models.AuditActionOTPFailed, errMsg, false, &errMsg, metadata)
		}
	}()

	return &dto.SignupResponse{
		Message:   "Signup initiated successfully. OTP sent to your email address.",
		AccountID: account.ID,
		OTPSent:   true,
		OTPTarget: dto.MaskEmail(account.Email),
	}, nil
}

// VerifyOTP handles OTP verification and completes signup
func (s *SignupFlowImpl) VerifyOTP(ctx context.Context, req *dto.OTPVerificationRequest, metadata *ClientMetadata) (*dto.OTPVerificationResponse, error) {
	// Validate business rules
	if err := s.validateOTPVerificationRequest(ctx, req); err != nil {
		return nil, NewBusinessError("OTP_VERIFICATION_VALIDATION_FAILED", "OTP verification validation failed", err)
	}

	var account *models.Account
	var tokens struct {
		access  string
		refresh string
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// Find account
		var err error
		account, err = s.accountRepo.ByID(txCtx, req.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		// Verify OTP
		if err := s.verifyOTPCode(txCtx, req.AccountID, req.OTPCode, req.OTPType); err != nil {
			return err
		}

		// Mark the email as verified and complete signup
		if err := s.completeSignup(txCtx, account, req.OTPType); err != nil {
			return err
		}

		// Generate tokens
		tokens.access, tokens.refresh, err = s.tokenService.GenerateTokens(account.ID, utils.IsTrue(account.IsAdmin))
		if err != nil {
			return err
		}

		// Create session
		if err := s.createSession(txCtx, account.ID, tokens.access, tokens.refresh, metadata); err != nil {
			return err
		}

		// Reload to pick up the updated verification fields
		account, err = s.accountRepo.ByID(txCtx, account.ID)
		if err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("OTP verification failed: %s", err.Error())
		_ = s.createAuditLog(ctx, account, models.AuditActionOTPFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("OTP_VERIFICATION_FAILED", "OTP verification failed", err)
	} else {
		msg := fmt.Sprintf("Signup completed successfully: %d", account.ID)
		_ = s.createAuditLog(ctx, account, models.AuditActionSignupCompleted, msg, true, nil, metadata)
	}

	return &dto.OTPVerificationResponse{
		Message:      "Signup completed successfully!",
		Token:        tokens.access,
		RefreshToken: tokens.refresh,
		Account:      ToAccountDTO(*account),
	}, nil
}

// ResendOTP generates and sends a new OTP
func (s *SignupFlowImpl) ResendOTP(ctx context.Context, req *dto.OTPResendRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error) {
	// Validate business rules
	if err := s.validateOTPResendRequest(ctx, req); err != nil {
		return nil, NewBusinessError("OTP_RESEND_VALIDATION_FAILED", "OTP resend validation failed", err)
	}

	var account *models.Account

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// Find account
		var err error
		account, err = s.accountRepo.ByID(txCtx, req.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		// Expire old OTPs
		if err := s.otpRepo.ExpireOldOTPs(txCtx, req.AccountID, req.OTPType); err != nil {
			return err
		}

		// Generate new OTP
		otpCode, err := s.generateAndSaveOTP(txCtx, req.AccountID, account.Email, req.OTPType, metadata)
		if err != nil {
			return err
		}

		// Send notification
		message := fmt.Sprintf("Your new verification code is: %s. Valid for 5 minutes.", otpCode)
		return s.notificationSvc.SendEmail(account.Email, "Verification Code", message)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Resend OTP failed: %s", err.Error())
		_ = s.createAuditLog(ctx, account, models.AuditActionOTPFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("RESEND_OTP_FAILED", "Resend OTP failed", err)
	} else {
		msg := fmt.Sprintf("OTP resent successfully: %d", req.AccountID)
		_ = s.createAuditLog(ctx, account, models.AuditActionOTPGenerated, msg, true, nil, metadata)
	}

	return &dto.OTPResendResponse{
		Message:         "OTP resent successfully",
		OTPSent:         true,
		MaskedOTPTarget: dto.MaskEmail(account.Email),
	}, nil
}

// Private helper methods

func (s *SignupFlowImpl) validateSignupRequest(ctx context.Context, req *dto.SignupRequest) error {
	// Check if email already exists
	existingAccount, err := s.accountRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existingAccount != nil {
		return ErrEmailAlreadyExists
	}

	// Organization accounts must name the organization
	if req.Organization && (req.OrganizationName == nil || *req.OrganizationName == "") {
		return ErrOrganizationNameRequired
	}

	return nil
}

func (s *SignupFlowImpl) createAccount(ctx context.Context, req *dto.SignupRequest) (*models.Account, error) {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UUID:             uuid.New(),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		ContactNumber:    req.ContactNumber,
		PasswordHash:     string(hashedPassword),
		Organization:     utils.ToPtr(req.Organization),
		OrganizationName: req.OrganizationName,
		IsAdmin:          utils.ToPtr(false),
		IsEmailVerified:  utils.ToPtr(false),
		IsActive:         utils.ToPtr(true),
	}

	err = s.accountRepo.Save(ctx, account)
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (s *SignupFlowImpl) generateAndSaveOTP(ctx context.Context, accountID uint, target, otpType string, metadata *ClientMetadata) (string, error) {
	// Generate 6-digit OTP
	otpCode, err := GenerateOTP()
	if err != nil {
		return "", err
	}

	otp := &models.OTPVerification{
		CorrelationID: uuid.New(),
		AccountID:     accountID,
		OTPCode:       otpCode,
		OTPType:       otpType,
		TargetValue:   target,
		Status:        models.OTPStatusPending,
		AttemptsCount: 0,
		MaxAttempts:   3,
		ExpiresAt:     utils.UTCNowAdd(utils.OTPExpiry),
	}
	if metadata != nil {
		otp.IPAddress = &metadata.IPAddress
		otp.UserAgent = &metadata.UserAgent
	}

	err = s.otpRepo.Save(ctx, otp)
	if err != nil {
		return "", err
	}

	return otpCode, nil
}

func (s *SignupFlowImpl) verifyOTPCode(ctx context.Context, accountID uint, code, otpType string) error {
	// Find active OTP
	otps, err := s.otpRepo.ListActiveOTPs(ctx, accountID)
	if err != nil {
		return err
	}

	var validOTP *models.OTPVerification
	for _, otp := range otps {
		if otp.OTPType == otpType && otp.Status == models.OTPStatusPending && otp.CanAttempt() {
			validOTP = otp
			break
		}
	}

	if validOTP == nil {
		return ErrNoValidOTPFound
	}

	if validOTP.OTPCode != code {
		// Record the failed attempt under the same correlation ID
		failedOTP := *validOTP
		failedOTP.ID = 0
		failedOTP.CorrelationID = validOTP.CorrelationID
		failedOTP.AttemptsCount++
		failedOTP.Status = models.OTPStatusFailed
		_ = s.otpRepo.Save(ctx, &failedOTP)

		return ErrInvalidOTPCode
	}

	// Record verification under the same correlation ID
	verifiedOTP := *validOTP
	verifiedOTP.ID = 0
	verifiedOTP.CorrelationID = validOTP.CorrelationID
	verifiedOTP.Status = models.OTPStatusVerified
	verifiedOTP.VerifiedAt = utils.ToPtr(time.Now())

	return s.otpRepo.Save(ctx, &verifiedOTP)
}

func (s *SignupFlowImpl) completeSignup(ctx context.Context, account *models.Account, otpType string) error {
	if otpType != models.OTPTypeEmail {
		return ErrInvalidOTPType
	}

	return s.accountRepo.UpdateVerificationStatus(ctx, account.ID, utils.ToPtr(true), utils.ToPtr(time.Now()))
}

func (s *SignupFlowImpl) createSession(ctx context.Context, accountID uint, accessToken, refreshToken string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.AccountSession{
		CorrelationID: uuid.New(),
		AccountID:     accountID,
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
		IsActive:      utils.ToPtr(true),
		ExpiresAt:     utils.UTCNowAdd(utils.AccessTokenTTL),
	}

	return s.sessionRepo.Save(ctx, session)
}

func (s *SignupFlowImpl) createAuditLog(ctx context.Context, account *models.Account, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var accountID *uint
	if account != nil {
		accountID = &account.ID
	}

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

	// Extract request ID from context if available
	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return s.auditRepo.Save(ctx, audit)
}

func (s *SignupFlowImpl) validateOTPVerificationRequest(ctx context.Context, req *dto.OTPVerificationRequest) error {
	// Validate account exists
	account, err := s.accountRepo.ByID(ctx, req.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	// Validate OTP type
	if req.OTPType != models.OTPTypeEmail && req.OTPType != models.OTPTypePasswordReset {
		return ErrInvalidOTPType
	}

	// Validate OTP code format (6 digits)
	if len(req.OTPCode) != 6 {
		return ErrInvalidOTPCode
	}

	// Check if the email was already verified
	if req.OTPType == models.OTPTypeEmail && utils.IsTrue(account.IsEmailVerified) {
		return ErrAlreadyVerified
	}

	return nil
}

func (s *SignupFlowImpl) validateOTPResendRequest(ctx context.Context, req *dto.OTPResendRequest) error {
	// Validate account exists
	account, err := s.accountRepo.ByID(ctx, req.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	// Validate OTP type
	if req.OTPType != models.OTPTypeEmail && req.OTPType != models.OTPTypePasswordReset {
		return ErrInvalidOTPType
	}

	// Check if the email was already verified
	if req.OTPType == models.OTPTypeEmail && utils.IsTrue(account.IsEmailVerified) {
		return ErrAlreadyVerified
	}

	return nil
}
