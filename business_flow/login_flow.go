// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/services"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	"github.com/mzwakhe/izaziso/utils"
)

// LoginFlow handles account authentication and password reset operations
type LoginFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) error
	ForgotPassword(ctx context.Context, request *dto.ForgotPasswordRequest, metadata *ClientMetadata) (*dto.ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, request *dto.ResetPasswordRequest, metadata *ClientMetadata) (*dto.ResetPasswordResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	accountRepo     repository.AccountRepository
	sessionRepo     repository.AccountSessionRepository
	otpRepo         repository.OTPVerificationRepository
	auditRepo       repository.AuditLogRepository
	tokenService    services.TokenService
	notificationSvc services.NotificationService
	db              *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	accountRepo repository.AccountRepository,
	sessionRepo repository.AccountSessionRepository,
	otpRepo repository.OTPVerificationRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	notificationSvc services.NotificationService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		accountRepo:     accountRepo,
		sessionRepo:     sessionRepo,
		otpRepo:         otpRepo,
		auditRepo:       auditRepo,
		tokenService:    tokenService,
		notificationSvc: notificationSvc,
		db:              db,
	}
}

// Login authenticates an account with email and password
func (lf *LoginFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var account *models.Account

	resp, err := lf.withLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginResponse, error) {
		// Find account by email
		var err error
		account, err = lf.accountRepo.ByEmail(ctx, strings.TrimSpace(request.Email))
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}

		// Check if account is active
		if !utils.IsTrue(account.IsActive) {
			return nil, ErrAccountInactive
		}

		// Verify password
		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		// Only verified accounts may log in
		if !utils.IsTrue(account.IsEmailVerified) {
			return nil, ErrEmailNotVerified
		}

		// Create new session
		session, err := lf.createSession(ctx, account, metadata)
		if err != nil {
			return nil, err
		}

		if err := lf.accountRepo.UpdateLastLogin(ctx, account.ID, utils.UTCNow()); err != nil {
			return nil, err
		}

		return &dto.LoginResponse{
			Message: "Login successful",
			Account: ToAccountDTO(*account),
			Session: ToSessionDTO(*session),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = lf.logAuthEvent(ctx, account, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	} else {
		msg := fmt.Sprintf("Account logged in successfully: %d", resp.Account.ID)
		_ = lf.logAuthEvent(ctx, account, models.AuditActionLoginSuccessful, msg, true, nil, metadata)
	}

	return resp, nil
}

// RefreshToken exchanges a valid refresh token for a fresh session
func (lf *LoginFlowImpl) RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var account *models.Account

	resp, err := lf.withLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginResponse, error) {
		// The refresh token must belong to a live session
		session, err := lf.sessionRepo.ByRefreshToken(ctx, request.RefreshToken)
		if err != nil {
			return nil, err
		}
		if session == nil || !session.IsValid() {
			return nil, ErrSessionNotFound
		}

		account, err = lf.accountRepo.ByID(ctx, session.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		if !utils.IsTrue(account.IsActive) {
			return nil, ErrAccountInactive
		}

		// Retire the old session before issuing a new one
		if err := lf.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
			return nil, err
		}
		_ = lf.tokenService.RevokeToken(session.SessionToken)

		newSession, err := lf.createSession(ctx, account, metadata)
		if err != nil {
			return nil, err
		}

		return &dto.LoginResponse{
			Message: "Session refreshed",
			Account: ToAccountDTO(*account),
			Session: ToSessionDTO(*newSession),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Token refresh failed: %s", err.Error())
		_ = lf.logAuthEvent(ctx, account, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("TOKEN_REFRESH_FAILED", "Token refresh failed", err)
	}

	return resp, nil
}

// Logout expires the current session and revokes its token
func (lf *LoginFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) error {
	var account *models.Account

	err := repository.WithTransaction(ctx, lf.db, func(txCtx context.Context) error {
		session, err := lf.sessionRepo.BySessionToken(txCtx, sessionToken)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}

		account, err = lf.accountRepo.ByID(txCtx, session.AccountID)
		if err != nil {
			return err
		}

		if err := lf.sessionRepo.ExpireSession(txCtx, session.ID); err != nil {
			return err
		}

		return lf.tokenService.RevokeToken(sessionToken)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Logout failed: %s", err.Error())
		_ = lf.logAuthEvent(ctx, account, models.AuditActionLogout, errMsg, false, &errMsg, metadata)

		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	msg := "Account logged out"
	_ = lf.logAuthEvent(ctx, account, models.AuditActionLogout, msg, true, nil, metadata)

	return nil
}

// ForgotPassword initiates the password reset process
func (lf *LoginFlowImpl) ForgotPassword(ctx context.Context, request *dto.ForgotPasswordRequest, metadata *ClientMetadata) (*dto.ForgotPasswordResponse, error) {
	var account *models.Account

	resp, err := lf.withForgotPasswordTransaction(ctx, func(ctx context.Context) (*dto.ForgotPasswordResponse, error) {
		// Find account by email
		var err error
		account, err = lf.accountRepo.ByEmail(ctx, strings.TrimSpace(request.Email))
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}

		// Check if account is active
		if !utils.IsTrue(account.IsActive) {
			return nil, ErrAccountInactive
		}

		// Expire any existing password reset OTPs
		if err := lf.otpRepo.ExpireOldOTPs(ctx, account.ID, models.OTPTypePasswordReset); err != nil {
			return nil, err
		}

		// Generate new OTP
		otpCode, err := GenerateOTP()
		if err != nil {
			return nil, err
		}

		otp := &models.OTPVerification{
			AccountID:     account.ID,
			CorrelationID: uuid.New(),
			OTPCode:       otpCode,
			OTPType:       models.OTPTypePasswordReset,
			TargetValue:   account.Email,
			Status:        models.OTPStatusPending,
			AttemptsCount: 0,
			MaxAttempts:   3,
			ExpiresAt:     utils.UTCNowAdd(utils.OTPExpiry),
		}
		if metadata != nil {
			otp.IPAddress = &metadata.IPAddress
			otp.UserAgent = &metadata.UserAgent
		}

		if err := lf.otpRepo.Save(ctx, otp); err != nil {
			return nil, err
		}

		// Send OTP via email
		body := fmt.Sprintf("Your password reset code is: %s. This code will expire in 5 minutes.", otpCode)
		if err := lf.notificationSvc.SendEmail(account.Email, "Password Reset Code", body); err != nil {
			// Log delivery failure but don't fail the entire process
			errMsg := fmt.Sprintf("OTP generated but email failed: %v", err)
			_ = lf.logAuthEvent(ctx, account, models.AuditActionOTPFailed, errMsg, false, &errMsg, metadata)
		}

		return &dto.ForgotPasswordResponse{
			Message:     "Password reset code sent",
			AccountID:   account.ID,
			MaskedEmail: dto.MaskEmail(account.Email),
			ExpiresIn:   int(utils.OTPExpiry.Seconds()),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Forgot password failed: %s", err.Error())
		_ = lf.logAuthEvent(ctx, account, models.AuditActionOTPFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("FORGOT_PASSWORD_FAILED", "Forgot password failed", err)
	} else {
		msg := fmt.Sprintf("Password reset OTP sent successfully: %d", resp.AccountID)
		_ = lf.logAuthEvent(ctx, account, models.AuditActionOTPGenerated, msg, true, nil, metadata)
	}

	return resp, nil
}

// ResetPassword completes the password reset process with OTP verification
func (lf *LoginFlowImpl) ResetPassword(ctx context.Context, request *dto.ResetPasswordRequest, metadata *ClientMetadata) (*dto.ResetPasswordResponse, error) {
	var account *models.Account

	resp, err := lf.withResetPasswordTransaction(ctx, func(ctx context.Context) (*dto.ResetPasswordResponse, error) {
		// Find the account
		var err error
		account, err = lf.accountRepo.ByID(ctx, request.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}

		// Find and verify OTP
		otpFilter := models.OTPVerificationFilter{
			AccountID: &account.ID,
			OTPType:   utils.ToPtr(models.OTPTypePasswordReset),
			Status:    utils.ToPtr(models.OTPStatusPending),
			IsActive:  utils.ToPtr(true),
		}

		otps, err := lf.otpRepo.ByFilter(ctx, otpFilter, "", 0, 0)
		if err != nil {
			return nil, err
		}

		var validOTP *models.OTPVerification
		for _, otp := range otps {
			if otp.OTPCode == request.OTPCode && utils.UTCNow().Before(otp.ExpiresAt) {
				validOTP = otp
				break
			}
		}

		if validOTP == nil {
			// Tell an expired code apart from a wrong one
			for _, otp := range otps {
				if otp.OTPCode == request.OTPCode && utils.UTCNow().After(otp.ExpiresAt) {
					return nil, ErrOTPExpired
				}
			}

			return nil, ErrInvalidOTPCode
		}

		// Hash the new password
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		err = lf.accountRepo.UpdatePassword(ctx, account.ID, string(hashedPassword))
		if err != nil {
			return nil, err
		}

		// Mark OTP as used (immutable design, new record under the same correlation ID)
		usedOTP := *validOTP
		usedOTP.ID = 0
		usedOTP.CorrelationID = validOTP.CorrelationID
		usedOTP.Status = models.OTPStatusUsed
		usedOTP.CreatedAt = utils.UTCNow()

		if err := lf.otpRepo.Save(ctx, &usedOTP); err != nil {
			return nil, err
		}

		// Invalidate all existing sessions for this account
		if err := lf.sessionRepo.ExpireAllAccountSessions(ctx, account.ID); err != nil {
			return nil, err
		}

		return &dto.ResetPasswordResponse{
			Message:           "Password reset successfully",
			PasswordChangedAt: utils.UTCNow(),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Password reset failed: %s", err.Error())
		_ = lf.logAuthEvent(ctx, account, models.AuditActionOTPFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PASSWORD_RESET_FAILED", "Password reset failed", err)
	}

	msg := fmt.Sprintf("Password reset completed successfully: %d", request.AccountID)
	_ = lf.logAuthEvent(ctx, account, models.AuditActionOTPVerified, msg, true, nil, metadata)

	return resp, nil
}

// Private helper methods

func (lf *LoginFlowImpl) createSession(ctx context.Context, account *models.Account, metadata *ClientMetadata) (*models.AccountSession, error) {
	// Generate tokens
	accessToken, refreshToken, err := lf.tokenService.GenerateTokens(account.ID, utils.IsTrue(account.IsAdmin))
	if err != nil {
		return nil, err
	}

	expiresAt := utils.UTCNowAdd(utils.AccessTokenTTL)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.AccountSession{
		AccountID:     account.ID,
		CorrelationID: uuid.New(),
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	err = lf.sessionRepo.Save(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

func GenerateOTP() (string, error) {
	// Generate a secure 6-digit number using crypto/rand
	max := big.NewInt(999999)
	min := big.NewInt(100000)

	n, err := rand.Int(rand.Reader, new(big.Int).Sub(max, min))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", new(big.Int).Add(n, min).Int64()), nil
}

func (lf *LoginFlowImpl) logAuthEvent(ctx context.Context, account *models.Account, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
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
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return lf.auditRepo.Save(ctx, audit)
}

func (lf *LoginFlowImpl) withLoginTransaction(ctx context.Context, fn func(context.Context) (*dto.LoginResponse, error)) (*dto.LoginResponse, error) {
	var result *dto.LoginResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (lf *LoginFlowImpl) withForgotPasswordTransaction(ctx context.Context, fn func(context.Context) (*dto.ForgotPasswordResponse, error)) (*dto.ForgotPasswordResponse, error) {
	var result *dto.ForgotPasswordResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (lf *LoginFlowImpl) withResetPasswordTransaction(ctx context.Context, fn func(context.Context) (*dto.ResetPasswordResponse, error)) (*dto.ResetPasswordResponse, error) {
	var result *dto.ResetPasswordResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
