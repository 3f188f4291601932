// Package testing provides test utilities and database setup for testing the notice platform
package testing

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAccount creates a verified personal account
func (tf *TestFixtures) CreateTestAccount() (*models.Account, error) {
	return tf.createAccount(false, false)
}

// CreateTestOrganization creates a verified organization account that may buy ad placement
func (tf *TestFixtures) CreateTestOrganization() (*models.Account, error) {
	return tf.createAccount(true, false)
}

// CreateTestAdmin creates an account with moderation rights
func (tf *TestFixtures) CreateTestAdmin() (*models.Account, error) {
	return tf.createAccount(false, true)
}

func (tf *TestFixtures) createAccount(organization, admin bool) (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	account := &models.Account{
		UUID:            uuid.New(),
		FirstName:       "Sipho",
		LastName:        "Dlamini",
		Email:           fmt.Sprintf("sipho.dlamini.%s@example.com", randomDigits),
		ContactNumber:   fmt.Sprintf("+2782%s", randomDigits[:7]),
		PasswordHash:    string(hashedPassword),
		Organization:    utils.ToPtr(organization),
		IsAdmin:         utils.ToPtr(admin),
		IsActive:        utils.ToPtr(true),
		IsEmailVerified: utils.ToPtr(true),
	}
	if organization {
		account.OrganizationName = utils.ToPtr("Thula Funeral Services")
	}

	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create test account: %w", err)
	}

	return account, nil
}

// CreateTestAd creates a pending, unpaid ad for the given account
func (tf *TestFixtures) CreateTestAd(accountID uint, tier models.AdTier) (*models.Ad, error) {
	ad := &models.Ad{
		AccountID: accountID,
		Name:      "Thula Funeral Services",
		Text:      "Dignified funeral cover for the whole family.",
		Link:      "https://thula.example.com",
		PhotoID:   uuid.New().String(),
		Tier:      tier,
		Total:     tier.Price(),
		Currency:  utils.USDCurrency,
		Status:    models.AdStatusPending,
		Active:    utils.ToPtr(false),
		Paid:      utils.ToPtr(false),
		Expires:   utils.UTCToday().AddDate(0, 0, int(tier)),
	}

	if err := tf.DB.DB.Create(ad).Error; err != nil {
		return nil, fmt.Errorf("failed to create test ad: %w", err)
	}

	return ad, nil
}

// CreateApprovedAd creates a paid, approved, active ad visible in the public rotation
func (tf *TestFixtures) CreateApprovedAd(accountID uint, tier models.AdTier) (*models.Ad, error) {
	ad, err := tf.CreateTestAd(accountID, tier)
	if err != nil {
		return nil, err
	}

	ad.Status = models.AdStatusApproved
	ad.Active = utils.ToPtr(true)
	ad.Paid = utils.ToPtr(true)
	if err := tf.DB.DB.Save(ad).Error; err != nil {
		return nil, fmt.Errorf("failed to approve test ad: %w", err)
	}

	return ad, nil
}

// CreateTestNotice creates an unpaid notice of the given type
func (tf *TestFixtures) CreateTestNotice(accountID uint, noticeType models.NoticeType) (*models.Notice, error) {
	dob := time.Date(1948, 3, 14, 0, 0, 0, 0, time.UTC)
	dop := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	notice := &models.Notice{
		AccountID:    accountID,
		NoticeType:   noticeType,
		FirstName:    "Nomvula",
		LastName:     "Khumalo",
		Location:     "Pietermaritzburg",
		DOB:          dob,
		DOP:          &dop,
		EventDate:    utils.UTCToday().AddDate(0, 0, 7),
		EventDetails: "Service at the family home, 09:00.",
		Relationship: "daughter",
		Active:       utils.ToPtr(false),
		Paid:         utils.ToPtr(false),
	}

	if err := tf.DB.DB.Create(notice).Error; err != nil {
		return nil, fmt.Errorf("failed to create test notice: %w", err)
	}

	return notice, nil
}

// CreatePublishedNotice creates a paid, visible notice of the given type
func (tf *TestFixtures) CreatePublishedNotice(accountID uint, noticeType models.NoticeType) (*models.Notice, error) {
	notice, err := tf.CreateTestNotice(accountID, noticeType)
	if err != nil {
		return nil, err
	}

	notice.Active = utils.ToPtr(true)
	notice.Paid = utils.ToPtr(true)

	if err := tf.DB.DB.Save(notice).Error; err != nil {
		return nil, fmt.Errorf("failed to publish test notice: %w", err)
	}

	return notice, nil
}

// CreateTestMediaAsset creates a stored photo record owned by the account
func (tf *TestFixtures) CreateTestMediaAsset(accountID uint) (*models.MediaAsset, error) {
	id := uuid.New()

	asset := &models.MediaAsset{
		UUID:             id,
		AccountID:        accountID,
		OriginalFilename: "portrait.jpg",
		StoredPath:       fmt.Sprintf("data/uploads/photos/2026-01-10/%s.jpg", id),
		ThumbnailPath:    fmt.Sprintf("data/uploads/photos/2026-01-10/%s_thumb.jpg", id),
		SizeBytes:        128 * 1024,
		MimeType:         "image/jpeg",
		Extension:        ".jpg",
	}

	if err := tf.DB.DB.Create(asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create test media asset: %w", err)
	}

	return asset, nil
}

// CreateTestPaymentRequest creates a payment request in created state for an ad
func (tf *TestFixtures) CreateTestPaymentRequest(accountID, adID uint, amount uint64) (*models.PaymentRequest, error) {
	now := time.Now().UTC()
	expires := now.Add(utils.PaymentRequestTTL)

	pr := &models.PaymentRequest{
		UUID:            uuid.New(),
		CorrelationID:   uuid.New(),
		AccountID:       accountID,
		Kind:            models.PaymentRequestKindAd,
		AdID:            &adID,
		Amount:          amount,
		Currency:        utils.USDCurrency,
		Description:     "Ad placement",
		InvoiceNumber:   fmt.Sprintf("INV-%d-%d", now.Unix(), rand.Intn(10000)),
		RedirectURL:     "https://izaziso.example.com/payments/return",
		ReferenceNumber: fmt.Sprintf("PF-%d", rand.Intn(1000000)),
		PaymentURL:      "https://gateway.example.com/checkout",
		Status:          models.PaymentRequestStatusCreated,
		ExpiresAt:       &expires,
	}

	if err := tf.DB.DB.Create(pr).Error; err != nil {
		return nil, fmt.Errorf("failed to create test payment request: %w", err)
	}

	return pr, nil
}

// CreateTestOTP creates a test OTP verification record
func (tf *TestFixtures) CreateTestOTP(accountID uint, otpType, otpCode string) (*models.OTPVerification, error) {
	otp := &models.OTPVerification{
		CorrelationID: uuid.New(),
		AccountID:     accountID,
		OTPCode:       otpCode,
		OTPType:       otpType,
		TargetValue:   "sipho.dlamini@example.com",
		Status:        models.OTPStatusPending,
		AttemptsCount: 0,
		MaxAttempts:   3,
		ExpiresAt:     time.Now().Add(5 * time.Minute),
	}

	if err := tf.DB.DB.Create(otp).Error; err != nil {
		return nil, fmt.Errorf("failed to create test OTP: %w", err)
	}

	return otp, nil
}

// GenerateSecureToken returns a random url-safe token for session fixtures
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates a test account session
func (tf *TestFixtures) CreateTestSession(accountID uint) (*models.AccountSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.AccountSession{
		CorrelationID: uuid.New(),
		AccountID:     accountID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}
