package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/services"
	businessflow "github.com/mzwakhe/izaziso/business_flow"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	apptesting "github.com/mzwakhe/izaziso/testing"
	"github.com/mzwakhe/izaziso/utils"
)

func newTestTokenService(t *testing.T) services.TokenService {
	tokenService, err := services.NewTokenService(
		15*time.Minute,
		24*time.Hour,
		"izaziso",
		"izaziso-api",
		false,
		"",
		"",
		"test-signing-secret-0123456789abcdef0123456789abcdef",
	)
	require.NoError(t, err)
	return tokenService
}

func newSignupFlow(t *testing.T, tdb *apptesting.TestDB) businessflow.SignupFlow {
	return businessflow.NewSignupFlow(
		repository.NewAccountRepository(tdb.DB),
		repository.NewOTPVerificationRepository(tdb.DB),
		repository.NewAccountSessionRepository(tdb.DB),
		repository.NewAuditLogRepository(tdb.DB),
		newTestTokenService(t),
		services.NewNotificationService(services.NewMockEmailProvider()),
		tdb.DB,
	)
}

func newLoginFlow(t *testing.T, tdb *apptesting.TestDB) businessflow.LoginFlow {
	return businessflow.NewLoginFlow(
		repository.NewAccountRepository(tdb.DB),
		repository.NewAccountSessionRepository(tdb.DB),
		repository.NewOTPVerificationRepository(tdb.DB),
		repository.NewAuditLogRepository(tdb.DB),
		newTestTokenService(t),
		services.NewNotificationService(services.NewMockEmailProvider()),
		tdb.DB,
	)
}

func signupRequest(email string) *dto.SignupRequest {
	return &dto.SignupRequest{
		FirstName:        "Thandiwe",
		LastName:         "Ngcobo",
		Email:            email,
		ContactNumber:    "+27821234567",
		Organization:     true,
		OrganizationName: utils.ToPtr("Ngcobo Family Undertakers"),
		Password:         "StrongPass1!",
		ConfirmPassword:  "StrongPass1!",
	}
}

func TestSignupCreatesAccountAndOTP(t *testing.T) {
	tdb, _ := setupFlowTest(t)
	ctx := context.Background()
	flow := newSignupFlow(t, tdb)

	resp, err := flow.Signup(ctx, signupRequest("thandiwe.ngcobo@example.com"), flowMetadata())
	require.NoError(t, err)
	assert.NotZero(t, resp.AccountID)
	assert.True(t, resp.OTPSent)

	account, err := repository.NewAccountRepository(tdb.DB).ByID(ctx, resp.AccountID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.True(t, account.IsOrganization())
	assert.False(t, utils.IsTrue(account.IsEmailVerified))

	otps, err := repository.NewOTPVerificationRepository(tdb.DB).ListActiveOTPs(ctx, resp.AccountID)
	require.NoError(t, err)
	require.Len(t, otps, 1)
	assert.Equal(t, models.OTPStatusPending, otps[0].Status)
}

func TestSignupDuplicateEmail(t *testing.T) {
	tdb, _ := setupFlowTest(t)
	ctx := context.Background()
	flow := newSignupFlow(t, tdb)

	_, err := flow.Signup(ctx, signupRequest("dup@example.com"), flowMetadata())
	require.NoError(t, err)

	_, err = flow.Signup(ctx, signupRequest("dup@example.com"), flowMetadata())
	assert.True(t, businessflow.IsEmailAlreadyExists(err))
}

func TestSignupOrganizationNameRequired(t *testing.T) {
	tdb, _ := setupFlowTest(t)
	ctx := context.Background()
	flow := newSignupFlow(t, tdb)

	req := signupRequest("nameless@example.com")
	req.OrganizationName = nil

	_, err := flow.Signup(ctx, req, flowMetadata())
	assert.True(t, businessflow.IsOrganizationNameRequired(err))
}

func TestVerifyOTPCompletesSignup(t *testing.T) {
	tdb, _ := setupFlowTest(t)
	ctx := context.Background()
	flow := newSignupFlow(t, tdb)

	resp, err := flow.Signup(ctx, signupRequest("verify.me@example.com"), flowMetadata())
	require.NoError(t, err)

	otps, err := repository.NewOTPVerificationRepository(tdb.DB).ListActiveOTPs(ctx, resp.AccountID)
	require.NoError(t, err)
	require.Len(t, otps, 1)

	wrong := &dto.OTPVerificationRequest{
		AccountID: resp.AccountID,
		OTPCode:   "000000",
		OTPType:   models.OTPTypeEmail,
	}
	if otps[0].OTPCode == wrong.OTPCode {
		wrong.OTPCode = "000001"
	}
	_, err = flow.VerifyOTP(ctx, wrong, flowMetadata())
	assert.True(t, businessflow.IsInvalidOTPCode(err))

	verified, err := flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{
		AccountID: resp.AccountID,
		OTPCode:   otps[0].OTPCode,
		OTPType:   models.OTPTypeEmail,
	}, flowMetadata())
	require.NoError(t, err)
	assert.NotEmpty(t, verified.Token)
	assert.NotEmpty(t, verified.RefreshToken)
	assert.True(t, utils.IsTrue(verified.Account.IsEmailVerified))
}

func TestLogin(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newLoginFlow(t, tdb)

	account, err := fixtures.CreateTestAccount()
	require.NoError(t, err)

	resp, err := flow.Login(ctx, &dto.LoginRequest{
		Email:    account.Email,
		Password: "TestPass123!",
	}, flowMetadata())
	require.NoError(t, err)
	assert.Equal(t, account.ID, resp.Account.ID)
	assert.NotEmpty(t, resp.Session.SessionToken)
}

func TestLoginIncorrectPassword(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newLoginFlow(t, tdb)

	account, err := fixtures.CreateTestAccount()
	require.NoError(t, err)

	_, err = flow.Login(ctx, &dto.LoginRequest{
		Email:    account.Email,
		Password: "WrongPass123!",
	}, flowMetadata())
	assert.True(t, businessflow.IsIncorrectPassword(err))
}

func TestLoginUnknownEmail(t *testing.T) {
	tdb, _ := setupFlowTest(t)
	ctx := context.Background()
	flow := newLoginFlow(t, tdb)

	_, err := flow.Login(ctx, &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "TestPass123!",
	}, flowMetadata())
	assert.True(t, businessflow.IsAccountNotFound(err))
}

func TestRefreshTokenRotatesSession(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newLoginFlow(t, tdb)

	account, err := fixtures.CreateTestAccount()
	require.NoError(t, err)

	login, err := flow.Login(ctx, &dto.LoginRequest{
		Email:    account.Email,
		Password: "TestPass123!",
	}, flowMetadata())
	require.NoError(t, err)

	require.NotNil(t, login.Session.RefreshToken)
	oldRefresh := *login.Session.RefreshToken

	refreshed, err := flow.RefreshToken(ctx, &dto.RefreshTokenRequest{
		RefreshToken: oldRefresh,
	}, flowMetadata())
	require.NoError(t, err)
	assert.NotEqual(t, login.Session.SessionToken, refreshed.Session.SessionToken)

	// The old session was retired with its refresh token
	_, err = flow.RefreshToken(ctx, &dto.RefreshTokenRequest{
		RefreshToken: oldRefresh,
	}, flowMetadata())
	assert.Error(t, err)
}
