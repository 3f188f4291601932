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
	"github.com/mzwakhe/izaziso/config"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	apptesting "github.com/mzwakhe/izaziso/testing"
	"github.com/mzwakhe/izaziso/utils"
)

// stubGateway is an in-process stand-in for the hosted checkout gateway
type stubGateway struct {
	checkoutErr error
	status      string
	verifyOK    bool
}

func (g *stubGateway) CreateCheckout(ctx context.Context, in services.CheckoutInput) (*services.CheckoutResult, error) {
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	expires := time.Now().UTC().Add(utils.PaymentRequestTTL)
	return &services.CheckoutResult{
		ReferenceNumber: "PF-" + in.InvoiceNumber,
		PaymentURL:      "https://gateway.example.com/checkout/" + in.InvoiceNumber,
		ExpiresAt:       &expires,
	}, nil
}

func (g *stubGateway) QueryStatus(ctx context.Context, reference string) (*services.CheckoutStatus, error) {
	status := g.status
	if status == "" {
		status = services.GatewayStatusPending
	}
	return &services.CheckoutStatus{
		ReferenceNumber: reference,
		Status:          status,
		RawStatus:       status,
	}, nil
}

func (g *stubGateway) VerifyNotification(params map[string]string) bool {
	return g.verifyOK
}

func setupFlowTest(t *testing.T) (*apptesting.TestDB, *apptesting.TestFixtures) {
	t.Helper()

	tdb, err := apptesting.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := tdb.TeardownTestDB(); err != nil {
			t.Logf("failed to teardown test database: %v", err)
		}
	})

	return tdb, apptesting.NewTestFixtures(tdb)
}

func newAdFlow(tdb *apptesting.TestDB, gateway services.PaymentGateway) businessflow.AdFlow {
	return businessflow.NewAdFlow(
		repository.NewAdRepository(tdb.DB),
		repository.NewAccountRepository(tdb.DB),
		repository.NewMediaAssetRepository(tdb.DB),
		repository.NewPaymentRequestRepository(tdb.DB),
		repository.NewAuditLogRepository(tdb.DB),
		gateway,
		config.PayFastConfig{
			ReturnURL: "https://izaziso.example.com/payments/return",
			CancelURL: "https://izaziso.example.com/payments/cancel",
			NotifyURL: "https://izaziso.example.com/api/v1/payments/notify",
		},
		&config.CacheConfig{RedisPrefix: "izaziso-test"},
		nil,
		tdb.DB,
	)
}

func flowMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "flow-test")
}

func TestSubmitAd(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdFlow(tdb, &stubGateway{})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	photo, err := fixtures.CreateTestMediaAsset(org.ID)
	require.NoError(t, err)

	resp, err := flow.SubmitAd(ctx, org.ID, &dto.SubmitAdRequest{
		Name:    "Thula Funeral Services",
		Text:    "Dignified funeral cover for the whole family.",
		Link:    "https://thula.example.com",
		PhotoID: photo.UUID.String(),
		Tier:    int(models.AdTierFortnight),
	}, flowMetadata())
	require.NoError(t, err)

	assert.Equal(t, string(models.AdStatusPending), resp.Ad.Status)
	assert.False(t, utils.IsTrue(resp.Ad.Active))
	assert.False(t, utils.IsTrue(resp.Ad.Paid))
	assert.Equal(t, uint64(200), resp.Ad.Total)
	assert.Equal(t, utils.UTCToday().AddDate(0, 0, 14), resp.Ad.Expires)

	require.NotNil(t, resp.Payment)
	assert.NotEmpty(t, resp.Payment.ReferenceNumber)
	assert.NotEmpty(t, resp.Payment.PaymentURL)
}

func TestSubmitAdRequiresOrganization(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdFlow(tdb, &stubGateway{})

	personal, err := fixtures.CreateTestAccount()
	require.NoError(t, err)
	photo, err := fixtures.CreateTestMediaAsset(personal.ID)
	require.NoError(t, err)

	_, err = flow.SubmitAd(ctx, personal.ID, &dto.SubmitAdRequest{
		Name:    "My Ad",
		Text:    "Text",
		Link:    "https://example.com",
		PhotoID: photo.UUID.String(),
		Tier:    int(models.AdTierWeek),
	}, flowMetadata())
	assert.True(t, businessflow.IsNotOrganization(err))
}

func TestSubmitAdInvalidTier(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdFlow(tdb, &stubGateway{})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	photo, err := fixtures.CreateTestMediaAsset(org.ID)
	require.NoError(t, err)

	_, err = flow.SubmitAd(ctx, org.ID, &dto.SubmitAdRequest{
		Name:    "My Ad",
		Text:    "Text",
		Link:    "https://example.com",
		PhotoID: photo.UUID.String(),
		Tier:    10,
	}, flowMetadata())
	assert.True(t, businessflow.IsInvalidTier(err))
}

func TestSubmitAdPhotoOwnership(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdFlow(tdb, &stubGateway{})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	other, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	photo, err := fixtures.CreateTestMediaAsset(other.ID)
	require.NoError(t, err)

	_, err = flow.SubmitAd(ctx, org.ID, &dto.SubmitAdRequest{
		Name:    "My Ad",
		Text:    "Text",
		Link:    "https://example.com",
		PhotoID: photo.UUID.String(),
		Tier:    int(models.AdTierWeek),
	}, flowMetadata())
	assert.True(t, businessflow.IsPhotoAccessDenied(err))
}

func TestResubmitAd(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdFlow(tdb, &stubGateway{})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	photo, err := fixtures.CreateTestMediaAsset(org.ID)
	require.NoError(t, err)

	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierMonth)
	require.NoError(t, err)

	reason := "text contains contact details"
	ad.PhotoID = photo.UUID.String()
	ad.Status = models.AdStatusRejected
	ad.RejectionReason = &reason
	require.NoError(t, tdb.DB.Save(ad).Error)

	originalExpires := ad.Expires

	resp, err := flow.ResubmitAd(ctx, org.ID, ad.ID, &dto.ResubmitAdRequest{
		Name:    "Thula Funeral Services",
		Text:    "Dignified funeral cover.",
		Link:    "https://thula.example.com",
		PhotoID: photo.UUID.String(),
	}, flowMetadata())
	require.NoError(t, err)

	assert.Equal(t, string(models.AdStatusPending), resp.Ad.Status)
	assert.Nil(t, resp.Ad.RejectionReason)
	assert.False(t, utils.IsTrue(resp.Ad.Active))
	assert.True(t, originalExpires.Equal(resp.Ad.Expires))
}

func TestResubmitAdOnlyFromRejected(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdFlow(tdb, &stubGateway{})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	_, err = flow.ResubmitAd(ctx, org.ID, ad.ID, &dto.ResubmitAdRequest{
		Name:    "Edited",
		Text:    "Edited",
		Link:    "https://example.com",
		PhotoID: ad.PhotoID,
	}, flowMetadata())
	assert.True(t, businessflow.IsAdNotResubmittable(err))
}

func TestResubmitAdWrongOwner(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdFlow(tdb, &stubGateway{})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	stranger, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)

	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	ad.Status = models.AdStatusRejected
	ad.RejectionReason = utils.ToPtr("off topic")
	require.NoError(t, tdb.DB.Save(ad).Error)

	_, err = flow.ResubmitAd(ctx, stranger.ID, ad.ID, &dto.ResubmitAdRequest{
		Name:    "Edited",
		Text:    "Edited",
		Link:    "https://example.com",
		PhotoID: ad.PhotoID,
	}, flowMetadata())
	assert.True(t, businessflow.IsAdAccessDenied(err))
}
