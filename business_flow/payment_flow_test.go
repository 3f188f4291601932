package businessflow_test

import (
	"context"
	"testing"

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

func newPaymentFlow(tdb *apptesting.TestDB, gateway services.PaymentGateway) businessflow.PaymentFlow {
	return businessflow.NewPaymentFlow(
		repository.NewPaymentRequestRepository(tdb.DB),
		repository.NewAdRepository(tdb.DB),
		repository.NewNoticeRepository(tdb.DB),
		repository.NewAuditLogRepository(tdb.DB),
		gateway,
		&config.CacheConfig{RedisPrefix: "izaziso-test"},
		nil,
		tdb.DB,
	)
}

func TestCheckAdPaymentStatusCompletes(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newPaymentFlow(tdb, &stubGateway{status: services.GatewayStatusComplete})
	adRepo := repository.NewAdRepository(tdb.DB)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	pr, err := fixtures.CreateTestPaymentRequest(org.ID, ad.ID, ad.Total)
	require.NoError(t, err)

	resp, err := flow.CheckAdPaymentStatus(ctx, org.ID, pr.ReferenceNumber, flowMetadata())
	require.NoError(t, err)

	assert.True(t, resp.Paid)
	assert.Equal(t, string(models.PaymentRequestStatusCompleted), resp.Status)

	// Settlement marks the ad paid but leaves moderation untouched
	stored, err := adRepo.ByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.True(t, utils.IsTrue(stored.Paid))
	assert.Equal(t, models.AdStatusPending, stored.Status)
	assert.False(t, utils.IsTrue(stored.Active))
}

func TestCheckAdPaymentStatusStillPending(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newPaymentFlow(tdb, &stubGateway{status: services.GatewayStatusPending})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	pr, err := fixtures.CreateTestPaymentRequest(org.ID, ad.ID, ad.Total)
	require.NoError(t, err)

	resp, err := flow.CheckAdPaymentStatus(ctx, org.ID, pr.ReferenceNumber, flowMetadata())
	require.NoError(t, err)

	assert.False(t, resp.Paid)
	assert.Equal(t, string(models.PaymentRequestStatusPending), resp.Status)
}

func TestCheckAdPaymentStatusWrongOwner(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newPaymentFlow(tdb, &stubGateway{status: services.GatewayStatusPending})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	stranger, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	pr, err := fixtures.CreateTestPaymentRequest(org.ID, ad.ID, ad.Total)
	require.NoError(t, err)

	_, err = flow.CheckAdPaymentStatus(ctx, stranger.ID, pr.ReferenceNumber, flowMetadata())
	assert.True(t, businessflow.IsPaymentReferenceMismatch(err))
}

func TestCheckAdPaymentStatusUnknownReference(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newPaymentFlow(tdb, &stubGateway{})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)

	_, err = flow.CheckAdPaymentStatus(ctx, org.ID, "PF-does-not-exist", flowMetadata())
	assert.True(t, businessflow.IsPaymentRequestNotFound(err))
}

func TestCheckStatusKindMismatch(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newPaymentFlow(tdb, &stubGateway{})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	pr, err := fixtures.CreateTestPaymentRequest(org.ID, ad.ID, ad.Total)
	require.NoError(t, err)

	// An ad checkout is invisible through the notice endpoint
	_, err = flow.CheckNoticePaymentStatus(ctx, org.ID, pr.ReferenceNumber, flowMetadata())
	assert.True(t, businessflow.IsPaymentRequestNotFound(err))
}

func TestPendingReferenceWithoutRedis(t *testing.T) {
	tdb, _ := setupFlowTest(t)
	ctx := context.Background()
	flow := newPaymentFlow(tdb, &stubGateway{})

	resp, err := flow.PendingReference(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, resp.Pending)
	assert.Empty(t, resp.ReferenceNumber)
}

func TestHandleNotificationSettles(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newPaymentFlow(tdb, &stubGateway{verifyOK: true})
	adRepo := repository.NewAdRepository(tdb.DB)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierMonth)
	require.NoError(t, err)
	pr, err := fixtures.CreateTestPaymentRequest(org.ID, ad.ID, ad.Total)
	require.NoError(t, err)

	req := &dto.PaymentNotificationRequest{
		InvoiceNumber:   pr.InvoiceNumber,
		ReferenceNumber: pr.ReferenceNumber,
		PaymentStatus:   "COMPLETE",
		AmountGross:     "350",
		Signature:       "valid",
	}
	require.NoError(t, flow.HandleNotification(ctx, req, flowMetadata()))

	stored, err := adRepo.ByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.True(t, utils.IsTrue(stored.Paid))

	// Gateways resend notifications; a replay is acknowledged without changes
	require.NoError(t, flow.HandleNotification(ctx, req, flowMetadata()))
}

func TestHandleNotificationBadSignature(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newPaymentFlow(tdb, &stubGateway{verifyOK: false})

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	pr, err := fixtures.CreateTestPaymentRequest(org.ID, ad.ID, ad.Total)
	require.NoError(t, err)

	err = flow.HandleNotification(ctx, &dto.PaymentNotificationRequest{
		InvoiceNumber:   pr.InvoiceNumber,
		ReferenceNumber: pr.ReferenceNumber,
		PaymentStatus:   "COMPLETE",
		AmountGross:     "100",
		Signature:       "forged",
	}, flowMetadata())
	assert.True(t, businessflow.IsGatewaySignatureInvalid(err))
}
