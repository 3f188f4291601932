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
)

func newNoticeFlow(tdb *apptesting.TestDB, gateway services.PaymentGateway) businessflow.NoticeFlow {
	return businessflow.NewNoticeFlow(
		repository.NewNoticeRepository(tdb.DB),
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

func deathNoticeRequest() *dto.SubmitNoticeRequest {
	dop := "2026-01-09"
	return &dto.SubmitNoticeRequest{
		NoticeType: string(models.NoticeTypeDeath),
		DeathNotice: &dto.DeathNoticeDraft{
			Subject: dto.NoticeSubjectDraft{
				FirstName:    "Nomvula",
				LastName:     "Khumalo",
				Location:     "Pietermaritzburg",
				DOB:          "1948-03-14",
				DOP:          &dop,
				Relationship: "daughter",
			},
			Obituary:     "Loving mother and grandmother.",
			EventDate:    "2026-09-05",
			EventDetails: "Service at the family home, 09:00.",
		},
	}
}

func TestSubmitDeathNotice(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newNoticeFlow(tdb, &stubGateway{})

	account, err := fixtures.CreateTestAccount()
	require.NoError(t, err)

	resp, err := flow.SubmitNotice(ctx, account.ID, deathNoticeRequest(), flowMetadata())
	require.NoError(t, err)

	assert.Equal(t, string(models.NoticeTypeDeath), resp.Notice.NoticeType)
	assert.Equal(t, "Nomvula Khumalo", resp.Notice.FullName)
	require.NotNil(t, resp.Notice.Age)
	assert.Equal(t, 77, *resp.Notice.Age)
	require.NotNil(t, resp.Notice.Obituary)

	require.NotNil(t, resp.Payment)
	assert.NotEmpty(t, resp.Payment.ReferenceNumber)
	assert.NotEmpty(t, resp.Payment.PaymentURL)
}

func TestSubmitNoticeDraftMismatch(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newNoticeFlow(tdb, &stubGateway{})

	account, err := fixtures.CreateTestAccount()
	require.NoError(t, err)

	// The named type must carry its own draft
	req := deathNoticeRequest()
	req.NoticeType = string(models.NoticeTypeMemorial)

	_, err = flow.SubmitNotice(ctx, account.ID, req, flowMetadata())
	assert.True(t, businessflow.IsNoticeDraftMissing(err))
}

func TestSubmitNoticeMissingEventDate(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newNoticeFlow(tdb, &stubGateway{})

	account, err := fixtures.CreateTestAccount()
	require.NoError(t, err)

	req := deathNoticeRequest()
	req.DeathNotice.EventDate = ""

	_, err = flow.SubmitNotice(ctx, account.ID, req, flowMetadata())
	assert.True(t, businessflow.IsEventDateRequired(err))
}

func TestGetNotice(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newNoticeFlow(tdb, &stubGateway{})

	account, err := fixtures.CreateTestAccount()
	require.NoError(t, err)
	notice, err := fixtures.CreatePublishedNotice(account.ID, models.NoticeTypeMemorial)
	require.NoError(t, err)

	resp, err := flow.GetNotice(ctx, notice.ID)
	require.NoError(t, err)
	assert.Equal(t, notice.ID, resp.Notice.ID)
	assert.Equal(t, "Nomvula Khumalo", resp.Notice.FullName)

	_, err = flow.GetNotice(ctx, 999999)
	assert.True(t, businessflow.IsNoticeNotFound(err))
}

func TestAddTribute(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newNoticeFlow(tdb, &stubGateway{})

	account, err := fixtures.CreateTestAccount()
	require.NoError(t, err)
	notice, err := fixtures.CreatePublishedNotice(account.ID, models.NoticeTypeDeath)
	require.NoError(t, err)

	resp, err := flow.AddTribute(ctx, notice.ID, flowMetadata())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), resp.Tributes)

	resp, err = flow.AddTribute(ctx, notice.ID, flowMetadata())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), resp.Tributes)
}

func TestDeleteNoticeOwnerOnly(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newNoticeFlow(tdb, &stubGateway{})

	owner, err := fixtures.CreateTestAccount()
	require.NoError(t, err)
	stranger, err := fixtures.CreateTestAccount()
	require.NoError(t, err)
	notice, err := fixtures.CreateTestNotice(owner.ID, models.NoticeTypeUnveiling)
	require.NoError(t, err)

	err = flow.DeleteNotice(ctx, stranger.ID, notice.ID, flowMetadata())
	assert.True(t, businessflow.IsNoticeAccessDenied(err))

	require.NoError(t, flow.DeleteNotice(ctx, owner.ID, notice.ID, flowMetadata()))

	_, err = flow.GetNotice(ctx, notice.ID)
	assert.True(t, businessflow.IsNoticeNotFound(err))
}

func TestListNoticesFilterAndSearch(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newNoticeFlow(tdb, &stubGateway{})

	account, err := fixtures.CreateTestAccount()
	require.NoError(t, err)
	_, err = fixtures.CreatePublishedNotice(account.ID, models.NoticeTypeDeath)
	require.NoError(t, err)
	_, err = fixtures.CreatePublishedNotice(account.ID, models.NoticeTypeMemorial)
	require.NoError(t, err)

	noticeType := string(models.NoticeTypeDeath)
	resp, err := flow.ListNotices(ctx, &dto.ListNoticesRequest{NoticeType: &noticeType, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, noticeType, resp.Notices[0].NoticeType)

	search := "Khumalo"
	resp, err = flow.ListNotices(ctx, &dto.ListNoticesRequest{Search: &search, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, resp.Notices, 2)
}
