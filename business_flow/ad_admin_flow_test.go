package businessflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzwakhe/izaziso/app/dto"
	businessflow "github.com/mzwakhe/izaziso/business_flow"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	apptesting "github.com/mzwakhe/izaziso/testing"
	"github.com/mzwakhe/izaziso/utils"
)

func newAdAdminFlow(tdb *apptesting.TestDB) businessflow.AdAdminFlow {
	return businessflow.NewAdAdminFlow(
		repository.NewAdRepository(tdb.DB),
		repository.NewAccountRepository(tdb.DB),
		repository.NewAuditLogRepository(tdb.DB),
		tdb.DB,
	)
}

func TestReviewAdApprove(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdAdminFlow(tdb)

	admin, err := fixtures.CreateTestAdmin()
	require.NoError(t, err)
	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	resp, err := flow.ReviewAd(ctx, admin.ID, ad.ID, &dto.AdminReviewAdRequest{
		Status:  "approved",
		Active:  true,
		Version: ad.Version,
	}, flowMetadata())
	require.NoError(t, err)

	assert.Equal(t, string(models.AdStatusApproved), resp.Ad.Status)
	assert.True(t, utils.IsTrue(resp.Ad.Active))
	assert.Nil(t, resp.Ad.RejectionReason)
	assert.Equal(t, ad.Version+1, resp.Ad.Version)
}

func TestReviewAdReject(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdAdminFlow(tdb)

	admin, err := fixtures.CreateTestAdmin()
	require.NoError(t, err)
	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	reason := "link leads to an unrelated site"
	resp, err := flow.ReviewAd(ctx, admin.ID, ad.ID, &dto.AdminReviewAdRequest{
		Status:          "rejected",
		RejectionReason: &reason,
		Version:         ad.Version,
	}, flowMetadata())
	require.NoError(t, err)

	assert.Equal(t, string(models.AdStatusRejected), resp.Ad.Status)
	assert.False(t, utils.IsTrue(resp.Ad.Active))
	require.NotNil(t, resp.Ad.RejectionReason)
	assert.Equal(t, reason, *resp.Ad.RejectionReason)
}

func TestReviewAdRejectRequiresReason(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdAdminFlow(tdb)

	admin, err := fixtures.CreateTestAdmin()
	require.NoError(t, err)
	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	_, err = flow.ReviewAd(ctx, admin.ID, ad.ID, &dto.AdminReviewAdRequest{
		Status:  "rejected",
		Version: ad.Version,
	}, flowMetadata())
	assert.True(t, businessflow.IsRejectionReasonRequired(err))
}

func TestReviewAdStaleVersion(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdAdminFlow(tdb)

	admin, err := fixtures.CreateTestAdmin()
	require.NoError(t, err)
	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	// First decision consumes version 1
	_, err = flow.ReviewAd(ctx, admin.ID, ad.ID, &dto.AdminReviewAdRequest{
		Status:  "approved",
		Active:  true,
		Version: ad.Version,
	}, flowMetadata())
	require.NoError(t, err)

	// A second admin still holding version 1 loses
	reason := "duplicate submission"
	_, err = flow.ReviewAd(ctx, admin.ID, ad.ID, &dto.AdminReviewAdRequest{
		Status:          "rejected",
		RejectionReason: &reason,
		Version:         ad.Version,
	}, flowMetadata())
	assert.True(t, businessflow.IsReviewConflict(err))
}

func TestReviewAdBackToPendingClearsReason(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdAdminFlow(tdb)

	admin, err := fixtures.CreateTestAdmin()
	require.NoError(t, err)
	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	reason := "needs another look"
	resp, err := flow.ReviewAd(ctx, admin.ID, ad.ID, &dto.AdminReviewAdRequest{
		Status:          "rejected",
		RejectionReason: &reason,
		Version:         ad.Version,
	}, flowMetadata())
	require.NoError(t, err)

	resp, err = flow.ReviewAd(ctx, admin.ID, ad.ID, &dto.AdminReviewAdRequest{
		Status:  "pending",
		Version: resp.Ad.Version,
	}, flowMetadata())
	require.NoError(t, err)

	assert.Equal(t, string(models.AdStatusPending), resp.Ad.Status)
	assert.Nil(t, resp.Ad.RejectionReason)
	assert.False(t, utils.IsTrue(resp.Ad.Active))
}

func TestDeleteAd(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdAdminFlow(tdb)

	admin, err := fixtures.CreateTestAdmin()
	require.NoError(t, err)
	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	resp, err := flow.DeleteAd(ctx, admin.ID, ad.ID, flowMetadata())
	require.NoError(t, err)
	assert.Equal(t, ad.ID, resp.ID)

	// Hard delete leaves nothing to delete again
	_, err = flow.DeleteAd(ctx, admin.ID, ad.ID, flowMetadata())
	assert.True(t, businessflow.IsAdNotFound(err))
}

func TestListAdsByStatus(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdAdminFlow(tdb)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	_, err = fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	_, err = fixtures.CreateApprovedAd(org.ID, models.AdTierMonth)
	require.NoError(t, err)

	status := "pending"
	resp, err := flow.ListAds(ctx, &dto.AdminListAdsRequest{Status: &status, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, resp.Ads, 1)
	assert.Equal(t, "pending", resp.Ads[0].Status)

	resp, err = flow.ListAds(ctx, &dto.AdminListAdsRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, resp.Ads, 2)
}
