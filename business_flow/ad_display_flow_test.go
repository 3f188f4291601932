package businessflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/mzwakhe/izaziso/business_flow"
	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	apptesting "github.com/mzwakhe/izaziso/testing"
	"github.com/mzwakhe/izaziso/utils"
)

func newAdDisplayFlow(tdb *apptesting.TestDB) businessflow.AdDisplayFlow {
	return businessflow.NewAdDisplayFlow(
		repository.NewAdRepository(tdb.DB),
		repository.NewAuditLogRepository(tdb.DB),
		tdb.DB,
	)
}

func TestActiveAds(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdDisplayFlow(tdb)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)

	older, err := fixtures.CreateApprovedAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	newer, err := fixtures.CreateApprovedAd(org.ID, models.AdTierMonth)
	require.NoError(t, err)

	// Pending ads never reach the rotation
	_, err = fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	resp, err := flow.ActiveAds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, resp.Ads, 2)

	assert.Equal(t, newer.ID, resp.Ads[0].ID)
	assert.Equal(t, older.ID, resp.Ads[1].ID)
}

func TestActiveAdsEmpty(t *testing.T) {
	tdb, _ := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdDisplayFlow(tdb)

	resp, err := flow.ActiveAds(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, resp.Ads)
}

func TestClickAd(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdDisplayFlow(tdb)
	adRepo := repository.NewAdRepository(tdb.DB)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateApprovedAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	resp, err := flow.ClickAd(ctx, ad.ID, flowMetadata())
	require.NoError(t, err)
	assert.Equal(t, ad.Link, resp.Link)

	stored, err := adRepo.ByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.Clicks)
}

func TestClickAdNotDisplayable(t *testing.T) {
	tdb, fixtures := setupFlowTest(t)
	ctx := context.Background()
	flow := newAdDisplayFlow(tdb)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)

	// Pending ad rejects clicks
	pending, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	_, err = flow.ClickAd(ctx, pending.ID, flowMetadata())
	assert.True(t, businessflow.IsAdNotFound(err))

	// Expired ad rejects clicks too
	expired, err := fixtures.CreateApprovedAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	expired.Expires = utils.UTCToday().AddDate(0, 0, -1)
	require.NoError(t, tdb.DB.Save(expired).Error)
	_, err = flow.ClickAd(ctx, expired.ID, flowMetadata())
	assert.True(t, businessflow.IsAdNotFound(err))

	// Unknown id
	_, err = flow.ClickAd(ctx, 999999, flowMetadata())
	assert.True(t, businessflow.IsAdNotFound(err))
}
