package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mzwakhe/izaziso/models"
	"github.com/mzwakhe/izaziso/repository"
	apptesting "github.com/mzwakhe/izaziso/testing"
	"github.com/mzwakhe/izaziso/utils"
)

func setupRepoTest(t *testing.T) (*apptesting.TestDB, *apptesting.TestFixtures) {
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

func TestUpdateReviewedBumpsVersion(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()
	adRepo := repository.NewAdRepository(tdb.DB)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	require.Equal(t, uint(1), ad.Version)

	ad.Status = models.AdStatusApproved
	ad.Active = utils.ToPtr(true)
	require.NoError(t, adRepo.UpdateReviewed(ctx, ad, 1))
	assert.Equal(t, uint(2), ad.Version)

	stored, err := adRepo.ByID(ctx, ad.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.AdStatusApproved, stored.Status)
	assert.True(t, utils.IsTrue(stored.Active))
	assert.Equal(t, uint(2), stored.Version)
}

func TestUpdateReviewedStaleVersion(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()
	adRepo := repository.NewAdRepository(tdb.DB)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	// First reviewer wins
	ad.Status = models.AdStatusApproved
	ad.Active = utils.ToPtr(true)
	require.NoError(t, adRepo.UpdateReviewed(ctx, ad, 1))

	// Second reviewer still holds version 1
	reason := "duplicate submission"
	stale := &models.Ad{
		ID:              ad.ID,
		Status:          models.AdStatusRejected,
		Active:          utils.ToPtr(false),
		RejectionReason: &reason,
	}
	err = adRepo.UpdateReviewed(ctx, stale, 1)
	assert.True(t, errors.Is(err, repository.ErrVersionConflict))

	// The winning decision is untouched
	stored, err := adRepo.ByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusApproved, stored.Status)
	assert.Nil(t, stored.RejectionReason)
}

func TestListDisplayable(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()
	adRepo := repository.NewAdRepository(tdb.DB)
	today := utils.UTCToday()

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)

	first, err := fixtures.CreateApprovedAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	second, err := fixtures.CreateApprovedAd(org.ID, models.AdTierMonth)
	require.NoError(t, err)

	// Pending, inactive and expired ads stay out of the rotation
	_, err = fixtures.CreateTestAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	expired, err := fixtures.CreateApprovedAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)
	expired.Expires = today.AddDate(0, 0, -1)
	require.NoError(t, tdb.DB.Save(expired).Error)

	ads, err := adRepo.ListDisplayable(ctx, today, 10, 0)
	require.NoError(t, err)
	require.Len(t, ads, 2)

	// Newest placement first
	assert.Equal(t, second.ID, ads[0].ID)
	assert.Equal(t, first.ID, ads[1].ID)
}

func TestIncrementClicks(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()
	adRepo := repository.NewAdRepository(tdb.DB)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateApprovedAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	require.NoError(t, adRepo.IncrementClicks(ctx, ad.ID))
	require.NoError(t, adRepo.IncrementClicks(ctx, ad.ID))

	stored, err := adRepo.ByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stored.Clicks)

	err = adRepo.IncrementClicks(ctx, 999999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestIncrementClicksConcurrent(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()
	adRepo := repository.NewAdRepository(tdb.DB)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateApprovedAd(org.ID, models.AdTierWeek)
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- adRepo.IncrementClicks(ctx, ad.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := adRepo.ByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(workers), stored.Clicks)
}

func TestDeleteHard(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()
	adRepo := repository.NewAdRepository(tdb.DB)

	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	ad, err := fixtures.CreateTestAd(org.ID, models.AdTierFortnight)
	require.NoError(t, err)

	require.NoError(t, adRepo.DeleteHard(ctx, ad.ID))

	stored, err := adRepo.ByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
