package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mzwakhe/izaziso/utils"
)

func TestAdTierPricing(t *testing.T) {
	tests := []struct {
		name  string
		tier  AdTier
		valid bool
		price uint64
	}{
		{"week", AdTierWeek, true, 100},
		{"fortnight", AdTierFortnight, true, 200},
		{"month", AdTierMonth, true, 350},
		{"zero", AdTier(0), false, 0},
		{"unsold duration", AdTier(10), false, 0},
		{"negative", AdTier(-7), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.tier.Valid())
			assert.Equal(t, tt.price, tt.tier.Price())
		})
	}
}

func TestAdStatusValid(t *testing.T) {
	assert.True(t, AdStatusPending.Valid())
	assert.True(t, AdStatusApproved.Valid())
	assert.True(t, AdStatusRejected.Valid())
	assert.False(t, AdStatus("deleted").Valid())
	assert.False(t, AdStatus("").Valid())
}

func TestAdIsResubmittable(t *testing.T) {
	ad := &Ad{Status: AdStatusRejected}
	assert.True(t, ad.IsResubmittable())

	ad.Status = AdStatusPending
	assert.False(t, ad.IsResubmittable())

	ad.Status = AdStatusApproved
	assert.False(t, ad.IsResubmittable())
}

func TestAdIsDisplayable(t *testing.T) {
	today := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  AdStatus
		active  bool
		expires time.Time
		want    bool
	}{
		{"approved active unexpired", AdStatusApproved, true, today.AddDate(0, 0, 5), true},
		{"expires today still shows", AdStatusApproved, true, today, true},
		{"expired yesterday", AdStatusApproved, true, today.AddDate(0, 0, -1), false},
		{"approved but inactive", AdStatusApproved, false, today.AddDate(0, 0, 5), false},
		{"pending never shows", AdStatusPending, true, today.AddDate(0, 0, 5), false},
		{"rejected never shows", AdStatusRejected, true, today.AddDate(0, 0, 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ad := &Ad{
				Status:  tt.status,
				Active:  utils.ToPtr(tt.active),
				Expires: tt.expires,
			}
			assert.Equal(t, tt.want, ad.IsDisplayable(today))
		})
	}
}

func TestAdConsistentLifecycle(t *testing.T) {
	reason := "link leads to an unrelated site"

	tests := []struct {
		name string
		ad   Ad
		want bool
	}{
		{"pending without reason", Ad{Status: AdStatusPending, Active: utils.ToPtr(false)}, true},
		{"approved active", Ad{Status: AdStatusApproved, Active: utils.ToPtr(true)}, true},
		{"rejected with reason", Ad{Status: AdStatusRejected, Active: utils.ToPtr(false), RejectionReason: &reason}, true},
		{"active while pending", Ad{Status: AdStatusPending, Active: utils.ToPtr(true)}, false},
		{"active while rejected", Ad{Status: AdStatusRejected, Active: utils.ToPtr(true), RejectionReason: &reason}, false},
		{"rejected without reason", Ad{Status: AdStatusRejected, Active: utils.ToPtr(false)}, false},
		{"pending carrying a reason", Ad{Status: AdStatusPending, Active: utils.ToPtr(false), RejectionReason: &reason}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ad.ConsistentLifecycle())
		})
	}
}
