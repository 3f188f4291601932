package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mzwakhe/izaziso/utils"
)

func TestNoticeTypeValid(t *testing.T) {
	assert.True(t, NoticeTypeDeath.Valid())
	assert.True(t, NoticeTypeMemorial.Valid())
	assert.True(t, NoticeTypeUnveiling.Valid())
	assert.False(t, NoticeType("funeral").Valid())
	assert.False(t, NoticeType("").Valid())
}

func TestNoticeFullName(t *testing.T) {
	notice := &Notice{
		FirstName: "Nomvula",
		LastName:  "Khumalo",
	}
	assert.Equal(t, "Nomvula Khumalo", notice.FullName())

	notice.MiddleName = utils.ToPtr("Grace")
	notice.MaidenName = utils.ToPtr("Mabaso")
	assert.Equal(t, "Nomvula Grace Mabaso Khumalo", notice.FullName())
}

func TestNoticeBeforeCreateSetsCreatedAt(t *testing.T) {
	notice := &Notice{}
	assert.NoError(t, notice.BeforeCreate(nil))
	assert.False(t, notice.CreatedAt.IsZero())

	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	notice = &Notice{CreatedAt: stamp}
	assert.NoError(t, notice.BeforeCreate(nil))
	assert.Equal(t, stamp, notice.CreatedAt)
}
