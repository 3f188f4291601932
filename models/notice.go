package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/mzwakhe/izaziso/utils"
	"gorm.io/gorm"
)

// NoticeType discriminates the kinds of memorial notices the platform sells.
type NoticeType string

const (
	NoticeTypeDeath     NoticeType = "death_notice"
	NoticeTypeMemorial  NoticeType = "memorial_service"
	NoticeTypeUnveiling NoticeType = "tombstone_unveiling"
)

// String returns the string representation of the type
func (t NoticeType) String() string {
	return string(t)
}

// Valid checks if the type is valid
func (t NoticeType) Valid() bool {
	switch t {
	case NoticeTypeDeath, NoticeTypeMemorial, NoticeTypeUnveiling:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for NoticeType
func (t *NoticeType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = NoticeType(v)
	case []byte:
		*t = NoticeType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NoticeType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for NoticeType
func (t NoticeType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid NoticeType: %s", t)
	}
	return string(t), nil
}

// DisplayName returns a human-readable label for the notice type
func (t NoticeType) DisplayName() string {
	switch t {
	case NoticeTypeDeath:
		return "Death Notice"
	case NoticeTypeMemorial:
		return "Memorial Service"
	case NoticeTypeUnveiling:
		return "Tombstone Unveiling"
	default:
		return string(t)
	}
}

// Notice represents a memorial or announcement record.
type Notice struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	AccountID  uint       `gorm:"not null;index:idx_notices_account_id" json:"account_id"`
	NoticeType NoticeType `gorm:"type:notice_type;not null;index:idx_notices_type" json:"notice_type"`

	// Name of the deceased
	FirstName  string  `gorm:"size:120;not null" json:"first_name"`
	MiddleName *string `gorm:"size:120" json:"middle_name,omitempty"`
	MaidenName *string `gorm:"size:120" json:"maiden_name,omitempty"`
	Nickname   *string `gorm:"size:120" json:"nickname,omitempty"`
	LastName   string  `gorm:"size:120;not null" json:"last_name"`

	Location     string     `gorm:"size:255;not null" json:"location"`
	DOB          time.Time  `gorm:"type:date;not null" json:"dob"`
	DOP          *time.Time `gorm:"type:date" json:"dop,omitempty"`
	EventDate    time.Time  `gorm:"type:date;not null;index:idx_notices_event_date" json:"event_date"`
	EventDetails string     `gorm:"type:text;not null" json:"event_details"`
	Obituary     *string    `gorm:"type:text" json:"obituary,omitempty"`
	Announcement *string    `gorm:"type:text" json:"announcement,omitempty"`
	PhotoID      *string    `gorm:"size:255" json:"photo_id,omitempty"`
	Relationship string     `gorm:"size:120;not null" json:"relationship"`

	// Publication state; notices carry no moderation queue, just payment
	Active          *bool   `gorm:"default:false;index:idx_notices_active" json:"active"`
	ReferenceNumber *string `gorm:"size:64;index:idx_notices_reference_number" json:"reference_number,omitempty"`
	Paid            *bool   `gorm:"default:false" json:"paid"`

	// Engagement; incremented server-side like ad clicks
	Tributes uint64 `gorm:"not null;default:0" json:"tributes"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_notices_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Account *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
}

// TableName returns the table name for the model
func (Notice) TableName() string {
	return "notices"
}

// BeforeCreate is called before creating a new record
func (n *Notice) BeforeCreate(tx *gorm.DB) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (n *Notice) BeforeUpdate(tx *gorm.DB) error {
	n.UpdatedAt = utils.UTCNowPtr()
	return nil
}

// FullName composes the display name of the deceased
func (n *Notice) FullName() string {
	return utils.FullName(n.FirstName, n.MiddleName, n.MaidenName, n.LastName)
}

// NoticeFilter represents filter criteria for notice queries
type NoticeFilter struct {
	ID              *uint
	AccountID       *uint
	NoticeType      *NoticeType
	Active          *bool
	Paid            *bool
	ReferenceNumber *string
	// NamePattern matches against first, middle, maiden, nickname and last
	// names as well as the event location.
	NamePattern   *string
	EventAfter    *time.Time
	EventBefore   *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
