// Package domain defines the persistence models for prayers, support marks,
// comments, and groups. These types are mapped with GORM and form the core
// data layer of the PrayOverUs backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Support types a user may attach to a prayer. At most one support per
// (user, prayer, type) is allowed, enforced by a unique index.
const (
	SupportPraying = "praying"
	SupportHeart   = "heart"
	SupportHug     = "hug"
)

// ValidSupportType reports whether t is one of the allowed support types.
func ValidSupportType(t string) bool {
	switch t {
	case SupportPraying, SupportHeart, SupportHug:
		return true
	}
	return false
}

// Prayer represents a prayer request posted by a user. Public prayers appear
// in the community feed and trigger a fan-out notification on creation;
// private prayers are visible only to their owner (and their group, if any).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the author; indexed for efficient retrieval.
//   - Content: the prayer text (length limits enforced by the service layer).
//   - Public: whether the prayer is visible in the community feed.
//   - GroupID: optional group the prayer was posted into.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Prayer struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_prayers"`
	Content   string         `json:"content"    gorm:"type:text;not null"`
	Public    bool           `json:"public"     gorm:"not null;default:false;index"`
	GroupID   *string        `json:"group_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`

	// SupportCounts is populated by read paths; it is never persisted.
	SupportCounts map[string]int64 `json:"support_counts,omitempty" gorm:"-"`
}

// TableName returns the database table name for Prayer.
func (Prayer) TableName() string { return "prayers" }

// Support represents one user's support mark of a given type on a prayer.
// A user can hold at most one support of each type per prayer (unique index).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - PrayerID: foreign key to the supported prayer (unique per user+type).
//   - UserID: identifier of the supporter (unique per prayer+type).
//   - Type: one of SupportPraying, SupportHeart, SupportHug.
//   - CreatedAt: timestamp managed by GORM.
//   - Prayer: FK association, ensures cascade delete/update.
type Support struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	PrayerID  string    `json:"prayer_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_support_prayer_user_type"`
	UserID    string    `json:"user_id"   gorm:"type:varchar(64);not null;index;uniqueIndex:ux_support_prayer_user_type"`
	Type      string    `json:"type"      gorm:"type:varchar(16);not null;uniqueIndex:ux_support_prayer_user_type;check:type IN ('praying','heart','hug')"`
	CreatedAt time.Time `json:"created_at"`

	// Prayer is the supported request. Support rows are cascade-deleted
	// if the prayer is removed.
	Prayer Prayer `json:"-" gorm:"foreignKey:PrayerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Support.
func (Support) TableName() string { return "supports" }

// Comment represents a single comment left on a prayer.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - PrayerID: foreign key to the commented prayer (indexed).
//   - UserID: identifier of the comment author.
//   - Content: full text of the comment.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
//   - Prayer: FK association, ensures cascade delete/update.
type Comment struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	PrayerID  string         `json:"prayer_id"  gorm:"type:char(36);not null;index:idx_prayer_comments,priority:1"`
	UserID    string         `json:"user_id"    gorm:"type:varchar(64);not null;index"`
	Content   string         `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_prayer_comments,priority:2"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`

	Prayer Prayer `json:"-" gorm:"foreignKey:PrayerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }
