// Package domain defines the core persistence models for the application.
// This file holds the group aggregate: named circles of users who share
// prayers with each other.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Group is a named circle of users. Prayers may be posted into a group, in
// which case they are visible to its members via the group feed.
type Group struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name"       gorm:"type:varchar(255);not null"`
	OwnerID   string         `json:"owner_id"   gorm:"type:varchar(64);not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName implements the GORM tabler interface.
func (Group) TableName() string { return "groups" }

// GroupMembership links a user to a group. A user can be a member of a group
// at most once (unique index on group_id + user_id).
type GroupMembership struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	GroupID   string    `json:"group_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_membership_group_user"`
	UserID    string    `json:"user_id"  gorm:"type:varchar(64);not null;index;uniqueIndex:ux_membership_group_user"`
	CreatedAt time.Time `json:"created_at"`

	Group Group `json:"-" gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName implements the GORM tabler interface.
func (GroupMembership) TableName() string { return "group_memberships" }
