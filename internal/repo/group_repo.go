// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for groups and
// group memberships.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
)

// CreateGroup inserts a new group owned by ownerID. The owner is also
// enrolled as the first member in the same transaction.
func CreateGroup(ctx context.Context, db *gorm.DB, ownerID, name string) (*domain.Group, error) {
	g := &domain.Group{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		m := &domain.GroupMembership{
			ID:        uuid.NewString(),
			GroupID:   g.ID,
			UserID:    ownerID,
			CreatedAt: g.CreatedAt,
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetGroup fetches a group by ID or returns ErrNotFound.
func GetGroup(ctx context.Context, db *gorm.DB, id string) (*domain.Group, error) {
	var g domain.Group
	if err := db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// ListUserGroups returns all groups the user is a member of, most recently
// joined first.
func ListUserGroups(ctx context.Context, db *gorm.DB, userID string) ([]domain.Group, error) {
	var out []domain.Group
	err := db.WithContext(ctx).
		Joins("JOIN group_memberships gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Order("gm.created_at desc").
		Find(&out).Error
	return out, err
}

// AddMember enrolls userID into groupID. Returns ErrDuplicate when the user
// is already a member.
func AddMember(ctx context.Context, db *gorm.DB, groupID, userID string) (*domain.GroupMembership, error) {
	m := &domain.GroupMembership{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return m, nil
}

// IsMember reports whether userID belongs to groupID.
func IsMember(ctx context.Context, db *gorm.DB, groupID, userID string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&total).Error
	return total > 0, err
}
