// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Comment model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
)

// CreateComment inserts a new comment on prayerID authored by userID.
func CreateComment(ctx context.Context, db *gorm.DB, prayerID, userID, content string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:        uuid.NewString(),
		PrayerID:  prayerID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// CountComments returns the total number of comments on a prayer.
func CountComments(ctx context.Context, db *gorm.DB, prayerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("prayer_id = ?", prayerID).
		Count(&total).Error
	return total, err
}

// ListCommentsPage returns a page of comments for a prayer ordered by
// creation time ascending (conversation order).
func ListCommentsPage(ctx context.Context, db *gorm.DB, prayerID string, offset, limit int) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).
		Where("prayer_id = ?", prayerID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
