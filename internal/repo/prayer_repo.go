// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Prayer model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a prayer is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePrayer inserts a new Prayer row authored by userID. The prayer ID is
// a randomly generated UUID (string), and CreatedAt is set to UTC.
//
// On success, it returns the persisted Prayer. On failure, it returns a DB error.
func CreatePrayer(ctx context.Context, db *gorm.DB, userID, content string, public bool, groupID *string) (*domain.Prayer, error) {
	p := &domain.Prayer{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		Public:    public,
		GroupID:   groupID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPrayer fetches a single prayer by its ID. If the record does not exist,
// it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetPrayer(ctx context.Context, db *gorm.DB, id string) (*domain.Prayer, error) {
	var p domain.Prayer
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPublicPrayersPage returns a page of public prayers ordered by creation
// time descending. Use CountPublicPrayers to obtain the total for pagination
// metadata. On DB error, it returns the error.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListPublicPrayersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Prayer, error) {
	var out []domain.Prayer
	err := db.WithContext(ctx).
		Where("public = ?", true).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountPublicPrayers returns the total number of public prayers.
func CountPublicPrayers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Prayer{}).
		Where("public = ?", true).
		Count(&total).Error
	return total, err
}

// ListUserPrayers returns all prayers authored by userID, ordered by creation
// time descending. It returns an empty slice if the user has no prayers.
func ListUserPrayers(ctx context.Context, db *gorm.DB, userID string) ([]domain.Prayer, error) {
	var out []domain.Prayer
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListGroupPrayersPage returns a page of prayers posted into groupID, ordered
// by creation time descending.
func ListGroupPrayersPage(ctx context.Context, db *gorm.DB, groupID string, offset, limit int) ([]domain.Prayer, error) {
	var out []domain.Prayer
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeletePrayer soft-deletes a prayer identified by id and owned by userID.
// If no rows are affected (prayer missing or not owned by userID), it returns
// ErrNotFound. On DB error, the raw error is returned.
func DeletePrayer(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Prayer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PublicFeedStats returns the number of public prayers and the most recent
// creation timestamp, used by handlers to derive a weak ETag for the feed.
func PublicFeedStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	var total int64
	if err := db.WithContext(ctx).
		Model(&domain.Prayer{}).
		Where("public = ?", true).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}
	if total == 0 {
		return 0, nil, nil
	}
	// Read the newest row instead of scanning MAX(created_at): the sqlite
	// driver returns aggregate datetimes as strings, which do not scan into
	// time.Time.
	var newest domain.Prayer
	if err := db.WithContext(ctx).
		Select("created_at").
		Where("public = ?", true).
		Order("created_at desc").
		First(&newest).Error; err != nil {
		return 0, nil, err
	}
	ts := newest.CreatedAt
	return total, &ts, nil
}
