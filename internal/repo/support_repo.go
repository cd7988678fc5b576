// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Support
// model (per-user, per-type support marks on prayers).
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
)

// CreateSupport inserts a support mark of the given type and returns
// ErrDuplicate if the (prayer, user, type) tuple already exists.
func CreateSupport(ctx context.Context, db *gorm.DB, prayerID, userID, typ string) (*domain.Support, error) {
	s := &domain.Support{
		ID:        uuid.NewString(),
		PrayerID:  prayerID,
		UserID:    userID,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s, nil
}

// DeleteSupport removes the support of the given type left by userID on
// prayerID. Returns ErrNotFound when no such support exists.
func DeleteSupport(ctx context.Context, db *gorm.DB, prayerID, userID, typ string) error {
	res := db.WithContext(ctx).
		Where("prayer_id = ? AND user_id = ? AND type = ?", prayerID, userID, typ).
		Delete(&domain.Support{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountSupportByType returns the per-type support counts for a prayer.
// Types with zero supports are omitted from the map.
func CountSupportByType(ctx context.Context, db *gorm.DB, prayerID string) (map[string]int64, error) {
	var rows []struct {
		Type  string
		Total int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Support{}).
		Select("type, COUNT(*) AS total").
		Where("prayer_id = ?", prayerID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Type] = r.Total
	}
	return out, nil
}

// isUniqueViolation reports whether err is a unique-constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
