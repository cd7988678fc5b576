// Package services – CommentService
//
// This file implements the CommentService, which owns the lifecycle of
// comments on prayer requests.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
	"github.com/prayoverus/go-prayer-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CommentService coordinates comment validation and persistence.
type CommentService struct {
	DB *gorm.DB

	// MaxContentRunes caps comment length; 0 disables the cap.
	MaxContentRunes int
}

// Add validates and persists a comment on prayerID by userID.
//
// Validation:
//   - content must be non-empty after trimming; otherwise ErrEmptyContent.
//   - content must not exceed MaxContentRunes runes; otherwise ErrContentTooLong.
//   - prayerID must exist; otherwise ErrPrayerNotFound.
func (s *CommentService) Add(ctx context.Context, userID, prayerID, content string) (*domain.Comment, error) {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "Add",
		trace.WithAttributes(
			attribute.String("prayer.id", prayerID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return nil, ErrContentTooLong
	}

	var created *domain.Comment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetPrayer(ctx, tx, prayerID); err != nil {
			return ErrPrayerNotFound
		}
		c, err := repo.CreateComment(ctx, tx, prayerID, userID, content)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListPage returns paginated comments for a prayer, oldest first.
func (s *CommentService) ListPage(ctx context.Context, prayerID string, page, pageSize int) ([]domain.Comment, int64, error) {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("prayer.id", prayerID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	if _, err := repo.GetPrayer(ctx, s.DB, prayerID); err != nil {
		return nil, 0, ErrPrayerNotFound
	}

	total, err := repo.CountComments(ctx, s.DB, prayerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Comment{}, 0, nil
	}
	items, err := repo.ListCommentsPage(ctx, s.DB, prayerID, offset, pageSize)
	return items, total, err
}
