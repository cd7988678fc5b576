// Package services – SupportService
//
// This file implements the SupportService, which governs how users mark
// support ("praying", "heart", "hug") on prayer requests. It enforces business
// rules (prayer existence, valid type, one support per user/prayer/type) and
// persists support marks atomically. Service-level errors (ErrInvalidSupportType,
// ErrPrayerNotFound, ErrDuplicateSupport, ErrSupportNotFound) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
	"github.com/prayoverus/go-prayer-backend/internal/repo"
)

// SupportService implements the use-cases around prayer support marks.
type SupportService struct {
	// DB is the database handle used for all support operations.
	DB *gorm.DB
}

// Add records a support mark of typ for prayerID on behalf of userID.
//
// Semantics and validation:
//   - typ must be one of the allowed support types; otherwise ErrInvalidSupportType.
//   - prayerID must exist; otherwise ErrPrayerNotFound.
//   - A user may give each support type at most once per prayer; a second
//     attempt yields ErrDuplicateSupport.
func (s *SupportService) Add(ctx context.Context, userID, prayerID, typ string) (*domain.Support, error) {
	if !domain.ValidSupportType(typ) {
		return nil, ErrInvalidSupportType
	}

	var created *domain.Support
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetPrayer(ctx, tx, prayerID); err != nil {
			return ErrPrayerNotFound
		}
		sup, err := repo.CreateSupport(ctx, tx, prayerID, userID, typ)
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrDuplicateSupport
		}
		if err != nil {
			return err
		}
		created = sup
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Remove deletes the support mark of typ left by userID on prayerID.
//
// Returns ErrInvalidSupportType for unknown types, ErrSupportNotFound when the
// user never gave that support, and the raw DB error otherwise.
func (s *SupportService) Remove(ctx context.Context, userID, prayerID, typ string) error {
	if !domain.ValidSupportType(typ) {
		return ErrInvalidSupportType
	}
	if err := repo.DeleteSupport(ctx, s.DB, prayerID, userID, typ); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSupportNotFound
		}
		return err
	}
	return nil
}
