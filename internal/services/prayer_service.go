// Package services – PrayerService
//
// This file implements PrayerService, the application-level component that
// owns the lifecycle of prayer requests. It validates content, enforces group
// membership for group posts, and implements server-side idempotent creation:
// the prayer insert and its idempotency record commit in one transaction, so a
// retried request carrying the same key can never produce a second prayer.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// user identifiers and pagination parameters where applicable.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
	"github.com/prayoverus/go-prayer-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CreatePrayerInput carries the fields of a prayer creation request.
//
// IdempotencyKey is optional. When present, the same key can be resent any
// number of times and at most one prayer will be recorded for it.
type CreatePrayerInput struct {
	UserID         string
	Content        string
	Public         bool
	GroupID        *string
	IdempotencyKey string
}

// PrayerService coordinates prayer persistence and idempotent creation.
type PrayerService struct {
	DB *gorm.DB

	// Content guards
	MinContentRunes int
	MaxContentRunes int

	// IdempotencyTTL bounds how long a creation key remains replayable.
	IdempotencyTTL time.Duration
}

// NewPrayerService constructs a PrayerService with sane defaults.
func NewPrayerService(db *gorm.DB) *PrayerService {
	return &PrayerService{
		DB:              db,
		MinContentRunes: 10,
		MaxContentRunes: 2000,
		IdempotencyTTL:  24 * time.Hour,
	}
}

// Create validates and persists a new prayer.
//
// The returned bool reports whether the result was replayed from a previous
// request with the same idempotency key (true) or freshly created (false).
//
// Validation:
//   - content must be non-empty after trimming, at least MinContentRunes and
//     at most MaxContentRunes runes.
//   - when GroupID is set, the author must be a member of that group.
//
// Idempotency:
//   - when IdempotencyKey is set and a non-expired record exists for
//     (user, key), the originally created prayer is returned with no writes.
//   - otherwise the prayer insert and the idempotency record insert run in a
//     single transaction; a racing duplicate rolls the transaction back and
//     the stored prayer is returned instead.
func (s *PrayerService) Create(ctx context.Context, in CreatePrayerInput) (*domain.Prayer, bool, error) {
	tr := otel.Tracer("services/PrayerService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", in.UserID),
			attribute.Bool("prayer.public", in.Public),
		),
	)
	defer span.End()

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, false, ErrEmptyContent
	}
	n := utf8.RuneCountInString(content)
	if s.MinContentRunes > 0 && n < s.MinContentRunes {
		return nil, false, ErrContentTooShort
	}
	if s.MaxContentRunes > 0 && n > s.MaxContentRunes {
		return nil, false, ErrContentTooLong
	}

	if in.GroupID != nil {
		member, err := repo.IsMember(ctx, s.DB, *in.GroupID, in.UserID)
		if err != nil {
			return nil, false, err
		}
		if !member {
			return nil, false, ErrNotGroupMember
		}
	}

	key := strings.TrimSpace(in.IdempotencyKey)

	// Replay fast path: a previously accepted creation with this key.
	if key != "" {
		if prev, ok, err := s.replay(ctx, in.UserID, key); err != nil {
			return nil, false, err
		} else if ok {
			return prev, true, nil
		}
	}

	var created *domain.Prayer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.CreatePrayer(ctx, tx, in.UserID, content, in.Public, in.GroupID)
		if err != nil {
			return err
		}
		if key != "" {
			if _, err := repo.CreateIdempotency(ctx, tx, in.UserID, key, p.ID, 201, s.ttl()); err != nil {
				return err
			}
		}
		created = p
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// Lost the race against a concurrent retry; serve its result.
		if prev, ok, rerr := s.replay(ctx, in.UserID, key); rerr == nil && ok {
			return prev, true, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return created, false, nil
}

// replay looks up a prior accepted creation for (userID, key) and loads the
// prayer it produced.
func (s *PrayerService) replay(ctx context.Context, userID, key string) (*domain.Prayer, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	p, err := repo.GetPrayer(ctx, s.DB, rec.PrayerID)
	if err != nil {
		// Record exists but the prayer is gone (deleted); treat as fresh.
		return nil, false, nil
	}
	return p, true, nil
}

// Get returns a prayer by ID with its support counts attached, enforcing
// visibility: public prayers are readable by anyone, private prayers only by
// their owner or members of the group they were posted into.
func (s *PrayerService) Get(ctx context.Context, userID, prayerID string) (*domain.Prayer, error) {
	tr := otel.Tracer("services/PrayerService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("prayer.id", prayerID)),
	)
	defer span.End()

	p, err := repo.GetPrayer(ctx, s.DB, prayerID)
	if err != nil {
		return nil, ErrPrayerNotFound
	}
	if !p.Public && p.UserID != userID {
		allowed := false
		if p.GroupID != nil {
			allowed, err = repo.IsMember(ctx, s.DB, *p.GroupID, userID)
			if err != nil {
				return nil, err
			}
		}
		if !allowed {
			return nil, ErrForbidden
		}
	}
	counts, err := repo.CountSupportByType(ctx, s.DB, prayerID)
	if err != nil {
		return nil, err
	}
	p.SupportCounts = counts
	return p, nil
}

// Feed returns a page of the public prayer feed and the total count.
// It applies defaults for invalid page/pageSize.
func (s *PrayerService) Feed(ctx context.Context, page, pageSize int) ([]domain.Prayer, int64, error) {
	tr := otel.Tracer("services/PrayerService")
	ctx, span := tr.Start(ctx, "Feed",
		trace.WithAttributes(
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

	total, err := repo.CountPublicPrayers(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Prayer{}, 0, nil
	}
	items, err := repo.ListPublicPrayersPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// ListMine returns all prayers authored by userID, newest first.
func (s *PrayerService) ListMine(ctx context.Context, userID string) ([]domain.Prayer, error) {
	return repo.ListUserPrayers(ctx, s.DB, userID)
}

// Delete soft-deletes a prayer owned by userID.
func (s *PrayerService) Delete(ctx context.Context, userID, prayerID string) error {
	if err := repo.DeletePrayer(ctx, s.DB, prayerID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPrayerNotFound
		}
		return err
	}
	return nil
}

func (s *PrayerService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}
