// Package services – GroupService
//
// This file implements the GroupService, which manages prayer groups and
// their memberships. Group names are normalized and title-cased before being
// stored so that "morning circle" and "Morning Circle" read the same way in
// every client.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
	"github.com/prayoverus/go-prayer-backend/internal/repo"
)

// GroupService provides group-level operations: creating groups, joining
// them, and listing a group's prayers.
type GroupService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// NameMaxLen caps stored group names by rune length.
	NameMaxLen int
	// NameLocale selects the casing rules for name normalization.
	NameLocale language.Tag
}

// NewGroupService constructs a GroupService with sane defaults for names.
func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{
		DB:         db,
		NameMaxLen: 60,
		NameLocale: language.English,
	}
}

// Create inserts a new group owned by userID. The owner becomes the first
// member. Empty names fall back to "Prayer Circle".
func (s *GroupService) Create(ctx context.Context, userID, name string) (*domain.Group, error) {
	name = s.normalizeName(name)
	if name == "" {
		name = "Prayer Circle"
	}
	return repo.CreateGroup(ctx, s.DB, userID, name)
}

// ListMine returns the groups userID belongs to.
func (s *GroupService) ListMine(ctx context.Context, userID string) ([]domain.Group, error) {
	return repo.ListUserGroups(ctx, s.DB, userID)
}

// Join enrolls userID into groupID. Returns ErrGroupNotFound for unknown
// groups and ErrAlreadyMember for repeated joins.
func (s *GroupService) Join(ctx context.Context, userID, groupID string) error {
	if _, err := repo.GetGroup(ctx, s.DB, groupID); err != nil {
		return ErrGroupNotFound
	}
	if _, err := repo.AddMember(ctx, s.DB, groupID, userID); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

// Prayers returns a page of prayers posted into groupID. Only members may
// read a group feed; non-members get ErrNotGroupMember.
func (s *GroupService) Prayers(ctx context.Context, userID, groupID string, page, pageSize int) ([]domain.Prayer, error) {
	if _, err := repo.GetGroup(ctx, s.DB, groupID); err != nil {
		return nil, ErrGroupNotFound
	}
	member, err := repo.IsMember(ctx, s.DB, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotGroupMember
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return repo.ListGroupPrayersPage(ctx, s.DB, groupID, (page-1)*pageSize, pageSize)
}

// normalizeName trims, collapses whitespace, title-cases, and clips a name.
func (s *GroupService) normalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	name = strings.Join(fields, " ")
	name = cases.Title(s.localeOrDefault(), cases.NoLower).String(name)
	max := s.NameMaxLen
	if max <= 0 {
		max = 60
	}
	if utf8.RuneCountInString(name) > max {
		name = string([]rune(name)[:max])
	}
	return name
}

func (s *GroupService) localeOrDefault() language.Tag {
	if s.NameLocale == language.Und {
		return language.English
	}
	return s.NameLocale
}
