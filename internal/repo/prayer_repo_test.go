package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
)

// newRepoDB opens a unique in-memory database per test with the full schema.
func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreatePrayer_AndGet(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	p, err := CreatePrayer(ctx, db, "u1", "please pray for my exams", true, nil)
	if err != nil {
		t.Fatalf("CreatePrayer: %v", err)
	}
	if p.ID == "" || p.UserID != "u1" || !p.Public || p.GroupID != nil {
		t.Fatalf("unexpected prayer: %+v", p)
	}

	got, err := GetPrayer(ctx, db, p.ID)
	if err != nil {
		t.Fatalf("GetPrayer: %v", err)
	}
	if got.Content != "please pray for my exams" {
		t.Fatalf("content mismatch: %q", got.Content)
	}

	if _, err := GetPrayer(ctx, db, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing prayer, got %v", err)
	}
}

func TestListPublicPrayersPage_OrderAndPaging(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := &domain.Prayer{
			ID:        fmt.Sprintf("p%d", i),
			UserID:    "u1",
			Content:   fmt.Sprintf("prayer %d", i),
			Public:    true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed p%d: %v", i, err)
		}
	}
	// One private prayer that must never show up.
	priv := &domain.Prayer{ID: "priv", UserID: "u1", Content: "private", Public: false, CreatedAt: base.Add(time.Hour)}
	if err := db.Create(priv).Error; err != nil {
		t.Fatalf("seed private: %v", err)
	}

	total, err := CountPublicPrayers(ctx, db)
	if err != nil || total != 5 {
		t.Fatalf("CountPublicPrayers = (%d, %v); want (5, nil)", total, err)
	}

	// Newest first, page of 2.
	page, err := ListPublicPrayersPage(ctx, db, 0, 2)
	if err != nil {
		t.Fatalf("ListPublicPrayersPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "p4" || page[1].ID != "p3" {
		t.Fatalf("unexpected first page: %+v", page)
	}

	page2, err := ListPublicPrayersPage(ctx, db, 4, 2)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != "p0" {
		t.Fatalf("unexpected last page: %+v", page2)
	}
}

func TestListUserPrayers_IncludesPrivate(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	if _, err := CreatePrayer(ctx, db, "u1", "public request here", true, nil); err != nil {
		t.Fatalf("seed public: %v", err)
	}
	if _, err := CreatePrayer(ctx, db, "u1", "private request here", false, nil); err != nil {
		t.Fatalf("seed private: %v", err)
	}
	if _, err := CreatePrayer(ctx, db, "u2", "someone else's request", true, nil); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	mine, err := ListUserPrayers(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ListUserPrayers: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 prayers for u1, got %d", len(mine))
	}
}

func TestListGroupPrayersPage(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	g, err := CreateGroup(ctx, db, "u1", "Evening Circle")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := CreatePrayer(ctx, db, "u1", "prayer in the group", false, &g.ID); err != nil {
		t.Fatalf("seed group prayer: %v", err)
	}
	if _, err := CreatePrayer(ctx, db, "u1", "prayer outside the group", true, nil); err != nil {
		t.Fatalf("seed loose prayer: %v", err)
	}

	got, err := ListGroupPrayersPage(ctx, db, g.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListGroupPrayersPage: %v", err)
	}
	if len(got) != 1 || got[0].Content != "prayer in the group" {
		t.Fatalf("unexpected group prayers: %+v", got)
	}
}

func TestDeletePrayer_OwnershipAndSoftDelete(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	p, err := CreatePrayer(ctx, db, "u1", "delete me please soon", true, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Wrong owner → not found.
	if err := DeletePrayer(ctx, db, p.ID, "u2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}
	// Right owner succeeds.
	if err := DeletePrayer(ctx, db, p.ID, "u1"); err != nil {
		t.Fatalf("DeletePrayer: %v", err)
	}
	// Default scope no longer sees it.
	if _, err := GetPrayer(ctx, db, p.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Soft delete keeps the row.
	var cnt int64
	if err := db.Unscoped().Model(&domain.Prayer{}).Where("id = ?", p.ID).Count(&cnt).Error; err != nil || cnt != 1 {
		t.Fatalf("expected soft-deleted row to remain, cnt=%d err=%v", cnt, err)
	}
	// Second delete also reports not found.
	if err := DeletePrayer(ctx, db, p.ID, "u1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestPublicFeedStats(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	// Empty feed: zero total, nil max.
	total, max, err := PublicFeedStats(ctx, db)
	if err != nil || total != 0 || max != nil {
		t.Fatalf("empty stats = (%d, %v, %v); want (0, nil, nil)", total, max, err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	for i, ts := range []time.Time{now.Add(-2 * time.Minute), now} {
		p := &domain.Prayer{
			ID: fmt.Sprintf("p%d", i), UserID: "u1",
			Content: "stat prayer", Public: true, CreatedAt: ts,
		}
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// A newer private prayer must not influence the public stats.
	priv := &domain.Prayer{
		ID: "priv", UserID: "u1",
		Content: "private stat prayer", Public: false, CreatedAt: now.Add(time.Minute),
	}
	if err := db.Create(priv).Error; err != nil {
		t.Fatalf("seed private: %v", err)
	}

	total, max, err = PublicFeedStats(ctx, db)
	if err != nil {
		t.Fatalf("PublicFeedStats: %v", err)
	}
	if total != 2 || max == nil {
		t.Fatalf("stats = (%d, %v); want total=2 and non-nil max", total, max)
	}
	if !max.Equal(now) {
		t.Fatalf("max = %v; want %v", max, now)
	}
}
