package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func TestTableNames(t *testing.T) {
	if (Prayer{}).TableName() != "prayers" {
		t.Fatalf("Prayer.TableName() = %q; want %q", (Prayer{}).TableName(), "prayers")
	}
	if (Support{}).TableName() != "supports" {
		t.Fatalf("Support.TableName() = %q; want %q", (Support{}).TableName(), "supports")
	}
	if (Comment{}).TableName() != "comments" {
		t.Fatalf("Comment.TableName() = %q; want %q", (Comment{}).TableName(), "comments")
	}
	if (Group{}).TableName() != "groups" {
		t.Fatalf("Group.TableName() = %q; want %q", (Group{}).TableName(), "groups")
	}
	if (GroupMembership{}).TableName() != "group_memberships" {
		t.Fatalf("GroupMembership.TableName() = %q; want %q", (GroupMembership{}).TableName(), "group_memberships")
	}
}

func TestValidSupportType(t *testing.T) {
	for _, typ := range []string{SupportPraying, SupportHeart, SupportHug} {
		if !ValidSupportType(typ) {
			t.Fatalf("ValidSupportType(%q) = false; want true", typ)
		}
	}
	for _, typ := range []string{"", "like", "PRAYING", "praying "} {
		if ValidSupportType(typ) {
			t.Fatalf("ValidSupportType(%q) = true; want false", typ)
		}
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Prayer{}, &Support{}, &Comment{}, &Group{}, &GroupMembership{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	// Tables exist
	for _, tbl := range []any{&Prayer{}, &Support{}, &Comment{}, &Group{}, &GroupMembership{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	// Indexes from tags exist
	if !m.HasIndex(&Prayer{}, "idx_user_prayers") {
		t.Fatalf("expected index idx_user_prayers on prayers")
	}
	if !m.HasIndex(&Support{}, "ux_support_prayer_user_type") {
		t.Fatalf("expected unique index ux_support_prayer_user_type on supports")
	}
	if !m.HasIndex(&Comment{}, "idx_prayer_comments") {
		t.Fatalf("expected index idx_prayer_comments on comments")
	}
	if !m.HasIndex(&GroupMembership{}, "ux_membership_group_user") {
		t.Fatalf("expected unique index ux_membership_group_user on group_memberships")
	}

	// Seed a prayer with one support and one comment
	now := time.Now().UTC()

	p := &Prayer{ID: "p1", UserID: "u1", Content: "please pray for my family", Public: true, CreatedAt: now, UpdatedAt: now}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("insert prayer: %v", err)
	}

	s := &Support{ID: "s1", PrayerID: "p1", UserID: "u2", Type: SupportPraying, CreatedAt: now}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("insert support: %v", err)
	}
	cm := &Comment{ID: "cm1", PrayerID: "p1", UserID: "u2", Content: "praying for you", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(cm).Error; err != nil {
		t.Fatalf("insert comment: %v", err)
	}

	// Duplicate (prayer, user, type) support must be rejected
	dup := &Support{ID: "s2", PrayerID: "p1", UserID: "u2", Type: SupportPraying, CreatedAt: now}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected UNIQUE violation on (prayer_id, user_id, type)")
	}
	// Same user, different type is fine
	s3 := &Support{ID: "s3", PrayerID: "p1", UserID: "u2", Type: SupportHeart, CreatedAt: now}
	if err := db.Create(s3).Error; err != nil {
		t.Fatalf("insert second support type: %v", err)
	}

	// CHECK constraint: unknown support type rejected
	bad := &Support{ID: "s4", PrayerID: "p1", UserID: "u3", Type: "like", CreatedAt: now}
	if err := db.Create(bad).Error; err == nil {
		t.Fatalf("expected CHECK violation for unknown support type")
	}

	// CASCADE: hard-deleting the prayer should delete its supports
	if err := db.Unscoped().Delete(&Prayer{}, "id = ?", "p1").Error; err != nil {
		t.Fatalf("delete prayer: %v", err)
	}
	var cnt int64
	if err := db.Model(&Support{}).Where("prayer_id = ?", "p1").Count(&cnt).Error; err != nil {
		t.Fatalf("count supports after prayer delete: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected supports to cascade-delete when prayer deleted, got count=%d", cnt)
	}

	// Group membership uniqueness
	g := &Group{ID: "g1", Name: "Morning Circle", OwnerID: "u1", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("insert group: %v", err)
	}
	gm := &GroupMembership{ID: "gm1", GroupID: "g1", UserID: "u1", CreatedAt: now}
	if err := db.Create(gm).Error; err != nil {
		t.Fatalf("insert membership: %v", err)
	}
	gm2 := &GroupMembership{ID: "gm2", GroupID: "g1", UserID: "u1", CreatedAt: now}
	if err := db.Create(gm2).Error; err == nil {
		t.Fatalf("expected UNIQUE violation on (group_id, user_id)")
	}
}
