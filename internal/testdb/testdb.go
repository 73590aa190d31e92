// Package testdb provides an in-memory sqlite database mirroring the
// Postgres schema for repository and service tests.
package testdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE countries (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_countries_name ON countries (name);`,
	`CREATE TABLE regions (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  country_id TEXT NOT NULL REFERENCES countries (id) ON DELETE RESTRICT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_regions_country_name ON regions (country_id, name);`,
	`CREATE TABLE appellations (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  region_id TEXT NOT NULL REFERENCES regions (id) ON DELETE RESTRICT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_appellations_region_name ON appellations (region_id, name);`,
	`CREATE TABLE sub_appellations (
  id TEXT PRIMARY KEY,
  name TEXT,
  appellation_id TEXT NOT NULL REFERENCES appellations (id) ON DELETE RESTRICT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_sub_appellations_appellation_name
  ON sub_appellations (appellation_id, name) WHERE name IS NOT NULL;`,
	`CREATE UNIQUE INDEX ux_sub_appellations_appellation_null_name
  ON sub_appellations (appellation_id) WHERE name IS NULL;`,
	`CREATE TABLE wines (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sub_appellation_id TEXT NOT NULL REFERENCES sub_appellations (id) ON DELETE RESTRICT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_wines_sub_appellation_name ON wines (sub_appellation_id, name);`,
	`CREATE TABLE wine_vintages (
  id TEXT PRIMARY KEY,
  wine_id TEXT NOT NULL REFERENCES wines (id) ON DELETE CASCADE,
  vintage INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_wine_vintages_wine_year ON wine_vintages (wine_id, vintage);`,
	`CREATE TABLE wine_vintage_evolution_scores (
  id TEXT PRIMARY KEY,
  wine_vintage_id TEXT NOT NULL REFERENCES wine_vintages (id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  year INTEGER NOT NULL,
  score NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_evolution_scores_user_vintage_year
  ON wine_vintage_evolution_scores (user_id, wine_vintage_id, year);`,
	`CREATE TABLE bottle_locations (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  user_id TEXT NOT NULL,
  capacity INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_bottle_locations_user_name ON bottle_locations (user_id, name);`,
	`CREATE TABLE bottles (
  id TEXT PRIMARY KEY,
  wine_vintage_id TEXT NOT NULL REFERENCES wine_vintages (id) ON DELETE CASCADE,
  user_id TEXT,
  bottle_location_id TEXT REFERENCES bottle_locations (id) ON DELETE SET NULL,
  is_drunk BOOLEAN NOT NULL DEFAULT false,
  drunk_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE tasting_notes (
  id TEXT PRIMARY KEY,
  bottle_id TEXT NOT NULL REFERENCES bottles (id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  note TEXT NOT NULL,
  score NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE sisterhoods (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_sisterhoods_name ON sisterhoods (name);`,
	`CREATE TABLE user_sisterhoods (
  user_id TEXT NOT NULL,
  sisterhood_id TEXT NOT NULL REFERENCES sisterhoods (id) ON DELETE CASCADE,
  is_admin BOOLEAN NOT NULL DEFAULT false,
  joined_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  PRIMARY KEY (user_id, sisterhood_id)
);`,
	`CREATE TABLE sisterhood_invitations (
  id TEXT PRIMARY KEY,
  sisterhood_id TEXT NOT NULL REFERENCES sisterhoods (id) ON DELETE CASCADE,
  invitee_email TEXT NOT NULL,
  invitee_user_id TEXT,
  status TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_sisterhood_invitations_sisterhood_email
  ON sisterhood_invitations (sisterhood_id, invitee_email);`,
	`CREATE TABLE sip_sessions (
  id TEXT PRIMARY KEY,
  sisterhood_id TEXT NOT NULL REFERENCES sisterhoods (id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  description TEXT,
  scheduled_at DATETIME NOT NULL,
  location TEXT,
  food_suggestion TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE bottle_sip_sessions (
  bottle_id TEXT NOT NULL REFERENCES bottles (id) ON DELETE CASCADE,
  sip_session_id TEXT NOT NULL REFERENCES sip_sessions (id) ON DELETE CASCADE,
  is_revealed BOOLEAN NOT NULL DEFAULT false,
  created_at DATETIME,
  updated_at DATETIME,
  PRIMARY KEY (bottle_id, sip_session_id)
);`,
	`CREATE TABLE bottle_shares (
  id TEXT PRIMARY KEY,
  bottle_id TEXT NOT NULL REFERENCES bottles (id) ON DELETE CASCADE,
  shared_by_user_id TEXT NOT NULL,
  shared_with_user_id TEXT NOT NULL,
  shared_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_bottle_shares_bottle_shared_with
  ON bottle_shares (bottle_id, shared_with_user_id);`,
	`CREATE TABLE taste_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  profile TEXT NOT NULL,
  summary TEXT NOT NULL,
  in_use BOOLEAN NOT NULL DEFAULT false,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_taste_profiles_active ON taste_profiles (user_id) WHERE in_use;`,
	`CREATE TABLE suggested_appellations (
  id TEXT PRIMARY KEY,
  taste_profile_id TEXT NOT NULL REFERENCES taste_profiles (id) ON DELETE CASCADE,
  sub_appellation_id TEXT NOT NULL REFERENCES sub_appellations (id) ON DELETE CASCADE,
  reason TEXT,
  created_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_suggested_appellations_profile_sub_appellation
  ON suggested_appellations (taste_profile_id, sub_appellation_id);`,
	`CREATE TABLE suggested_wines (
  id TEXT PRIMARY KEY,
  suggested_appellation_id TEXT NOT NULL REFERENCES suggested_appellations (id) ON DELETE CASCADE,
  wine_id TEXT NOT NULL REFERENCES wines (id) ON DELETE CASCADE,
  vintage TEXT,
  created_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_suggested_wines_appellation_wine
  ON suggested_wines (suggested_appellation_id, wine_id);`,
	`CREATE TABLE wishlists (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_wishlists_user_name ON wishlists (user_id, name);`,
	`CREATE TABLE wine_vintage_wishes (
  id TEXT PRIMARY KEY,
  wishlist_id TEXT NOT NULL REFERENCES wishlists (id) ON DELETE CASCADE,
  wine_vintage_id TEXT NOT NULL REFERENCES wine_vintages (id) ON DELETE CASCADE,
  created_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_wine_vintage_wishes_wishlist_vintage
  ON wine_vintage_wishes (wishlist_id, wine_vintage_id);`,
	`CREATE TABLE notification_dismissals (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  category TEXT NOT NULL,
  stamp TEXT NOT NULL,
  dismissed_at_utc DATETIME NOT NULL
);`,
	`CREATE UNIQUE INDEX ux_notification_dismissals_user_category_stamp
  ON notification_dismissals (user_id, category, stamp);`,
	`CREATE TABLE profile_photos (
  id TEXT PRIMARY KEY,
  owner_kind TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  content_type TEXT NOT NULL,
  data BLOB NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_profile_photos_owner ON profile_photos (owner_kind, owner_id);`,
}

// Open creates a fresh in-memory database with the full schema applied.
// Each call gets its own database, so tests never observe each other.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to apply schema: %v\n%s", err, stmt)
		}
	}
	return conn
}

// TxRunner adapts a raw gorm connection to the services' transaction surface.
type TxRunner struct {
	DB *gorm.DB
}

func (r TxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}
