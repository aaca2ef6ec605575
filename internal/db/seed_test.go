package db

import (
	"context"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lingkod/internal/models"
)

func TestParseSeed(t *testing.T) {
	raw := []byte(`
users:
  - email: kapitan@example.com
    name: Kapitan Cruz
    password: changeme123
    role: ADMIN
  - email: resident@example.com
    name: Juan Dela Cruz
    password: changeme123
announcements:
  - title: Linis Bayan
    body: Cleanup drive this Saturday at the covered court.
    priority: URGENT
`)

	seed, err := ParseSeed(raw)
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	if len(seed.Users) != 2 {
		t.Fatalf("parsed %d users, want 2", len(seed.Users))
	}
	if seed.Users[0].Role != "ADMIN" {
		t.Errorf("role = %q, want ADMIN", seed.Users[0].Role)
	}
	if seed.Users[1].Role != "" {
		t.Errorf("role = %q, want empty (defaults at insert)", seed.Users[1].Role)
	}
	if len(seed.Announcements) != 1 || seed.Announcements[0].Priority != "URGENT" {
		t.Errorf("announcements = %+v", seed.Announcements)
	}
}

func TestParseSeedRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			"missing password",
			"users:\n  - email: a@example.com\n    name: A\n",
			"email and password are required",
		},
		{
			"unknown role",
			"users:\n  - email: a@example.com\n    password: changeme123\n    role: MAYOR\n",
			`unknown role "MAYOR"`,
		},
		{
			"announcement without body",
			"announcements:\n  - title: Notice\n",
			"title and body are required",
		},
		{
			"unknown priority",
			"announcements:\n  - title: Notice\n    body: Water interruption tomorrow.\n    priority: HIGH\n",
			`unknown priority "HIGH"`,
		},
		{
			"not yaml",
			"users: {{{",
			"parse seed file",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tc.raw))
			if err == nil {
				t.Fatal("ParseSeed succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %q, want substring %q", err, tc.wantErr)
			}
		})
	}
}

// newSeedDB opens an in-memory sqlite database with hand-built tables; the
// postgres-only column defaults in the models don't translate, so the DDL
// stays minimal.
func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ddl := []string{
		`CREATE TABLE users (
			id text, email text UNIQUE, name text, password_hash text,
			role text, created_at datetime, updated_at datetime, deleted_at datetime)`,
		`CREATE TABLE announcements (
			id text, title text, body text, priority text,
			published_by text, published_at datetime, created_at datetime, updated_at datetime)`,
	}
	for _, stmt := range ddl {
		if err := database.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return database
}

// Rerunning the seed command must leave existing rows untouched and add
// nothing: users dedupe on email, announcements on title.
func TestSeedRerunInsertsNothingNew(t *testing.T) {
	seed, err := ParseSeed([]byte(`
users:
  - email: kapitan@example.com
    name: Kapitan Cruz
    password: changeme123
    role: ADMIN
announcements:
  - title: Linis Bayan
    body: Cleanup drive this Saturday at the covered court.
`))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}

	database := newSeedDB(t)
	ctx := context.Background()

	for run := 1; run <= 2; run++ {
		if err := Seed(ctx, database, seed); err != nil {
			t.Fatalf("Seed run %d: %v", run, err)
		}
	}

	var users, announcements int64
	if err := database.Model(&models.User{}).Count(&users).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if err := database.Model(&models.Announcement{}).Count(&announcements).Error; err != nil {
		t.Fatalf("count announcements: %v", err)
	}
	if users != 1 {
		t.Errorf("users = %d after rerun, want 1", users)
	}
	if announcements != 1 {
		t.Errorf("announcements = %d after rerun, want 1", announcements)
	}
}
