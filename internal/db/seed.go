package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lingkod/internal/models"
)

// SeedFile is the YAML fixture format consumed by `lingkodd seed`.
type SeedFile struct {
	Users []struct {
		Email    string `yaml:"email"`
		Name     string `yaml:"name"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
	Announcements []struct {
		Title    string `yaml:"title"`
		Body     string `yaml:"body"`
		Priority string `yaml:"priority,omitempty"`
	} `yaml:"announcements"`
}

// LoadSeedFile parses a seed fixture from disk.
func LoadSeedFile(path string) (SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, err
	}
	return ParseSeed(raw)
}

// ParseSeed decodes and validates the YAML fixture payload.
func ParseSeed(raw []byte) (SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	for i, u := range seed.Users {
		if u.Email == "" || u.Password == "" {
			return SeedFile{}, fmt.Errorf("seed user %d: email and password are required", i)
		}
		switch models.Role(u.Role) {
		case models.RoleAdmin, models.RoleStaff, models.RoleResident, "":
		default:
			return SeedFile{}, fmt.Errorf("seed user %d: unknown role %q", i, u.Role)
		}
	}
	for i, a := range seed.Announcements {
		if a.Title == "" || a.Body == "" {
			return SeedFile{}, fmt.Errorf("seed announcement %d: title and body are required", i)
		}
		switch models.AnnouncementPriority(a.Priority) {
		case models.PriorityLow, models.PriorityNormal, models.PriorityUrgent, "":
		default:
			return SeedFile{}, fmt.Errorf("seed announcement %d: unknown priority %q", i, a.Priority)
		}
	}
	return seed, nil
}

// Seed upserts baseline data. Existing rows are left untouched so the
// command is safe to re-run.
func Seed(ctx context.Context, database *gorm.DB, seed SeedFile) error {
	for _, u := range seed.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		role := models.Role(u.Role)
		if role == "" {
			role = models.RoleResident
		}
		user := models.User{
			Email:        u.Email,
			Name:         u.Name,
			PasswordHash: string(hash),
			Role:         role,
		}
		if err := database.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
			Create(&user).Error; err != nil {
			return err
		}
	}

	if len(seed.Announcements) == 0 {
		return nil
	}

	var publisher models.User
	if err := database.WithContext(ctx).
		Where("role = ?", models.RoleAdmin).
		Order("created_at").
		First(&publisher).Error; err != nil {
		return fmt.Errorf("seed announcements need an admin user: %w", err)
	}

	now := time.Now().UTC()
	for _, a := range seed.Announcements {
		// Announcements carry no unique key, so reruns dedupe by title.
		var n int64
		if err := database.WithContext(ctx).
			Model(&models.Announcement{}).
			Where("title = ?", a.Title).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}

		priority := models.AnnouncementPriority(a.Priority)
		if priority == "" {
			priority = models.PriorityNormal
		}
		ann := models.Announcement{
			Title:       a.Title,
			Body:        a.Body,
			Priority:    priority,
			PublishedBy: publisher.ID,
			PublishedAt: now,
		}
		if err := database.WithContext(ctx).Create(&ann).Error; err != nil {
			return err
		}
	}

	return nil
}
