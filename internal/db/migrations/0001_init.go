package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

// The structs below are frozen copies of the models as of this migration.
// They must not be kept in sync with internal/models; later schema changes
// get their own migration files.

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;uniqueIndex;not null"`
	Name         string         `gorm:"type:text;not null"`
	PasswordHash string         `gorm:"type:text;not null"`
	Role         string         `gorm:"type:text;not null;default:'RESIDENT'"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

type Session struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Token     string     `gorm:"type:text;uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	RevokedAt *time.Time
	User      User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID"`
}

type Project struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"type:text;not null"`
	Description string     `gorm:"type:text"`
	Status      string     `gorm:"type:text;not null;default:'PLANNING';index"`
	Budget      int64      `gorm:"not null;default:0"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ManagerID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	Creator     *User      `gorm:"constraint:OnDelete:RESTRICT;foreignKey:CreatedBy;references:ID"`
	Manager     *User      `gorm:"constraint:OnDelete:SET NULL;foreignKey:ManagerID;references:ID"`
}

type Task struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title      string     `gorm:"type:text;not null"`
	Status     string     `gorm:"type:text;not null;default:'TODO'"`
	AssigneeID *uuid.UUID `gorm:"type:uuid;index"`
	DueDate    *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
	Project    *Project  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID"`
	Assignee   *User     `gorm:"constraint:OnDelete:SET NULL;foreignKey:AssigneeID;references:ID"`
}

type Document struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID      *uuid.UUID `gorm:"type:uuid;index"`
	UploadedBy     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ObjectKey      string     `gorm:"type:text;uniqueIndex;not null"`
	MimeType       string     `gorm:"type:text;not null"`
	OriginalName   string     `gorm:"type:text;not null"`
	SizeBytes      int64      `gorm:"not null;default:0"`
	DownloadCount  int64      `gorm:"not null;default:0"`
	LastAccessed   *time.Time
	ApprovalStatus *string           `gorm:"type:text;index"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime"`
	Uploader       *User             `gorm:"constraint:OnDelete:RESTRICT;foreignKey:UploadedBy;references:ID"`
	Project        *Project          `gorm:"constraint:OnDelete:SET NULL;foreignKey:ProjectID;references:ID"`
}

type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	Location    string    `gorm:"type:text"`
	StartsAt    time.Time `gorm:"not null;index"`
	EndsAt      time.Time `gorm:"not null"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	Creator     *User     `gorm:"constraint:OnDelete:RESTRICT;foreignKey:CreatedBy;references:ID"`
}

type Announcement struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"type:text;not null"`
	Body        string    `gorm:"type:text;not null"`
	Priority    string    `gorm:"type:text;not null;default:'NORMAL'"`
	PublishedBy uuid.UUID `gorm:"type:uuid;not null"`
	PublishedAt time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	Publisher   *User     `gorm:"constraint:OnDelete:RESTRICT;foreignKey:PublishedBy;references:ID"`
}

type ActivityLog struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Action      string            `gorm:"type:text;not null;index"`
	Description string            `gorm:"type:text;not null"`
	EntityType  string            `gorm:"type:text;not null"`
	EntityID    uuid.UUID         `gorm:"type:uuid;not null"`
	ActorID     *uuid.UUID        `gorm:"type:uuid;index"`
	ProjectID   *uuid.UUID        `gorm:"type:uuid;index"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"autoCreateTime;index"`
	Actor       *User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:ActorID;references:ID"`
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&User{},
		&Session{},
		&Project{},
		&Task{},
		&Document{},
		&Event{},
		&Announcement{},
		&ActivityLog{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	if err := m.CreateConstraint(&Session{}, "User"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Task{}, "Project"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&ActivityLog{}, "Actor"); err != nil {
		return err
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Migrator().DropTable(
		&ActivityLog{},
		&Announcement{},
		&Event{},
		&Document{},
		&Task{},
		&Project{},
		&Session{},
		&User{},
	); err != nil {
		return err
	}

	return nil
}
