package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingkod/internal/models"
)

// gormStore backs the workflow with the shared GORM session.
type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store over the given GORM handle.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) UserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *gormStore) ProjectByID(ctx context.Context, id uuid.UUID) (models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		return models.Project{}, err
	}
	return project, nil
}

// ApplyDecision writes the status change and its activity entry in one
// transaction, then reloads the project with its people expanded for the
// response payload.
func (s *gormStore) ApplyDecision(ctx context.Context, project *models.Project, entry *models.ActivityLog) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":     project.Status,
			"updated_at": project.UpdatedAt,
		}
		if err := tx.Model(&models.Project{}).Where("id = ?", project.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Manager").
		First(project, "id = ?", project.ID).Error
}
