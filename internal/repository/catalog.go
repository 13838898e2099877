package repository

import (
	"context"
	"errors"

	"fittrack/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository defines persistence operations for the body-part and
// exercise catalog.
type CatalogRepository interface {
	GetBodyPartByName(ctx context.Context, name string) (*models.BodyPart, error)
	ListExercisesByBodyPart(ctx context.Context, bodyPartID uint) ([]models.Exercise, error)
	CreateExercise(ctx context.Context, exercise *models.Exercise) error
	UpdateExercise(ctx context.Context, exercise *models.Exercise) error
	GetExerciseByID(ctx context.Context, id uint) (*models.Exercise, error)
	DeleteExercise(ctx context.Context, id uint) (int64, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository returns a new CatalogRepository implementation.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetBodyPartByName(ctx context.Context, name string) (*models.BodyPart, error) {
	var bodyPart models.BodyPart
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&bodyPart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &bodyPart, nil
}

func (r *catalogRepository) ListExercisesByBodyPart(ctx context.Context, bodyPartID uint) ([]models.Exercise, error) {
	var exercises []models.Exercise
	err := r.db.WithContext(ctx).
		Where("body_part_id = ?", bodyPartID).
		Order("name").
		Find(&exercises).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return exercises, nil
}

func (r *catalogRepository) CreateExercise(ctx context.Context, exercise *models.Exercise) error {
	if err := r.db.WithContext(ctx).Create(exercise).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *catalogRepository) UpdateExercise(ctx context.Context, exercise *models.Exercise) error {
	if err := r.db.WithContext(ctx).Save(exercise).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *catalogRepository) GetExerciseByID(ctx context.Context, id uint) (*models.Exercise, error) {
	var exercise models.Exercise
	if err := r.db.WithContext(ctx).First(&exercise, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &exercise, nil
}

func (r *catalogRepository) DeleteExercise(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Exercise{}, id)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
