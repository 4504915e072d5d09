package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/chalkboard-go-api/internal/models"
)

// ProblemRepository defines data operations for problems.
type ProblemRepository interface {
	Create(ctx context.Context, problem *models.Problem) error
	GetByID(ctx context.Context, id uint) (models.Problem, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Problem, error)
	UpdateRubric(ctx context.Context, id uint, rubric datatypes.JSON) error
	Delete(ctx context.Context, id uint) error
}

type problemRepository struct {
	db *gorm.DB
}

// NewProblemRepository instantiates the repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) Create(ctx context.Context, problem *models.Problem) error {
	return r.db.WithContext(ctx).Create(problem).Error
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).First(&problem, id).Error; err != nil {
		return models.Problem{}, err
	}

	return problem, nil
}

func (r *problemRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Problem, error) {
	var problems []models.Problem
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("sort_order ASC").
		Find(&problems).Error; err != nil {
		return nil, err
	}

	return problems, nil
}

func (r *problemRepository) UpdateRubric(ctx context.Context, id uint, rubric datatypes.JSON) error {
	result := r.db.WithContext(ctx).Model(&models.Problem{}).
		Where("id = ?", id).
		Update("rubric", rubric)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *problemRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Problem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
