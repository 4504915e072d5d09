package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/chalkboard-go-api/internal/models"
)

// GradeRepository defines data operations for grades. Grades are append-only;
// there is intentionally no update or delete.
type GradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	LatestBySubmission(ctx context.Context, submissionID uint) (models.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepository) LatestBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC, id DESC").
		First(&grade).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}
