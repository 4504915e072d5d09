package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/chalkboard-go-api/internal/models"
)

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	Upsert(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByProblemAndStudent(ctx context.Context, problemID, studentID uint) (models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Upsert inserts the submission or, when the (problem, student) pair already
// has one, overwrites its notes and image in a single round-trip. The unique
// index plus ON CONFLICT keeps concurrent re-submissions from racing a
// read-then-write cycle.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "problem_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"work_text", "answer_image_url", "updated_at"}),
	}).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Problem").
		Preload("Student").
		First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByProblemAndStudent(ctx context.Context, problemID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("problem_id = ?", problemID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// ListByAssignment returns every submission scoped to the assignment. There is
// no direct foreign key; scoping joins through the parent problem. Grades are
// preloaded newest-first so callers can take the latest verdict per submission.
func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Joins("JOIN problems ON problems.id = submissions.problem_id").
		Where("problems.assignment_id = ?", assignmentID).
		Preload("Student").
		Preload("Grades", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Order("submissions.id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}
