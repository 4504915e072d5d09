package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/models"
	"github.com/noah-isme/chalkboard-go-api/internal/repository"
)

// ErrStudentNotFound indicates a student could not be found.
var ErrStudentNotFound = errors.New("student not found")

// StudentService handles students joining assignments.
type StudentService interface {
	Join(ctx context.Context, payload dto.StudentJoinRequest) (dto.StudentResponse, error)
}

type studentService struct {
	students    repository.StudentRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(studentRepo repository.StudentRepository, assignmentRepo repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:    studentRepo,
		assignments: assignmentRepo,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Join(ctx context.Context, payload dto.StudentJoinRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if _, err := s.assignments.GetByID(ctx, payload.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrAssignmentNotFound
		}
		return dto.StudentResponse{}, err
	}

	name := strings.TrimSpace(s.sanitizer.Sanitize(payload.DisplayName))
	if name == "" {
		name = "Student"
	}

	student := models.Student{
		DisplayName: name,
		Role:        "student",
	}

	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("assignment_id", payload.AssignmentID).Msg("student joined")

	return dto.NewStudentResponse(student), nil
}
