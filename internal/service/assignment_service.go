package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/models"
	"github.com/noah-isme/chalkboard-go-api/internal/repository"
)

// ErrAssignmentNotFound indicates an assignment could not be found.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService orchestrates assignment workflows.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	GetByShareCode(ctx context.Context, code string) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments   repository.AssignmentRepository
	validator     *validator.Validate
	demoTeacherID string
	logger        zerolog.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(repo repository.AssignmentRepository, validate *validator.Validate, demoTeacherID string, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments:   repo,
		validator:     validate,
		demoTeacherID: demoTeacherID,
		logger:        logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	teacherID := strings.TrimSpace(payload.TeacherID)
	if teacherID == "" {
		teacherID = s.demoTeacherID
	}

	assignment := models.Assignment{
		TeacherID: teacherID,
		Title:     strings.TrimSpace(payload.Title),
		ShareCode: uuid.NewString(),
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// GetByShareCode resolves the code embedded in a join link so students can
// open an assignment without knowing its id.
func (s *assignmentService) GetByShareCode(ctx context.Context, code string) (dto.AssignmentResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return dto.AssignmentResponse{}, ErrAssignmentNotFound
	}

	assignment, err := s.assignments.GetByShareCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}
