package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/models"
	"github.com/noah-isme/chalkboard-go-api/internal/repository"
	"github.com/noah-isme/chalkboard-go-api/pkg/rubric"
)

// ErrProblemNotFound indicates a problem could not be found.
var ErrProblemNotFound = errors.New("problem not found")

// ProblemService orchestrates problem authoring workflows.
type ProblemService interface {
	Create(ctx context.Context, assignmentID uint, payload dto.ProblemCreateRequest) (dto.ProblemResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.ProblemResponse, error)
	Delete(ctx context.Context, id uint) error
}

type problemService struct {
	problems    repository.ProblemRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewProblemService constructs a ProblemService instance.
func NewProblemService(problemRepo repository.ProblemRepository, assignmentRepo repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) ProblemService {
	return &problemService{
		problems:    problemRepo,
		assignments: assignmentRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "problem_service").Logger(),
	}
}

func (s *problemService) Create(ctx context.Context, assignmentID uint, payload dto.ProblemCreateRequest) (dto.ProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemResponse{}, err
	}

	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrAssignmentNotFound
		}
		return dto.ProblemResponse{}, err
	}

	seed, err := json.Marshal(defaultRubric())
	if err != nil {
		return dto.ProblemResponse{}, err
	}

	problem := models.Problem{
		AssignmentID: assignmentID,
		Order:        payload.Order,
		PromptText:   strings.TrimSpace(payload.PromptText),
		Rubric:       datatypes.JSON(seed),
	}

	if err := s.problems.Create(ctx, &problem); err != nil {
		return dto.ProblemResponse{}, err
	}

	s.logger.Info().Uint("problem_id", problem.ID).Uint("assignment_id", assignmentID).Msg("problem created")

	return dto.NewProblemResponse(problem), nil
}

func (s *problemService) ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.ProblemResponse, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	problems, err := s.problems.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewProblemResponseSlice(problems), nil
}

func (s *problemService) Delete(ctx context.Context, id uint) error {
	if err := s.problems.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProblemNotFound
		}
		return err
	}

	s.logger.Info().Uint("problem_id", id).Msg("problem deleted")

	return nil
}

// defaultRubric seeds new problems with a permissive numeric rubric the
// teacher is expected to adjust or regenerate.
func defaultRubric() rubric.Rubric {
	return rubric.Rubric{
		Type:    rubric.TypeNumeric,
		Numeric: &rubric.NumericSpec{Value: 0, Tolerance: 0.05},
		Instructions: `Find the final answer (boxed/circled/underlined or prefixed with "Final:"). ` +
			"Treat trailing punctuation as insignificant. Teacher may adjust.",
		PartialCredit: []rubric.PartialCreditRule{},
	}
}
