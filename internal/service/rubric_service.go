package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/repository"
	"github.com/noah-isme/chalkboard-go-api/pkg/ai"
	"github.com/noah-isme/chalkboard-go-api/pkg/rubric"
)

// RubricService drafts rubrics with the model and persists teacher edits.
type RubricService interface {
	Generate(ctx context.Context, problemID uint, payload dto.RubricGenerateRequest) (dto.RubricResponse, error)
	Suggest(ctx context.Context, payload dto.RubricGenerateRequest) (dto.RubricResponse, error)
	Save(ctx context.Context, problemID uint, payload dto.RubricSaveRequest) error
}

type rubricService struct {
	problems  repository.ProblemRepository
	generator ai.RubricGenerator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRubricService constructs a RubricService instance.
func NewRubricService(problemRepo repository.ProblemRepository, generator ai.RubricGenerator, validate *validator.Validate, logger zerolog.Logger) RubricService {
	return &rubricService{
		problems:  problemRepo,
		generator: generator,
		validator: validate,
		logger:    logger.With().Str("component", "rubric_service").Logger(),
	}
}

// Generate drafts a schema-validated rubric for an existing problem and
// stores it immediately.
func (s *rubricService) Generate(ctx context.Context, problemID uint, payload dto.RubricGenerateRequest) (dto.RubricResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RubricResponse{}, err
	}

	if _, err := s.problems.GetByID(ctx, problemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RubricResponse{}, ErrProblemNotFound
		}
		return dto.RubricResponse{}, err
	}

	generated, err := s.generator.Generate(ctx, payload.PromptText, rubric.Type(payload.Type))
	if err != nil {
		return dto.RubricResponse{}, err
	}

	if err := s.problems.UpdateRubric(ctx, problemID, datatypes.JSON(generated)); err != nil {
		return dto.RubricResponse{}, err
	}

	s.logger.Info().Uint("problem_id", problemID).Str("type", payload.Type).Msg("rubric generated")

	return dto.RubricResponse{Rubric: generated}, nil
}

// Suggest drafts a rubric plus a short explanation for teacher review without
// persisting anything. The rubric field is loosely typed and display-only.
func (s *rubricService) Suggest(ctx context.Context, payload dto.RubricGenerateRequest) (dto.RubricResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RubricResponse{}, err
	}

	draft, err := s.generator.GenerateWithExplanation(ctx, payload.PromptText, rubric.Type(payload.Type))
	if err != nil {
		return dto.RubricResponse{}, err
	}

	return dto.RubricResponse{Rubric: draft.Rubric, Explanation: draft.Explanation}, nil
}

// Save validates a teacher-edited rubric against the closed schema and stores
// its normalized form. Invalid rubrics never reach persistence.
func (s *rubricService) Save(ctx context.Context, problemID uint, payload dto.RubricSaveRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	parsed, err := rubric.Parse(payload.Rubric)
	if err != nil {
		return err
	}

	normalized, err := parsed.MarshalJSON()
	if err != nil {
		return err
	}

	if err := s.problems.UpdateRubric(ctx, problemID, datatypes.JSON(normalized)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProblemNotFound
		}
		return err
	}

	s.logger.Info().Uint("problem_id", problemID).Msg("rubric saved")

	return nil
}
