package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/models"
	"github.com/noah-isme/chalkboard-go-api/internal/observability"
	"github.com/noah-isme/chalkboard-go-api/internal/repository"
	"github.com/noah-isme/chalkboard-go-api/pkg/ai"
	"github.com/noah-isme/chalkboard-go-api/pkg/rubric"
)

// ErrGradingTimeout indicates the vision model did not answer within the
// configured deadline.
var ErrGradingTimeout = errors.New("grading timed out waiting for the model")

// GradingService grades submissions: deterministically when the student typed
// a final answer that matches the rubric, otherwise through the vision model.
type GradingService interface {
	Grade(ctx context.Context, submissionID uint) (dto.GradeResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	grades      repository.GradeRepository
	grader      ai.Grader
	events      EventPublisher
	timeout     time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewGradingService constructs a GradingService instance.
func NewGradingService(submissionRepo repository.SubmissionRepository, gradeRepo repository.GradeRepository, grader ai.Grader, events EventPublisher, timeout time.Duration, logger zerolog.Logger) GradingService {
	if events == nil {
		events = noopEventPublisher{}
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &gradingService{
		submissions: submissionRepo,
		grades:      gradeRepo,
		grader:      grader,
		events:      events,
		timeout:     timeout,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/chalkboard-go-api/internal/service/grading"),
	}
}

func (s *gradingService) Grade(ctx context.Context, submissionID uint) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.grade")
	span.SetAttributes(attribute.Int64("grading.submission_id", int64(submissionID)))
	defer span.End()

	response, outcome, err := s.grade(ctx, submissionID)
	observability.GradingOutcomes().WithLabelValues(outcome).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.GradeResponse{}, err
	}

	span.SetAttributes(
		attribute.Float64("grading.score", response.Score),
		attribute.String("grading.outcome", outcome),
	)

	return response, nil
}

func (s *gradingService) grade(ctx context.Context, submissionID uint) (dto.GradeResponse, string, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, observability.GradingOutcomeError, ErrSubmissionNotFound
		}
		return dto.GradeResponse{}, observability.GradingOutcomeError, err
	}

	parsed, err := rubric.Parse(submission.Problem.Rubric)
	if err != nil {
		return dto.GradeResponse{}, observability.GradingOutcomeError, fmt.Errorf("stored rubric for problem %d: %w", submission.ProblemID, err)
	}

	// Deterministic shortcut: a typed final answer that matches the rubric
	// earns full credit without a model call. The grade write is part of the
	// decision; a failed write surfaces instead of falling through to the
	// model, which could otherwise double-grade.
	if typed := rubric.ExtractTypedFinal(submission.WorkText); typed != "" && parsed.MatchesTyped(typed) {
		grade := models.Grade{
			SubmissionID: submission.ID,
			ScoreNumeric: 1,
			ScoreMax:     1,
			FeedbackText: "Accepted typed final answer: " + typed,
			GradedBy:     models.GradedByVision,
		}

		if err := s.grades.Create(ctx, &grade); err != nil {
			return dto.GradeResponse{}, observability.GradingOutcomeError, err
		}

		s.publish(ctx, grade)
		s.logger.Info().Uint("submission_id", submission.ID).Msg("graded via typed answer shortcut")

		return dto.NewGradeResponse(grade), observability.GradingOutcomeShortcut, nil
	}

	serialized, err := parsed.MarshalJSON()
	if err != nil {
		return dto.GradeResponse{}, observability.GradingOutcomeError, err
	}

	gradeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.grader.Grade(gradeCtx, ai.GradeInput{
		Rubric:     serialized,
		PromptText: submission.Problem.PromptText,
		ImageURL:   submission.AnswerImageURL,
		WorkText:   submission.WorkText,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = ErrGradingTimeout
		}
		return dto.GradeResponse{}, observability.GradingOutcomeError, err
	}

	grade := models.Grade{
		SubmissionID: submission.ID,
		ScoreNumeric: result.Score,
		ScoreMax:     result.ScoreMax,
		FeedbackText: result.Rationale,
		GradedBy:     models.GradedByVision,
	}

	if err := s.grades.Create(ctx, &grade); err != nil {
		return dto.GradeResponse{}, observability.GradingOutcomeError, err
	}

	s.publish(ctx, grade)
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("score", grade.ScoreNumeric).
		Msg("graded via vision model")

	return dto.NewGradeResponse(grade), observability.GradingOutcomeVision, nil
}

func (s *gradingService) publish(ctx context.Context, grade models.Grade) {
	event := GradeEvent{
		GradeID:      grade.ID,
		SubmissionID: grade.SubmissionID,
		Score:        grade.ScoreNumeric,
		ScoreMax:     grade.ScoreMax,
		GradedBy:     grade.GradedBy,
		CreatedAt:    grade.CreatedAt,
	}

	if err := s.events.GradeCreated(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("grade_id", grade.ID).Msg("failed to publish grade event")
	}
}
