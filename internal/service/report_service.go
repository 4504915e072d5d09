package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/observability"
	"github.com/noah-isme/chalkboard-go-api/internal/repository"
)

// ReportService computes per-student scorecards for an assignment.
type ReportService interface {
	Build(ctx context.Context, assignmentID uint) (dto.ReportResponse, error)
}

type reportService struct {
	assignments repository.AssignmentRepository
	problems    repository.ProblemRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewReportService constructs a ReportService instance. The redis client is
// optional; without it every call recomputes the report.
func NewReportService(assignmentRepo repository.AssignmentRepository, problemRepo repository.ProblemRepository, submissionRepo repository.SubmissionRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		assignments: assignmentRepo,
		problems:    problemRepo,
		submissions: submissionRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "report_service").Logger(),
	}
}

func reportCacheKey(assignmentID uint) string {
	return fmt.Sprintf("chalkboard:report:%d", assignmentID)
}

func (s *reportService) Build(ctx context.Context, assignmentID uint) (dto.ReportResponse, error) {
	if cached, ok := s.fromCache(ctx, assignmentID); ok {
		observability.ReportCache().WithLabelValues("hit").Inc()
		return cached, nil
	}
	observability.ReportCache().WithLabelValues("miss").Inc()

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportResponse{}, ErrAssignmentNotFound
		}
		return dto.ReportResponse{}, err
	}

	problems, err := s.problems.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.ReportResponse{}, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.ReportResponse{}, err
	}

	columns := make([]dto.ProblemColumn, 0, len(problems))
	for _, problem := range problems {
		columns = append(columns, dto.ProblemColumn{
			ID:         problem.ID,
			Order:      problem.Order,
			PromptText: problem.PromptText,
		})
	}

	// One row per distinct student, in first-submission order. Grades are
	// preloaded newest-first, so index 0 is the latest verdict for the slot.
	rowIndex := make(map[uint]int)
	rows := make([]dto.ScoreRow, 0)
	for _, submission := range submissions {
		idx, ok := rowIndex[submission.StudentID]
		if !ok {
			name := submission.Student.DisplayName
			if name == "" {
				name = "Student"
			}
			rows = append(rows, dto.ScoreRow{
				StudentID:     submission.StudentID,
				StudentName:   name,
				ProblemScores: []dto.ProblemScore{},
				Artifacts:     []dto.Artifact{},
			})
			idx = len(rows) - 1
			rowIndex[submission.StudentID] = idx
		}

		slot := dto.ProblemScore{ProblemID: submission.ProblemID, Max: 1}
		if len(submission.Grades) > 0 {
			latest := submission.Grades[0]
			score := latest.ScoreNumeric
			slot.Score = &score
			slot.Max = latest.ScoreMax
			rows[idx].TotalScore += latest.ScoreNumeric
			rows[idx].TotalMax += latest.ScoreMax
		}

		rows[idx].ProblemScores = append(rows[idx].ProblemScores, slot)
		rows[idx].Artifacts = append(rows[idx].Artifacts, dto.Artifact{
			ProblemID: submission.ProblemID,
			ImageURL:  submission.AnswerImageURL,
		})
	}

	report := dto.ReportResponse{
		Assignment: dto.NewAssignmentResponse(assignment),
		Problems:   columns,
		Rows:       rows,
	}

	s.toCache(ctx, assignmentID, report)

	return report, nil
}

func (s *reportService) fromCache(ctx context.Context, assignmentID uint) (dto.ReportResponse, bool) {
	if s.cache == nil {
		return dto.ReportResponse{}, false
	}

	raw, err := s.cache.Get(ctx, reportCacheKey(assignmentID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("report cache read failed")
		}
		return dto.ReportResponse{}, false
	}

	var report dto.ReportResponse
	if err := json.Unmarshal(raw, &report); err != nil {
		s.logger.Warn().Err(err).Msg("report cache entry corrupt, recomputing")
		return dto.ReportResponse{}, false
	}

	return report, true
}

func (s *reportService) toCache(ctx context.Context, assignmentID uint, report dto.ReportResponse) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	encoded, err := json.Marshal(report)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, reportCacheKey(assignmentID), encoded, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("report cache write failed")
	}
}
