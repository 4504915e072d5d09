package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/chalkboard-go-api/internal/config"
	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/handler"
	"github.com/noah-isme/chalkboard-go-api/internal/models"
	"github.com/noah-isme/chalkboard-go-api/internal/repository"
	"github.com/noah-isme/chalkboard-go-api/internal/router"
	"github.com/noah-isme/chalkboard-go-api/internal/service"
	"github.com/noah-isme/chalkboard-go-api/pkg/ai"
	"github.com/noah-isme/chalkboard-go-api/pkg/rubric"
)

type fakeGrader struct {
	calls  int
	result ai.GradeResult
	err    error
}

func (g *fakeGrader) Grade(ctx context.Context, input ai.GradeInput) (ai.GradeResult, error) {
	g.calls++
	if g.err != nil {
		return ai.GradeResult{}, g.err
	}
	return g.result, nil
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(ctx context.Context, promptText string, desired rubric.Type) (json.RawMessage, error) {
	return json.RawMessage(`{"type":"numeric_match","expected":{"value":4,"tolerance":0},"instructions":"check the sum","partial_credit_rules":[]}`), nil
}

func (fakeGenerator) GenerateWithExplanation(ctx context.Context, promptText string, desired rubric.Type) (ai.RubricDraft, error) {
	return ai.RubricDraft{
		Rubric:      json.RawMessage(`{"type":"text_criteria","instructions":"grade the reasoning","partial_credit_rules":[]}`),
		Explanation: "Focuses on the reasoning steps.",
	}, nil
}

func setupApp(t *testing.T, grader ai.Grader) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Assignment{}, &models.Problem{}, &models.Submission{}, &models.Grade{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	assignmentRepo := repository.NewAssignmentRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	assignmentService := service.NewAssignmentService(assignmentRepo, validate, "demo-teacher", logger)
	problemService := service.NewProblemService(problemRepo, assignmentRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, assignmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, studentRepo, validate, logger)
	gradingService := service.NewGradingService(submissionRepo, gradeRepo, grader, nil, 0, logger)
	rubricService := service.NewRubricService(problemRepo, fakeGenerator{}, validate, logger)
	reportService := service.NewReportService(assignmentRepo, problemRepo, submissionRepo, nil, 0, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		ProblemHandler:    handler.NewProblemHandler(problemService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		RubricHandler:     handler.NewRubricHandler(rubricService, logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
	})

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func putJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func TestClassroomFlow(t *testing.T) {
	grader := &fakeGrader{result: ai.GradeResult{Score: 0.5, ScoreMax: 1, Rationale: "setup correct, result off"}}
	app := setupApp(t, grader)

	// teacher creates the assignment
	resp := postJSON(t, app, "/api/v1/assignments", dto.AssignmentCreateRequest{Title: "Algebra warmup"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var created struct {
		Success bool                   `json:"success"`
		Data    dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.True(t, created.Success)
	require.NotEmpty(t, created.Data.ShareCode)
	assignmentID := created.Data.ID

	// the share code from a join link resolves back to the assignment
	resp = get(t, app, "/api/v1/assignments/share/"+created.Data.ShareCode)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var resolved struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &resolved)
	require.Equal(t, assignmentID, resolved.Data.ID)

	resp = get(t, app, "/api/v1/assignments/share/not-a-code")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// add a problem
	resp = postJSON(t, app, "/api/v1/assignments/1/problems", dto.ProblemCreateRequest{Order: 1, PromptText: "What is 2+2?"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var problem struct {
		Data dto.ProblemResponse `json:"data"`
	}
	decodeResponse(t, resp, &problem)
	require.NotZero(t, problem.Data.ID)
	require.NotEmpty(t, problem.Data.Rubric, "new problems carry a seeded rubric")

	// replace the rubric with a teacher-authored one
	resp = putJSON(t, app, "/api/v1/problems/1/rubric", dto.RubricSaveRequest{
		Rubric: json.RawMessage(`{"type":"numeric_match","expected":{"value":4,"tolerance":0},"instructions":"exact sum","partial_credit_rules":[]}`),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// student joins
	resp = postJSON(t, app, "/api/v1/students", dto.StudentJoinRequest{AssignmentID: assignmentID, DisplayName: "Alice"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var joined struct {
		Data dto.StudentResponse `json:"data"`
	}
	decodeResponse(t, resp, &joined)

	// student submits work without a typed answer
	resp = postJSON(t, app, "/api/v1/submissions", dto.SubmissionUpsertRequest{
		ProblemID:      problem.Data.ID,
		StudentID:      joined.Data.ID,
		WorkText:       "carried the one",
		AnswerImageURL: "https://cdn.example.com/board.png",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var submitted struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &submitted)

	// grading goes through the vision model
	resp = postJSON(t, app, "/api/v1/submissions/1/grade", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var graded struct {
		Data dto.GradeResponse `json:"data"`
	}
	decodeResponse(t, resp, &graded)
	require.Equal(t, 0.5, graded.Data.Score)
	require.Equal(t, 1, grader.calls)

	// the report reflects the verdict
	resp = get(t, app, "/api/v1/assignments/1/report")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report struct {
		Data dto.ReportResponse `json:"data"`
	}
	decodeResponse(t, resp, &report)
	require.Len(t, report.Data.Rows, 1)
	require.Equal(t, 0.5, report.Data.Rows[0].TotalScore)
	require.Equal(t, "Alice", report.Data.Rows[0].StudentName)
}

func TestTypedAnswerShortcutEndToEnd(t *testing.T) {
	grader := &fakeGrader{err: errors.New("must not be called")}
	app := setupApp(t, grader)

	postJSON(t, app, "/api/v1/assignments", dto.AssignmentCreateRequest{Title: "Quiz"})
	postJSON(t, app, "/api/v1/assignments/1/problems", dto.ProblemCreateRequest{Order: 1, PromptText: "2+2?"})
	putJSON(t, app, "/api/v1/problems/1/rubric", dto.RubricSaveRequest{
		Rubric: json.RawMessage(`{"type":"numeric_match","expected":{"value":4,"tolerance":0},"instructions":"exact","partial_credit_rules":[]}`),
	})
	postJSON(t, app, "/api/v1/students", dto.StudentJoinRequest{AssignmentID: 1, DisplayName: "Bob"})
	postJSON(t, app, "/api/v1/submissions", dto.SubmissionUpsertRequest{
		ProblemID:      1,
		StudentID:      1,
		WorkText:       "worked it out\nFinal answer (typed): 4",
		AnswerImageURL: "https://cdn.example.com/board.png",
	})

	resp := postJSON(t, app, "/api/v1/submissions/1/grade", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var graded struct {
		Data dto.GradeResponse `json:"data"`
	}
	decodeResponse(t, resp, &graded)
	require.Equal(t, 1.0, graded.Data.Score)
	require.Zero(t, grader.calls)
}

func TestGradingFailureIsSoftenedForStudents(t *testing.T) {
	grader := &fakeGrader{err: errors.New("model provider is on fire")}
	app := setupApp(t, grader)

	postJSON(t, app, "/api/v1/assignments", dto.AssignmentCreateRequest{Title: "Quiz"})
	postJSON(t, app, "/api/v1/assignments/1/problems", dto.ProblemCreateRequest{Order: 1, PromptText: "2+2?"})
	postJSON(t, app, "/api/v1/students", dto.StudentJoinRequest{AssignmentID: 1, DisplayName: "Bob"})
	postJSON(t, app, "/api/v1/submissions", dto.SubmissionUpsertRequest{
		ProblemID:      1,
		StudentID:      1,
		AnswerImageURL: "https://cdn.example.com/board.png",
	})

	resp := postJSON(t, app, "/api/v1/submissions/1/grade", nil)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.NotContains(t, body.Message, "on fire", "internal failure details stay out of student responses")
}

func TestGradeUnknownSubmissionStaysPrecise(t *testing.T) {
	app := setupApp(t, &fakeGrader{})

	resp := postJSON(t, app, "/api/v1/submissions/999/grade", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRubricEndpoints(t *testing.T) {
	app := setupApp(t, &fakeGrader{})

	postJSON(t, app, "/api/v1/assignments", dto.AssignmentCreateRequest{Title: "Quiz"})
	postJSON(t, app, "/api/v1/assignments/1/problems", dto.ProblemCreateRequest{Order: 1, PromptText: "2+2?"})

	resp := postJSON(t, app, "/api/v1/problems/1/rubric/generate", dto.RubricGenerateRequest{PromptText: "2+2?", Type: "numeric_match"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var generated struct {
		Data dto.RubricResponse `json:"data"`
	}
	decodeResponse(t, resp, &generated)
	require.NoError(t, rubric.ValidateJSON(generated.Data.Rubric))

	resp = postJSON(t, app, "/api/v1/rubrics/suggest", dto.RubricGenerateRequest{PromptText: "2+2?", Type: "text_criteria"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var suggested struct {
		Data dto.RubricResponse `json:"data"`
	}
	decodeResponse(t, resp, &suggested)
	require.NotEmpty(t, suggested.Data.Explanation)

	// invalid teacher edit bounces with a 400
	resp = putJSON(t, app, "/api/v1/problems/1/rubric", dto.RubricSaveRequest{
		Rubric: json.RawMessage(`{"type":"numeric_match","instructions":"missing target","partial_credit_rules":[]}`),
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProblemNotFoundAndBadParams(t *testing.T) {
	app := setupApp(t, &fakeGrader{})

	resp := get(t, app, "/api/v1/assignments/42")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = get(t, app, "/api/v1/assignments/not-a-number")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest("DELETE", "/api/v1/problems/42", nil)
	deleteResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, deleteResp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := setupApp(t, &fakeGrader{})

	resp := get(t, app, "/api/v1/health")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "ok", body.Data.Status)
}
