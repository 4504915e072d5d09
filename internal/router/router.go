package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/chalkboard-go-api/internal/config"
	"github.com/noah-isme/chalkboard-go-api/internal/handler"
	"github.com/noah-isme/chalkboard-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	ProblemHandler    *handler.ProblemHandler
	StudentHandler    *handler.StudentHandler
	SubmissionHandler *handler.SubmissionHandler
	GradingHandler    *handler.GradingHandler
	RubricHandler     *handler.RubricHandler
	ReportHandler     *handler.ReportHandler
	UploadHandler     *handler.UploadHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Assignments carry the nested problem and report routes so problem
	// creation is always scoped to an assignment.
	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments")
		deps.AssignmentHandler.Register(assignments)

		if deps.ProblemHandler != nil {
			deps.ProblemHandler.RegisterAssignmentRoutes(assignments)
		}
		if deps.ReportHandler != nil {
			deps.ReportHandler.Register(assignments)
		}
	}

	// Problem-level routes (delete, rubric generate/save)
	if deps.ProblemHandler != nil {
		problems := api.Group("/problems")
		deps.ProblemHandler.Register(problems)

		if deps.RubricHandler != nil {
			deps.RubricHandler.RegisterProblemRoutes(problems)
		}
	}

	// Standalone rubric suggestions (no persistence)
	if deps.RubricHandler != nil {
		rubrics := api.Group("/rubrics")
		deps.RubricHandler.Register(rubrics)
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students")
		deps.StudentHandler.Register(students)
	}

	// Submissions carry the grading trigger so a grade run is always
	// addressed by submission id.
	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions")
		deps.SubmissionHandler.Register(submissions)

		if deps.GradingHandler != nil {
			deps.GradingHandler.Register(submissions)
		}
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads")
		deps.UploadHandler.Register(uploads)
	}
}
