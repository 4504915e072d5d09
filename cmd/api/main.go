package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chalkboard-go-api/internal/config"
	"github.com/noah-isme/chalkboard-go-api/internal/database"
	"github.com/noah-isme/chalkboard-go-api/internal/handler"
	"github.com/noah-isme/chalkboard-go-api/internal/middleware"
	"github.com/noah-isme/chalkboard-go-api/internal/models"
	"github.com/noah-isme/chalkboard-go-api/internal/repository"
	"github.com/noah-isme/chalkboard-go-api/internal/router"
	"github.com/noah-isme/chalkboard-go-api/internal/service"
	"github.com/noah-isme/chalkboard-go-api/pkg/ai"
	cloud "github.com/noah-isme/chalkboard-go-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Student{}, &models.Assignment{}, &models.Problem{}, &models.Submission{}, &models.Grade{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		// The report endpoint recomputes on every call without redis, so a
		// missing cache is a degradation rather than a startup failure.
		logger.Warn().Err(err).Msg("redis unavailable, report caching disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, grade events disabled")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	grader, err := ai.NewOpenRouterGrader(ai.OpenRouterConfig{
		APIKey:      cfg.OpenRouterAPIKey,
		BaseURL:     cfg.OpenRouterBaseURL,
		VisionModel: cfg.VisionModel,
		Referer:     cfg.OpenRouterReferer,
		Title:       cfg.AppName,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to create vision grader: %v", err)
	}

	rubricGen, err := ai.NewOpenRouterRubricGenerator(ai.RubricGenConfig{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Model:   cfg.RubricModel,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create rubric generator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	events := service.NewNATSEventPublisher(natsConn, "chalkboard.grades", logger)

	assignmentService := service.NewAssignmentService(assignmentRepo, validate, cfg.DemoTeacherID, logger)
	problemService := service.NewProblemService(problemRepo, assignmentRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, assignmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, studentRepo, validate, logger)
	gradingService := service.NewGradingService(submissionRepo, gradeRepo, grader, events, cfg.GradingTimeout, logger)
	rubricService := service.NewRubricService(problemRepo, rubricGen, validate, logger)
	reportService := service.NewReportService(assignmentRepo, problemRepo, submissionRepo, redisClient, cfg.ReportCacheTTL, logger)

	deps := router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		ProblemHandler:    handler.NewProblemHandler(problemService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		RubricHandler:     handler.NewRubricHandler(rubricService, logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
	}

	// Uploads need cloudinary credentials; without them the route stays off
	// and clients submit image URLs they host elsewhere.
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploadService := service.NewUploadService(uploader, cfg.UploadMaxSizeMB, logger)
		deps.UploadHandler = handler.NewUploadHandler(uploadService, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
