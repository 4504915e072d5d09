package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chalkboard-go-api/internal/service"
	"github.com/noah-isme/chalkboard-go-api/internal/utils"
)

// Students see this instead of raw model failures; the real error goes to
// the log.
const gradingUnavailableMessage = "your work is still being graded, please check back shortly"

// GradingHandler triggers grading runs for submissions.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/:id/grade", h.grade)
}

func (h *GradingHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grade, err := h.service.Grade(c.Context(), id)
	if err != nil {
		return h.handleError(c, id, err)
	}

	return utils.SendSuccess(c, "submission graded", grade)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, submissionID uint, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	default:
		h.logger.Error().
			Err(err).
			Uint("submission_id", submissionID).
			Msg("grading failed")
		return utils.SendError(c, fiber.StatusServiceUnavailable, gradingUnavailableMessage)
	}
}
