package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/service"
	"github.com/noah-isme/chalkboard-go-api/internal/utils"
	"github.com/noah-isme/chalkboard-go-api/pkg/rubric"
)

// RubricHandler manages rubric generation and persistence endpoints.
type RubricHandler struct {
	service service.RubricService
	logger  zerolog.Logger
}

// NewRubricHandler builds a rubric handler instance.
func NewRubricHandler(service service.RubricService, logger zerolog.Logger) *RubricHandler {
	return &RubricHandler{
		service: service,
		logger:  logger.With().Str("component", "rubric_handler").Logger(),
	}
}

// RegisterProblemRoutes attaches the per-problem rubric routes.
func (h *RubricHandler) RegisterProblemRoutes(router fiber.Router) {
	router.Post("/:id/rubric/generate", h.generate)
	router.Put("/:id/rubric", h.save)
}

// Register attaches the standalone suggestion route.
func (h *RubricHandler) Register(router fiber.Router) {
	router.Post("/suggest", h.suggest)
}

func (h *RubricHandler) generate(c *fiber.Ctx) error {
	problemID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RubricGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	generated, err := h.service.Generate(c.Context(), problemID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "rubric generated", generated)
}

func (h *RubricHandler) suggest(c *fiber.Ctx) error {
	var payload dto.RubricGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	suggestion, err := h.service.Suggest(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "rubric suggested", suggestion)
}

func (h *RubricHandler) save(c *fiber.Ctx) error {
	problemID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RubricSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Save(c.Context(), problemID, payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "rubric saved", nil)
}

func (h *RubricHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
	case errors.Is(err, rubric.ErrSchemaViolation):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("rubric request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}
}
