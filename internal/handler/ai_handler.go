package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-ai/internal/dto"
	"github.com/noah-isme/gema-ai/internal/service"
	"github.com/noah-isme/gema-ai/internal/utils"
	"github.com/noah-isme/gema-ai/pkg/ai"
)

// SourceHeader tells clients where the payload came from.
const SourceHeader = "X-AI-Source"

// AIHandler exposes the orchestrated AI operations.
type AIHandler struct {
	service service.AIService
	logger  zerolog.Logger
}

// NewAIHandler constructs an AI handler.
func NewAIHandler(service service.AIService, logger zerolog.Logger) *AIHandler {
	return &AIHandler{
		service: service,
		logger:  logger.With().Str("component", "ai_handler").Logger(),
	}
}

// Register wires AI routes.
func (h *AIHandler) Register(router fiber.Router) {
	router.Post("/generate-questions", h.generateQuestions)
	router.Post("/smart-grading", h.smartGrading)
	router.Post("/recommendations", h.recommend)
	router.Post("/learning-path", h.learningPath)
	router.Post("/error-analysis", h.errorAnalysis)
	router.Post("/motivation", h.motivation)
	router.Post("/learning-style", h.learningStyle)
	router.Post("/ability-assessment", h.abilityAssessment)
	router.Post("/generate-exam", h.generateExam)
	router.Post("/learning-report", h.learningReport)
}

func (h *AIHandler) generateQuestions(c *fiber.Ctx) error {
	return handle(h, c, "questions generated", h.service.GenerateQuestions)
}

func (h *AIHandler) smartGrading(c *fiber.Ctx) error {
	return handle(h, c, "answer graded", h.service.SmartGrading)
}

func (h *AIHandler) recommend(c *fiber.Ctx) error {
	return handle(h, c, "recommendations generated", h.service.Recommend)
}

func (h *AIHandler) learningPath(c *fiber.Ctx) error {
	return handle(h, c, "learning path planned", h.service.PlanLearningPath)
}

func (h *AIHandler) errorAnalysis(c *fiber.Ctx) error {
	return handle(h, c, "error analysed", h.service.AnalyzeError)
}

func (h *AIHandler) motivation(c *fiber.Ctx) error {
	return handle(h, c, "motivation plan generated", h.service.PlanMotivation)
}

func (h *AIHandler) learningStyle(c *fiber.Ctx) error {
	return handle(h, c, "learning style analysed", h.service.AnalyzeLearningStyle)
}

func (h *AIHandler) abilityAssessment(c *fiber.Ctx) error {
	return handle(h, c, "ability assessed", h.service.AssessAbility)
}

func (h *AIHandler) generateExam(c *fiber.Ctx) error {
	return handle(h, c, "exam generated", h.service.GenerateExam)
}

func (h *AIHandler) learningReport(c *fiber.Ctx) error {
	return handle(h, c, "learning report generated", h.service.LearningReport)
}

func handle[T any](h *AIHandler, c *fiber.Ctx, message string, call func(context.Context, T) (dto.AIResponse, error)) error {
	var payload T
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", nil)
	}

	resp, err := call(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
		case errors.Is(err, ai.ErrInvalidInput):
			return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
		}
		requestLogger(h.logger, c).Error().Err(err).Str("path", c.Path()).Msg("ai operation failed")
		return utils.Fail(c, fiber.StatusInternalServerError, "failed to process request", nil)
	}

	c.Set(SourceHeader, resp.Meta.Source)
	return utils.OK(c, resp.Data, message, resp.Meta)
}
