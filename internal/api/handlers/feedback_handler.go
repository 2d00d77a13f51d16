package handlers

import (
	"strconv"

	"campus-companion/internal/dto"
	"campus-companion/internal/models"
	"campus-companion/internal/repository"
	"campus-companion/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	defaultStatsLimit   = 5
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
	feedbackRepo    *repository.FeedbackRepository
	historyRepo     *repository.HistoryRepository
	logger          *zap.Logger
}

func NewFeedbackHandler(
	feedbackService *service.FeedbackService,
	feedbackRepo *repository.FeedbackRepository,
	historyRepo *repository.HistoryRepository,
	logger *zap.Logger,
) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		feedbackRepo:    feedbackRepo,
		historyRepo:     historyRepo,
		logger:          logger,
	}
}

// Rate godoc
// @Summary Rate an answer
// @Description Records a thumbs up/down vote for a knowledge base question
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body dto.RateRequest true "Vote"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} map[string]string
// @Router /rate [post]
func (h *FeedbackHandler) Rate(c *fiber.Ctx) error {
	var req dto.RateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.feedbackService.RecordVote(c.Context(), req.Question, req.Topic, req.Rating, req.UserQuery); err != nil {
		h.logger.Error("Failed to record vote", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(dto.RateResponse{Status: "success", Message: "Rating saved"})
}

// History godoc
// @Summary Recent query history
// @Tags feedback
// @Produce json
// @Param limit query int false "Maximum records to return (default 20)"
// @Success 200 {array} dto.HistoryEntryResponse
// @Router /history [get]
func (h *FeedbackHandler) History(c *fiber.Ctx) error {
	limit, err := limitParam(c, defaultHistoryLimit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a positive integer",
		})
	}

	records, err := h.historyRepo.ListRecent(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list history",
		})
	}

	entries := make([]dto.HistoryEntryResponse, len(records))
	for i, rec := range records {
		entries[i] = dto.HistoryEntryResponse{
			Ts:     rec.Ts.Unix(),
			Query:  rec.Query,
			Answer: rec.Answer,
			Source: rec.Source,
		}
	}

	return c.JSON(entries)
}

// Popular godoc
// @Summary Best-rated questions
// @Tags feedback
// @Produce json
// @Param limit query int false "Maximum questions to return (default 5)"
// @Success 200 {array} dto.QuestionStatsResponse
// @Router /popular [get]
func (h *FeedbackHandler) Popular(c *fiber.Ctx) error {
	limit, err := limitParam(c, defaultStatsLimit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a positive integer",
		})
	}

	stats, err := h.feedbackRepo.Popular(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list popular questions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list popular questions",
		})
	}

	return c.JSON(statsResponses(stats))
}

// NeedsImprovement godoc
// @Summary Questions with negative feedback
// @Tags feedback
// @Produce json
// @Param limit query int false "Maximum questions to return (default 5)"
// @Success 200 {array} dto.QuestionStatsResponse
// @Router /needs-improvement [get]
func (h *FeedbackHandler) NeedsImprovement(c *fiber.Ctx) error {
	limit, err := limitParam(c, defaultStatsLimit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a positive integer",
		})
	}

	stats, err := h.feedbackRepo.NeedsImprovement(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list questions needing improvement", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list questions needing improvement",
		})
	}

	return c.JSON(statsResponses(stats))
}

func limitParam(c *fiber.Ctx, def int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fiber.ErrBadRequest
	}
	return limit, nil
}

func statsResponses(stats []*models.QuestionStats) []dto.QuestionStatsResponse {
	responses := make([]dto.QuestionStatsResponse, len(stats))
	for i, s := range stats {
		responses[i] = dto.QuestionStatsResponse{
			Question: s.Question,
			Topic:    s.Topic,
			Likes:    s.Likes,
			Dislikes: s.Dislikes,
			Score:    s.Score,
		}
	}
	return responses
}
