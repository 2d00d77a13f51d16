package handlers

import (
	"strconv"
	"strings"

	"campus-companion/internal/dto"
	"campus-companion/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type QAHandler struct {
	qaService *service.QAService
	knowledge *service.KnowledgeService
	logger    *zap.Logger
}

func NewQAHandler(qaService *service.QAService, knowledge *service.KnowledgeService, logger *zap.Logger) *QAHandler {
	return &QAHandler{
		qaService: qaService,
		knowledge: knowledge,
		logger:    logger,
	}
}

// Ask godoc
// @Summary Answer a student question
// @Description Resolves a free-text question against the knowledge base, with keyword and generative fallbacks
// @Tags qa
// @Produce json
// @Param query query string true "Free-text question"
// @Param min_score query number false "Minimum similarity score to accept an internal match"
// @Param autosave query boolean false "Record the resolution in history (default true)"
// @Success 200 {object} dto.QueryResolution
// @Failure 400 {object} map[string]string
// @Router /ask [get]
func (h *QAHandler) Ask(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query parameter is required",
		})
	}

	opts := service.AskOptions{Autosave: true}

	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "min_score must be a number",
			})
		}
		opts.MinScore = &minScore
	}

	if raw := c.Query("autosave"); raw != "" {
		autosave, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "autosave must be a boolean",
			})
		}
		opts.Autosave = autosave
	}

	resolution, err := h.qaService.Ask(c.Context(), query, opts)
	if err != nil {
		h.logger.Error("Failed to resolve query", zap.String("query", query), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve query",
		})
	}

	return c.JSON(resolution)
}

// Reload godoc
// @Summary Reload the knowledge catalog
// @Description Rebuilds the index from the catalog file and swaps it in atomically
// @Tags qa
// @Produce json
// @Success 200 {object} dto.ReloadResponse
// @Router /reload [get]
func (h *QAHandler) Reload(c *fiber.Ctx) error {
	count, err := h.knowledge.Reload(c.Context())
	if err != nil {
		h.logger.Error("Failed to reload knowledge catalog", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reload knowledge catalog",
		})
	}

	return c.JSON(dto.ReloadResponse{Status: "reloaded", Items: count})
}

// Topics godoc
// @Summary List knowledge base topics
// @Description Returns every distinct topic with its question count
// @Tags qa
// @Produce json
// @Success 200 {object} dto.TopicsResponse
// @Router /topics [get]
func (h *QAHandler) Topics(c *fiber.Ctx) error {
	return c.JSON(dto.TopicsResponse{Topics: h.knowledge.Topics()})
}

// QuestionsByTopic godoc
// @Summary List questions for a topic
// @Tags qa
// @Produce json
// @Param topic path string true "Topic name"
// @Success 200 {object} dto.TopicQuestionsResponse
// @Router /questions/{topic} [get]
func (h *QAHandler) QuestionsByTopic(c *fiber.Ctx) error {
	topic := c.Params("topic")

	items := h.knowledge.QuestionsByTopic(topic)
	questions := make([]dto.TopicQuestion, len(items))
	for i, item := range items {
		questions[i] = dto.TopicQuestion{
			Question: item.Question,
			Answer:   item.Answer,
			Topic:    item.Topic,
		}
	}

	return c.JSON(dto.TopicQuestionsResponse{
		Topic:     topic,
		Count:     len(questions),
		Questions: questions,
	})
}

// Home godoc
// @Summary Health check
// @Tags qa
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *QAHandler) Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Campus Companion API is running",
	})
}
