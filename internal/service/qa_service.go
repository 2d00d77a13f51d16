package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"campus-companion/internal/dto"
	"campus-companion/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// escalationEmail is where students are pointed when no answer source works.
const escalationEmail = "student.experience@harbour.space"

// fallbackAnswer is served when the generative fallback itself is unavailable.
const fallbackAnswer = "I couldn't find an answer in my knowledge base. Please try rephrasing your question or contact " + escalationEmail

// AnswerGenerator produces a free-text answer when no internal knowledge item
// is trusted.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, query string, topics []string) (string, error)
}

// HistorySink records every resolved exchange.
type HistorySink interface {
	Append(ctx context.Context, rec *models.HistoryRecord) error
}

// AskOptions are the per-request knobs of a query resolution.
type AskOptions struct {
	MinScore *float64 // overrides the configured accept threshold
	Autosave bool     // append the resolution to history
}

// QAService ties the retrieval pipeline together: score all items, apply
// feedback boosts, pick the best candidate, arbitrate its relevance, and fall
// back first to a topic keyword scan and then to the generative model.
type QAService struct {
	knowledge *KnowledgeService
	feedback  *FeedbackService
	relevance *RelevanceService
	generator AnswerGenerator
	history   HistorySink
	minScore  float64
	logger    *zap.Logger
}

func NewQAService(
	knowledge *KnowledgeService,
	feedback *FeedbackService,
	relevance *RelevanceService,
	generator AnswerGenerator,
	history HistorySink,
	minScore float64,
	logger *zap.Logger,
) *QAService {
	return &QAService{
		knowledge: knowledge,
		feedback:  feedback,
		relevance: relevance,
		generator: generator,
		history:   history,
		minScore:  minScore,
		logger:    logger,
	}
}

// Ask resolves one query. A well-formed query always gets some answer: an
// internal match, a keyword fallback, or a generated one.
func (s *QAService) Ask(ctx context.Context, query string, opts AskOptions) (*dto.QueryResolution, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	snap := s.knowledge.Snapshot()
	if snap == nil {
		return nil, fmt.Errorf("knowledge catalog is not loaded")
	}

	minScore := s.minScore
	if opts.MinScore != nil {
		minScore = *opts.MinScore
	}

	scores, err := snap.Score(ctx, s.knowledge.Backend(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to score query: %w", err)
	}

	// Feedback boosts are a per-query correction layer, so votes registered
	// after the last reload still take effect.
	for i, item := range snap.Items {
		scores[i] += s.feedback.Boost(ctx, item.Question)
	}

	// Stable argmax: ties go to the first occurrence in catalog order.
	bestIdx, bestScore := 0, math.Inf(-1)
	for i, score := range scores {
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	var resolution *dto.QueryResolution
	if len(snap.Items) > 0 && s.relevance.Trusted(ctx, query, snap.Items[bestIdx], bestScore, minScore) {
		resolution = resolutionFromItem(snap.Items[bestIdx], models.SourceInternalSemantic, roundedScore(bestScore))
		s.logger.Info("Query answered from knowledge base",
			zap.String("query", query),
			zap.String("matched", snap.Items[bestIdx].Question),
			zap.Float64("score", bestScore),
		)
	} else if item, ok := topicKeywordFallback(query, snap.Items); ok {
		resolution = resolutionFromItem(item, models.SourceInternalFallback, nil)
		s.logger.Info("Query answered by topic keyword fallback",
			zap.String("query", query),
			zap.String("topic", item.Topic),
		)
	} else {
		resolution = s.generativeFallback(ctx, query)
	}

	if opts.Autosave {
		s.saveHistory(ctx, query, resolution)
	}

	return resolution, nil
}

// topicKeywordFallback scans the catalog in order for an item whose topic is a
// literal substring of the lower-cased query; the first match wins. This is a
// coarse heuristic kept as observed behavior: a topic name appearing anywhere
// in the query triggers it without question-level relevance.
func topicKeywordFallback(query string, items []models.KnowledgeItem) (models.KnowledgeItem, bool) {
	ql := strings.ToLower(query)
	for _, item := range items {
		if item.Topic != "" && strings.Contains(ql, item.Topic) {
			return item, true
		}
	}
	return models.KnowledgeItem{}, false
}

func (s *QAService) generativeFallback(ctx context.Context, query string) *dto.QueryResolution {
	answer, err := s.generator.GenerateAnswer(ctx, query, s.knowledge.TopicNames())
	if err != nil {
		// The caller still gets an answer; the outage is only logged.
		s.logger.Warn("Generative fallback failed", zap.String("query", query), zap.Error(err))
		answer = fallbackAnswer
	}

	topic := "general"
	verified := false
	return &dto.QueryResolution{
		Answer:   answer,
		Topic:    &topic,
		Verified: &verified,
		Source:   models.SourceLLM,
		Contacts: []models.Contact{
			{Type: "email", Label: "Student Experience", Value: escalationEmail},
		},
	}
}

func resolutionFromItem(item models.KnowledgeItem, source string, similarity *float64) *dto.QueryResolution {
	question := item.Question
	topic := item.Topic
	return &dto.QueryResolution{
		Answer:          item.Answer,
		MatchedQuestion: &question,
		Topic:           &topic,
		Steps:           item.Steps,
		SourceURL:       item.SourceURL,
		Verified:        item.Verified,
		Similarity:      similarity,
		Source:          source,
		Cost:            item.Cost,
		Contacts:        item.Contacts,
		QuickLinks:      item.QuickLinks,
		Deadline:        item.Deadline,
		RelatedTopics:   item.RelatedTopics,
	}
}

func roundedScore(score float64) *float64 {
	rounded := math.Round(score*1000) / 1000
	return &rounded
}

// saveHistory is best effort: a failed append never blocks the answer the
// pipeline already computed.
func (s *QAService) saveHistory(ctx context.Context, query string, res *dto.QueryResolution) {
	rec := &models.HistoryRecord{
		ID:              uuid.New(),
		Ts:              time.Now().UTC(),
		Query:           sanitizeUTF8(query),
		Answer:          sanitizeUTF8(res.Answer),
		MatchedQuestion: res.MatchedQuestion,
		Topic:           res.Topic,
		Similarity:      res.Similarity,
		Source:          res.Source,
	}
	if err := s.history.Append(ctx, rec); err != nil {
		s.logger.Warn("Failed to save history record", zap.Error(err))
	}
}
