package service

import (
	"context"
	"fmt"
	"time"

	"campus-companion/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBoost caps the additive score correction a question can earn from votes.
const maxBoost = 0.1

// FeedbackStore is the persistence the feedback service needs: append a vote
// and aggregate votes by exact question text.
type FeedbackStore interface {
	Append(ctx context.Context, rec *models.FeedbackRecord) error
	AggregateByQuestion(ctx context.Context, question string) (sum int, count int, err error)
}

// FeedbackService records per-question votes and turns their aggregate into a
// score boost. The boost is applied per query on top of raw similarity, never
// baked into the index, so votes take effect before the next reload.
type FeedbackService struct {
	store  FeedbackStore
	logger *zap.Logger
}

func NewFeedbackService(store FeedbackStore, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		store:  store,
		logger: logger,
	}
}

// RecordVote appends one up/down vote for a question.
func (s *FeedbackService) RecordVote(ctx context.Context, question, topic string, rating int, userQuery string) error {
	if rating != models.RatingUp && rating != models.RatingDown {
		return fmt.Errorf("invalid rating %d: must be %d or %d", rating, models.RatingUp, models.RatingDown)
	}
	if question == "" {
		return fmt.Errorf("question is required")
	}

	rec := &models.FeedbackRecord{
		ID:        uuid.New(),
		Ts:        time.Now().UTC(),
		Question:  sanitizeUTF8(question),
		Topic:     sanitizeUTF8(topic),
		Rating:    rating,
		UserQuery: sanitizeUTF8(userQuery),
	}

	if err := s.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}

	s.logger.Info("Rating saved",
		zap.String("question", question),
		zap.Int("rating", rating),
	)

	return nil
}

// Boost returns the additive correction for a question in [0, 0.1]:
// (sum_of_ratings / vote_count) * 0.05, clamped. Zero votes give zero.
// A net-negative vote balance clamps to zero rather than penalizing the
// score below its raw similarity.
func (s *FeedbackService) Boost(ctx context.Context, question string) float64 {
	sum, count, err := s.store.AggregateByQuestion(ctx, question)
	if err != nil {
		// A broken aggregate must not fail the query being scored.
		s.logger.Warn("Failed to aggregate ratings", zap.String("question", question), zap.Error(err))
		return 0
	}
	if count == 0 {
		return 0
	}

	boost := float64(sum) / float64(count) * 0.05
	if boost < 0 {
		return 0
	}
	if boost > maxBoost {
		return maxBoost
	}
	return boost
}
