package service

import (
	"context"
	"errors"
	"testing"

	"campus-companion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFeedbackStore struct {
	records   []*models.FeedbackRecord
	appendErr error
	aggErr    error
}

func (s *fakeFeedbackStore) Append(_ context.Context, rec *models.FeedbackRecord) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeFeedbackStore) AggregateByQuestion(_ context.Context, question string) (int, int, error) {
	if s.aggErr != nil {
		return 0, 0, s.aggErr
	}
	sum, count := 0, 0
	for _, rec := range s.records {
		if rec.Question == question {
			sum += rec.Rating
			count++
		}
	}
	return sum, count, nil
}

func TestFeedbackServiceRecordVote(t *testing.T) {
	t.Run("Should append a valid vote", func(t *testing.T) {
		store := &fakeFeedbackStore{}
		svc := NewFeedbackService(store, zap.NewNop())

		err := svc.RecordVote(context.Background(), "How to get TIE?", "visa", models.RatingUp, "tie appointment")
		require.NoError(t, err)
		require.Len(t, store.records, 1)
		assert.Equal(t, "How to get TIE?", store.records[0].Question)
		assert.Equal(t, models.RatingUp, store.records[0].Rating)
		assert.False(t, store.records[0].Ts.IsZero())
	})

	t.Run("Should reject an out-of-range rating", func(t *testing.T) {
		store := &fakeFeedbackStore{}
		svc := NewFeedbackService(store, zap.NewNop())

		assert.Error(t, svc.RecordVote(context.Background(), "How to get TIE?", "visa", 0, ""))
		assert.Error(t, svc.RecordVote(context.Background(), "How to get TIE?", "visa", 2, ""))
		assert.Empty(t, store.records)
	})

	t.Run("Should reject an empty question", func(t *testing.T) {
		svc := NewFeedbackService(&fakeFeedbackStore{}, zap.NewNop())
		assert.Error(t, svc.RecordVote(context.Background(), "", "visa", models.RatingUp, ""))
	})

	t.Run("Should surface storage errors", func(t *testing.T) {
		store := &fakeFeedbackStore{appendErr: errors.New("disk full")}
		svc := NewFeedbackService(store, zap.NewNop())
		assert.Error(t, svc.RecordVote(context.Background(), "How to get TIE?", "visa", models.RatingUp, ""))
	})
}

func TestFeedbackServiceBoost(t *testing.T) {
	ctx := context.Background()
	const question = "How to get TIE?"

	vote := func(t *testing.T, svc *FeedbackService, rating, times int) {
		t.Helper()
		for i := 0; i < times; i++ {
			require.NoError(t, svc.RecordVote(ctx, question, "visa", rating, ""))
		}
	}

	t.Run("Should be zero with no votes", func(t *testing.T) {
		svc := NewFeedbackService(&fakeFeedbackStore{}, zap.NewNop())
		assert.Zero(t, svc.Boost(ctx, question))
	})

	t.Run("Should grow with the share of positive votes", func(t *testing.T) {
		svc := NewFeedbackService(&fakeFeedbackStore{}, zap.NewNop())

		vote(t, svc, models.RatingUp, 1)
		vote(t, svc, models.RatingDown, 1)
		even := svc.Boost(ctx, question) // 50/50 nets to zero

		vote(t, svc, models.RatingUp, 2)
		mostlyUp := svc.Boost(ctx, question)

		vote(t, svc, models.RatingUp, 8)
		nearlyAllUp := svc.Boost(ctx, question)

		assert.Zero(t, even)
		assert.Greater(t, mostlyUp, even)
		assert.Greater(t, nearlyAllUp, mostlyUp)
	})

	t.Run("Should stay within its bounds", func(t *testing.T) {
		svc := NewFeedbackService(&fakeFeedbackStore{}, zap.NewNop())

		vote(t, svc, models.RatingUp, 10)
		boost := svc.Boost(ctx, question)
		assert.GreaterOrEqual(t, boost, 0.0)
		assert.LessOrEqual(t, boost, maxBoost)
		assert.InDelta(t, 0.05, boost, 1e-9) // unanimous upvotes give the ratio cap
	})

	t.Run("Should clamp a net-negative balance to zero", func(t *testing.T) {
		svc := NewFeedbackService(&fakeFeedbackStore{}, zap.NewNop())

		vote(t, svc, models.RatingDown, 5)
		assert.Zero(t, svc.Boost(ctx, question))
	})

	t.Run("Should treat an aggregate failure as no boost", func(t *testing.T) {
		store := &fakeFeedbackStore{aggErr: errors.New("connection lost")}
		svc := NewFeedbackService(store, zap.NewNop())
		assert.Zero(t, svc.Boost(ctx, question))
	})
}
