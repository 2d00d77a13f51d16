package repository

import (
	"context"

	"campus-companion/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type FeedbackRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFeedbackRepository(db *pgxpool.Pool, logger *zap.Logger) *FeedbackRepository {
	return &FeedbackRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts one vote. The feedback log is append-only, there are no
// updates or deletes.
func (r *FeedbackRepository) Append(ctx context.Context, rec *models.FeedbackRecord) error {
	query := squirrel.Insert("feedback").
		Columns("id", "ts", "question", "topic", "rating", "user_query").
		Values(rec.ID, rec.Ts, rec.Question, rec.Topic, rec.Rating, rec.UserQuery).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// AggregateByQuestion returns (sum of ratings, vote count) for an exact
// question-text match. Both are zero when the question has no votes.
func (r *FeedbackRepository) AggregateByQuestion(ctx context.Context, question string) (int, int, error) {
	query := squirrel.Select("COALESCE(SUM(rating), 0)", "COUNT(*)").
		From("feedback").
		Where(squirrel.Eq{"question": question}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, 0, err
	}

	var sum, count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&sum, &count); err != nil {
		return 0, 0, err
	}

	return sum, count, nil
}

// Popular lists the best-rated questions, highest score first.
func (r *FeedbackRepository) Popular(ctx context.Context, limit int) ([]*models.QuestionStats, error) {
	query := statsSelect().
		OrderBy("score DESC", "likes DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryStats(ctx, query)
}

// NeedsImprovement lists questions with at least one downvote, worst first.
func (r *FeedbackRepository) NeedsImprovement(ctx context.Context, limit int) ([]*models.QuestionStats, error) {
	query := statsSelect().
		Having("SUM(CASE WHEN rating = -1 THEN 1 ELSE 0 END) > 0").
		OrderBy("score ASC", "dislikes DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryStats(ctx, query)
}

func statsSelect() squirrel.SelectBuilder {
	return squirrel.Select(
		"question",
		"MAX(topic) AS topic",
		"SUM(CASE WHEN rating = 1 THEN 1 ELSE 0 END) AS likes",
		"SUM(CASE WHEN rating = -1 THEN 1 ELSE 0 END) AS dislikes",
		"SUM(rating) AS score",
	).
		From("feedback").
		GroupBy("question")
}

func (r *FeedbackRepository) queryStats(ctx context.Context, query squirrel.SelectBuilder) ([]*models.QuestionStats, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*models.QuestionStats
	for rows.Next() {
		var s models.QuestionStats
		if err := rows.Scan(&s.Question, &s.Topic, &s.Likes, &s.Dislikes, &s.Score); err != nil {
			return nil, err
		}
		stats = append(stats, &s)
	}

	return stats, rows.Err()
}
