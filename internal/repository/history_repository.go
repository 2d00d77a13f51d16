package repository

import (
	"context"

	"campus-companion/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type HistoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHistoryRepository(db *pgxpool.Pool, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts one resolved exchange into the audit trail.
func (r *HistoryRepository) Append(ctx context.Context, rec *models.HistoryRecord) error {
	query := squirrel.Insert("history").
		Columns("id", "ts", "query", "answer", "matched_question", "topic", "similarity", "source").
		Values(rec.ID, rec.Ts, rec.Query, rec.Answer, rec.MatchedQuestion, rec.Topic, rec.Similarity, rec.Source).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// listRecentQuery selects the newest records first, up to limit. The
// recency ordering lives here, not in the caller.
func listRecentQuery(limit int) squirrel.SelectBuilder {
	return squirrel.Select("id", "ts", "query", "answer", "matched_question", "topic", "similarity", "source").
		From("history").
		OrderBy("ts DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
}

// ListRecent returns the newest records first, up to limit.
func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	sql, args, err := listRecentQuery(limit).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		var rec models.HistoryRecord
		if err := rows.Scan(
			&rec.ID, &rec.Ts, &rec.Query, &rec.Answer,
			&rec.MatchedQuestion, &rec.Topic, &rec.Similarity, &rec.Source,
		); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
