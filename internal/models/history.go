package models

import (
	"time"

	"github.com/google/uuid"
)

// Answer source tags recorded in history and returned to callers.
const (
	SourceInternalSemantic = "internal-semantic"
	SourceInternalFallback = "internal-fallback"
	SourceLLM              = "llm-gigachat"
)

// HistoryRecord is one resolved query/answer exchange, kept as an
// append-only audit trail for analytics.
type HistoryRecord struct {
	ID              uuid.UUID `db:"id"`
	Ts              time.Time `db:"ts"`
	Query           string    `db:"query"`
	Answer          string    `db:"answer"`
	MatchedQuestion *string   `db:"matched_question"`
	Topic           *string   `db:"topic"`
	Similarity      *float64  `db:"similarity"`
	Source          string    `db:"source"`
}
