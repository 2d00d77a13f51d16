package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating values accepted by the feedback store.
const (
	RatingUp   = 1
	RatingDown = -1
)

// FeedbackRecord is a single up/down vote on an answered question.
// Records are append-only and aggregated by exact question text.
type FeedbackRecord struct {
	ID        uuid.UUID `db:"id"`
	Ts        time.Time `db:"ts"`
	Question  string    `db:"question"`
	Topic     string    `db:"topic"`
	Rating    int       `db:"rating"`
	UserQuery string    `db:"user_query"`
}

// QuestionStats is the per-question vote aggregate used by the
// popular and needs-improvement listings.
type QuestionStats struct {
	Question string `db:"question"`
	Topic    string `db:"topic"`
	Likes    int    `db:"likes"`
	Dislikes int    `db:"dislikes"`
	Score    int    `db:"score"`
}
