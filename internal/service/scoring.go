package service

import (
	"context"
	"math"
	"strings"
	"unicode"

	"campus-companion/internal/models"
)

// Index is a derived scoring artifact aligned by position with the knowledge
// items it was built from. Indexes are rebuilt wholesale on reload, never
// mutated in place, so len(index) == len(items) always holds for a snapshot.
type Index interface {
	Len() int
}

// ScoringBackend turns knowledge items into an Index and scores a free-text
// query against every item in it. The two implementations (lexical TF-IDF and
// dense embeddings) are interchangeable and selected by configuration.
type ScoringBackend interface {
	Mode() string
	Build(ctx context.Context, items []models.KnowledgeItem) (Index, error)
	Score(ctx context.Context, query string, idx Index) ([]float64, error)
}

// tokenize lower-cases text and splits it into alphanumeric terms.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
