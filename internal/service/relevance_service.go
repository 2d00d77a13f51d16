package service

import (
	"context"
	"strings"

	"campus-companion/internal/models"

	"go.uber.org/zap"
)

// highConfidenceCutoff separates matches trusted after a local heuristic from
// matches that need an external relevance judgment.
const highConfidenceCutoff = 0.6

// Judgment is the outcome of an external relevance check. Inconclusive covers
// transport failures and unparseable replies; the caller maps it to
// affirmative, an explicit availability-over-precision policy.
type Judgment int

const (
	JudgmentAffirmative Judgment = iota
	JudgmentNegative
	JudgmentInconclusive
)

// RelevanceJudge answers whether a matched item actually addresses the query.
type RelevanceJudge interface {
	Judge(ctx context.Context, query, matchedQuestion, matchedAnswer string) Judgment
}

// nonKBIntentWords mark queries that by definition belong to the generative
// fallback, never the knowledge base: recommendations, humor, weather.
var nonKBIntentWords = map[string]struct{}{
	"best": {}, "top": {}, "recommend": {}, "recommendation": {},
	"joke": {}, "funny": {}, "weather": {}, "forecast": {},
	"temperature": {}, "climate": {},
}

// localeWords mention where the user is, not what they ask about. An overlap
// consisting only of these is not topical evidence.
var localeWords = map[string]struct{}{
	"spain": {}, "spanish": {}, "barcelona": {},
}

// relevanceStopWords are stripped before comparing query and matched-question
// keyword sets: function words plus the generic locale terms.
var relevanceStopWords = map[string]struct{}{
	"a": {}, "about": {}, "an": {}, "and": {}, "are": {}, "at": {}, "be": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "get": {},
	"how": {}, "i": {}, "in": {}, "is": {}, "it": {}, "me": {}, "my": {},
	"need": {}, "of": {}, "on": {}, "or": {}, "should": {}, "the": {},
	"to": {}, "want": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"who": {}, "why": {}, "with": {}, "you": {}, "your": {},
	"spain": {}, "spanish": {}, "barcelona": {},
}

// topicTaxonomy maps each knowledge-base topic to the query keywords that
// signal it. A query carrying another topic's keywords must not be answered
// by an item from a different topic, whatever the lexical overlap says.
var topicTaxonomy = map[string]map[string]struct{}{
	"visa": {
		"visa": {}, "tie": {}, "nie": {}, "residence": {}, "permit": {},
		"immigration": {}, "extranjeria": {},
	},
	"work": {
		"work": {}, "job": {}, "employment": {}, "internship": {}, "salary": {},
	},
	"housing": {
		"housing": {}, "apartment": {}, "flat": {}, "rent": {},
		"empadronamiento": {}, "landlord": {}, "deposit": {},
	},
	"transport": {
		"transport": {}, "metro": {}, "bus": {}, "train": {}, "tram": {},
		"bicing": {}, "tmb": {},
	},
	"mobile": {
		"mobile": {}, "sim": {}, "phone": {}, "esim": {}, "vodafone": {},
		"orange": {}, "movistar": {},
	},
	"university": {
		"university": {}, "enroll": {}, "enrollment": {}, "tuition": {},
		"diploma": {}, "transcript": {}, "campus": {},
	},
	"life": {
		"beach": {}, "gym": {}, "food": {}, "groceries": {}, "nightlife": {},
		"events": {},
	},
}

// RelevanceService decides whether the best-scoring knowledge item is
// trustworthy enough to answer with. Raw cosine similarity is not a reliable
// relevance signal at this corpus scale, so the decision is tiered by
// confidence: a cheap local heuristic at the top, an external judgment in the
// middle, outright rejection at the bottom.
type RelevanceService struct {
	judge  RelevanceJudge
	logger *zap.Logger
}

func NewRelevanceService(judge RelevanceJudge, logger *zap.Logger) *RelevanceService {
	return &RelevanceService{
		judge:  judge,
		logger: logger,
	}
}

// Trusted arbitrates one candidate match.
func (s *RelevanceService) Trusted(ctx context.Context, query string, item models.KnowledgeItem, score, minScore float64) bool {
	switch {
	case score >= highConfidenceCutoff:
		ok := topicConsistent(query, item)
		if !ok {
			s.logger.Info("High-confidence match rejected by topic check",
				zap.String("query", query),
				zap.String("matched", item.Question),
				zap.Float64("score", score),
			)
		}
		return ok

	case score >= minScore:
		verdict := s.judge.Judge(ctx, query, item.Question, item.Answer)
		if verdict == JudgmentInconclusive {
			// Fail open: wrongly rejecting a good match degrades the user
			// experience more visibly than an API outage.
			s.logger.Warn("Relevance judgment inconclusive, accepting match",
				zap.String("query", query),
				zap.String("matched", item.Question),
			)
			return true
		}
		return verdict == JudgmentAffirmative

	default:
		return false
	}
}

// topicConsistent is the fast local heuristic guarding high-confidence
// matches. It is conservative and false-negative-tolerant: it exists to catch
// obviously wrong matches cheaply, not to prove relevance.
func topicConsistent(query string, item models.KnowledgeItem) bool {
	queryWords := wordSet(query)

	// Recommendation, humor and weather intents never belong to the
	// knowledge base.
	for w := range queryWords {
		if _, ok := nonKBIntentWords[w]; ok {
			return false
		}
	}

	queryKeywords := stripRelevanceStopWords(queryWords)
	questionKeywords := stripRelevanceStopWords(wordSet(item.Question))

	overlap := intersect(queryKeywords, questionKeywords)
	if len(overlap) == 0 {
		return false
	}

	// A shared locale mention alone is not topical evidence.
	localeOnly := true
	for w := range overlap {
		if _, ok := localeWords[w]; !ok {
			localeOnly = false
			break
		}
	}
	if localeOnly {
		return false
	}

	// Taxonomy mismatch overrides the lexical overlap found above.
	for topic, keywords := range topicTaxonomy {
		if len(intersect(queryKeywords, keywords)) > 0 && !strings.EqualFold(item.Topic, topic) {
			return false
		}
	}

	return true
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(w, ".,!?;:\"'()")] = struct{}{}
	}
	delete(set, "")
	return set
}

func stripRelevanceStopWords(words map[string]struct{}) map[string]struct{} {
	kept := make(map[string]struct{}, len(words))
	for w := range words {
		if _, stop := relevanceStopWords[w]; !stop {
			kept[w] = struct{}{}
		}
	}
	return kept
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	if len(b) < len(a) {
		a, b = b, a
	}
	common := make(map[string]struct{})
	for w := range a {
		if _, ok := b[w]; ok {
			common[w] = struct{}{}
		}
	}
	return common
}
