package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"campus-companion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubIndex struct{ n int }

func (i stubIndex) Len() int { return i.n }

// stubBackend returns the same fixed scores for every query, making the
// arbitration tier deterministic regardless of catalog text.
type stubBackend struct{ scores []float64 }

func (b *stubBackend) Mode() string { return "lexical" }

func (b *stubBackend) Build(_ context.Context, items []models.KnowledgeItem) (Index, error) {
	return stubIndex{n: len(items)}, nil
}

func (b *stubBackend) Score(_ context.Context, _ string, _ Index) ([]float64, error) {
	out := make([]float64, len(b.scores))
	copy(out, b.scores)
	return out, nil
}

type fakeGenerator struct {
	answer string
	err    error
	calls  int
}

func (g *fakeGenerator) GenerateAnswer(_ context.Context, _ string, _ []string) (string, error) {
	g.calls++
	return g.answer, g.err
}

type fakeHistory struct {
	records   []*models.HistoryRecord
	appendErr error
}

func (h *fakeHistory) Append(_ context.Context, rec *models.HistoryRecord) error {
	if h.appendErr != nil {
		return h.appendErr
	}
	h.records = append(h.records, rec)
	return nil
}

func writeCatalog(t *testing.T, items []models.KnowledgeItem) string {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "knowledge_base.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

type qaHarness struct {
	qa        *QAService
	feedback  *FeedbackService
	generator *fakeGenerator
	history   *fakeHistory
	judge     *fakeJudge
}

func newQAHarness(t *testing.T, items []models.KnowledgeItem, backend ScoringBackend, minScore float64) *qaHarness {
	t.Helper()

	log := zap.NewNop()
	knowledge := NewKnowledgeService(writeCatalog(t, items), backend, log)
	n, err := knowledge.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(items), n)

	h := &qaHarness{
		feedback:  NewFeedbackService(&fakeFeedbackStore{}, log),
		generator: &fakeGenerator{answer: "Generated guidance."},
		history:   &fakeHistory{},
		judge:     &fakeJudge{verdict: JudgmentAffirmative},
	}
	h.qa = NewQAService(
		knowledge,
		h.feedback,
		NewRelevanceService(h.judge, log),
		h.generator,
		h.history,
		minScore,
		log,
	)
	return h
}

func TestQAServiceAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject an empty query", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: make([]float64, 4)}, 0.28)
		_, err := h.qa.Ask(ctx, "   ", AskOptions{})
		assert.Error(t, err)
	})

	t.Run("Should error before the catalog is loaded", func(t *testing.T) {
		log := zap.NewNop()
		knowledge := NewKnowledgeService("missing.json", &stubBackend{}, log)
		qa := NewQAService(
			knowledge,
			NewFeedbackService(&fakeFeedbackStore{}, log),
			NewRelevanceService(&fakeJudge{}, log),
			&fakeGenerator{},
			&fakeHistory{},
			0.28,
			log,
		)
		_, err := qa.Ask(ctx, "where is the metro", AskOptions{})
		assert.Error(t, err)
	})

	t.Run("Should answer from the knowledge base on a strong on-topic match", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.9, 0, 0, 0}}, 0.28)

		res, err := h.qa.Ask(ctx, "how to book TIE appointment", AskOptions{})
		require.NoError(t, err)
		assert.Equal(t, models.SourceInternalSemantic, res.Source)
		require.NotNil(t, res.MatchedQuestion)
		assert.Equal(t, "How to book TIE appointment?", *res.MatchedQuestion)
		require.NotNil(t, res.Similarity)
		assert.InDelta(t, 0.9, *res.Similarity, 1e-9)
		assert.Zero(t, h.judge.calls, "high-confidence matches must not reach the judge")
		assert.Zero(t, h.generator.calls)
	})

	t.Run("Should round the reported similarity to three decimals", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.87654, 0, 0, 0}}, 0.28)

		res, err := h.qa.Ask(ctx, "how to book TIE appointment", AskOptions{})
		require.NoError(t, err)
		require.NotNil(t, res.Similarity)
		assert.InDelta(t, 0.877, *res.Similarity, 1e-9)
	})

	t.Run("Should divert off-topic high scorers to the generative fallback", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.9, 0, 0, 0}}, 0.28)

		res, err := h.qa.Ask(ctx, "tell me a funny joke", AskOptions{})
		require.NoError(t, err)
		assert.Equal(t, models.SourceLLM, res.Source)
		assert.Equal(t, "Generated guidance.", res.Answer)
		require.NotNil(t, res.Topic)
		assert.Equal(t, "general", *res.Topic)
		require.NotNil(t, res.Verified)
		assert.False(t, *res.Verified)
		require.Len(t, res.Contacts, 1)
		assert.Equal(t, escalationEmail, res.Contacts[0].Value)
		assert.Nil(t, res.Similarity)
		assert.Equal(t, 1, h.generator.calls)
	})

	t.Run("Should consult the judge in the ambiguous band", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.45, 0, 0, 0}}, 0.28)

		res, err := h.qa.Ask(ctx, "fingerprint appointment booking", AskOptions{})
		require.NoError(t, err)
		assert.Equal(t, models.SourceInternalSemantic, res.Source)
		assert.Equal(t, 1, h.judge.calls)
	})

	t.Run("Should drop a judged-irrelevant match to the fallbacks", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.45, 0, 0, 0}}, 0.28)
		h.judge.verdict = JudgmentNegative

		res, err := h.qa.Ask(ctx, "something else entirely", AskOptions{})
		require.NoError(t, err)
		assert.Equal(t, models.SourceLLM, res.Source)
		assert.Equal(t, 1, h.judge.calls)
	})

	t.Run("Should fall back to topic keywords before generating", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.1, 0.1, 0.1, 0.1}}, 0.28)

		res, err := h.qa.Ask(ctx, "I need help with my transport options", AskOptions{})
		require.NoError(t, err)
		assert.Equal(t, models.SourceInternalFallback, res.Source)
		require.NotNil(t, res.Topic)
		assert.Equal(t, "transport", *res.Topic)
		assert.Nil(t, res.Similarity, "fallback matches carry no similarity")
		assert.Zero(t, h.generator.calls)
		assert.Zero(t, h.judge.calls)
	})

	t.Run("Should serve the static answer when generation fails", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: make([]float64, 4)}, 0.28)
		h.generator.err = errors.New("api unavailable")

		res, err := h.qa.Ask(ctx, "completely unrelated", AskOptions{})
		require.NoError(t, err)
		assert.Equal(t, models.SourceLLM, res.Source)
		assert.Equal(t, fallbackAnswer, res.Answer)
	})

	t.Run("Should honor a per-request threshold override", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.25, 0, 0, 0}}, 0.28)

		// Below the configured threshold: no judge, straight to fallback.
		res, err := h.qa.Ask(ctx, "completely unrelated", AskOptions{})
		require.NoError(t, err)
		assert.Equal(t, models.SourceLLM, res.Source)
		assert.Zero(t, h.judge.calls)

		// A looser override puts the same score in the ambiguous band.
		lower := 0.2
		res, err = h.qa.Ask(ctx, "completely unrelated", AskOptions{MinScore: &lower})
		require.NoError(t, err)
		assert.Equal(t, models.SourceInternalSemantic, res.Source)
		assert.Equal(t, 1, h.judge.calls)
	})
}

func TestQAServiceFeedbackBoost(t *testing.T) {
	ctx := context.Background()
	items := testItems()[:2]

	t.Run("Should break score ties toward catalog order", func(t *testing.T) {
		h := newQAHarness(t, items, &stubBackend{scores: []float64{0.5, 0.5}}, 0.28)

		res, err := h.qa.Ask(ctx, "registration question", AskOptions{})
		require.NoError(t, err)
		require.NotNil(t, res.MatchedQuestion)
		assert.Equal(t, items[0].Question, *res.MatchedQuestion)
	})

	t.Run("Should let upvotes promote a tied item", func(t *testing.T) {
		h := newQAHarness(t, items, &stubBackend{scores: []float64{0.5, 0.5}}, 0.28)

		for i := 0; i < 3; i++ {
			require.NoError(t, h.feedback.RecordVote(ctx, items[1].Question, items[1].Topic, models.RatingUp, ""))
		}

		res, err := h.qa.Ask(ctx, "registration question", AskOptions{})
		require.NoError(t, err)
		require.NotNil(t, res.MatchedQuestion)
		assert.Equal(t, items[1].Question, *res.MatchedQuestion)
	})
}

func TestQAServiceHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Should record the resolution when autosave is on", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.9, 0, 0, 0}}, 0.28)

		res, err := h.qa.Ask(ctx, "how to book TIE appointment", AskOptions{Autosave: true})
		require.NoError(t, err)
		require.Len(t, h.history.records, 1)

		rec := h.history.records[0]
		assert.Equal(t, "how to book TIE appointment", rec.Query)
		assert.Equal(t, res.Answer, rec.Answer)
		assert.Equal(t, models.SourceInternalSemantic, rec.Source)
		assert.False(t, rec.Ts.IsZero())
	})

	t.Run("Should skip history when autosave is off", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.9, 0, 0, 0}}, 0.28)

		_, err := h.qa.Ask(ctx, "how to book TIE appointment", AskOptions{Autosave: false})
		require.NoError(t, err)
		assert.Empty(t, h.history.records)
	})

	t.Run("Should answer even when the history sink fails", func(t *testing.T) {
		h := newQAHarness(t, testItems(), &stubBackend{scores: []float64{0.9, 0, 0, 0}}, 0.28)
		h.history.appendErr = errors.New("table missing")

		res, err := h.qa.Ask(ctx, "how to book TIE appointment", AskOptions{Autosave: true})
		require.NoError(t, err)
		assert.Equal(t, models.SourceInternalSemantic, res.Source)
	})
}

func endToEndItems() []models.KnowledgeItem {
	return []models.KnowledgeItem{
		{Question: "What is empadronamiento?", Answer: "City registration at your local office.", Topic: "housing"},
	}
}

func TestQAServiceLexicalEndToEnd(t *testing.T) {
	items := endToEndItems()
	h := newQAHarness(t, items, NewLexicalBackend(zap.NewNop()), 0.1)

	res, err := h.qa.Ask(context.Background(), "what is empadronamiento", AskOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.SourceInternalSemantic, res.Source)
	require.NotNil(t, res.MatchedQuestion)
	assert.Equal(t, items[0].Question, *res.MatchedQuestion)
	require.NotNil(t, res.Similarity)
	assert.GreaterOrEqual(t, *res.Similarity, 0.1)
}

func TestQAServiceEmbeddingEndToEnd(t *testing.T) {
	items := endToEndItems()
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		items[0].Question + " " + items[0].Answer: {1, 0, 0},
		"what is empadronamiento":                 {0.9, 0.1, 0},
	}}
	h := newQAHarness(t, items, NewEmbeddingBackend(embedder, zap.NewNop()), 0.35)

	res, err := h.qa.Ask(context.Background(), "what is empadronamiento", AskOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.SourceInternalSemantic, res.Source)
	require.NotNil(t, res.MatchedQuestion)
	assert.Equal(t, items[0].Question, *res.MatchedQuestion)
	require.NotNil(t, res.Similarity)
	assert.GreaterOrEqual(t, *res.Similarity, 0.35)
	assert.Zero(t, h.judge.calls)
}
