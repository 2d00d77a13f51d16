package service

import (
	"context"
	"fmt"

	"campus-companion/internal/models"

	"go.uber.org/zap"
)

// answerPrefixLen is how much of the answer text is folded into the encoded
// representation of each item alongside its question.
const answerPrefixLen = 100

// Embedder encodes texts into fixed-length dense vectors with a frozen
// pretrained model. The provider is external; this system never trains it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbeddingBackend scores queries by cosine similarity between dense sentence
// embeddings. It captures paraphrase and synonymy that term overlap misses and
// is the default production scorer.
type EmbeddingBackend struct {
	embedder Embedder
	logger   *zap.Logger
}

func NewEmbeddingBackend(embedder Embedder, logger *zap.Logger) *EmbeddingBackend {
	return &EmbeddingBackend{
		embedder: embedder,
		logger:   logger,
	}
}

func (b *EmbeddingBackend) Mode() string { return "embedding" }

type embeddingIndex struct {
	vectors [][]float64
}

func (idx *embeddingIndex) Len() int { return len(idx.vectors) }

func (b *EmbeddingBackend) Build(ctx context.Context, items []models.KnowledgeItem) (Index, error) {
	if len(items) == 0 {
		return &embeddingIndex{}, nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Question + " " + answerPrefix(item.Answer)
	}

	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode knowledge items: %w", err)
	}
	if len(vectors) != len(items) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d items", len(vectors), len(items))
	}

	b.logger.Debug("Embedding index built", zap.Int("items", len(items)))

	return &embeddingIndex{vectors: vectors}, nil
}

func (b *EmbeddingBackend) Score(ctx context.Context, query string, index Index) ([]float64, error) {
	idx, ok := index.(*embeddingIndex)
	if !ok {
		return nil, fmt.Errorf("embedding backend got index of type %T", index)
	}

	vectors, err := b.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	scores := make([]float64, len(idx.vectors))
	for i, vec := range idx.vectors {
		scores[i] = cosineSimilarity(vectors[0], vec)
	}

	return scores, nil
}

func answerPrefix(answer string) string {
	runes := []rune(answer)
	if len(runes) <= answerPrefixLen {
		return answer
	}
	return string(runes[:answerPrefixLen])
}
