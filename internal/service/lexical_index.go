package service

import (
	"context"
	"fmt"
	"math"

	"campus-companion/internal/models"

	"go.uber.org/zap"
)

// englishStopWords are dropped before term weighting. The list covers common
// English function words; it does not try to be exhaustive.
var englishStopWords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "am": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "been": {},
	"but": {}, "by": {}, "can": {}, "could": {}, "did": {}, "do": {}, "does": {},
	"for": {}, "from": {}, "had": {}, "has": {}, "have": {}, "he": {}, "her": {},
	"here": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "its": {}, "just": {}, "me": {}, "more": {}, "most": {},
	"my": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "our": {},
	"out": {}, "over": {}, "she": {}, "should": {}, "so": {}, "some": {},
	"than": {}, "that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "to": {}, "up": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "why": {}, "will": {}, "with": {},
	"would": {}, "you": {}, "your": {},
}

// LexicalBackend scores queries by TF-IDF weighted cosine similarity over the
// concatenated question and topic text of each item. It needs no external
// calls, which makes it the lightweight alternative to the embedding scorer.
type LexicalBackend struct {
	logger *zap.Logger
}

func NewLexicalBackend(logger *zap.Logger) *LexicalBackend {
	return &LexicalBackend{logger: logger}
}

func (b *LexicalBackend) Mode() string { return "lexical" }

type lexicalIndex struct {
	vocab   map[string]int
	idf     []float64
	vectors []map[int]float64 // l2-normalized sparse TF-IDF vectors, one per item
}

func (idx *lexicalIndex) Len() int { return len(idx.vectors) }

func (b *LexicalBackend) Build(_ context.Context, items []models.KnowledgeItem) (Index, error) {
	docs := make([][]string, len(items))
	vocab := make(map[string]int)
	docFreq := make(map[string]int)

	for i, item := range items {
		terms := contentTerms(item.Question + " " + item.Topic)
		docs[i] = terms

		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			if _, ok := vocab[t]; !ok {
				vocab[t] = len(vocab)
			}
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}

	// Smoothed inverse document frequency: ln((1+n)/(1+df)) + 1.
	idf := make([]float64, len(vocab))
	n := float64(len(items))
	for term, id := range vocab {
		idf[id] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	idx := &lexicalIndex{
		vocab:   vocab,
		idf:     idf,
		vectors: make([]map[int]float64, len(items)),
	}
	for i, terms := range docs {
		idx.vectors[i] = idx.vectorize(terms)
	}

	b.logger.Debug("Lexical index built",
		zap.Int("items", len(items)),
		zap.Int("vocabulary", len(vocab)),
	)

	return idx, nil
}

func (b *LexicalBackend) Score(_ context.Context, query string, index Index) ([]float64, error) {
	idx, ok := index.(*lexicalIndex)
	if !ok {
		return nil, fmt.Errorf("lexical backend got index of type %T", index)
	}

	queryVec := idx.vectorize(contentTerms(query))

	scores := make([]float64, len(idx.vectors))
	for i, vec := range idx.vectors {
		scores[i] = sparseDot(queryVec, vec)
	}

	return scores, nil
}

// vectorize builds the l2-normalized TF-IDF vector of terms. Terms outside the
// index vocabulary are ignored, matching how a fitted vectorizer treats
// unseen query words.
func (idx *lexicalIndex) vectorize(terms []string) map[int]float64 {
	vec := make(map[int]float64)
	for _, t := range terms {
		if id, ok := idx.vocab[t]; ok {
			vec[id]++
		}
	}

	var norm float64
	for id, tf := range vec {
		w := tf * idx.idf[id]
		vec[id] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for id := range vec {
			vec[id] /= norm
		}
	}

	return vec
}

// sparseDot is cosine similarity for vectors already normalized to unit length.
func sparseDot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for id, w := range a {
		dot += w * b[id]
	}
	return dot
}

func contentTerms(text string) []string {
	tokens := tokenize(text)
	terms := tokens[:0]
	for _, t := range tokens {
		if _, stop := englishStopWords[t]; !stop {
			terms = append(terms, t)
		}
	}
	return terms
}
