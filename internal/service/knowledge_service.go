package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"campus-companion/internal/models"

	"go.uber.org/zap"
)

// Snapshot is an immutable view of the knowledge catalog together with the
// index built from it. Readers take a snapshot once per request and never
// observe a partially rebuilt state; reload swaps in a complete replacement.
type Snapshot struct {
	Items   []models.KnowledgeItem
	Index   Index
	BuiltAt time.Time
}

// Score runs the backend scorer over every item of this snapshot.
func (s *Snapshot) Score(ctx context.Context, backend ScoringBackend, query string) ([]float64, error) {
	return backend.Score(ctx, query, s.Index)
}

// KnowledgeService loads the knowledge catalog from its versioned JSON source
// and keeps the current snapshot behind a single swappable reference.
type KnowledgeService struct {
	catalogPath string
	backend     ScoringBackend
	logger      *zap.Logger
	current     atomic.Pointer[Snapshot]
}

func NewKnowledgeService(catalogPath string, backend ScoringBackend, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{
		catalogPath: catalogPath,
		backend:     backend,
		logger:      logger,
	}
}

// Reload reads the catalog, rebuilds the index and atomically replaces the
// current snapshot. Concurrent readers keep the snapshot they already hold.
func (s *KnowledgeService) Reload(ctx context.Context) (int, error) {
	items, err := loadCatalog(s.catalogPath)
	if err != nil {
		return 0, err
	}

	index, err := s.backend.Build(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("failed to build %s index: %w", s.backend.Mode(), err)
	}
	if index.Len() != len(items) {
		return 0, fmt.Errorf("index length %d does not match %d items", index.Len(), len(items))
	}

	s.current.Store(&Snapshot{
		Items:   items,
		Index:   index,
		BuiltAt: time.Now(),
	})

	s.logger.Info("Knowledge catalog loaded",
		zap.Int("items", len(items)),
		zap.String("mode", s.backend.Mode()),
	)

	return len(items), nil
}

// Snapshot returns the current catalog view, or nil before the first Reload.
func (s *KnowledgeService) Snapshot() *Snapshot {
	return s.current.Load()
}

// Backend returns the configured scoring backend.
func (s *KnowledgeService) Backend() ScoringBackend {
	return s.backend
}

// Topics returns every distinct topic with its item count.
func (s *KnowledgeService) Topics() map[string]int {
	topics := make(map[string]int)
	snap := s.current.Load()
	if snap == nil {
		return topics
	}
	for _, item := range snap.Items {
		topics[item.Topic]++
	}
	return topics
}

// TopicNames returns the distinct topics in sorted order.
func (s *KnowledgeService) TopicNames() []string {
	topics := s.Topics()
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// QuestionsByTopic returns all items whose topic matches, case-insensitively.
func (s *KnowledgeService) QuestionsByTopic(topic string) []models.KnowledgeItem {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	var items []models.KnowledgeItem
	for _, item := range snap.Items {
		if strings.EqualFold(item.Topic, topic) {
			items = append(items, item)
		}
	}
	return items
}

func loadCatalog(path string) ([]models.KnowledgeItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge catalog: %w", err)
	}

	var items []models.KnowledgeItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge catalog: %w", err)
	}

	for i, item := range items {
		if strings.TrimSpace(item.Question) == "" {
			return nil, fmt.Errorf("catalog item %d has an empty question", i)
		}
		if strings.TrimSpace(item.Answer) == "" {
			return nil, fmt.Errorf("catalog item %d has an empty answer", i)
		}
	}

	return items, nil
}
