// Package cache is the nearest-neighbor text index that maps previously
// seen inputs to their extraction results, so near-duplicate texts skip
// the generative call.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/agenthands/rolodex/internal/config"
	"github.com/agenthands/rolodex/internal/llm"
	"github.com/agenthands/rolodex/internal/model"
)

// metadataKey is the single metadata field that round-trips the full
// serialized contact.
const metadataKey = "full_extraction"

// Match is one nearest-neighbor result. Distance is a dissimilarity
// score where 0 means identical text.
type Match struct {
	Text     string
	Contact  *model.ExtractedContact
	Distance float64
}

// Store wraps an embedded chromem-go database. The store is add-only
// from this system's perspective: records are never updated or deleted,
// so concurrent duplicate writes are accepted.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *zap.Logger
}

// New opens (or creates) the persistent store at cfg.Path. Embeddings
// come from the provider's embedder client.
func New(cfg config.CacheConfig, embedder llm.EmbedderClient, logger *zap.Logger) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", cfg.Path, err)
	}
	db, err := chromem.NewPersistentDB(cfg.Path, false)
	if err != nil {
		return nil, fmt.Errorf("creating chromem DB: %w", err)
	}
	return newStore(db, cfg.Collection, embedder, logger)
}

// NewInMemory builds a non-persistent store; used by tests.
func NewInMemory(collection string, embedder llm.EmbedderClient, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return newStore(chromem.NewDB(), collection, embedder, logger)
}

func newStore(db *chromem.DB, name string, embedder llm.EmbedderClient, logger *zap.Logger) (*Store, error) {
	embedFn := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(name, nil, embedFn)
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}
	return &Store{db: db, collection: collection, logger: logger}, nil
}

// Add stores one extraction keyed by its source text. The whole contact
// is serialized into a single metadata field and recovered verbatim on
// a hit.
func (s *Store) Add(ctx context.Context, text string, contact *model.ExtractedContact) error {
	payload, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("serializing contact: %w", err)
	}
	doc := chromem.Document{
		ID:      uuid.NewString(),
		Content: text,
		Metadata: map[string]string{
			metadataKey: string(payload),
		},
	}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("adding document: %w", err)
	}
	s.logger.Debug("stored extraction", zap.Int("cache_size", s.collection.Count()))
	return nil
}

// FindNearest returns the single nearest neighbor of text, or nil when
// the store is empty or the neighbor carries no usable record.
func (s *Store) FindNearest(ctx context.Context, text string) (*Match, error) {
	if s.collection.Count() == 0 {
		return nil, nil
	}
	results, err := s.collection.Query(ctx, text, 1, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	payload, ok := results[0].Metadata[metadataKey]
	if !ok {
		return nil, nil
	}
	var contact model.ExtractedContact
	if err := json.Unmarshal([]byte(payload), &contact); err != nil {
		return nil, fmt.Errorf("deserializing cached contact: %w", err)
	}
	// chromem reports cosine similarity (1 = identical); callers work
	// with a distance where 0 = identical.
	return &Match{
		Text:     results[0].Content,
		Contact:  &contact,
		Distance: 1 - float64(results[0].Similarity),
	}, nil
}

// Count reports the number of stored extractions.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Healthy is the heartbeat check used by the health endpoint.
func (s *Store) Healthy() bool {
	return s.db != nil && s.collection != nil
}
