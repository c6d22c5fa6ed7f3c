package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/graph"
)

// cachedStored is the JSON envelope stored in Redis for one graph
// document — Stored's identity/metadata fields plus its Document body,
// the same projection the HTTP layer persists as JSON.
type cachedStored struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     int            `json:"version"`
	Document    graph.Document `json:"document"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CachedGraphRepository wraps graph.Repository with a Redis read-through
// cache keyed by graph id. Graph documents are looked up far more often
// than they change — every run start re-reads one — so caching FindByID
// avoids a round trip to Postgres on the hot path. Save refreshes the
// cached entry and Delete invalidates it.
type CachedGraphRepository struct {
	repo     graph.Repository
	cache    *RedisCache
	registry *brick.Registry
	ttl      time.Duration
}

// NewCachedGraphRepository wraps repo with caching. registry is used to
// re-bind brick descriptors onto a cache hit, mirroring what the
// underlying repository does on every load.
func NewCachedGraphRepository(repo graph.Repository, cache *RedisCache, registry *brick.Registry, ttl time.Duration) *CachedGraphRepository {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &CachedGraphRepository{repo: repo, cache: cache, registry: registry, ttl: ttl}
}

func cacheKey(id string) string { return fmt.Sprintf("graph:%s", id) }

// FindByID serves from Redis when present, falling back to the
// underlying repository and populating the cache on a miss.
func (r *CachedGraphRepository) FindByID(ctx context.Context, id string) (*graph.Stored, error) {
	raw, err := r.cache.GetString(ctx, cacheKey(id))
	if err == nil {
		var cs cachedStored
		if jsonErr := json.Unmarshal([]byte(raw), &cs); jsonErr == nil {
			g := graph.FromDocument(cs.Document)
			if bindErr := g.Bind(r.registry); bindErr == nil {
				return graph.HydrateStored(cs.ID, cs.Name, cs.Description, cs.Version, g, cs.CreatedAt, cs.UpdatedAt), nil
			}
		}
	}

	stored, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.populate(ctx, stored)
	return stored, nil
}

// Save persists through to the repository and refreshes the cache entry
// so the next FindByID doesn't immediately miss.
func (r *CachedGraphRepository) Save(ctx context.Context, s *graph.Stored) error {
	if err := r.repo.Save(ctx, s); err != nil {
		return err
	}
	r.populate(ctx, s)
	return nil
}

// List always goes to the repository — paginated listings aren't worth
// caching at single-document granularity.
func (r *CachedGraphRepository) List(ctx context.Context, limit, offset int) ([]*graph.Stored, error) {
	return r.repo.List(ctx, limit, offset)
}

// Delete removes the persisted document and its cache entry.
func (r *CachedGraphRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, cacheKey(id))
	return nil
}

func (r *CachedGraphRepository) populate(ctx context.Context, s *graph.Stored) {
	cs := cachedStored{
		ID:          s.ID(),
		Name:        s.Name(),
		Description: s.Description(),
		Version:     s.Version(),
		Document:    graph.ToDocument(s.Graph()),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
	_ = r.cache.Set(ctx, cacheKey(s.ID()), cs, r.ttl)
}
