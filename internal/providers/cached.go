package providers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/repodoc/internal/cache"
	"github.com/repodoc/pkg/models"
)

const (
	// Fixed inter-call delays keeping under the provider's rate ceilings.
	anonymousCallInterval     = 350 * time.Millisecond
	authenticatedCallInterval = 80 * time.Millisecond
)

// CachedClient interposes the cache store and a fixed-rate throttle between
// callers and a content provider. Every fetch point goes through it.
type CachedClient struct {
	client  ContentProvider
	store   cache.Store
	limiter *rate.Limiter
}

// NewCachedClient wraps a provider with caching and throttling. The throttle
// interval depends on whether the underlying client carries a credential.
func NewCachedClient(client ContentProvider, store cache.Store) *CachedClient {
	interval := anonymousCallInterval
	if client.Authenticated() {
		interval = authenticatedCallInterval
	}
	return &CachedClient{
		client:  client,
		store:   store,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (c *CachedClient) Authenticated() bool {
	return c.client.Authenticated()
}

// ListDirectory returns the cached listing when present, otherwise fetches
// one level from the provider and writes it back.
func (c *CachedClient) ListDirectory(ctx context.Context, repo models.RepositoryID, path string) ([]*models.Node, error) {
	key := cache.TreeKey(repo, path)
	if nodes, ok := cache.GetJSON[[]*models.Node](c.store, key); ok {
		log.Debug().Str("key", string(key)).Msg("directory listing cache hit")
		return nodes, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	nodes, err := c.client.ListDirectory(ctx, repo, path)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(c.store, key, nodes)
	return nodes, nil
}

// ReadFile resolves a file body without a revision marker.
func (c *CachedClient) ReadFile(ctx context.Context, repo models.RepositoryID, path string) (*models.FileContent, error) {
	return c.ReadFileRevision(ctx, repo, path, "")
}

// ReadFileRevision resolves a file body, keyed by revision when known.
func (c *CachedClient) ReadFileRevision(ctx context.Context, repo models.RepositoryID, path, revision string) (*models.FileContent, error) {
	key := cache.FileKey(repo, path, revision)
	if content, ok := cache.GetJSON[*models.FileContent](c.store, key); ok && content != nil {
		log.Debug().Str("key", string(key)).Msg("file content cache hit")
		return content, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	content, err := c.client.ReadFile(ctx, repo, path)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(c.store, key, content)
	return content, nil
}
