package hashlinks

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/xerrors"
)

// CachedIndex keeps recently used links of another Index in memory.
// Links never change once written, so cached entries never go stale.
// Misses and collisions always reach the backing Index.
type CachedIndex struct {
	backend Index
	cache   *lru.Cache[string, string]
}

var _ Index = &CachedIndex{}

// NewCachedIndex wraps backend with an LRU cache holding up to size links.
func NewCachedIndex(backend Index, size int) (*CachedIndex, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, xerrors.Errorf("could not create cache of size %d: %w", size, err)
	}

	return &CachedIndex{
		backend: backend,
		cache:   cache,
	}, nil
}

// Lookup serves id from the cache, falling back to the backing Index.
func (i *CachedIndex) Lookup(ctx context.Context, id string) (string, error) {
	if longURL, ok := i.cache.Get(id); ok {
		return longURL, nil
	}

	longURL, err := i.backend.Lookup(ctx, id)
	if err != nil {
		return "", err
	}

	i.cache.Add(id, longURL)
	return longURL, nil
}

// Put short-circuits repeated puts of a cached link and otherwise writes through.
func (i *CachedIndex) Put(ctx context.Context, id, longURL string) error {
	if cached, ok := i.cache.Get(id); ok && cached == longURL {
		return nil
	}

	if err := i.backend.Put(ctx, id, longURL); err != nil {
		return err
	}

	i.cache.Add(id, longURL)
	return nil
}
