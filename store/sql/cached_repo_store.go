package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/VitorBSK/Unit9-Raccoon/core"
)

const repoCacheKeyPrefix = "raccoon::repo::v1"

// CachedRepoStore fronts repo reads with a cache. It backs the read-only
// query path only; guard reads inside mutations go straight to the base
// store so a stale snapshot can never satisfy an authorization or
// lifecycle check.
type CachedRepoStore struct {
	base  core.RepoStore
	cache repositorycache.CacheService
}

func NewCachedRepoStore(base core.RepoStore, cacheService repositorycache.CacheService) (*CachedRepoStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base repo store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: repo cache service is required")
	}
	return &CachedRepoStore{base: base, cache: cacheService}, nil
}

// RepoCacheKey returns the deterministic cache key contract for repo
// reads: raccoon::repo::v1::<key> with the key segment URL-path escaped.
func RepoCacheKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("sqlstore: repo key is required")
	}
	return strings.Join([]string{repoCacheKeyPrefix, url.PathEscape(key)}, "::"), nil
}

func (s *CachedRepoStore) Get(ctx context.Context, key string) (core.Repo, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Repo{}, fmt.Errorf("sqlstore: cached repo store is not configured")
	}
	cacheKey, err := RepoCacheKey(key)
	if err != nil {
		return core.Repo{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Repo, error) {
		return s.base.Get(ctx, strings.TrimSpace(key))
	})
}

func (s *CachedRepoStore) Save(ctx context.Context, repo core.Repo) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached repo store is not configured")
	}
	if err := s.base.Save(ctx, repo); err != nil {
		return err
	}
	cacheKey, err := RepoCacheKey(repo.Key)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func (s *CachedRepoStore) List(ctx context.Context, owner string) ([]core.Repo, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached repo store is not configured")
	}
	return s.base.List(ctx, owner)
}

var _ core.RepoStore = (*CachedRepoStore)(nil)
