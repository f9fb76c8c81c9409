package docs

import (
	"context"
	"time"

	"github.com/jonwraymond/doccache/cache"
	"github.com/jonwraymond/doccache/resilience"
)

// FetchFunc retrieves a document from upstream on a cache miss.
type FetchFunc func(ctx context.Context) (string, error)

// Service stores rendered documentation under family keys.
//
// Get methods report a miss as ("", false); Set methods never fail because
// the cache is advisory. Lookup methods read through the cache and run the
// fetch through the upstream Executor, so a stampede on one key reaches
// upstream once.
type Service struct {
	cache        cache.Cache
	memo         *cache.Memoizer
	upstream     *resilience.Executor
	cacheTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithUpstream guards fetches in Lookup calls. The default runs them bare.
func WithUpstream(e *resilience.Executor) Option {
	return func(s *Service) {
		if e != nil {
			s.upstream = e
		}
	}
}

// WithCacheTimeout bounds every cache call. A call that times out is a miss
// or a dropped write.
func WithCacheTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.cacheTimeout = d
	}
}

// NewService wraps c.
func NewService(c cache.Cache, opts ...Option) *Service {
	s := &Service{
		cache:    c,
		upstream: resilience.NewExecutor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.memo = cache.NewMemoizer(boundedCache{Cache: c, timeout: s.cacheTimeout}, cache.Policy{})
	return s
}

// NewDefaultService returns a Service over a memory cache of the default
// capacity.
func NewDefaultService(opts ...Option) *Service {
	return NewService(cache.NewMemoryCache(cache.DefaultMemoryCapacity), opts...)
}

// GetCrateDocs returns cached docs for a crate, optionally at a version.
func (s *Service) GetCrateDocs(ctx context.Context, name, version string) (string, bool) {
	return s.get(ctx, CrateKey(name, version))
}

// SetCrateDocs caches crate docs for CrateTTL.
func (s *Service) SetCrateDocs(ctx context.Context, name, version, content string) {
	s.set(ctx, CrateKey(name, version), content, CrateTTL)
}

// GetItemDocs returns cached docs for an item path within a crate.
func (s *Service) GetItemDocs(ctx context.Context, name, itemPath, version string) (string, bool) {
	return s.get(ctx, ItemKey(name, itemPath, version))
}

// SetItemDocs caches item docs for ItemTTL.
func (s *Service) SetItemDocs(ctx context.Context, name, itemPath, version, content string) {
	s.set(ctx, ItemKey(name, itemPath, version), content, ItemTTL)
}

// GetSearchResults returns cached results for a query and result limit.
func (s *Service) GetSearchResults(ctx context.Context, query string, limit uint32) (string, bool) {
	return s.get(ctx, SearchKey(query, limit))
}

// SetSearchResults caches search results for SearchTTL.
func (s *Service) SetSearchResults(ctx context.Context, query string, limit uint32, content string) {
	s.set(ctx, SearchKey(query, limit), content, SearchTTL)
}

// LookupCrate returns cached crate docs or fetches and caches them.
func (s *Service) LookupCrate(ctx context.Context, name, version string, fetch FetchFunc) (string, error) {
	return s.lookup(ctx, CrateKey(name, version), CrateTTL, fetch)
}

// LookupItem returns cached item docs or fetches and caches them.
func (s *Service) LookupItem(ctx context.Context, name, itemPath, version string, fetch FetchFunc) (string, error) {
	return s.lookup(ctx, ItemKey(name, itemPath, version), ItemTTL, fetch)
}

// Search returns cached search results or fetches and caches them.
func (s *Service) Search(ctx context.Context, query string, limit uint32, fetch FetchFunc) (string, error) {
	return s.lookup(ctx, SearchKey(query, limit), SearchTTL, fetch)
}

// Clear empties the underlying cache. For a remote backend this removes
// every key in the connected database or bucket, not just doc keys.
func (s *Service) Clear(ctx context.Context) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	_ = s.cache.Clear(ctx)
}

func (s *Service) get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	v, ok := s.cache.Get(ctx, key)
	if !ok {
		return "", false
	}
	return string(v), true
}

func (s *Service) set(ctx context.Context, key, content string, ttl time.Duration) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	_ = s.cache.Set(ctx, key, []byte(content), ttl)
}

func (s *Service) lookup(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (string, error) {
	v, err := s.memo.Do(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		var doc string
		err := s.upstream.Execute(ctx, func(ctx context.Context) error {
			var err error
			doc, err = fetch(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		return []byte(doc), nil
	})
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cacheTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cacheTimeout)
}

// boundedCache applies the service's cache timeout to the calls the
// memoizer makes.
type boundedCache struct {
	cache.Cache
	timeout time.Duration
}

func (b boundedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if b.timeout <= 0 {
		return b.Cache.Get(ctx, key)
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.Cache.Get(ctx, key)
}

func (b boundedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if b.timeout <= 0 {
		return b.Cache.Set(ctx, key, value, ttl)
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.Cache.Set(ctx, key, value, ttl)
}
