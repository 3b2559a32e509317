package repository

import (
	"context"
	"errors"
	"time"

	"CorrScope/internal/domain/models"
	domainrepo "CorrScope/internal/domain/repository"
	"CorrScope/pkg/cache"
)

// CachedResultStore fronts a ResultStore with a cache layer. Disk remains the
// source of truth; the cache only shortcuts repeat reads, so cache errors are
// counted and ignored.
type CachedResultStore struct {
	inner   domainrepo.ResultStore
	cache   cache.Service
	ttl     time.Duration
	metrics domainrepo.Metrics
}

func NewCachedResultStore(inner domainrepo.ResultStore, c cache.Service, ttl time.Duration, m domainrepo.Metrics) *CachedResultStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedResultStore{inner: inner, cache: c, ttl: ttl, metrics: m}
}

func (s *CachedResultStore) Get(ctx context.Context, symbol string, params models.FilterParams) (*models.CorrelationResult, error) {
	key := cache.Key("result", params.CacheKey(symbol))

	var cached models.CorrelationResult
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		s.metrics.RecordCache("redis", "hit")
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.metrics.RecordError("redis_get")
	}
	s.metrics.RecordCache("redis", "miss")

	res, err := s.inner.Get(ctx, symbol, params)
	if err != nil {
		return nil, err
	}
	if setErr := s.cache.Set(ctx, key, res, s.ttl); setErr != nil {
		s.metrics.RecordError("redis_set")
	}
	return res, nil
}

func (s *CachedResultStore) Put(ctx context.Context, res *models.CorrelationResult) error {
	if err := s.inner.Put(ctx, res); err != nil {
		return err
	}
	key := cache.Key("result", res.Params.CacheKey(res.Symbol))
	if err := s.cache.Set(ctx, key, res, s.ttl); err != nil {
		s.metrics.RecordError("redis_set")
	}
	return nil
}
