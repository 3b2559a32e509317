package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"CorrScope/internal/domain/models"
	"CorrScope/pkg/cache"
)

// FileResultStore persists correlation results as content-addressed JSON
// files: <root>/results/<hh>/<hash>.json where hash is the params cache key
// and hh its first two hex chars. Writes go through a temp file and rename so
// readers never observe a partial result.
type FileResultStore struct {
	root string
}

func NewFileResultStore(root string) (*FileResultStore, error) {
	dir := filepath.Join(root, "results")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create result dir: %w", err)
	}
	return &FileResultStore{root: dir}, nil
}

func (s *FileResultStore) Get(_ context.Context, symbol string, params models.FilterParams) (*models.CorrelationResult, error) {
	path := s.pathFor(params.CacheKey(symbol))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cache.ErrCacheMiss
		}
		return nil, fmt.Errorf("read result %s: %w", path, err)
	}
	var res models.CorrelationResult
	if err := json.Unmarshal(data, &res); err != nil {
		// A corrupt entry is treated as absent and overwritten on Put.
		return nil, cache.ErrCacheMiss
	}
	return &res, nil
}

func (s *FileResultStore) Put(_ context.Context, res *models.CorrelationResult) error {
	key := res.Params.CacheKey(res.Symbol)
	path := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create result shard: %w", err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp result: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close result: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit result: %w", err)
	}
	return nil
}

func (s *FileResultStore) pathFor(key string) string {
	return filepath.Join(s.root, key[:2], key+".json")
}
