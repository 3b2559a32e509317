package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"CorrScope/internal/domain/models"
	"CorrScope/pkg/cache"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFileSeriesSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "daily", "AAPL.csv"),
		"date,adj_close\n2020-01-03,72.5\n2020-01-02,71.0\n2020-01-03,72.9\nbadrow\n")

	src := NewFileSeriesSource(dir)
	s, err := src.Load(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", s.Symbol)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2 (sorted, deduped)", s.Len())
	}
	if !s.Points[0].Date.Before(s.Points[1].Date) {
		t.Error("points not sorted ascending")
	}
	// duplicate date keeps the later occurrence
	if got := s.Points[1].Value; got != 72.9 {
		t.Errorf("dedup kept %v, want 72.9", got)
	}
}

func TestFileSeriesSourceNotFound(t *testing.T) {
	src := NewFileSeriesSource(t.TempDir())
	_, err := src.Load(context.Background(), "NOPE")
	if !errors.Is(err, models.ErrSeriesNotFound) {
		t.Fatalf("err = %v, want ErrSeriesNotFound", err)
	}
}

func TestFredMDSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fred_md.csv"),
		"sasdate,INDPRO,UNRATE\n"+
			"Transform:,5,2\n"+
			"1/31/2020,101.2,3.6\n"+
			"2/29/2020,101.0,3.5\n"+
			"3/31/2020,NaN,4.4\n")

	src := NewFredMDSource(dir)
	s, err := src.Load(context.Background(), "indpro")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("INDPRO len = %d, want 2 (NaN cell dropped)", s.Len())
	}
	u, err := src.Load(context.Background(), "UNRATE")
	if err != nil {
		t.Fatalf("Load UNRATE: %v", err)
	}
	if u.Len() != 3 {
		t.Errorf("UNRATE len = %d, want 3", u.Len())
	}

	if _, err := src.Load(context.Background(), "NOPE"); !errors.Is(err, models.ErrSeriesNotFound) {
		t.Errorf("unknown id err = %v, want ErrSeriesNotFound", err)
	}

	ids, err := src.SeriesIDs()
	if err != nil {
		t.Fatalf("SeriesIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v, want 2 entries", ids)
	}
}

func TestFileResultStoreRoundTrip(t *testing.T) {
	store, err := NewFileResultStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileResultStore: %v", err)
	}
	ctx := context.Background()
	params := models.FilterParams{StartYear: 2015}.Normalize()

	if _, err := store.Get(ctx, "SPY", params); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("empty store err = %v, want ErrCacheMiss", err)
	}

	res := &models.CorrelationResult{
		Symbol: "SPY",
		Params: params,
		Entries: []models.CorrelationEntry{
			{Symbol: "QQQ", Corr: 0.97},
			{Symbol: "GLD", Corr: -0.21},
		},
		Candidates: 2,
		ComputedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Put(ctx, res); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "SPY", params)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Entries) != 2 || got.Entries[0].Symbol != "QQQ" {
		t.Errorf("entries = %+v", got.Entries)
	}
	if !got.ComputedAt.Equal(res.ComputedAt) {
		t.Errorf("computed_at = %v, want %v", got.ComputedAt, res.ComputedAt)
	}

	// different params miss
	other := models.FilterParams{StartYear: 2000}.Normalize()
	if _, err := store.Get(ctx, "SPY", other); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("other params err = %v, want ErrCacheMiss", err)
	}
}

func TestFileResultStoreCorruptEntry(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileResultStore(root)
	if err != nil {
		t.Fatalf("NewFileResultStore: %v", err)
	}
	params := models.FilterParams{}.Normalize()
	key := params.CacheKey("SPY")
	writeFile(t, filepath.Join(root, "results", key[:2], key+".json"), "{not json")

	if _, err := store.Get(context.Background(), "SPY", params); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("corrupt entry err = %v, want ErrCacheMiss", err)
	}
}

func TestCSVMetadataStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stock_metadata.csv"),
		"symbol,name,exchange,market,sector\n"+
			"AAPL,Apple Inc,NASDAQ,us_market,Technology\n"+
			"PINK,Pink Sheets Co,OTC Markets,otc,Missing\n")
	writeFile(t, filepath.Join(dir, "etf_metadata.csv"),
		"symbol,name,family\nSPY,SPDR S&P 500,State Street\n")

	store := NewCSVMetadataStore(dir)
	ctx := context.Background()

	stocks, err := store.List(ctx, models.TypeStock)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stocks) != 2 {
		t.Fatalf("stocks = %d, want 2", len(stocks))
	}

	m, ok := store.Get(ctx, "pink")
	if !ok {
		t.Fatal("Get PINK: not found")
	}
	if !m.IsOTC() {
		t.Error("PINK should be OTC")
	}
	if m.Sector != "" {
		t.Errorf("Missing sector should clean to empty, got %q", m.Sector)
	}

	etfs, err := store.List(ctx, models.TypeETF)
	if err != nil {
		t.Fatalf("List etf: %v", err)
	}
	if len(etfs) != 1 || etfs[0].Type != models.TypeETF {
		t.Errorf("etfs = %+v", etfs)
	}

	// missing file for a type is not an error
	if idx, err := store.List(ctx, models.TypeIndex); err != nil || len(idx) != 0 {
		t.Errorf("index list = %v, %v; want empty, nil", idx, err)
	}
}

type countMetrics struct {
	mu  sync.Mutex
	ops map[string]int
}

func (m *countMetrics) RecordComputation(string, string, float64) {}
func (m *countMetrics) RecordSkip(string)                         {}
func (m *countMetrics) RecordError(string)                        {}
func (m *countMetrics) RecordCache(store, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ops == nil {
		m.ops = make(map[string]int)
	}
	m.ops[store+":"+outcome]++
}

func TestCachedResultStoreReadThrough(t *testing.T) {
	inner, err := NewFileResultStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileResultStore: %v", err)
	}
	mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(16))
	t.Cleanup(func() { _ = mc.Close() })
	metrics := &countMetrics{}
	store := NewCachedResultStore(inner, mc, time.Minute, metrics)

	ctx := context.Background()
	params := models.FilterParams{}.Normalize()
	res := &models.CorrelationResult{
		Symbol:     "SPY",
		Params:     params,
		Entries:    []models.CorrelationEntry{{Symbol: "QQQ", Corr: 0.9}},
		ComputedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Put(ctx, res); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "SPY", params)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Symbol != "QQQ" {
		t.Errorf("entries = %+v", got.Entries)
	}
	if metrics.ops["redis:hit"] != 1 {
		t.Errorf("cache ops = %v, want a hit after Put", metrics.ops)
	}

	// disk remains authoritative when the cache layer is cold
	mc2 := cache.NewMemoryCache(cache.WithMemoryMaxSize(16))
	t.Cleanup(func() { _ = mc2.Close() })
	cold := NewCachedResultStore(inner, mc2, time.Minute, &countMetrics{})
	if _, err := cold.Get(ctx, "SPY", params); err != nil {
		t.Fatalf("cold Get: %v", err)
	}
}

func TestFredCatalogWidensFredList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fred_metadata.csv"),
		"symbol,name\nUNRATE,Unemployment Rate\n")
	writeFile(t, filepath.Join(dir, "fred_md.csv"),
		"sasdate,INDPRO,UNRATE\n1/31/2020,101.2,3.6\n2/29/2020,101.0,3.5\n")

	catalog := NewFredCatalog(NewCSVMetadataStore(dir), NewFredMDSource(dir))
	ctx := context.Background()

	list, err := catalog.List(ctx, models.TypeFred)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %+v, want UNRATE + INDPRO", list)
	}
	byID := make(map[string]models.SecurityMeta, len(list))
	for _, m := range list {
		byID[m.Symbol] = m
	}
	// curated CSV name wins over the dataset-derived placeholder
	if byID["UNRATE"].Name != "Unemployment Rate" {
		t.Errorf("UNRATE name = %q", byID["UNRATE"].Name)
	}
	if byID["INDPRO"].Type != models.TypeFred {
		t.Errorf("INDPRO = %+v", byID["INDPRO"])
	}

	if _, ok := catalog.Get(ctx, "INDPRO"); !ok {
		t.Error("Get should resolve dataset-only ids")
	}
}

type stubSource struct {
	series map[string]models.Series
	err    error
}

func (s stubSource) Load(_ context.Context, symbol string) (models.Series, error) {
	if s.err != nil {
		return models.Series{}, s.err
	}
	if sr, ok := s.series[symbol]; ok {
		return sr, nil
	}
	return models.Series{}, models.ErrSeriesNotFound
}

func TestFallbackSource(t *testing.T) {
	primary := stubSource{series: map[string]models.Series{
		"AAPL": {Symbol: "AAPL", Points: []models.Point{{Value: 1}}},
	}}
	secondary := stubSource{series: map[string]models.Series{
		"INDPRO": {Symbol: "INDPRO", Points: []models.Point{{Value: 2}}},
	}}
	src := NewFallbackSource(primary, secondary)
	ctx := context.Background()

	if s, err := src.Load(ctx, "AAPL"); err != nil || s.Symbol != "AAPL" {
		t.Errorf("AAPL: %v, %v", s, err)
	}
	if s, err := src.Load(ctx, "INDPRO"); err != nil || s.Symbol != "INDPRO" {
		t.Errorf("INDPRO fallback: %v, %v", s, err)
	}
	if _, err := src.Load(ctx, "NOPE"); !errors.Is(err, models.ErrSeriesNotFound) {
		t.Errorf("NOPE err = %v, want ErrSeriesNotFound", err)
	}

	broken := NewFallbackSource(stubSource{err: errors.New("disk gone")}, secondary)
	if _, err := broken.Load(ctx, "INDPRO"); err == nil || errors.Is(err, models.ErrSeriesNotFound) {
		t.Errorf("hard error should not fall through, got %v", err)
	}
}

func TestSourceRouter(t *testing.T) {
	file := stubSource{series: map[string]models.Series{"AAPL": {Symbol: "AAPL"}}}
	macro := stubSource{series: map[string]models.Series{"UNRATE": {Symbol: "UNRATE"}}}
	router := NewSourceRouter(file).WithMacro(macro)
	ctx := context.Background()
	params := models.FilterParams{Source: models.SourceFile}.Normalize()

	if s, err := router.LoadFor(ctx, "AAPL", models.TypeStock, params); err != nil || s.Symbol != "AAPL" {
		t.Errorf("equity route: %v, %v", s, err)
	}
	// fred symbols route to the macro source even under the file backend
	if s, err := router.LoadFor(ctx, "UNRATE", models.TypeFred, params); err != nil || s.Symbol != "UNRATE" {
		t.Errorf("macro route: %v, %v", s, err)
	}
	if _, err := router.For("bogus"); err == nil {
		t.Error("unknown source should error")
	}
}
