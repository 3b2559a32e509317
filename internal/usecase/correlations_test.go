package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"CorrScope/internal/domain/models"
	domainrepo "CorrScope/internal/domain/repository"
	"CorrScope/pkg/cache"
	applogger "CorrScope/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func mkSeries(symbol string, vals ...float64) models.Series {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.Point, len(vals))
	for i, v := range vals {
		points[i] = models.Point{Date: start.AddDate(0, 0, i), Value: v}
	}
	return models.Series{Symbol: symbol, Points: points}
}

type fakeLoader struct {
	series map[string]models.Series
}

func (f *fakeLoader) LoadFor(_ context.Context, symbol, _ string, _ models.FilterParams) (models.Series, error) {
	s, ok := f.series[symbol]
	if !ok {
		return models.Series{}, models.ErrSeriesNotFound
	}
	return s, nil
}

type fakeMeta struct {
	byType map[string][]models.SecurityMeta
}

func (f *fakeMeta) List(_ context.Context, t string) ([]models.SecurityMeta, error) {
	return f.byType[t], nil
}

func (f *fakeMeta) Get(_ context.Context, symbol string) (models.SecurityMeta, bool) {
	for _, list := range f.byType {
		for _, m := range list {
			if m.Symbol == symbol {
				return m, true
			}
		}
	}
	return models.SecurityMeta{}, false
}

type memResultStore struct {
	mu   sync.Mutex
	data map[string]*models.CorrelationResult
}

func newMemResultStore() *memResultStore {
	return &memResultStore{data: make(map[string]*models.CorrelationResult)}
}

func (s *memResultStore) Get(_ context.Context, symbol string, params models.FilterParams) (*models.CorrelationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.data[params.CacheKey(symbol)]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return res, nil
}

func (s *memResultStore) Put(_ context.Context, res *models.CorrelationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[res.Params.CacheKey(res.Symbol)] = res
	return nil
}

type countingPublisher struct {
	mu    sync.Mutex
	count int
}

func (p *countingPublisher) PublishResultComputed(context.Context, *models.CorrelationResult, string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return nil
}

func (p *countingPublisher) Close() error { return nil }

func (p *countingPublisher) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

type nopRecorder struct{}

func (nopRecorder) RecordRun(context.Context, domainrepo.ComputeRun) error { return nil }
func (nopRecorder) Close() error                                           { return nil }

type countingMetrics struct {
	mu    sync.Mutex
	skips map[string]int
}

func newCountingMetrics() *countingMetrics { return &countingMetrics{skips: make(map[string]int)} }

func (m *countingMetrics) RecordComputation(string, string, float64) {}
func (m *countingMetrics) RecordCache(string, string)                {}
func (m *countingMetrics) RecordError(string)                        {}
func (m *countingMetrics) RecordSkip(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skips[reason]++
}

type fixture struct {
	uc      *CorrelationsUseCase
	results *memResultStore
	pub     *countingPublisher
	metrics *countingMetrics
}

func newFixture(t *testing.T, loader *fakeLoader, meta *fakeMeta) *fixture {
	t.Helper()
	results := newMemResultStore()
	pub := &countingPublisher{}
	metrics := newCountingMetrics()
	mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(64))
	t.Cleanup(func() { _ = mc.Close() })

	uc := NewCorrelationsUseCase(loader, meta, results, nopRecorder{}, pub, metrics, nil, mc, testLogger(t))
	return &fixture{uc: uc, results: results, pub: pub, metrics: metrics}
}

// base builds a universe where POS tracks the target exactly, NEG mirrors it,
// and FLAT is a constant series that fails validation.
func base() (*fakeLoader, *fakeMeta) {
	target := make([]float64, 0, 40)
	v := 100.0
	for i := 0; i < 40; i++ {
		v += float64(i%7) - 2.5
		target = append(target, v)
	}
	pos := make([]float64, len(target))
	neg := make([]float64, len(target))
	flat := make([]float64, len(target))
	for i, tv := range target {
		pos[i] = 2*tv + 3
		neg[i] = 500 - tv
		flat[i] = 42
	}

	loader := &fakeLoader{series: map[string]models.Series{
		"SPY":  mkSeries("SPY", target...),
		"POS":  mkSeries("POS", pos...),
		"NEG":  mkSeries("NEG", neg...),
		"FLAT": mkSeries("FLAT", flat...),
	}}
	meta := &fakeMeta{byType: map[string][]models.SecurityMeta{
		models.TypeStock: {
			{Symbol: "SPY", Name: "Target", Type: models.TypeStock},
			{Symbol: "POS", Name: "Tracker", Type: models.TypeStock},
			{Symbol: "NEG", Name: "Mirror", Type: models.TypeStock},
			{Symbol: "FLAT", Name: "Flatline", Type: models.TypeStock},
		},
	}}
	return loader, meta
}

func TestGetCorrelationsComputesAndRanks(t *testing.T) {
	loader, meta := base()
	f := newFixture(t, loader, meta)
	params := models.FilterParams{SecurityTypes: []string{models.TypeStock}}.Normalize()

	res, err := f.uc.GetCorrelations(context.Background(), "SPY", params, false, TriggerRequest)
	if err != nil {
		t.Fatalf("GetCorrelations: %v", err)
	}
	if res.Candidates != 3 {
		t.Errorf("candidates = %d, want 3 (target excluded)", res.Candidates)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (constant series)", res.Skipped)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Entries))
	}
	for _, e := range res.Entries {
		switch e.Symbol {
		case "POS":
			if e.Corr < 0.999 {
				t.Errorf("POS corr = %v, want ~1", e.Corr)
			}
		case "NEG":
			if e.Corr > -0.999 {
				t.Errorf("NEG corr = %v, want ~-1", e.Corr)
			}
		default:
			t.Errorf("unexpected entry %s", e.Symbol)
		}
		if e.Corr > 1 || e.Corr < -1 {
			t.Errorf("%s corr %v out of bounds", e.Symbol, e.Corr)
		}
	}
	if f.metrics.skips["constant"] != 1 {
		t.Errorf("skip reasons = %v, want constant:1", f.metrics.skips)
	}
	if f.pub.published() != 1 {
		t.Errorf("published = %d, want 1", f.pub.published())
	}
}

func TestGetCorrelationsServesPersisted(t *testing.T) {
	loader, meta := base()
	f := newFixture(t, loader, meta)
	ctx := context.Background()
	params := models.FilterParams{SecurityTypes: []string{models.TypeStock}}.Normalize()

	first, err := f.uc.GetCorrelations(ctx, "SPY", params, false, TriggerRequest)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := f.uc.GetCorrelations(ctx, "SPY", params, false, TriggerRequest)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.ComputedAt.Equal(first.ComputedAt) {
		t.Error("second call should serve the persisted result unchanged")
	}
	if f.pub.published() != 1 {
		t.Errorf("published = %d, want 1 (no recompute)", f.pub.published())
	}

	// equivalent but differently-ordered type filter hits the same entry
	alt := models.FilterParams{SecurityTypes: []string{"STOCK "}}.Normalize()
	third, err := f.uc.GetCorrelations(ctx, "SPY", alt, false, TriggerRequest)
	if err != nil {
		t.Fatalf("third: %v", err)
	}
	if !third.ComputedAt.Equal(first.ComputedAt) {
		t.Error("normalized params should address the same persisted result")
	}
}

func TestGetCorrelationsReloadRecomputes(t *testing.T) {
	loader, meta := base()
	f := newFixture(t, loader, meta)
	ctx := context.Background()
	params := models.FilterParams{SecurityTypes: []string{models.TypeStock}}.Normalize()

	if _, err := f.uc.GetCorrelations(ctx, "SPY", params, false, TriggerRequest); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := f.uc.GetCorrelations(ctx, "SPY", params, true, TriggerReload); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if f.pub.published() != 2 {
		t.Errorf("published = %d, want 2 (reload recomputes)", f.pub.published())
	}
}

func TestGetCorrelationsExcludesOTC(t *testing.T) {
	loader, meta := base()
	meta.byType[models.TypeStock] = append(meta.byType[models.TypeStock],
		models.SecurityMeta{Symbol: "PINK", Type: models.TypeStock, Exchange: "OTC Markets"})
	loader.series["PINK"] = loader.series["POS"]

	f := newFixture(t, loader, meta)
	params := models.FilterParams{
		SecurityTypes: []string{models.TypeStock},
		ExcludeOTC:    true,
	}.Normalize()

	res, err := f.uc.GetCorrelations(context.Background(), "SPY", params, false, TriggerRequest)
	if err != nil {
		t.Fatalf("GetCorrelations: %v", err)
	}
	if res.Candidates != 3 {
		t.Errorf("candidates = %d, want 3 (OTC excluded)", res.Candidates)
	}
	for _, e := range res.Entries {
		if e.Symbol == "PINK" {
			t.Error("OTC symbol should not appear in entries")
		}
	}
}

func TestGetCorrelationsNumShownTruncates(t *testing.T) {
	loader, meta := base()
	f := newFixture(t, loader, meta)
	params := models.FilterParams{
		SecurityTypes: []string{models.TypeStock},
		NumShown:      1,
	}.Normalize()

	res, err := f.uc.GetCorrelations(context.Background(), "SPY", params, false, TriggerRequest)
	if err != nil {
		t.Fatalf("GetCorrelations: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(res.Entries))
	}
}

func TestGetCorrelationsUnknownTarget(t *testing.T) {
	loader, meta := base()
	f := newFixture(t, loader, meta)
	params := models.FilterParams{}.Normalize()

	_, err := f.uc.GetCorrelations(context.Background(), "NOPE", params, false, TriggerRequest)
	if !errors.Is(err, models.ErrSeriesNotFound) {
		t.Fatalf("err = %v, want ErrSeriesNotFound", err)
	}
}

func TestGetSeriesRawAndPreprocessed(t *testing.T) {
	loader, meta := base()
	f := newFixture(t, loader, meta)
	ctx := context.Background()
	params := models.FilterParams{}.Normalize()

	raw, err := f.uc.GetSeries(ctx, "SPY", params, true)
	if err != nil {
		t.Fatalf("raw: %v", err)
	}
	if raw.Len() != 40 {
		t.Errorf("raw len = %d, want 40", raw.Len())
	}

	pre, err := f.uc.GetSeries(ctx, "SPY", params, false)
	if err != nil {
		t.Fatalf("preprocessed: %v", err)
	}
	// detrending drops one observation
	if pre.Len() != raw.Len()-1 {
		t.Errorf("preprocessed len = %d, want %d", pre.Len(), raw.Len()-1)
	}
}

func TestListSymbols(t *testing.T) {
	loader, meta := base()
	f := newFixture(t, loader, meta)
	ctx := context.Background()

	all, err := f.uc.ListSymbols(ctx, models.TypeStock, "", 0)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("all = %d, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Symbol > all[i].Symbol {
			t.Error("symbols not sorted")
		}
	}

	filtered, err := f.uc.ListSymbols(ctx, models.TypeStock, "p", 10)
	if err != nil {
		t.Fatalf("prefix: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Symbol != "POS" {
		t.Errorf("prefix filter = %+v, want POS only", filtered)
	}

	capped, err := f.uc.ListSymbols(ctx, models.TypeStock, "", 2)
	if err != nil {
		t.Fatalf("limit: %v", err)
	}
	if len(capped) != 2 {
		t.Errorf("capped = %d, want 2", len(capped))
	}
}

func TestRefresherSweepsRecentEntries(t *testing.T) {
	loader, meta := base()
	f := newFixture(t, loader, meta)
	ctx := context.Background()
	params := models.FilterParams{SecurityTypes: []string{models.TypeStock}}.Normalize()

	if _, err := f.uc.GetCorrelations(ctx, "SPY", params, false, TriggerRequest); err != nil {
		t.Fatalf("seed: %v", err)
	}

	NewRefresher(f.uc, testLogger(t)).Run(ctx)
	if f.pub.published() != 2 {
		t.Errorf("published = %d, want 2 (refresh recomputed the served entry)", f.pub.published())
	}
}
