package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"CorrScope/internal/domain/models"
	domainrepo "CorrScope/internal/domain/repository"
	"CorrScope/internal/services/timeseries"
	"CorrScope/pkg/cache"
	applogger "CorrScope/pkg/logger"
)

const (
	// Triggers recorded with each run.
	TriggerRequest = "request"
	TriggerReload  = "reload"
	TriggerRefresh = "refresh"

	candidateWorkers = 8
	seriesCacheTTL   = 15 * time.Minute
)

// SeriesLoader resolves a symbol of a given security type to its raw series
// under the requested backend.
type SeriesLoader interface {
	LoadFor(ctx context.Context, symbol, securityType string, params models.FilterParams) (models.Series, error)
}

// EventBroadcaster pushes dashboard notifications to connected clients.
type EventBroadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// CorrelationsUseCase computes ranked correlation sets for a target symbol
// against the filtered security universe, serving persisted results unless a
// reload is requested.
type CorrelationsUseCase struct {
	loader    SeriesLoader
	meta      domainrepo.MetadataStore
	results   domainrepo.ResultStore
	recorder  domainrepo.RunRecorder
	publisher domainrepo.EventPublisher
	metrics   domainrepo.Metrics
	broadcast EventBroadcaster
	series    *cache.MemoryCache
	l         *applogger.Logger

	mu     sync.Mutex
	recent map[string]RefreshEntry
}

// RefreshEntry is one (symbol, params) pair eligible for scheduled refresh.
type RefreshEntry struct {
	Symbol string
	Params models.FilterParams
}

func NewCorrelationsUseCase(
	loader SeriesLoader,
	meta domainrepo.MetadataStore,
	results domainrepo.ResultStore,
	rec domainrepo.RunRecorder,
	pub domainrepo.EventPublisher,
	m domainrepo.Metrics,
	broadcast EventBroadcaster,
	seriesCache *cache.MemoryCache,
	l *applogger.Logger,
) *CorrelationsUseCase {
	return &CorrelationsUseCase{
		loader:    loader,
		meta:      meta,
		results:   results,
		recorder:  rec,
		publisher: pub,
		metrics:   m,
		broadcast: broadcast,
		series:    seriesCache,
		l:         l,
		recent:    make(map[string]RefreshEntry),
	}
}

// GetCorrelations returns the ranked correlation set for (symbol, params).
// A persisted result is served as-is unless reload is true; recomputation
// replaces the whole entry.
func (uc *CorrelationsUseCase) GetCorrelations(ctx context.Context, symbol string, params models.FilterParams, reload bool, trigger string) (*models.CorrelationResult, error) {
	params = params.Normalize()
	uc.remember(symbol, params)

	if !reload {
		res, err := uc.results.Get(ctx, symbol, params)
		if err == nil {
			uc.metrics.RecordCache("result", "hit")
			return res, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			uc.metrics.RecordError("result_get")
			uc.l.Warn("result store read failed", applogger.Error(err))
		}
		uc.metrics.RecordCache("result", "miss")
	}
	return uc.compute(ctx, symbol, params, trigger)
}

func (uc *CorrelationsUseCase) compute(ctx context.Context, symbol string, params models.FilterParams, trigger string) (*models.CorrelationResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	if uc.broadcast != nil {
		uc.broadcast.Broadcast("compute_started", map[string]interface{}{
			"run_id":  runID,
			"symbol":  symbol,
			"trigger": trigger,
		})
	}

	res, err := uc.computeResult(ctx, symbol, params)
	elapsed := time.Since(start)
	uc.metrics.RecordComputation(symbol, trigger, elapsed.Seconds())

	run := domainrepo.ComputeRun{
		ID:        runID,
		Symbol:    symbol,
		ParamsKey: params.CacheKey(symbol),
		Trigger:   trigger,
		Duration:  elapsed,
		StartedAt: start,
	}
	if err != nil {
		run.Err = err.Error()
		if recErr := uc.recorder.RecordRun(ctx, run); recErr != nil {
			uc.l.Warn("record run failed", applogger.Error(recErr))
		}
		return nil, err
	}
	run.Candidates = res.Candidates
	run.Skipped = res.Skipped

	if err := uc.results.Put(ctx, res); err != nil {
		uc.metrics.RecordError("result_put")
		uc.l.Error("persist result failed", applogger.Error(err))
	}
	if err := uc.recorder.RecordRun(ctx, run); err != nil {
		uc.l.Warn("record run failed", applogger.Error(err))
	}
	if err := uc.publisher.PublishResultComputed(ctx, res, runID); err != nil {
		uc.metrics.RecordError("publish")
		uc.l.Warn("publish result failed", applogger.Error(err))
	}
	if uc.broadcast != nil {
		uc.broadcast.Broadcast("result_computed", map[string]interface{}{
			"run_id":  runID,
			"symbol":  res.Symbol,
			"entries": len(res.Entries),
			"trigger": trigger,
		})
	}

	uc.l.Info("correlations computed",
		applogger.String("symbol", symbol),
		applogger.String("run_id", runID),
		applogger.Int("candidates", res.Candidates),
		applogger.Int("skipped", res.Skipped),
		applogger.Duration("took", elapsed),
	)
	return res, nil
}

func (uc *CorrelationsUseCase) computeResult(ctx context.Context, symbol string, params models.FilterParams) (*models.CorrelationResult, error) {
	targetType := uc.typeOf(ctx, symbol)
	targetRaw, err := uc.loadSeries(ctx, symbol, targetType, params)
	if err != nil {
		return nil, err
	}
	if reason := timeseries.Validate(targetRaw); reason != "" {
		return nil, fmt.Errorf("target %s unusable (%s): %w", symbol, reason, models.ErrSeriesNotFound)
	}
	target := timeseries.Preprocess(targetRaw, params)
	if target.Len() < 2 {
		return nil, fmt.Errorf("target %s too short after preprocessing: %w", symbol, models.ErrSeriesNotFound)
	}

	universe, err := uc.buildUniverse(ctx, symbol, params)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		entry   models.CorrelationEntry
		ok      bool
		skipped string
	}
	out := make([]outcome, len(universe))

	sem := make(chan struct{}, candidateWorkers)
	var wg sync.WaitGroup
	for i, cand := range universe {
		wg.Add(1)
		go func(i int, cand models.SecurityMeta) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				out[i] = outcome{skipped: timeseries.SkipNotFound}
				return
			}
			raw, err := uc.loadSeries(ctx, cand.Symbol, cand.Type, params)
			if err != nil {
				out[i] = outcome{skipped: timeseries.SkipNotFound}
				return
			}
			if reason := timeseries.Validate(raw); reason != "" {
				out[i] = outcome{skipped: reason}
				return
			}
			r, ok := timeseries.Correlate(target, timeseries.Preprocess(raw, params))
			if !ok {
				out[i] = outcome{skipped: timeseries.SkipNoOverlap}
				return
			}
			out[i] = outcome{
				entry: models.CorrelationEntry{Symbol: cand.Symbol, Name: cand.Name, Type: cand.Type, Corr: r},
				ok:    true,
			}
		}(i, cand)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]models.CorrelationEntry, 0, len(out))
	skipped := 0
	for _, o := range out {
		if o.ok {
			entries = append(entries, o.entry)
			continue
		}
		skipped++
		uc.metrics.RecordSkip(o.skipped)
	}

	sortByStrength(entries)
	if len(entries) > params.NumShown {
		entries = entries[:params.NumShown]
	}

	return &models.CorrelationResult{
		Symbol:     targetRaw.Symbol,
		Params:     params,
		Entries:    entries,
		Candidates: len(universe),
		Skipped:    skipped,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// buildUniverse lists every security passing the type and OTC filters,
// excluding the target itself.
func (uc *CorrelationsUseCase) buildUniverse(ctx context.Context, symbol string, params models.FilterParams) ([]models.SecurityMeta, error) {
	var universe []models.SecurityMeta
	for _, typ := range params.SecurityTypes {
		list, err := uc.meta.List(ctx, typ)
		if err != nil {
			return nil, fmt.Errorf("list %s universe: %w", typ, err)
		}
		for _, m := range list {
			if m.Symbol == symbol {
				continue
			}
			if params.ExcludeOTC && m.IsOTC() {
				continue
			}
			universe = append(universe, m)
		}
	}
	return universe, nil
}

// loadSeries reads through the in-process series cache. Raw series are cached
// per backend; preprocessing stays request-scoped.
func (uc *CorrelationsUseCase) loadSeries(ctx context.Context, symbol, securityType string, params models.FilterParams) (models.Series, error) {
	key := cache.Key("series", params.Source, symbol)
	if v, ok := uc.series.GetValue(key); ok {
		if s, ok := v.(models.Series); ok {
			uc.metrics.RecordCache("series", "hit")
			return s, nil
		}
	}
	uc.metrics.RecordCache("series", "miss")

	s, err := uc.loader.LoadFor(ctx, symbol, securityType, params)
	if err != nil {
		return models.Series{}, err
	}
	s = timeseries.DropNaN(s)
	_ = uc.series.Set(ctx, key, s, seriesCacheTTL)
	return s, nil
}

func (uc *CorrelationsUseCase) typeOf(ctx context.Context, symbol string) string {
	if m, ok := uc.meta.Get(ctx, symbol); ok {
		return m.Type
	}
	return models.TypeStock
}

func (uc *CorrelationsUseCase) remember(symbol string, params models.FilterParams) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.recent[params.CacheKey(symbol)] = RefreshEntry{Symbol: symbol, Params: params}
}

// RecentEntries returns the (symbol, params) pairs served since startup, for
// the scheduled refresh.
func (uc *CorrelationsUseCase) RecentEntries() []RefreshEntry {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make([]RefreshEntry, 0, len(uc.recent))
	for _, e := range uc.recent {
		out = append(out, e)
	}
	return out
}

// sortByStrength orders entries by absolute coefficient descending, breaking
// ties by symbol for stable output.
func sortByStrength(entries []models.CorrelationEntry) {
	sort.Slice(entries, func(i, j int) bool {
		ai, aj := abs(entries[i].Corr), abs(entries[j].Corr)
		if ai != aj {
			return ai > aj
		}
		return entries[i].Symbol < entries[j].Symbol
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
