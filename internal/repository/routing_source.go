package repository

import (
	"context"
	"errors"
	"fmt"

	"CorrScope/internal/domain/models"
	domainrepo "CorrScope/internal/domain/repository"
)

// SourceRouter dispatches series loads to the backend named by the request
// parameters. Equity sources (file, clickhouse) are interchangeable; macro
// series always come from the FRED-MD source regardless of the configured
// equity backend, so a mixed universe can still resolve every symbol.
type SourceRouter struct {
	equity map[string]domainrepo.SeriesSource
	macro  domainrepo.SeriesSource
}

func NewSourceRouter(file domainrepo.SeriesSource) *SourceRouter {
	return &SourceRouter{
		equity: map[string]domainrepo.SeriesSource{models.SourceFile: file},
	}
}

// WithClickHouse registers the ClickHouse backend.
func (r *SourceRouter) WithClickHouse(src domainrepo.SeriesSource) *SourceRouter {
	r.equity[models.SourceClickHouse] = src
	return r
}

// WithMacro registers the FRED-MD backend.
func (r *SourceRouter) WithMacro(src domainrepo.SeriesSource) *SourceRouter {
	r.macro = src
	return r
}

// For returns the series source serving the given backend name.
func (r *SourceRouter) For(source string) (domainrepo.SeriesSource, error) {
	if source == models.SourceFredMD {
		if r.macro == nil {
			return nil, fmt.Errorf("series source %q not configured", source)
		}
		return r.macro, nil
	}
	src, ok := r.equity[source]
	if !ok {
		return nil, fmt.Errorf("series source %q not configured", source)
	}
	return src, nil
}

// LoadFor loads a symbol of the given security type under the given params.
// FRED ids route to the macro source; everything else uses the equity backend
// the params name.
func (r *SourceRouter) LoadFor(ctx context.Context, symbol, securityType string, params models.FilterParams) (models.Series, error) {
	if securityType == models.TypeFred || params.Source == models.SourceFredMD {
		if r.macro == nil {
			return models.Series{}, fmt.Errorf("%s: macro source not configured: %w", symbol, models.ErrSeriesNotFound)
		}
		return r.macro.Load(ctx, symbol)
	}
	src, err := r.For(params.Source)
	if err != nil {
		return models.Series{}, err
	}
	return src.Load(ctx, symbol)
}

// FallbackSource tries each wrapped source in order, moving on only when the
// previous one reported the symbol as unknown.
type FallbackSource struct {
	sources []domainrepo.SeriesSource
}

func NewFallbackSource(sources ...domainrepo.SeriesSource) *FallbackSource {
	return &FallbackSource{sources: sources}
}

func (f *FallbackSource) Load(ctx context.Context, symbol string) (models.Series, error) {
	var lastErr error
	for _, src := range f.sources {
		if src == nil {
			continue
		}
		series, err := src.Load(ctx, symbol)
		if err == nil {
			return series, nil
		}
		lastErr = err
		if !errors.Is(err, models.ErrSeriesNotFound) {
			return models.Series{}, err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%s: %w", symbol, models.ErrSeriesNotFound)
	}
	return models.Series{}, lastErr
}
