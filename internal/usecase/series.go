package usecase

import (
	"context"
	"sort"
	"strings"

	"CorrScope/internal/domain/models"
	"CorrScope/internal/services/timeseries"
)

// GetSeries returns one symbol's series. Raw skips the preprocessing
// pipeline so the dashboard can chart original levels.
func (uc *CorrelationsUseCase) GetSeries(ctx context.Context, symbol string, params models.FilterParams, raw bool) (models.Series, error) {
	params = params.Normalize()
	s, err := uc.loadSeries(ctx, symbol, uc.typeOf(ctx, symbol), params)
	if err != nil {
		return models.Series{}, err
	}
	if raw {
		return s, nil
	}
	return timeseries.Preprocess(s, params), nil
}

// ListSymbols returns catalog entries of one security type, optionally
// filtered by symbol prefix, capped at limit.
func (uc *CorrelationsUseCase) ListSymbols(ctx context.Context, securityType, prefix string, limit int) ([]models.SecurityMeta, error) {
	list, err := uc.meta.List(ctx, securityType)
	if err != nil {
		return nil, err
	}
	prefix = strings.ToUpper(strings.TrimSpace(prefix))

	out := make([]models.SecurityMeta, 0, limit)
	for _, m := range list {
		if prefix != "" && !strings.HasPrefix(m.Symbol, prefix) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
