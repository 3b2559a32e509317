package repository

import (
	"context"

	"CorrScope/internal/domain/models"
	domainrepo "CorrScope/internal/domain/repository"
)

// FredCatalog decorates a metadata store so every series id present in the
// FRED-MD dataset is listed under the fred type, even when the catalog CSV
// only names a subset. CSV entries win so curated names survive.
type FredCatalog struct {
	inner domainrepo.MetadataStore
	fred  *FredMDSource
}

func NewFredCatalog(inner domainrepo.MetadataStore, fred *FredMDSource) *FredCatalog {
	return &FredCatalog{inner: inner, fred: fred}
}

func (c *FredCatalog) List(ctx context.Context, securityType string) ([]models.SecurityMeta, error) {
	list, err := c.inner.List(ctx, securityType)
	if err != nil {
		return nil, err
	}
	if securityType != models.TypeFred || c.fred == nil {
		return list, nil
	}

	ids, err := c.fred.SeriesIDs()
	if err != nil {
		// no local dataset; the curated list still stands
		return list, nil
	}
	known := make(map[string]struct{}, len(list))
	for _, m := range list {
		known[m.Symbol] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; ok {
			continue
		}
		list = append(list, models.SecurityMeta{Symbol: id, Name: id, Type: models.TypeFred})
	}
	return list, nil
}

func (c *FredCatalog) Get(ctx context.Context, symbol string) (models.SecurityMeta, bool) {
	if m, ok := c.inner.Get(ctx, symbol); ok {
		return m, true
	}
	if c.fred != nil {
		if ids, err := c.fred.SeriesIDs(); err == nil {
			for _, id := range ids {
				if id == symbol {
					return models.SecurityMeta{Symbol: id, Name: id, Type: models.TypeFred}, true
				}
			}
		}
	}
	return models.SecurityMeta{}, false
}
