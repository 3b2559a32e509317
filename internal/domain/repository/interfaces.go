package repository

import (
	"context"
	"time"

	"CorrScope/internal/domain/models"
)

// SeriesSource provides raw time series for symbols. Implementations return
// models.ErrSeriesNotFound when no data file or row exists for the symbol.
type SeriesSource interface {
	Load(ctx context.Context, symbol string) (models.Series, error)
}

// MetadataStore provides access to the security catalog.
type MetadataStore interface {
	// List returns metadata for all securities of the given type.
	List(ctx context.Context, securityType string) ([]models.SecurityMeta, error)
	// Get returns metadata for one symbol, ok=false when unknown.
	Get(ctx context.Context, symbol string) (models.SecurityMeta, bool)
}

// ResultStore persists computed correlation sets keyed by (symbol, params).
type ResultStore interface {
	Get(ctx context.Context, symbol string, params models.FilterParams) (*models.CorrelationResult, error)
	Put(ctx context.Context, res *models.CorrelationResult) error
}

// EventPublisher announces completed computations to downstream consumers.
type EventPublisher interface {
	PublishResultComputed(ctx context.Context, res *models.CorrelationResult, runID string) error
	Close() error
}

// RunRecorder keeps an audit trail of computation runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run ComputeRun) error
	Close() error
}

// ComputeRun is one recorded correlation computation.
type ComputeRun struct {
	ID         string
	Symbol     string
	ParamsKey  string
	Trigger    string // "request", "reload", "refresh"
	Candidates int
	Skipped    int
	Duration   time.Duration
	StartedAt  time.Time
	Err        string
}

// Metrics records operational measurements.
type Metrics interface {
	RecordComputation(symbol, trigger string, seconds float64)
	RecordCache(store, outcome string)
	RecordSkip(reason string)
	RecordError(kind string)
}
