package usecase

import (
	"context"
	"time"

	applogger "CorrScope/pkg/logger"
)

// Refresher recomputes every correlation set served since startup so
// persisted entries track newly arrived observations. Wired into the cron
// scheduler.
type Refresher struct {
	uc      *CorrelationsUseCase
	timeout time.Duration
	l       *applogger.Logger
}

func NewRefresher(uc *CorrelationsUseCase, l *applogger.Logger) *Refresher {
	return &Refresher{uc: uc, timeout: 10 * time.Minute, l: l}
}

// Run recomputes all tracked entries sequentially. Failures are logged and
// do not stop the sweep.
func (r *Refresher) Run(ctx context.Context) {
	entries := r.uc.RecentEntries()
	if len(entries) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.l.Info("refresh sweep started", applogger.Int("entries", len(entries)))
	refreshed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.uc.GetCorrelations(ctx, e.Symbol, e.Params, true, TriggerRefresh); err != nil {
			r.l.Warn("refresh entry failed",
				applogger.String("symbol", e.Symbol),
				applogger.Error(err),
			)
			continue
		}
		refreshed++
	}
	r.l.Info("refresh sweep finished", applogger.Int("refreshed", refreshed))
}
