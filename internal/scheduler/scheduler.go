package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"CorrScope/internal/usecase"
	applogger "CorrScope/pkg/logger"
)

// Scheduler drives the periodic result refresh.
type Scheduler struct {
	cron      *cron.Cron
	refresher *usecase.Refresher
	ctx       context.Context
	l         *applogger.Logger
}

func New(ctx context.Context, refresher *usecase.Refresher, l *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		ctx:       ctx,
		l:         l,
	}
}

// Register adds the refresh job under the given cron expression.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.cron.AddFunc(refreshCron, func() {
		s.refresher.Run(s.ctx)
	}); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started")
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.l.Info("scheduler stopped")
}
