package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reconciler prunes profiles that are no longer tracked.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// Scheduler runs the reconciliation pass on a cron schedule.
type Scheduler struct {
	rec  Reconciler
	log  *zap.Logger
	spec string
	cron *cron.Cron
}

// New validates spec ("@every 1h", "0 * * * *", ...) and returns a Scheduler.
func New(rec Reconciler, log *zap.Logger, spec string) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("reconcile schedule %q: %w", spec, err)
	}
	return &Scheduler{
		rec:  rec,
		log:  log,
		spec: spec,
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// Run starts the schedule and blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.tick(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("reconcile", s.spec))

	<-ctx.Done()
	s.log.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	return nil
}

// tick performs one reconciliation pass.
func (s *Scheduler) tick(ctx context.Context) {
	removed, err := s.rec.Reconcile(ctx)
	if err != nil {
		s.log.Error("reconcile failed", zap.Error(err))
		return
	}
	s.log.Debug("reconcile done", zap.Int("removed", removed))
}
