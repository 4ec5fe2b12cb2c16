// Package scheduler drives periodic subscriber cycles.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"job-alert-bot/internal/engine"
	"job-alert-bot/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTickInterval = time.Minute
	DefaultCycleTimeout = 5 * time.Minute
	DefaultConcurrency  = 4
	DefaultRetention    = 30 * 24 * time.Hour
	DefaultStartDelay   = 5 * time.Second
)

type Store interface {
	ListAll(ctx context.Context) ([]models.Subscriber, error)
	PurgeOlderThan(ctx context.Context, ts int64) (int64, error)
}

type Runner interface {
	RunCycle(ctx context.Context, sub models.Subscriber, forced bool) (engine.Result, error)
}

type Config struct {
	TickInterval time.Duration
	CycleTimeout time.Duration
	Concurrency  int
	Retention    time.Duration
	StartDelay   time.Duration
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.CycleTimeout <= 0 {
		c.CycleTimeout = DefaultCycleTimeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	if c.StartDelay < 0 {
		c.StartDelay = 0
	}
	return c
}

type State int32

const (
	StateIdle State = iota
	StateTicking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTicking:
		return "ticking"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type Scheduler struct {
	cron   *cron.Cron
	store  Store
	runner Runner
	cfg    Config
	logger *zap.Logger
	state  atomic.Int32
	now    func() time.Time
}

func New(store Store, runner Runner, cfg Config, logger *zap.Logger) *Scheduler {
	cronLog := cronLogger{logger: logger.Named("cron")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		store:  store,
		runner: runner,
		cfg:    cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the tick job and starts the cron runner. The first tick
// fires after StartDelay, later ones every TickInterval.
func (s *Scheduler) Start(ctx context.Context) {
	schedule := &firstRunSchedule{
		base:  cron.Every(s.cfg.TickInterval),
		first: s.now().Add(s.cfg.StartDelay),
	}
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.Tick(ctx)
	}))
	s.cron.Start()

	s.logger.Info("scheduler started",
		zap.Duration("tick_interval", s.cfg.TickInterval),
		zap.Duration("start_delay", s.cfg.StartDelay),
		zap.Int("concurrency", s.cfg.Concurrency),
	)
}

// Stop stops scheduling new ticks and waits for a running one to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Tick purges expired deliveries and runs a scheduled cycle for every
// subscriber. A tick that starts while another is running returns at once.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateTicking)) {
		s.logger.Debug("tick already running, skipping")
		return
	}
	defer s.state.Store(int32(StateIdle))

	started := s.now()

	cutoff := started.Add(-s.cfg.Retention).Unix()
	purged, err := s.store.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to purge old deliveries", zap.Error(err))
	} else if purged > 0 {
		s.logger.Info("purged old deliveries", zap.Int64("count", purged))
	}

	subs, err := s.store.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list subscribers", zap.Error(err))
		return
	}

	if len(subs) == 0 {
		s.logger.Debug("no subscribers")
		return
	}

	var ran, skipped, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			res, err := s.runCycle(ctx, sub)
			switch {
			case err != nil:
				failed.Add(1)
			case res.Skipped:
				skipped.Add(1)
			default:
				ran.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug("tick finished",
		zap.Int("subscribers", len(subs)),
		zap.Int64("ran", ran.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Duration("duration", s.now().Sub(started)),
	)
}

func (s *Scheduler) runCycle(ctx context.Context, sub models.Subscriber) (res engine.Result, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CycleTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
			s.logger.Error("panic in subscriber cycle",
				zap.Int64("user_id", sub.ID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	res, err = s.runner.RunCycle(ctx, sub, false)
	if err != nil {
		s.logger.Error("subscriber cycle failed",
			zap.Int64("user_id", sub.ID),
			zap.Error(err),
		)
	}
	return res, err
}

// firstRunSchedule overrides the first activation of a base schedule.
type firstRunSchedule struct {
	base  cron.Schedule
	first time.Time
}

func (s *firstRunSchedule) Next(t time.Time) time.Time {
	if t.Before(s.first) {
		return s.first
	}
	return s.base.Next(t)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
