package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/bellcenter/pkg/logger"
	"github.com/charlesng35/bellcenter/pkg/metrics"
)

const (
	defaultGaugeSpec  = "@every 1m"
	defaultPurgeSpec  = "@every 10m"
	defaultJobTimeout = 30 * time.Second
)

// UnreadCounter counts unread, visible notifications across all inboxes.
type UnreadCounter interface {
	CountUnread(ctx context.Context) (int64, error)
}

// CounterPurger removes expired rate limit windows.
type CounterPurger interface {
	Purge(ctx context.Context) (int64, error)
}

// Scheduler runs periodic housekeeping: it refreshes the unread gauge and purges
// expired rate limit counters.
type Scheduler struct {
	unread UnreadCounter
	purger CounterPurger
	cron   *cron.Cron
	log    *zap.Logger

	gaugeSchedule string
	purgeSchedule string
	timeout       time.Duration
}

// Option customises the Scheduler.
type Option func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithGaugeSchedule overrides the cron specification for the unread gauge refresh.
func WithGaugeSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.gaugeSchedule = spec
		}
	}
}

// WithPurgeSchedule overrides the cron specification for rate counter purges.
func WithPurgeSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.purgeSchedule = spec
		}
	}
}

// WithCounterPurger enables purging of database-backed rate counters.
func WithCounterPurger(p CounterPurger) Option {
	return func(s *Scheduler) {
		s.purger = p
	}
}

// NewScheduler constructs a Scheduler. A nil unread counter disables the gauge job.
func NewScheduler(unread UnreadCounter, opts ...Option) *Scheduler {
	s := &Scheduler{
		unread:        unread,
		gaugeSchedule: defaultGaugeSpec,
		purgeSchedule: defaultPurgeSpec,
		timeout:       defaultJobTimeout,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers the enabled jobs and launches the scheduler.
func (s *Scheduler) Start() error {
	if s.unread == nil && s.purger == nil {
		return nil
	}

	if s.unread != nil {
		if _, err := s.cron.AddFunc(s.gaugeSchedule, s.runJob("unread gauge", s.refreshUnread)); err != nil {
			return fmt.Errorf("maintenance: schedule unread gauge: %w", err)
		}
	}

	if s.purger != nil {
		if _, err := s.cron.AddFunc(s.purgeSchedule, s.runJob("rate counter purge", s.purgeCounters)); err != nil {
			return fmt.Errorf("maintenance: schedule rate counter purge: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes every enabled job sequentially and aggregates their errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if s.unread != nil {
		errs = multierr.Append(errs, s.refreshUnread(ctx))
	}
	if s.purger != nil {
		errs = multierr.Append(errs, s.purgeCounters(ctx))
	}
	return errs
}

func (s *Scheduler) runJob(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := job(ctx); err != nil {
			s.log.Warn(name+" failed", zap.Error(err))
		}
	}
}

func (s *Scheduler) refreshUnread(ctx context.Context) error {
	total, err := s.unread.CountUnread(ctx)
	if err != nil {
		return err
	}
	metrics.UnreadNotifications.Set(float64(total))
	return nil
}

func (s *Scheduler) purgeCounters(ctx context.Context) error {
	removed, err := s.purger.Purge(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.log.Debug("purged expired rate counters", zap.Int64("removed", removed))
	}
	return nil
}
