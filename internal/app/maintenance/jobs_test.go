package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/bellcenter/internal/cache"
	dbtestutil "github.com/charlesng35/bellcenter/internal/database/testutil"
	"github.com/charlesng35/bellcenter/internal/models"
	"github.com/charlesng35/bellcenter/internal/services"
	"github.com/charlesng35/bellcenter/pkg/metrics"
)

type stubCounter struct {
	total int64
	err   error
}

func (s stubCounter) CountUnread(context.Context) (int64, error) {
	return s.total, s.err
}

type stubPurger struct {
	calls int
	err   error
}

func (s *stubPurger) Purge(context.Context) (int64, error) {
	s.calls++
	return 1, s.err
}

func TestRunOnceRefreshesUnreadGauge(t *testing.T) {
	s := NewScheduler(stubCounter{total: 7})

	require.NoError(t, s.RunOnce(context.Background()))
	require.Equal(t, float64(7), testutil.ToFloat64(metrics.UnreadNotifications))
}

func TestRunOnceAggregatesErrors(t *testing.T) {
	purger := &stubPurger{err: errors.New("purge failed")}
	s := NewScheduler(stubCounter{err: errors.New("count failed")}, WithCounterPurger(purger))

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	require.ErrorContains(t, err, "count failed")
	require.ErrorContains(t, err, "purge failed")
	require.Equal(t, 1, purger.calls)
}

func TestRunOnceAgainstDatabase(t *testing.T) {
	db := dbtestutil.MustOpenTestDB(t, dbtestutil.WithSeedData())

	store, err := services.NewNotificationStore(db)
	require.NoError(t, err)

	counters := cache.NewDatabaseStore(db)
	require.NoError(t, db.Create(&models.RateCounter{
		Key:       "rl:stale",
		Count:     3,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}).Error)

	s := NewScheduler(store, WithCounterPurger(counters))
	require.NoError(t, s.RunOnce(context.Background()))

	require.Equal(t, float64(3), testutil.ToFloat64(metrics.UnreadNotifications))

	var remaining int64
	require.NoError(t, db.Model(&models.RateCounter{}).Count(&remaining).Error)
	require.Zero(t, remaining)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(stubCounter{}, WithGaugeSchedule("not a schedule"),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))))

	require.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(stubCounter{total: 1}, WithCounterPurger(&stubPurger{}))

	require.NoError(t, s.Start())
	<-s.Stop().Done()
}

func TestStartWithoutJobsIsNoop(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.Start())
	<-s.Stop().Done()
}
