package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/bellcenter/internal/database/testutil"
)

func TestDatabaseStoreIncrementWithTTL(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := NewDatabaseStore(db)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	count, ttl, err := store.IncrementWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, time.Minute, ttl)

	now = now.Add(20 * time.Second)
	count, ttl, err = store.IncrementWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.Equal(t, 40*time.Second, ttl)

	now = now.Add(time.Minute)
	count, _, err = store.IncrementWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestDatabaseStorePurge(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := NewDatabaseStore(db)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, _, err := store.IncrementWithTTL(ctx, "old", time.Second)
	require.NoError(t, err)
	_, _, err = store.IncrementWithTTL(ctx, "fresh", time.Hour)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	removed, err := store.Purge(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestNewDatabaseStoreNil(t *testing.T) {
	require.Nil(t, NewDatabaseStore(nil))
}
