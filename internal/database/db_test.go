package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/bellcenter/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
	require.NoError(t, Ping(context.Background(), db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestAutoMigrateAndSeedDemoData(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrateAndSeed(db, true))
	// seeding twice keeps a single demo inbox
	require.NoError(t, AutoMigrateAndSeed(db, true))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.EqualValues(t, 1, users)

	var deliveries int64
	require.NoError(t, db.Model(&models.UserNotification{}).Where("user_id = ?", DemoUserID).Count(&deliveries).Error)
	require.EqualValues(t, 3, deliveries)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", DSN: MemoryDSN(t.Name())})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	t.Cleanup(func() {
		_ = Close(db)
	})

	return db
}
