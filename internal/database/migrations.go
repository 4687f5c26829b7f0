package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/bellcenter/internal/models"
)

// DemoUserID identifies the account created by SeedDemoData.
const DemoUserID = "00000000-0000-4000-8000-000000000001"

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Notification{},
		&models.UserNotification{},
		&models.RateCounter{},
	)
}

// AutoMigrateAndSeed convenience helper used during application start-up.
func AutoMigrateAndSeed(db *gorm.DB, seedDemo bool) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if !seedDemo {
		return nil
	}
	if err := SeedDemoData(db); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}
	return nil
}

// SeedDemoData creates a demo account with a small inbox. It is a no-op once the
// demo account exists.
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Unscoped().Model(&models.User{}).Where("id = ?", DemoUserID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			BaseModel: models.BaseModel{ID: DemoUserID},
			Username:  "demo",
			Email:     "demo@bellcenter.local",
			IsActive:  true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		now := time.Now().UTC().Truncate(time.Second)
		seeds := []models.Notification{
			{Title: "Welcome to Bell Center", Category: strPtr("system"), Severity: models.SeverityInfo},
			{Title: "Disk usage above 80%", Category: strPtr("infrastructure"), Severity: models.SeverityWarning,
				Payload: datatypes.JSON(`{"host":"db-01","usage":0.83}`)},
			{Title: "Backup job failed", Category: strPtr("infrastructure"), Severity: models.SeverityCritical,
				Message: strPtr("The nightly backup did not complete.")},
		}
		for i := range seeds {
			seeds[i].CreatedAt = now.Add(time.Duration(i-len(seeds)) * time.Minute)
			if err := tx.Create(&seeds[i]).Error; err != nil {
				return err
			}
			delivery := models.UserNotification{
				UserID:         user.ID,
				NotificationID: seeds[i].ID,
				CreatedAt:      seeds[i].CreatedAt,
			}
			if err := tx.Create(&delivery).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func strPtr(value string) *string {
	return &value
}
