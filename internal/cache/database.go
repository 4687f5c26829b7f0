package cache

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/bellcenter/internal/models"
)

// DatabaseStore implements Counter using the primary SQL database.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore constructs a database-backed Counter.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

// IncrementWithTTL implements Counter.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s == nil {
		return 0, 0, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if window <= 0 {
		window = time.Minute
	}

	now := s.now().UTC()
	var entry models.RateCounter

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() != "sqlite" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := query.Take(&entry, "rate_key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.RateCounter{Key: key, Count: 1, ExpiresAt: now.Add(window)}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		if !entry.ExpiresAt.After(now) {
			entry.Count = 1
			entry.ExpiresAt = now.Add(window)
		} else {
			entry.Count++
		}
		return tx.Save(&entry).Error
	})
	if err != nil {
		return 0, 0, err
	}

	return entry.Count, entry.ExpiresAt.Sub(now), nil
}

// Purge removes counters whose window has ended.
func (s *DatabaseStore) Purge(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now().UTC()).
		Delete(&models.RateCounter{})
	return result.RowsAffected, result.Error
}
