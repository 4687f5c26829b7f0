package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/bellcenter/internal/models"
)

// UserAccessChecker decides whether a user may use the notification inbox.
type UserAccessChecker interface {
	HasNotificationAccess(ctx context.Context, userID string) (bool, error)
}

// UserAccessRepository grants inbox access to existing, active, non-deleted users.
type UserAccessRepository struct {
	db *gorm.DB
}

// NewUserAccessRepository constructs a UserAccessRepository.
func NewUserAccessRepository(db *gorm.DB) (*UserAccessRepository, error) {
	if db == nil {
		return nil, errors.New("user access: db is required")
	}
	return &UserAccessRepository{db: db}, nil
}

// HasNotificationAccess implements UserAccessChecker.
func (r *UserAccessRepository) HasNotificationAccess(ctx context.Context, userID string) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_active = ?", userID, true).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("user access: lookup user: %w", err)
	}
	return count > 0, nil
}
