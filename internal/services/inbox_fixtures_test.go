package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/bellcenter/internal/database/testutil"
	"github.com/charlesng35/bellcenter/internal/models"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type stubAccess struct {
	allowed bool
	err     error
	calls   int
}

func (s *stubAccess) HasNotificationAccess(_ context.Context, _ string) (bool, error) {
	s.calls++
	return s.allowed, s.err
}

type notificationSpec struct {
	title      string
	category   *string
	severity   string
	at         time.Time
	sourceType *string
	sourceID   *string
	payload    string
}

type deliveryOption func(*models.UserNotification)

func asRead(at time.Time) deliveryOption {
	return func(un *models.UserNotification) {
		un.IsRead = true
		un.ReadAt = &at
	}
}

func asHidden() deliveryOption {
	return func(un *models.UserNotification) {
		un.IsHidden = true
	}
}

func openInbox(t *testing.T) (*gorm.DB, *NotificationService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	return db, svc
}

func createUser(t *testing.T, db *gorm.DB, name string) string {
	t.Helper()

	user := models.User{
		BaseModel: models.BaseModel{ID: uuid.NewString()},
		Username:  name,
		Email:     name + "@example.com",
		IsActive:  true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func createNotification(t *testing.T, db *gorm.DB, spec notificationSpec) models.Notification {
	t.Helper()

	n := models.Notification{
		Title:            spec.title,
		Category:         spec.category,
		Severity:         spec.severity,
		CreatedAt:        spec.at,
		SourceEntityType: spec.sourceType,
		SourceEntityID:   spec.sourceID,
	}
	if n.Severity == "" {
		n.Severity = models.SeverityInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = baseTime
	}
	if spec.payload != "" {
		n.Payload = datatypes.JSON(spec.payload)
	}
	require.NoError(t, db.Create(&n).Error)
	return n
}

func deliver(t *testing.T, db *gorm.DB, userID string, n models.Notification, opts ...deliveryOption) models.UserNotification {
	t.Helper()

	un := models.UserNotification{
		UserID:         userID,
		NotificationID: n.ID,
		CreatedAt:      n.CreatedAt,
	}
	for _, opt := range opts {
		opt(&un)
	}
	require.NoError(t, db.Create(&un).Error)
	return un
}

func loadDelivery(t *testing.T, db *gorm.DB, userID, notificationID string) models.UserNotification {
	t.Helper()

	var un models.UserNotification
	require.NoError(t, db.Where("user_id = ? AND notification_id = ?", userID, notificationID).Take(&un).Error)
	return un
}

func ptr[T any](v T) *T {
	return &v
}

func itemIDs(items []NotificationDTO) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
