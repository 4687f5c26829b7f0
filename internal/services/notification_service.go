package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/bellcenter/pkg/logger"
	"github.com/charlesng35/bellcenter/pkg/metrics"
)

// NotificationPage is one page of an inbox listing.
type NotificationPage struct {
	Items      []NotificationDTO `json:"items"`
	NextCursor *string           `json:"next_cursor"`
	Stats      NotificationStats `json:"stats"`
}

// BulkReadResult reports how many rows a bulk read transitioned.
type BulkReadResult struct {
	Updated int64 `json:"updated"`
}

// NotificationService exposes the inbox operations of a single caller.
type NotificationService struct {
	store  *NotificationStore
	access UserAccessChecker
	log    *zap.Logger
}

// NewNotificationService constructs a NotificationService. When access is nil the
// users table decides eligibility.
func NewNotificationService(db *gorm.DB, access UserAccessChecker) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	store, err := NewNotificationStore(db)
	if err != nil {
		return nil, err
	}
	if access == nil {
		repo, err := NewUserAccessRepository(db)
		if err != nil {
			return nil, err
		}
		access = repo
	}
	return &NotificationService{
		store:  store,
		access: access,
		log:    logger.WithModule("notifications"),
	}, nil
}

// Store exposes the underlying store for maintenance jobs.
func (s *NotificationService) Store() *NotificationStore {
	return s.store
}

// List returns a page of the caller's inbox with current stats attached.
func (s *NotificationService) List(ctx context.Context, userID string, req ListNotificationsRequest) (page *NotificationPage, err error) {
	defer func() { s.observe("list", err, true) }()
	ctx = ensureContext(ctx)

	query, err := NormalizeListRequest(req)
	if err != nil {
		return nil, err
	}
	userID, err = s.ensureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, next, err := s.store.List(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.log.Debug("listed notifications",
		zap.String("user_id", userID),
		zap.Int("count", len(items)),
		zap.Bool("has_cursor", query.Cursor != nil),
		zap.String("sort", string(query.Sort)),
	)
	return &NotificationPage{Items: items, NextCursor: next, Stats: stats}, nil
}

// Get returns one visible notification, or nil when the caller has none with that id.
func (s *NotificationService) Get(ctx context.Context, userID, notificationID string) (dto *NotificationDTO, err error) {
	defer func() { s.observe("get", err, dto != nil) }()
	ctx = ensureContext(ctx)

	userID, err = s.ensureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}
	id, ok := ParseOpaqueID(notificationID)
	if !ok {
		return nil, nil
	}
	return s.store.Get(ctx, userID, id)
}

// MarkRead sets the read state of a notification. It reports false when the
// caller has no such notification.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string, isRead bool) (found bool, err error) {
	defer func() { s.observe("mark_read", err, found) }()
	ctx = ensureContext(ctx)

	userID, err = s.ensureAccess(ctx, userID)
	if err != nil {
		return false, err
	}
	id, ok := ParseOpaqueID(notificationID)
	if !ok {
		return false, nil
	}
	return s.store.MarkRead(ctx, userID, id, isRead)
}

// BulkRead marks several notifications read and returns how many changed.
func (s *NotificationService) BulkRead(ctx context.Context, userID string, req BulkReadRequest) (result *BulkReadResult, err error) {
	defer func() { s.observe("bulk_read", err, true) }()
	ctx = ensureContext(ctx)

	cmd, err := NormalizeBulkRead(req)
	if err != nil {
		return nil, err
	}
	userID, err = s.ensureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.BulkRead(ctx, userID, cmd)
	if err != nil {
		return nil, err
	}
	metrics.NotificationsMarkedRead.Add(float64(updated))
	s.log.Debug("bulk read notifications",
		zap.String("user_id", userID),
		zap.Bool("all_unread", cmd.AllUnread),
		zap.Int64("updated", updated),
	)
	return &BulkReadResult{Updated: updated}, nil
}

// Hide removes a notification from the caller's inbox. It reports false when
// there was no visible notification to hide.
func (s *NotificationService) Hide(ctx context.Context, userID, notificationID string) (hidden bool, err error) {
	defer func() { s.observe("hide", err, hidden) }()
	ctx = ensureContext(ctx)

	userID, err = s.ensureAccess(ctx, userID)
	if err != nil {
		return false, err
	}
	id, ok := ParseOpaqueID(notificationID)
	if !ok {
		return false, nil
	}
	return s.store.Hide(ctx, userID, id)
}

// Stats returns unread counters for the caller's inbox.
func (s *NotificationService) Stats(ctx context.Context, userID string) (stats *NotificationStats, err error) {
	defer func() { s.observe("stats", err, true) }()
	ctx = ensureContext(ctx)

	userID, err = s.ensureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}
	result, err := s.store.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ensureAccess canonicalises userID and rejects callers without an eligible account.
func (s *NotificationService) ensureAccess(ctx context.Context, userID string) (string, error) {
	id, ok := ParseOpaqueID(userID)
	if !ok {
		return "", &AccessDeniedError{UserID: userID}
	}
	allowed, err := s.access.HasNotificationAccess(ctx, id)
	if err != nil {
		return "", err
	}
	if !allowed {
		s.log.Warn("notification access denied", zap.String("user_id", id))
		return "", &AccessDeniedError{UserID: id}
	}
	return id, nil
}

func (s *NotificationService) observe(operation string, err error, found bool) {
	metrics.NotificationOperations.WithLabelValues(operation, operationResult(err, found)).Inc()
}

func operationResult(err error, found bool) string {
	var (
		validationErr *ValidationError
		deniedErr     *AccessDeniedError
	)
	switch {
	case errors.As(err, &validationErr):
		return "invalid"
	case errors.As(err, &deniedErr):
		return "denied"
	case err != nil:
		return "error"
	case !found:
		return "not_found"
	default:
		return "ok"
	}
}
