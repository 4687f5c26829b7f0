package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/bellcenter/internal/models"
	"github.com/charlesng35/bellcenter/internal/pagination"
)

// NotificationSource references the entity a notification is about.
type NotificationSource struct {
	Type *string `json:"type"`
	ID   *string `json:"id"`
}

// NotificationDTO is the API representation of one inbox entry.
type NotificationDTO struct {
	UserNotificationID string              `json:"-"`
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Message            *string             `json:"message"`
	Category           *string             `json:"category"`
	Type               *string             `json:"type"`
	Severity           string              `json:"severity"`
	CreatedAt          time.Time           `json:"created_at"`
	IsRead             bool                `json:"is_read"`
	OpenURL            *string             `json:"open_url"`
	Source             *NotificationSource `json:"source"`
	Payload            any                 `json:"payload"`
}

const notificationColumns = "un.id AS user_notification_id, n.id, n.title, n.message, n.category, n.type, " +
	"n.severity, n.created_at, un.is_read, n.open_url, n.source_entity_type, n.source_entity_id, n.payload"

var inboxKeyset = pagination.Keyset{Primary: "n.created_at", TieBreaker: "un.id"}

type notificationRow struct {
	UserNotificationID string
	ID                 string
	Title              string
	Message            *string
	Category           *string
	Type               *string
	Severity           string
	CreatedAt          time.Time
	IsRead             bool
	OpenURL            *string
	SourceEntityType   *string
	SourceEntityID     *string
	Payload            datatypes.JSON
}

// NotificationStore reads and mutates a single user's inbox rows.
type NotificationStore struct {
	db *gorm.DB
}

// NewNotificationStore constructs a NotificationStore.
func NewNotificationStore(db *gorm.DB) (*NotificationStore, error) {
	if db == nil {
		return nil, errors.New("notification store: db is required")
	}
	return &NotificationStore{db: db}, nil
}

// visible scopes a query to the user's non-hidden inbox rows joined to their notification.
func (s *NotificationStore) visible(ctx context.Context, userID string) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("user_notifications AS un").
		Joins("JOIN notifications n ON n.id = un.notification_id").
		Where("un.user_id = ? AND un.is_hidden = ?", userID, false)
}

// List returns one page of the inbox and the cursor continuing it.
func (s *NotificationStore) List(ctx context.Context, userID string, query NotificationListQuery) ([]NotificationDTO, *string, error) {
	ctx = ensureContext(ctx)

	var after *pagination.Position
	if query.Cursor != nil {
		pos, err := s.resolveCursor(ctx, userID, *query.Cursor)
		if err != nil {
			return nil, nil, err
		}
		after = pos
	}

	keyset := inboxKeyset
	keyset.Direction = query.Sort.direction()

	var rows []notificationRow
	tx := listPredicates(query).Apply(s.visible(ctx, userID)).Select(notificationColumns)
	if err := keyset.Page(tx, after, query.Limit).Scan(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("notification store: list notifications: %w", err)
	}

	items := mapNotificationRows(rows)
	next := pagination.NextCursor(items, func(item NotificationDTO) string {
		return item.UserNotificationID
	})
	return items, next, nil
}

// resolveCursor finds the keyset position of a previously delivered row. A
// cursor that no longer names a visible row of this user yields no bound.
func (s *NotificationStore) resolveCursor(ctx context.Context, userID, cursor string) (*pagination.Position, error) {
	var found []struct {
		CreatedAt time.Time
	}
	if err := s.visible(ctx, userID).
		Where("un.id = ?", cursor).
		Select("n.created_at").
		Limit(1).
		Scan(&found).Error; err != nil {
		return nil, fmt.Errorf("notification store: resolve cursor: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &pagination.Position{Primary: found[0].CreatedAt, TieBreaker: cursor}, nil
}

func listPredicates(query NotificationListQuery) *pagination.Predicates {
	var p pagination.Predicates
	p.AddIf(query.UnreadOnly, "un.is_read = ?", false)
	if query.Severity != nil {
		p.Add("n.severity = ?", *query.Severity)
	}
	if query.Category != nil {
		p.Add("n.category = ?", *query.Category)
	}
	if query.From != nil {
		p.Add("n.created_at >= ?", *query.From)
	}
	if query.To != nil {
		p.Add("n.created_at <= ?", *query.To)
	}
	if query.SourceEntityType != nil {
		p.Add("n.source_entity_type = ?", *query.SourceEntityType)
	}
	if query.SourceEntityID != nil {
		p.Add("n.source_entity_id = ?", *query.SourceEntityID)
	}
	return &p
}

// Get returns a visible notification, or nil when the user has none with that id.
func (s *NotificationStore) Get(ctx context.Context, userID, notificationID string) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)

	var rows []notificationRow
	if err := s.visible(ctx, userID).
		Where("n.id = ?", notificationID).
		Select(notificationColumns).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification store: get notification: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	dto := mapNotificationRow(rows[0])
	return &dto, nil
}

// MarkRead sets or clears the read state. Marking read keeps the first read time.
// It reports false when the user has no such notification.
func (s *NotificationStore) MarkRead(ctx context.Context, userID, notificationID string, isRead bool) (bool, error) {
	ctx = ensureContext(ctx)

	updates := map[string]any{
		"is_read": false,
		"read_at": nil,
	}
	if isRead {
		updates = map[string]any{
			"is_read": true,
			"read_at": gorm.Expr("COALESCE(read_at, ?)", time.Now().UTC()),
		}
	}

	result := s.db.WithContext(ctx).
		Model(&models.UserNotification{}).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("notification store: mark read: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// BulkRead marks unread rows as read and returns how many rows transitioned.
func (s *NotificationStore) BulkRead(ctx context.Context, userID string, cmd BulkReadCommand) (int64, error) {
	ctx = ensureContext(ctx)

	tx := s.db.WithContext(ctx).
		Model(&models.UserNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false)

	if cmd.AllUnread {
		var p pagination.Predicates
		if cmd.Category != nil {
			p.Add("category = ?", *cmd.Category)
		}
		if cmd.Severity != nil {
			p.Add("severity = ?", *cmd.Severity)
		}
		if cmd.From != nil {
			p.Add("created_at >= ?", *cmd.From)
		}
		if cmd.To != nil {
			p.Add("created_at <= ?", *cmd.To)
		}
		tx = tx.Where("is_hidden = ?", false)
		if p.Len() > 0 {
			matching := p.Apply(s.db.WithContext(ctx).Model(&models.Notification{}).Select("id"))
			tx = tx.Where("notification_id IN (?)", matching)
		}
	} else {
		if len(cmd.IDs) == 0 {
			return 0, nil
		}
		tx = tx.Where("notification_id IN ?", cmd.IDs)
	}

	result := tx.Updates(map[string]any{
		"is_read": true,
		"read_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return 0, fmt.Errorf("notification store: bulk read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Hide removes a notification from every read path of the user. Hiding is one-way.
func (s *NotificationStore) Hide(ctx context.Context, userID, notificationID string) (bool, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.UserNotification{}).
		Where("user_id = ? AND notification_id = ? AND is_hidden = ?", userID, notificationID, false).
		Update("is_hidden", true)
	if result.Error != nil {
		return false, fmt.Errorf("notification store: hide: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Stats counts the user's unread visible rows overall, by category and by severity.
func (s *NotificationStore) Stats(ctx context.Context, userID string) (NotificationStats, error) {
	ctx = ensureContext(ctx)
	stats := newNotificationStats()

	unread := func() *gorm.DB {
		return s.visible(ctx, userID).Where("un.is_read = ?", false)
	}

	var total int64
	if err := unread().Count(&total).Error; err != nil {
		return stats, fmt.Errorf("notification store: count unread: %w", err)
	}
	stats.UnreadTotal = int(total)

	var categories []labelBucket
	if err := unread().
		Select("n.category AS label, COUNT(*) AS total").
		Group("n.category").
		Scan(&categories).Error; err != nil {
		return stats, fmt.Errorf("notification store: count by category: %w", err)
	}
	stats.ByCategory.addBuckets(categories)

	var severities []labelBucket
	if err := unread().
		Select("n.severity AS label, COUNT(*) AS total").
		Group("n.severity").
		Scan(&severities).Error; err != nil {
		return stats, fmt.Errorf("notification store: count by severity: %w", err)
	}
	stats.BySeverity.addBuckets(severities)

	return stats, nil
}

// CountUnread counts unread visible rows across every inbox.
func (s *NotificationStore) CountUnread(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.UserNotification{}).
		Where("is_read = ? AND is_hidden = ?", false, false).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("notification store: count unread: %w", err)
	}
	return total, nil
}

func mapNotificationRows(rows []notificationRow) []NotificationDTO {
	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotificationRow(row))
	}
	return items
}

func mapNotificationRow(row notificationRow) NotificationDTO {
	dto := NotificationDTO{
		UserNotificationID: row.UserNotificationID,
		ID:                 row.ID,
		Title:              row.Title,
		Message:            row.Message,
		Category:           row.Category,
		Type:               row.Type,
		Severity:           row.Severity,
		CreatedAt:          row.CreatedAt.UTC(),
		IsRead:             row.IsRead,
		OpenURL:            row.OpenURL,
		Payload:            decodeJSON(row.Payload),
	}
	if row.SourceEntityType != nil || row.SourceEntityID != nil {
		dto.Source = &NotificationSource{Type: row.SourceEntityType, ID: row.SourceEntityID}
	}
	return dto
}
