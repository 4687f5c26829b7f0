package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserNotification is the per-recipient delivery record of a Notification. Its ID
// doubles as the pagination cursor.
type UserNotification struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	UserID         string     `gorm:"size:36;not null;uniqueIndex:idx_user_notifications_user_notification,priority:1;index:idx_user_notifications_inbox,priority:1" json:"user_id"`
	NotificationID string     `gorm:"size:36;not null;uniqueIndex:idx_user_notifications_user_notification,priority:2;index" json:"notification_id"`
	IsRead         bool       `gorm:"not null;default:false;index:idx_user_notifications_inbox,priority:3" json:"is_read"`
	ReadAt         *time.Time `json:"read_at"`
	IsHidden       bool       `gorm:"not null;default:false;index:idx_user_notifications_inbox,priority:2" json:"is_hidden"`
	CreatedAt      time.Time  `json:"created_at"`

	Notification *Notification `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *UserNotification) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
