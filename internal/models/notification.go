package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification severities understood by the inbox.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Notification is a single authored message. It is fanned out to users through
// UserNotification rows and never modified afterwards.
type Notification struct {
	ID               string         `gorm:"primaryKey;size:36;index:idx_notifications_created_id,priority:2" json:"id"`
	Title            string         `gorm:"type:varchar(255);not null" json:"title"`
	Message          *string        `gorm:"type:text" json:"message"`
	Category         *string        `gorm:"type:varchar(64);index" json:"category"`
	Type             *string        `gorm:"type:varchar(64)" json:"type"`
	Severity         string         `gorm:"type:varchar(16);not null;default:'info'" json:"severity"`
	OpenURL          *string        `gorm:"type:text" json:"open_url"`
	SourceEntityType *string        `gorm:"type:varchar(64);index:idx_notifications_source,priority:1" json:"source_entity_type"`
	SourceEntityID   *string        `gorm:"size:36;index:idx_notifications_source,priority:2" json:"source_entity_id"`
	Payload          datatypes.JSON `json:"payload"`
	CreatedAt        time.Time      `gorm:"not null;index:idx_notifications_created_id,priority:1" json:"created_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
