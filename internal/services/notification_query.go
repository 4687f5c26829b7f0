package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/charlesng35/bellcenter/internal/models"
	"github.com/charlesng35/bellcenter/internal/pagination"
)

// SortOrder selects the listing direction.
type SortOrder string

const (
	SortCreatedAtDesc SortOrder = "created_at_desc"
	SortCreatedAtAsc  SortOrder = "created_at_asc"
)

func (s SortOrder) direction() pagination.Direction {
	if s == SortCreatedAtAsc {
		return pagination.Ascending
	}
	return pagination.Descending
}

const (
	msgCursorInvalid   = "Cursor must be a valid UUID."
	msgSourceIDInvalid = "Source entity id must be a valid UUID."
	msgLimitRange      = "Limit must be between 1 and 100."
	msgSeverityInvalid = "Severity must be one of info, warning, or critical."
	msgSortInvalid     = "Sort must be created_at_desc or created_at_asc."
	msgIDsRequired     = "Provide at least one notification id or set all_unread to true."
	msgIDsInvalid      = "Notification ids must be valid UUIDs."
	msgModesExclusive  = "Provide either notification ids or all_unread, not both."
	msgFiltersScope    = "Filters are only supported together with all_unread."
)

// ParseOpaqueID validates an externally supplied identifier and returns its
// canonical form. It is the only place identifiers are parsed.
func ParseOpaqueID(raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ParseSeverity matches raw case-insensitively against the known severities.
func ParseSeverity(raw string) (string, bool) {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case models.SeverityInfo, models.SeverityWarning, models.SeverityCritical:
		return value, true
	default:
		return "", false
	}
}

// ListNotificationsRequest carries the raw list parameters supplied by a caller.
type ListNotificationsRequest struct {
	Cursor           string
	Limit            *int
	UnreadOnly       *bool
	Severity         string
	Category         string
	From             *time.Time
	To               *time.Time
	SourceEntityType string
	SourceEntityID   string
	Sort             string
}

// NotificationListQuery is a validated list request.
type NotificationListQuery struct {
	Cursor           *string
	Limit            int
	UnreadOnly       bool
	Severity         *string
	Category         *string
	From             *time.Time
	To               *time.Time
	SourceEntityType *string
	SourceEntityID   *string
	Sort             SortOrder
}

// NormalizeListRequest validates req, stopping at the first violation.
func NormalizeListRequest(req ListNotificationsRequest) (NotificationListQuery, error) {
	query := NotificationListQuery{
		Limit:            pagination.DefaultLimit,
		UnreadOnly:       req.UnreadOnly != nil && *req.UnreadOnly,
		Category:         optionalString(req.Category),
		From:             utcTime(req.From),
		To:               utcTime(req.To),
		SourceEntityType: optionalString(req.SourceEntityType),
		Sort:             SortCreatedAtDesc,
	}

	if raw := strings.TrimSpace(req.Cursor); raw != "" {
		cursor, ok := ParseOpaqueID(raw)
		if !ok {
			return NotificationListQuery{}, newValidationError("cursor", msgCursorInvalid)
		}
		query.Cursor = &cursor
	}

	if raw := strings.TrimSpace(req.SourceEntityID); raw != "" {
		sourceID, ok := ParseOpaqueID(raw)
		if !ok {
			return NotificationListQuery{}, newValidationError("source_entity_id", msgSourceIDInvalid)
		}
		query.SourceEntityID = &sourceID
	}

	if req.Limit != nil {
		if *req.Limit < pagination.MinLimit || *req.Limit > pagination.MaxLimit {
			return NotificationListQuery{}, newValidationError("limit", msgLimitRange)
		}
		query.Limit = *req.Limit
	}

	if strings.TrimSpace(req.Severity) != "" {
		severity, ok := ParseSeverity(req.Severity)
		if !ok {
			return NotificationListQuery{}, newValidationError("severity", msgSeverityInvalid)
		}
		query.Severity = &severity
	}

	if raw := strings.TrimSpace(req.Sort); raw != "" {
		switch SortOrder(strings.ToLower(raw)) {
		case SortCreatedAtDesc:
			query.Sort = SortCreatedAtDesc
		case SortCreatedAtAsc:
			query.Sort = SortCreatedAtAsc
		default:
			return NotificationListQuery{}, newValidationError("sort", msgSortInvalid)
		}
	}

	return query, nil
}

// BulkReadFilters narrows an all-unread bulk read.
type BulkReadFilters struct {
	Category string     `json:"category"`
	Severity string     `json:"severity"`
	From     *time.Time `json:"from"`
	To       *time.Time `json:"to"`
}

// BulkReadRequest is the raw bulk read body.
type BulkReadRequest struct {
	IDs       []string         `json:"ids" validate:"omitempty,max=1000"`
	AllUnread bool             `json:"all_unread"`
	Filters   *BulkReadFilters `json:"filters"`
}

// BulkReadCommand is a validated bulk read. Exactly one of IDs or AllUnread is set.
type BulkReadCommand struct {
	IDs       []string
	AllUnread bool
	Category  *string
	Severity  *string
	From      *time.Time
	To        *time.Time
}

// NormalizeBulkRead validates req, stopping at the first violation.
func NormalizeBulkRead(req BulkReadRequest) (BulkReadCommand, error) {
	switch {
	case !req.AllUnread && len(req.IDs) == 0:
		return BulkReadCommand{}, newValidationError("ids", msgIDsRequired)
	case req.AllUnread && len(req.IDs) > 0:
		return BulkReadCommand{}, newValidationError("ids", msgModesExclusive)
	case !req.AllUnread && req.Filters != nil:
		return BulkReadCommand{}, newValidationError("filters", msgFiltersScope)
	}

	if !req.AllUnread {
		ids, err := normaliseIDs(req.IDs)
		if err != nil {
			return BulkReadCommand{}, err
		}
		return BulkReadCommand{IDs: ids}, nil
	}

	cmd := BulkReadCommand{AllUnread: true}
	if f := req.Filters; f != nil {
		cmd.Category = optionalString(f.Category)
		cmd.From = utcTime(f.From)
		cmd.To = utcTime(f.To)
		if strings.TrimSpace(f.Severity) != "" {
			severity, ok := ParseSeverity(f.Severity)
			if !ok {
				return BulkReadCommand{}, newValidationError("filters.severity", msgSeverityInvalid)
			}
			cmd.Severity = &severity
		}
	}
	return cmd, nil
}

// normaliseIDs parses, de-duplicates and drops nil identifiers, keeping input order.
func normaliseIDs(values []string) ([]string, error) {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		id, ok := ParseOpaqueID(value)
		if !ok {
			return nil, newValidationError("ids", msgIDsInvalid)
		}
		if id == uuid.Nil.String() {
			continue
		}
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, newValidationError("ids", msgIDsRequired)
	}
	return out, nil
}

func utcTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}
