package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/bellcenter/internal/middleware"
	"github.com/charlesng35/bellcenter/internal/services"
	"github.com/charlesng35/bellcenter/pkg/errors"
	"github.com/charlesng35/bellcenter/pkg/response"
)

// NotificationHandler exposes HTTP endpoints for the notification inbox.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type listNotificationsQuery struct {
	Cursor           string     `form:"cursor"`
	Limit            *int       `form:"limit"`
	UnreadOnly       *bool      `form:"unread_only"`
	Severity         string     `form:"severity"`
	Category         string     `form:"category"`
	From             *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To               *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	SourceEntityType string     `form:"source_entity_type"`
	SourceEntityID   string     `form:"source_entity_id"`
	Sort             string     `form:"sort"`
}

type markReadPayload struct {
	IsRead *bool `json:"is_read" validate:"required"`
}

// List returns one page of the caller's inbox with stats attached.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var query listNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, errors.NewBadRequest("invalid query parameters"))
		return
	}

	page, err := h.service.List(requestContext(c), userID, services.ListNotificationsRequest{
		Cursor:           query.Cursor,
		Limit:            query.Limit,
		UnreadOnly:       query.UnreadOnly,
		Severity:         query.Severity,
		Category:         query.Category,
		From:             query.From,
		To:               query.To,
		SourceEntityType: query.SourceEntityType,
		SourceEntityID:   query.SourceEntityID,
		Sort:             query.Sort,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}

// Stats returns unread counters for the caller.
func (h *NotificationHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// Get returns a single notification.
func (h *NotificationHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := notificationIDParam(c)
	if !ok {
		return
	}

	dto, err := h.service.Get(requestContext(c), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if dto == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// MarkRead sets or clears the read flag of one notification.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := notificationIDParam(c)
	if !ok {
		return
	}

	var payload markReadPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	found, err := h.service.MarkRead(requestContext(c), userID, id, *payload.IsRead)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, errors.ErrNotFound)
		return
	}

	response.NoContent(c)
}

// BulkRead marks a set of notifications, or every unread one, as read.
func (h *NotificationHandler) BulkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var payload services.BulkReadRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	result, err := h.service.BulkRead(requestContext(c), userID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Hide removes a notification from the caller's inbox.
func (h *NotificationHandler) Hide(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := notificationIDParam(c)
	if !ok {
		return
	}

	hidden, err := h.service.Hide(requestContext(c), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !hidden {
		response.Error(c, errors.ErrNotFound)
		return
	}

	response.NoContent(c)
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

// notificationIDParam rejects ids that cannot name a notification with a 404,
// as an unmatched route would.
func notificationIDParam(c *gin.Context) (string, bool) {
	id, ok := services.ParseOpaqueID(strings.TrimSpace(c.Param("id")))
	if !ok {
		response.Error(c, errors.ErrNotFound)
		return "", false
	}
	return id, true
}
