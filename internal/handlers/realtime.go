package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/bellcenter/pkg/errors"
	"github.com/charlesng35/bellcenter/pkg/response"
)

// Negotiation describes how a client connects to the real-time channel.
type Negotiation struct {
	URL         string `json:"url"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// RealtimeHandler hands out the configured real-time connection details.
type RealtimeHandler struct {
	negotiation Negotiation
}

// NewRealtimeHandler constructs a realtime handler around static negotiation settings.
func NewRealtimeHandler(negotiation Negotiation) *RealtimeHandler {
	negotiation.URL = strings.TrimSpace(negotiation.URL)
	return &RealtimeHandler{negotiation: negotiation}
}

// Negotiate returns the connection info verbatim. Without a configured URL the
// channel is disabled and the route answers 404.
func (h *RealtimeHandler) Negotiate(c *gin.Context) {
	if h == nil || h.negotiation.URL == "" {
		response.Error(c, errors.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, h.negotiation)
}
