package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRealtimeNegotiateReturnsConfiguration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRealtimeHandler(Negotiation{URL: " wss://push.test/hub ", AccessToken: "tok", ExpiresIn: 3600})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	handler.Negotiate(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	var payload struct {
		Success bool        `json:"success"`
		Data    Negotiation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Equal(t, Negotiation{URL: "wss://push.test/hub", AccessToken: "tok", ExpiresIn: 3600}, payload.Data)
}

func TestRealtimeNegotiateDisabledWithoutURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRealtimeHandler(Negotiation{})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	handler.Negotiate(c)

	require.Equal(t, http.StatusNotFound, recorder.Code)
}
