package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/bellcenter/internal/handlers"
)

type notificationRoutes struct {
	notifications *handlers.NotificationHandler
	realtime      *handlers.RealtimeHandler
	identity      gin.HandlerFunc
}

func registerNotificationRoutes(r *gin.Engine, routes notificationRoutes) {
	const base = "/api/v1/notifications"

	// Negotiation is public; the returned token authenticates against the push channel.
	r.GET(base+"/negotiate", routes.realtime.Negotiate)

	group := r.Group(base)
	group.Use(routes.identity)
	{
		group.GET("", routes.notifications.List)
		group.GET("/stats", routes.notifications.Stats)
		group.POST("/bulk-read", routes.notifications.BulkRead)
		group.GET("/:id", routes.notifications.Get)
		group.PATCH("/:id/read", routes.notifications.MarkRead)
		group.PATCH("/:id/hide", routes.notifications.Hide)
	}
}
