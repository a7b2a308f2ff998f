package api

import (
	"github.com/gin-gonic/gin"

	"github.com/aschalew-star/tenderalert/internal/handlers"
)

func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler, requireAuth gin.HandlerFunc) {
	notifications := api.Group("/notifications", requireAuth)
	{
		notifications.GET("", handler.List)
		notifications.POST("/:id/read", handler.MarkRead)
	}
}
