package api

import (
	"github.com/gin-gonic/gin"

	"github.com/aschalew-star/tenderalert/internal/handlers"
	"github.com/aschalew-star/tenderalert/internal/middleware"
)

func registerTenderRoutes(api *gin.RouterGroup, handler *handlers.TenderHandler, requireAuth gin.HandlerFunc) {
	tenders := api.Group("/tenders")
	{
		tenders.GET("", handler.List)
		tenders.POST("", requireAuth, middleware.RequireAdmin(), handler.Create)
	}
}
