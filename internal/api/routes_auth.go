package api

import (
	"github.com/gin-gonic/gin"

	"github.com/aschalew-star/tenderalert/internal/handlers"
	"github.com/aschalew-star/tenderalert/internal/middleware"
)

func registerAuthRoutes(api *gin.RouterGroup, handler *handlers.AuthHandler, requireAuth gin.HandlerFunc) {
	api.POST("/login", handler.Login)
	api.POST("/register/customer", handler.RegisterCustomer)

	// Staff accounts are provisioned by admins.
	api.POST("/register/user", requireAuth, middleware.RequireAdmin(), handler.RegisterUser)
}
