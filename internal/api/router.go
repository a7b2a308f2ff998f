package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/app"
	iauth "github.com/aschalew-star/tenderalert/internal/auth"
	"github.com/aschalew-star/tenderalert/internal/handlers"
	"github.com/aschalew-star/tenderalert/internal/middleware"
	"github.com/aschalew-star/tenderalert/internal/services"
)

// Services bundles the service layer the router exposes over HTTP.
type Services struct {
	Tenders       *services.TenderService
	Matcher       *services.MatcherService
	Notifications *services.NotificationService
	Registration  *services.RegistrationService
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.NoRoute(middleware.NotFoundHandler)

	// Public endpoints
	r.GET("/healthz", handlers.Health())
	if cfg.Metrics.Enabled {
		endpoint := cfg.Metrics.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler, err := handlers.NewAuthHandler(db, jwt, svcs.Registration)
	if err != nil {
		return nil, err
	}
	tenderHandler, err := handlers.NewTenderHandler(svcs.Tenders, svcs.Matcher)
	if err != nil {
		return nil, err
	}
	notificationHandler, err := handlers.NewNotificationHandler(svcs.Notifications)
	if err != nil {
		return nil, err
	}

	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api/v1")

	registerAuthRoutes(api, authHandler, requireAuth)
	registerTenderRoutes(api, tenderHandler, requireAuth)
	registerNotificationRoutes(api, notificationHandler, requireAuth)

	return r, nil
}
