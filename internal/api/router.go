package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/citydex/outreach/internal/app"
	"github.com/citydex/outreach/internal/handlers"
	"github.com/citydex/outreach/internal/middleware"
	"github.com/citydex/outreach/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(
	db *gorm.DB,
	cfg *app.Config,
	campaigns *services.CampaignService,
	leads *services.LeadService,
	templates *services.TemplateService,
	worker *services.InvitationWorker,
) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if campaigns == nil || leads == nil || templates == nil {
		return nil, fmt.Errorf("services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}

	api := r.Group("/api")

	registerCampaignRoutes(api, handlers.NewCampaignHandler(campaigns, worker))
	registerLeadRoutes(api, handlers.NewLeadHandler(leads))
	registerTemplateRoutes(api, handlers.NewTemplateHandler(templates))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
