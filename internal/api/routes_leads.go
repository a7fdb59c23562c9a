package api

import (
	"github.com/gin-gonic/gin"

	"github.com/citydex/outreach/internal/handlers"
)

func registerLeadRoutes(api *gin.RouterGroup, handler *handlers.LeadHandler) {
	group := api.Group("/leads")
	{
		group.POST("/import", handler.Import)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("/:id/events", handler.RecordEvent)
	}
}
