package api

import (
	"github.com/gin-gonic/gin"

	"github.com/citydex/outreach/internal/handlers"
)

func registerCampaignRoutes(api *gin.RouterGroup, handler *handlers.CampaignHandler) {
	group := api.Group("/campaigns")
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.GET("/:id/progress", handler.Progress)

		group.POST("/:id/start", handler.Start)
		group.POST("/:id/pause", handler.Pause)
		group.POST("/:id/resume", handler.Resume)
		group.POST("/:id/cancel", handler.Cancel)

		group.POST("/:id/batches", handler.RunBatch)
	}
}
