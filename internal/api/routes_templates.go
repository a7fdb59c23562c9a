package api

import (
	"github.com/gin-gonic/gin"

	"github.com/citydex/outreach/internal/handlers"
)

func registerTemplateRoutes(api *gin.RouterGroup, handler *handlers.TemplateHandler) {
	group := api.Group("/templates")
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.PATCH("/:id/active", handler.SetActive)
	}
}
