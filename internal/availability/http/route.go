package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/availability")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("/settings", h.GetSettings)
		group.PUT("/settings", h.UpdateSettings)
	}
}
