package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc, confirmLimiter gin.HandlerFunc) {
	group := g.Group("/schedule")

	// === Public Routes ===
	{
		group.GET("/booking/:id", h.Get)
		group.GET("/booking/:id/slots", h.Slots)
		group.POST("/booking/:id/confirm", confirmLimiter, h.Confirm)
	}

	// === Authenticated Routes ===
	host := group.Group("", authMiddleware)
	{
		host.POST("/booking", h.Create)
		host.GET("/bookings", h.List)
		host.PATCH("/booking/:id", h.Update)
	}
}
