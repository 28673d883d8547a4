package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-scheduler/internal/auth"
	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler/internal/pkg/response"
)

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

// GetSettings returns the caller's availability settings.
func (h *Handler) GetSettings(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	s, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSettingsResponse(s))
}

// UpdateSettings applies a partial update and returns the stored document.
func (h *Handler) UpdateSettings(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body UpdateSettingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	s, err := h.service.Update(c.Request.Context(), userID, body.Patch())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSettingsResponse(s))
}
