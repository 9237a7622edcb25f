package api

import (
	"net/http"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DropHandler handles drop record endpoints
type DropHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDropHandler creates a new DropHandler
func NewDropHandler(services *service.Services, log zerolog.Logger) *DropHandler {
	return &DropHandler{
		services: services,
		log:      log.With().Str("handler", "drop").Logger(),
	}
}

// List handles GET /v1/drops?season=&sport=&q=
func (h *DropHandler) List(c *gin.Context) {
	var filter models.DropFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	drops, err := h.services.Drop.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list drops")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list drops"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(drops),
		"drops": drops,
	})
}

// Seasons handles GET /v1/drops/seasons
func (h *DropHandler) Seasons(c *gin.Context) {
	seasons, err := h.services.Drop.Seasons(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list seasons")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list seasons"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"seasons": seasons})
}
