package api

import (
	"net/http"

	"github.com/buy-ready-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports?resource=...&format=...
// Streams the export directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()

	resource := c.DefaultQuery("resource", service.ResourceArticles)
	if resource != service.ResourceArticles && resource != service.ResourceDrops {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource must be one of: articles, drops"})
		return
	}

	format := c.DefaultQuery("format", service.FormatXLSX)
	switch format {
	case service.FormatXLSX, service.FormatCSV, service.FormatJSON, service.FormatNDJSON:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: xlsx, csv, json, ndjson"})
		return
	}

	h.log.Info().
		Str("resource", resource).
		Str("format", format).
		Msg("Starting streaming export")

	var err error
	switch resource {
	case service.ResourceArticles:
		err = h.services.Export.StreamArticles(ctx, c.Writer, format)
	case service.ResourceDrops:
		err = h.services.Export.StreamDrops(ctx, c.Writer, format)
	}

	if err != nil {
		h.log.Error().Err(err).Str("resource", resource).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
