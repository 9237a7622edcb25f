package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/service"
	"github.com/buy-ready-tracker/internal/tabular"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler handles Buy Ready article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /v1/articles?factory=&sport=&date=&status=&q=
func (h *ArticleHandler) List(c *gin.Context) {
	var filter models.ArticleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	views, err := h.services.Article.List(c.Request.Context(), filter)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("Failed to list articles")
			c.JSON(status, gin.H{"error": "failed to list articles"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(views),
		"articles": views,
	})
}

// Stats handles GET /v1/articles/stats
func (h *ArticleHandler) Stats(c *gin.Context) {
	stats, err := h.services.Article.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Timeline handles GET /v1/articles/timeline
func (h *ArticleHandler) Timeline(c *gin.Context) {
	tl, err := h.services.Article.Timeline(c.Request.Context(), time.Now())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build timeline")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build timeline"})
		return
	}
	c.JSON(http.StatusOK, tl)
}

// UpdateStatuses handles PUT /v1/articles/statuses
// The body is either a JSON list of status updates or a multipart status
// workbook in field "file".
func (h *ArticleHandler) UpdateStatuses(c *gin.Context) {
	var updates []models.StatusUpdate

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
			return
		}
		defer file.Close()

		wb, err := tabular.Open(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer wb.Close()

		if updates, err = tabular.StatusRows(wb); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON list of status updates"})
		return
	}

	applied, err := h.services.Article.ApplyStatusUpdates(c.Request.Context(), updates)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to apply status updates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply status updates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received": len(updates),
		"applied":  applied,
		"ignored":  len(updates) - applied,
	})
}
