package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/buy-ready-tracker/internal/config"
	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/service"
	"github.com/buy-ready-tracker/internal/tabular"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// moreMarker ends an identifier list that was cut to the report limit
const moreMarker = "..."

// ImportHandler handles import endpoints
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// CreateImport handles POST /v1/imports
// Accepts a multipart workbook upload. The report kind comes from the
// optional "kind" field or, failing that, from the file name.
func (h *ImportHandler) CreateImport(c *gin.Context) {
	ctx := c.Request.Context()

	// Get idempotency key from header
	idempotencyKey := c.GetHeader("Idempotency-Key")

	// Check for existing job with same idempotency key
	if idempotencyKey != "" {
		existingJob, err := h.services.Job.GetJobByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to check idempotency key")
		}
		if existingJob != nil {
			h.log.Info().Str("job_id", existingJob.ID).Msg("Returning existing job for idempotency key")
			c.JSON(http.StatusOK, existingJob)
			return
		}
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	// Validate file size
	if header.Size > h.cfg.Import.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Import.MaxUploadSize/(1024*1024)),
		})
		return
	}

	if !tabular.IsWorkbook(header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "import requires an .xlsx workbook"})
		return
	}

	kind := strings.TrimSpace(c.PostForm("kind"))
	if kind == "" {
		kind = c.Query("kind")
	}
	if kind == "" {
		if kind, err = tabular.DetectKind(header.Filename); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot tell report kind from file name, set kind to buy_ready or drop"})
			return
		}
	}
	if kind != models.ResourceBuyReady && kind != models.ResourceDrop {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be one of: buy_ready, drop"})
		return
	}

	// Save uploaded file
	uploadDir := h.cfg.Import.UploadDir
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		h.log.Error().Err(err).Msg("Failed to create upload directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filePath := filepath.Join(uploadDir, fmt.Sprintf("%s_%s%s", kind, uuid.New().String()[:8], ext))

	if err := saveUpload(file, filePath); err != nil {
		h.log.Error().Err(err).Msg("Failed to save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	req := &models.ImportRequest{
		Resource:       kind,
		FileName:       header.Filename,
		IdempotencyKey: idempotencyKey,
	}

	job, err := h.services.Import.CreateImportJob(ctx, req, filePath)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create import job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create import job"})
		return
	}

	h.log.Info().
		Str("job_id", job.ID).
		Str("resource", kind).
		Str("file", header.Filename).
		Int64("size_bytes", header.Size).
		Msg("Import job created")

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":   job.ID,
		"status":   job.Status,
		"resource": job.Resource,
		"message":  "Import job created and queued for processing",
	})
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// GetImportStatus handles GET /v1/imports/:job_id
// Identifier lists are cut to the report limit unless full=true.
func (h *ImportHandler) GetImportStatus(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	job, err := h.services.Job.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job status"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	resp := *job
	if full, _ := strconv.ParseBool(c.Query("full")); !full {
		resp.NewArticles = limitList(job.NewArticles, h.cfg.Import.ReportListLimit)
		resp.ChangedArticles = limitList(job.ChangedArticles, h.cfg.Import.ReportListLimit)
	}

	c.JSON(http.StatusOK, resp)
}

// limitList cuts ids to limit entries, ending with a marker when cut
func limitList(ids []string, limit int) []string {
	shown, cut := models.Truncate(ids, limit)
	if !cut {
		return ids
	}
	out := make([]string, 0, len(shown)+1)
	out = append(out, shown...)
	return append(out, moreMarker)
}

// GetImportErrors handles GET /v1/imports/:job_id/errors
func (h *ImportHandler) GetImportErrors(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	jobErrors, err := h.services.Job.GetJobErrors(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job errors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get errors"})
		return
	}

	// Determine format from query param
	format := c.Query("format")
	if format == "" {
		format = service.FormatJSON
	}

	if format == service.FormatCSV {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=errors_%s.csv", jobID))
		writer := csv.NewWriter(c.Writer)
		writer.Write([]string{"line", "field", "message", "value"})
		for _, e := range jobErrors {
			value := ""
			if e.Value != nil {
				value = fmt.Sprintf("%v", e.Value)
			}
			writer.Write([]string{strconv.Itoa(e.Line), e.Field, e.Message, value})
		}
		writer.Flush()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":      jobID,
		"error_count": len(jobErrors),
		"errors":      jobErrors,
	})
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidFilter),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrUnsupportedResource),
		errors.Is(err, tabular.ErrMissingColumns),
		errors.Is(err, tabular.ErrUnknownReportKind):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
