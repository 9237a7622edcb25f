package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/repository"
	"github.com/buy-ready-tracker/internal/status"
	"github.com/buy-ready-tracker/internal/tabular"
	"github.com/rs/zerolog"
)

// Export formats
const (
	FormatXLSX   = "xlsx"
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

// Export resources
const (
	ResourceArticles = "articles"
	ResourceDrops    = "drops"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// articleExport is the serialized form of an article, status included
type articleExport struct {
	*models.Article
	OverallStatus string `json:"overall_status"`
}

// StreamArticles streams articles in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting articles export")

	var err error
	count := 0
	switch format {
	case FormatNDJSON, FormatJSON:
		setAttachment(w, contentType(format), "buy_ready."+format)
		enc := newJSONStream(w, format)
		err = s.repos.Article.StreamAll(ctx, func(a *models.Article) error {
			count++
			return enc.write(articleExport{Article: a, OverallStatus: string(status.ClassifyArticle(a))})
		})
		if cerr := enc.close(); err == nil {
			err = cerr
		}
	case FormatCSV:
		setAttachment(w, contentType(format), "buy_ready.csv")
		writer := csv.NewWriter(w)
		writer.Write(tabular.ArticleHeader)
		err = s.repos.Article.StreamAll(ctx, func(a *models.Article) error {
			count++
			return writer.Write(tabular.ArticleRecord(a))
		})
		writer.Flush()
		if err == nil {
			err = writer.Error()
		}
	case FormatXLSX:
		var articles []*models.Article
		articles, err = s.repos.Article.GetAll(ctx)
		if err == nil {
			count = len(articles)
			setAttachment(w, xlsxContentType, "buy_ready.xlsx")
			err = tabular.WriteArticles(w, articles)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	s.log.Info().Int("count", count).Str("format", format).Msg("Articles export completed")
	return err
}

// StreamDrops streams drop records in the specified format
func (s *exportService) StreamDrops(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting drops export")

	var err error
	count := 0
	switch format {
	case FormatNDJSON, FormatJSON:
		setAttachment(w, contentType(format), "drops."+format)
		enc := newJSONStream(w, format)
		err = s.repos.Drop.StreamAll(ctx, func(d *models.Drop) error {
			count++
			return enc.write(d)
		})
		if cerr := enc.close(); err == nil {
			err = cerr
		}
	case FormatCSV:
		setAttachment(w, contentType(format), "drops.csv")
		writer := csv.NewWriter(w)
		writer.Write(tabular.DropHeader)
		err = s.repos.Drop.StreamAll(ctx, func(d *models.Drop) error {
			count++
			return writer.Write(tabular.DropRecord(d))
		})
		writer.Flush()
		if err == nil {
			err = writer.Error()
		}
	case FormatXLSX:
		var drops []*models.Drop
		drops, err = s.repos.Drop.GetAll(ctx)
		if err == nil {
			count = len(drops)
			setAttachment(w, xlsxContentType, "drops.xlsx")
			err = tabular.WriteDrops(w, drops)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	s.log.Info().Int("count", count).Str("format", format).Msg("Drops export completed")
	return err
}

// GetCount returns the record count of a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case ResourceArticles:
		return s.repos.Article.Count(ctx)
	case ResourceDrops:
		return s.repos.Drop.Count(ctx)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedResource, resource)
	}
}

func contentType(format string) string {
	switch format {
	case FormatNDJSON:
		return "application/x-ndjson"
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	}
	return "application/octet-stream"
}

func setAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
}

// jsonStream writes records either as one JSON array or as NDJSON lines,
// flushing every 100 records
type jsonStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	array   bool
	count   int
}

func newJSONStream(w http.ResponseWriter, format string) *jsonStream {
	flusher, _ := w.(http.Flusher)
	s := &jsonStream{w: w, flusher: flusher, array: format == FormatJSON}
	if s.array {
		w.Write([]byte("["))
	}
	return s
}

func (s *jsonStream) write(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if s.array && s.count > 0 {
		s.w.Write([]byte(","))
	}
	s.w.Write(data)
	if !s.array {
		s.w.Write([]byte("\n"))
	}
	s.count++

	// Flush every 100 records for streaming
	if s.count%100 == 0 && s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

func (s *jsonStream) close() error {
	if s.array {
		_, err := s.w.Write([]byte("]"))
		return err
	}
	return nil
}
