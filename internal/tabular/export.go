package tabular

import (
	"fmt"
	"io"
	"strconv"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/status"
	"github.com/xuri/excelize/v2"
)

// ArticleHeader is the column layout of article exports
var ArticleHeader = []string{
	"Article Number", "T1 Factory Short Code", "Sports Category", "Article Name", "Model",
	"Pre-Confirm Date", "Leading Buy Ready Date", "Product Weight", "Lifecycle State",
	"MCS status", "FGT status", "FT status", "WT status", "Overall Status",
}

// DropHeader is the column layout of drop exports
var DropHeader = []string{
	"Season", "Article Number", "T1 Factory Short Code", "Sports Category", "Article Name", "Model",
}

// ArticleRecord flattens an article in ArticleHeader order
func ArticleRecord(a *models.Article) []string {
	return []string{
		a.ArticleNumber, a.Factory, a.SportsCategory, a.ArticleName, a.Model,
		a.PreConfirmDate, a.LeadingBuyReadyDate, a.ProductWeight, a.LifecycleState,
		a.MCSStatus, a.FGTStatus, a.FTStatus, a.WTStatus, string(status.ClassifyArticle(a)),
	}
}

// DropRecord flattens a drop in DropHeader order
func DropRecord(d *models.Drop) []string {
	return []string{d.Season, d.ArticleNumber, d.Factory, d.SportsCategory, d.ArticleName, d.Model}
}

// WriteArticles writes articles as a single-sheet workbook
func WriteArticles(w io.Writer, articles []*models.Article) error {
	records := make([][]string, 0, len(articles))
	for _, a := range articles {
		records = append(records, ArticleRecord(a))
	}
	return writeSheet(w, "Buy Ready", ArticleHeader, records)
}

// WriteDrops writes drops as a single-sheet workbook
func WriteDrops(w io.Writer, drops []*models.Drop) error {
	records := make([][]string, 0, len(drops))
	for _, d := range drops {
		records = append(records, DropRecord(d))
	}
	return writeSheet(w, "Drops", DropHeader, records)
}

func writeSheet(w io.Writer, sheet string, header []string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", toCells(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, rec := range records {
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+2), toCells(rec)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
