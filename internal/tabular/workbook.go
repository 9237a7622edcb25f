// Package tabular reads the tracked spreadsheet reports and writes exports.
// Header spellings are resolved through an alias table so reports from
// different planning tools map onto the same fields.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnknownReportKind is returned when a file name names neither report
	ErrUnknownReportKind = errors.New("unknown report kind")
	// ErrMissingColumns is returned when a sheet lacks a required column
	ErrMissingColumns = errors.New("missing required columns")
)

// Workbook is an opened spreadsheet
type Workbook struct {
	f *excelize.File
}

// Open reads a workbook from r
func Open(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

// OpenFile reads a workbook from disk
func OpenFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filepath.Base(path), err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheets returns the sheet names in workbook order
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// rows returns the raw cell values of a sheet. Raw values keep date cells as
// serial numbers so date parsing does not depend on cell formats.
func (w *Workbook) rows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// DetectKind infers the report kind from a file name
func DetectKind(filename string) (string, error) {
	name := strings.ToLower(filepath.Base(filename))
	switch {
	case strings.Contains(name, "buy ready"),
		strings.Contains(name, "buyready"),
		strings.Contains(name, "buy_ready"),
		strings.Contains(name, "buy-ready"):
		return models.ResourceBuyReady, nil
	case strings.Contains(name, "drop"):
		return models.ResourceDrop, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownReportKind, filepath.Base(filename))
}

// IsWorkbook reports whether a file name has a spreadsheet extension
func IsWorkbook(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
