package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DateLayout is the storage format of normalized dates
const DateLayout = "2006-01-02"

// maxExcelSerial is 9999-12-31, the last date Excel can represent
const maxExcelSerial = 2958465

// dateLayouts are the textual forms accepted besides Excel serial numbers
var dateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// IsMissing reports whether a cell value stands for "no value"
func IsMissing(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	switch strings.ToLower(v) {
	case "nan", "nat", "#n/a":
		return true
	}
	return false
}

// NormalizeDate converts a cell value to a YYYY-MM-DD string.
// Missing values give "" and ok=true; values that are present but cannot be
// read as a date give "" and ok=false so the caller can warn about them.
func NormalizeDate(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if IsMissing(v) {
		return "", true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(DateLayout), true
		}
	}

	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if serial < 1 || serial > maxExcelSerial {
			return "", false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", false
		}
		return t.Format(DateLayout), true
	}

	return "", false
}

// comparableDate is the form of a persisted date used for change detection.
// Values written before normalization are re-normalized; anything unreadable
// is compared as stored.
func comparableDate(stored string) string {
	if d, ok := NormalizeDate(stored); ok {
		return d
	}
	return strings.TrimSpace(stored)
}
