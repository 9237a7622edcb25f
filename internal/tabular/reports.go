package tabular

import (
	"fmt"
	"strings"

	"github.com/buy-ready-tracker/internal/models"
)

// Filter restricts which report rows are tracked. Values are compared
// upper-cased.
type Filter struct {
	Sports            []string
	BuyReadyFactories []string
	DropFactories     []string
}

// DefaultFilter returns the sports and factories tracked out of the box
func DefaultFilter() Filter {
	return Filter{
		Sports:            []string{"AMERICAN FOOTBALL", "BASEBALL", "SOFTBALL"},
		BuyReadyFactories: []string{"HWA", "SPG"},
		DropFactories:     []string{"HWA"},
	}
}

type set map[string]struct{}

func newSet(values []string) set {
	s := make(set, len(values))
	for _, v := range values {
		s[upper(v)] = struct{}{}
	}
	return s
}

func (s set) contains(v string) bool {
	_, ok := s[v]
	return ok
}

func upper(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// BuyReadyRows extracts the tracked rows of a Buy Ready report. Only the
// first sheet is read. Line numbers are spreadsheet row numbers.
func BuyReadyRows(wb *Workbook, filter Filter) ([]models.ArticleRow, error) {
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMissingColumns)
	}

	rows, err := wb.rows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrMissingColumns, sheets[0])
	}

	cols := resolveColumns(rows[0])
	for _, field := range []string{FieldSportsCategory, FieldArticleNumber} {
		if !cols.has(field) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, field)
		}
	}

	sports := newSet(filter.Sports)
	factories := newSet(filter.BuyReadyFactories)
	filterFactory := cols.has(FieldFactory)

	out := make([]models.ArticleRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		sport := upper(cols.value(row, FieldSportsCategory))
		factory := upper(cols.value(row, FieldFactory))
		if !sports.contains(sport) {
			continue
		}
		if filterFactory && !factories.contains(factory) {
			continue
		}

		out = append(out, models.ArticleRow{
			Line:                i + 2,
			ArticleNumber:       cols.value(row, FieldArticleNumber),
			Factory:             factory,
			SportsCategory:      sport,
			ArticleName:         cols.value(row, FieldArticleName),
			Model:               cols.value(row, FieldModel),
			PreConfirmDate:      cols.value(row, FieldPreConfirmDate),
			LeadingBuyReadyDate: cols.value(row, FieldLeadingBuyReadyDate),
			ProductWeight:       cols.value(row, FieldProductWeight),
			LifecycleState:      cols.value(row, FieldLifecycleState),
		})
	}

	return out, nil
}

// DropRows extracts the tracked rows of a Drop report. Every sheet is a
// season named after the sheet; sheets without an article number column
// are ignored.
func DropRows(wb *Workbook, filter Filter) ([]models.DropRow, error) {
	sports := newSet(filter.Sports)
	factories := newSet(filter.DropFactories)

	var out []models.DropRow
	for _, sheet := range wb.Sheets() {
		rows, err := wb.rows(sheet)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}

		cols := resolveColumns(rows[0])
		if !cols.has(FieldArticleNumber) {
			continue
		}
		filterSport := cols.has(FieldSportsCategory)
		filterFactory := cols.has(FieldFactory)

		for i, row := range rows[1:] {
			sport := upper(cols.value(row, FieldSportsCategory))
			factory := upper(cols.value(row, FieldFactory))
			if filterSport && !sports.contains(sport) {
				continue
			}
			if filterFactory && !factories.contains(factory) {
				continue
			}

			out = append(out, models.DropRow{
				Line:           i + 2,
				Season:         strings.TrimSpace(sheet),
				ArticleNumber:  cols.value(row, FieldArticleNumber),
				Factory:        factory,
				SportsCategory: sport,
				ArticleName:    cols.value(row, FieldArticleName),
				Model:          cols.value(row, FieldModel),
			})
		}
	}

	return out, nil
}

// StatusRows extracts status updates from a status sheet: an article number
// column plus any of the four status columns. Only the first sheet is read.
func StatusRows(wb *Workbook) ([]models.StatusUpdate, error) {
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMissingColumns)
	}

	rows, err := wb.rows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrMissingColumns, sheets[0])
	}

	cols := resolveColumns(rows[0])
	if !cols.has(FieldArticleNumber) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, FieldArticleNumber)
	}
	if !cols.has(FieldMCSStatus) && !cols.has(FieldFGTStatus) && !cols.has(FieldFTStatus) && !cols.has(FieldWTStatus) {
		return nil, fmt.Errorf("%w: no status column", ErrMissingColumns)
	}

	var out []models.StatusUpdate
	for _, row := range rows[1:] {
		number := cols.value(row, FieldArticleNumber)
		if number == "" {
			continue
		}
		out = append(out, models.StatusUpdate{
			ArticleNumber: number,
			MCSStatus:     cols.value(row, FieldMCSStatus),
			FGTStatus:     cols.value(row, FieldFGTStatus),
			FTStatus:      cols.value(row, FieldFTStatus),
			WTStatus:      cols.value(row, FieldWTStatus),
		})
	}
	return out, nil
}
