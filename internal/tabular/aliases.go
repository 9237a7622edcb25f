package tabular

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Logical fields of the tracked reports
const (
	FieldSportsCategory      = "sports_category"
	FieldFactory             = "factory"
	FieldArticleName         = "article_name"
	FieldModel               = "model"
	FieldArticleNumber       = "article_number"
	FieldPreConfirmDate      = "pre_confirm_date"
	FieldLeadingBuyReadyDate = "leading_buy_ready_date"
	FieldProductWeight       = "product_weight"
	FieldLifecycleState      = "lifecycle_state"
	FieldMCSStatus           = "mcs_status"
	FieldFGTStatus           = "fgt_status"
	FieldFTStatus            = "ft_status"
	FieldWTStatus            = "wt_status"
)

// aliases lists the header spellings seen in the wild for each field
var aliases = map[string][]string{
	FieldSportsCategory:      {"Sports Category", "Sport Category"},
	FieldFactory:             {"T1 Factory Short Code", "T1 Factory", "Factory Short Code", "Factory"},
	FieldArticleName:         {"Article NAME", "Article Name"},
	FieldModel:               {"Model"},
	FieldArticleNumber:       {"Article NUMBER", "Article Number"},
	FieldPreConfirmDate:      {"Pre-Confirm Date", "PreConfirm Date"},
	FieldLeadingBuyReadyDate: {"Leading Buy Ready Date", "LeadingBuyReadyDate"},
	FieldProductWeight:       {"Product Weight", "ProductWeight"},
	FieldLifecycleState:      {"Article Season Lifecycle State", "Lifecycle State", "Season Lifecycle State"},
	FieldMCSStatus:           {"MCS status"},
	FieldFGTStatus:           {"FGT status"},
	FieldFTStatus:            {"FT status"},
	FieldWTStatus:            {"WT status"},
}

// aliasIndex maps a normalized header to its field
var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	idx := make(map[string]string)
	for field, names := range aliases {
		for _, name := range names {
			idx[normalizeHeader(name)] = field
		}
	}
	return idx
}

// normalizeHeader folds case and width and collapses whitespace
func normalizeHeader(h string) string {
	h = norm.NFKC.String(h)
	h = cases.Fold().String(h)
	return strings.Join(strings.Fields(h), " ")
}

// columns resolves a header row to field -> column index. The first column
// matching a field wins.
type columns map[string]int

func resolveColumns(header []string) columns {
	cols := make(columns)
	for i, h := range header {
		field, ok := aliasIndex[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := cols[field]; !dup {
			cols[field] = i
		}
	}
	return cols
}

func (c columns) has(field string) bool {
	_, ok := c[field]
	return ok
}

// value returns the trimmed cell of a field, "" when the column or cell is absent
func (c columns) value(row []string, field string) string {
	i, ok := c[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
