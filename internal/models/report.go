package models

// ReconcileReport is the outcome of one reconciliation pass.
// Identifier lists are complete and in first-seen order.
type ReconcileReport struct {
	Inserted        int               `json:"inserted"`
	Updated         int               `json:"updated"`
	Deleted         int               `json:"deleted"`
	Skipped         int               `json:"skipped"`
	Duplicates      int               `json:"duplicates"`
	NewArticles     []string          `json:"new_articles"`
	ChangedArticles []string          `json:"changed_articles"`
	Warnings        []ValidationError `json:"warnings,omitempty"`
}

// Truncate returns at most limit identifiers and whether the list was cut.
// A non-positive limit returns the full list.
func Truncate(ids []string, limit int) ([]string, bool) {
	if limit <= 0 || len(ids) <= limit {
		return ids, false
	}
	return ids[:limit], true
}
