// Package status derives display-time status information from the four
// process-stage status fields of an article. Nothing here is persisted.
package status

import (
	"strings"

	"github.com/buy-ready-tracker/internal/models"
)

// Overall is the combined status of the MCS, FGT, FT and WT stages
type Overall string

const (
	None       Overall = "NONE"
	Pending    Overall = "PENDING"
	Passed     Overall = "PASSED"
	Processing Overall = "PROCESSING"
)

// pendingMarkers put an article in Pending when found in any stage
var pendingMarkers = []string{"PENDING", "ETD", "SENT"}

// Classify maps the four stage statuses to an overall status.
// Rules are evaluated in order and the first match wins.
func Classify(mcs, fgt, ft, wt string) Overall {
	mcs = normalize(mcs)
	fgt = normalize(fgt)
	ft = normalize(ft)
	wt = normalize(wt)

	if mcs == "" && fgt == "" && ft == "" && wt == "" {
		return None
	}

	all := strings.Join([]string{mcs, fgt, ft, wt}, " ")
	for _, marker := range pendingMarkers {
		if strings.Contains(all, marker) {
			return Pending
		}
	}

	if mcs == "APPROVED" && fgt == "PASSED" {
		return Passed
	}

	return Processing
}

// ClassifyArticle is Classify applied to an article's status fields
func ClassifyArticle(a *models.Article) Overall {
	return Classify(a.MCSStatus, a.FGTStatus, a.FTStatus, a.WTStatus)
}

// Parse resolves a user supplied status name, case-insensitively
func Parse(s string) (Overall, bool) {
	switch Overall(normalize(s)) {
	case None:
		return None, true
	case Pending:
		return Pending, true
	case Passed:
		return Passed, true
	case Processing:
		return Processing, true
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
