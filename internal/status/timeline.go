package status

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/buy-ready-tracker/internal/models"
)

// etdPattern matches "ETD m/d" anywhere in an upper-cased status text
var etdPattern = regexp.MustCompile(`ETD\s*(\d{1,2})/(\d{1,2})`)

// DefaultHorizon is how far ahead an ETD counts as upcoming
const DefaultHorizon = 7 * 24 * time.Hour

// ExtractETD finds an "ETD m/d" date in a status text. The year is the
// current one, or the next one when the month has already passed.
func ExtractETD(text string, now time.Time) (time.Time, bool) {
	m := etdPattern.FindStringSubmatch(normalize(text))
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	year := now.Year()
	if time.Month(month) < now.Month() {
		year++
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	// time.Date normalizes 2/30 into March
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// TimelineItem is one ETD found on an article stage
type TimelineItem struct {
	ArticleNumber string    `json:"article_number"`
	Factory       string    `json:"factory"`
	Stage         string    `json:"stage"`
	ETD           time.Time `json:"etd"`
	Days          int       `json:"days"` // negative when overdue
}

// Timeline groups ETD items relative to today
type Timeline struct {
	Overdue  []TimelineItem `json:"overdue"`
	Today    []TimelineItem `json:"today"`
	Upcoming []TimelineItem `json:"upcoming"`
}

// BuildTimeline collects ETD dates from every stage of every article.
// Items further than horizon in the future are left out.
func BuildTimeline(articles []*models.Article, now time.Time, horizon time.Duration) *Timeline {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	limit := today.Add(horizon)

	tl := &Timeline{
		Overdue:  []TimelineItem{},
		Today:    []TimelineItem{},
		Upcoming: []TimelineItem{},
	}

	for _, a := range articles {
		stages := []struct {
			name  string
			value string
		}{
			{"MCS", a.MCSStatus},
			{"FGT", a.FGTStatus},
			{"FT", a.FTStatus},
			{"WT", a.WTStatus},
		}
		for _, st := range stages {
			etd, ok := ExtractETD(st.value, now)
			if !ok {
				continue
			}
			item := TimelineItem{
				ArticleNumber: a.ArticleNumber,
				Factory:       a.Factory,
				Stage:         st.name,
				ETD:           etd,
				Days:          int(math.Round(etd.Sub(today).Hours() / 24)),
			}
			switch {
			case etd.Before(today):
				tl.Overdue = append(tl.Overdue, item)
			case etd.Equal(today):
				tl.Today = append(tl.Today, item)
			case !etd.After(limit):
				tl.Upcoming = append(tl.Upcoming, item)
			}
		}
	}

	byDate := func(items []TimelineItem) {
		sort.SliceStable(items, func(i, j int) bool { return items[i].ETD.Before(items[j].ETD) })
	}
	byDate(tl.Overdue)
	byDate(tl.Upcoming)

	return tl
}
