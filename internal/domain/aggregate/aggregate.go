// Package aggregate computes the dashboard's derived views from loaded
// members, events and attendance rows.
//
// Every function is pure: inputs are only read, and identical inputs give
// identical outputs, so callers may memoize on the identity of the inputs.
// Attendance rows are deduplicated per (user, event) before anything is
// counted, keeping the first row even when a later one disagrees, and rows referencing events or members that are not loaded are
// skipped. Ratios with a zero denominator are 0.
package aggregate

import (
	"github.com/okian/chapterboard/internal/domain/dedupe"
	"github.com/okian/chapterboard/internal/domain/lookup"
	"github.com/okian/chapterboard/internal/domain/model"
)

const percentScale = 100

// Percent returns num/den*100, or 0 when den is 0.
func Percent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * percentScale
}

// Ratio returns num/den, or 0 when den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// clampPercent bounds a rate to [0, 100].
func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > percentScale:
		return percentScale
	default:
		return v
	}
}

// brotherTotals is the per-brother point computation shared by the health
// metrics and the group summaries.
type brotherTotals struct {
	brothers []model.Member
	points   map[string]float64
	attended int
	total    float64
}

// activeBrotherPoints sums event points over each active brother's
// deduplicated attended events. The first row of a (user, event) pair
// decides whether it counts as attended. Brothers without attendance score 0.
func activeBrotherPoints(members []model.Member, events []model.Event, attendance []model.AttendanceRecord) brotherTotals {
	var brothers []model.Member
	ids := make(map[string]struct{})
	for _, m := range dedupe.Members(members) {
		if m.IsActiveBrother() {
			brothers = append(brothers, m)
			ids[m.UserID] = struct{}{}
		}
	}

	eventIdx := lookup.EventsByID(events)
	res := dedupe.AttendanceWhere(attendance, func(r model.AttendanceRecord) bool {
		if _, ok := ids[r.UserID]; !ok {
			return false
		}
		_, ok := eventIdx[r.EventID]
		return ok
	})

	totals := brotherTotals{
		brothers: brothers,
		points:   make(map[string]float64, len(brothers)),
	}
	for _, r := range res.Rows {
		if !r.Attended {
			continue
		}
		totals.attended++
		pv := eventIdx[r.EventID].PointValue
		totals.points[r.UserID] += pv
		totals.total += pv
	}
	return totals
}

// ActiveBrotherCount counts distinct members who are brothers, officers or
// presidents.
func ActiveBrotherCount(members []model.Member) int {
	n := 0
	for _, m := range dedupe.Members(members) {
		if m.IsActiveBrother() {
			n++
		}
	}
	return n
}
