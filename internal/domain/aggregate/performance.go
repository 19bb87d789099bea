package aggregate

import (
	"sort"

	"github.com/okian/chapterboard/internal/domain/dedupe"
	"github.com/okian/chapterboard/internal/domain/lookup"
	"github.com/okian/chapterboard/internal/domain/model"
)

// TopPerformers ranks members with role brother by points earned from
// deduplicated attended events, highest first, truncated to limit.
// A limit <= 0 returns every brother. Ties keep member order.
func TopPerformers(members []model.Member, events []model.Event, attendance []model.AttendanceRecord, limit int) []model.MemberPerformance {
	eventIdx := lookup.EventsByID(events)
	res := dedupe.AttendanceWhere(attendance, func(r model.AttendanceRecord) bool {
		_, ok := eventIdx[r.EventID]
		return ok
	})

	points := make(map[string]float64)
	attended := make(map[string]int)
	for _, r := range res.Rows {
		if !r.Attended {
			continue
		}
		points[r.UserID] += eventIdx[r.EventID].PointValue
		attended[r.UserID]++
	}

	eventCount := float64(len(eventIdx))
	out := make([]model.MemberPerformance, 0)
	for _, m := range dedupe.Members(members) {
		if !m.IsBrother() {
			continue
		}
		out = append(out, model.MemberPerformance{
			UserID:         m.UserID,
			Name:           m.DisplayName(),
			PledgeClass:    model.OrDefault(m.PledgeClass, model.Unknown),
			Points:         points[m.UserID],
			EventsAttended: attended[m.UserID],
			AttendanceRate: clampPercent(Percent(float64(attended[m.UserID]), eventCount)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Points > out[j].Points
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
