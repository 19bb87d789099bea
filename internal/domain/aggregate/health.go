package aggregate

import (
	"github.com/okian/chapterboard/internal/domain/dedupe"
	"github.com/okian/chapterboard/internal/domain/lookup"
	"github.com/okian/chapterboard/internal/domain/model"
)

// Health computes chapter health. Retention counts every member who is not
// inactive; attendance and points are measured over active brothers only.
func Health(members []model.Member, events []model.Event, attendance []model.AttendanceRecord) model.HealthMetrics {
	unique := dedupe.Members(members)
	total := len(unique)
	active := 0
	for _, m := range unique {
		if m.IsActive() {
			active++
		}
	}

	bt := activeBrotherPoints(unique, events, attendance)
	brothers := float64(len(bt.brothers))
	eventCount := float64(len(lookup.EventsByID(events)))

	return model.HealthMetrics{
		TotalMembers:      total,
		ActiveMembers:     active,
		RetentionRate:     clampPercent(Percent(float64(active), float64(total))),
		AvgAttendanceRate: clampPercent(Percent(float64(bt.attended), brothers*eventCount)),
		AvgPoints:         Ratio(bt.total, brothers),
	}
}
