package aggregate

import (
	"github.com/okian/chapterboard/internal/domain/dedupe"
	"github.com/okian/chapterboard/internal/domain/lookup"
	"github.com/okian/chapterboard/internal/domain/model"
)

// topAttendeeCount bounds EventAnalytics.TopAttendees.
const topAttendeeCount = 5

// Events computes turnout for each loaded event, in event order.
// Attendance rate is measured against active brothers.
func Events(members []model.Member, events []model.Event, attendance []model.AttendanceRecord) []model.EventAnalytics {
	memberIdx := lookup.MembersByID(members)
	brothers := float64(ActiveBrotherCount(members))

	byEvent := make(map[string][]model.AttendanceRecord)
	for _, r := range dedupe.Attendance(attendance) {
		byEvent[r.EventID] = append(byEvent[r.EventID], r)
	}

	unique := dedupe.Events(events)
	out := make([]model.EventAnalytics, 0, len(unique))
	for _, e := range unique {
		var attended, rsvp int
		top := make([]string, 0, topAttendeeCount)
		for _, r := range byEvent[e.ID] {
			if r.RSVP {
				rsvp++
			}
			if !r.Attended {
				continue
			}
			attended++
			if len(top) < topAttendeeCount {
				if m, ok := memberIdx[r.UserID]; ok {
					top = append(top, m.DisplayName())
				}
			}
		}

		creator := model.Unknown
		if m, ok := memberIdx[e.CreatorID]; ok {
			creator = m.DisplayName()
		}

		out = append(out, model.EventAnalytics{
			ID:              e.ID,
			Title:           e.Title,
			AttendanceCount: attended,
			AttendanceRate:  clampPercent(Percent(float64(attended), brothers)),
			RSVPCount:       rsvp,
			NoShowRate:      clampPercent(Percent(float64(rsvp-attended), float64(rsvp))),
			TopAttendees:    top,
			Creator:         creator,
		})
	}
	return out
}
