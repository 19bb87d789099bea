package aggregate

import (
	"sort"

	"github.com/okian/chapterboard/internal/domain/category"
	"github.com/okian/chapterboard/internal/domain/dedupe"
	"github.com/okian/chapterboard/internal/domain/model"
)

type categoryBucket struct {
	name   string
	total  float64
	events int
	pairs  dedupe.Tracker
}

// Categories totals points per normalized category. Each (user, event)
// pair counts once per category no matter how many rows repeat it. Only
// categories with at least one event are returned, highest average first.
func Categories(events []model.Event, attendance []model.AttendanceRecord) []model.CategoryPointsBreakdown {
	buckets := make(map[string]*categoryBucket, len(category.Canonical))
	order := make([]*categoryBucket, 0, len(category.Canonical))
	bucket := func(name string) *categoryBucket {
		if b, ok := buckets[name]; ok {
			return b
		}
		b := &categoryBucket{name: name, pairs: dedupe.NewTracker(0)}
		buckets[name] = b
		order = append(order, b)
		return b
	}
	for _, name := range category.Canonical {
		bucket(name)
	}

	type eventInfo struct {
		category string
		points   float64
	}
	unique := dedupe.Events(events)
	info := make(map[string]eventInfo, len(unique))
	for _, e := range unique {
		name := category.Normalize(e.PointType)
		bucket(name).events++
		info[e.ID] = eventInfo{category: name, points: e.PointValue}
	}

	for _, r := range dedupe.Attendance(attendance) {
		if !r.Attended {
			continue
		}
		ev, ok := info[r.EventID]
		if !ok {
			continue
		}
		b := buckets[ev.category]
		if b.pairs.SeenAndRecord(r.Key()) {
			continue
		}
		b.total += ev.points
	}

	out := make([]model.CategoryPointsBreakdown, 0, len(order))
	for _, b := range order {
		if b.events == 0 {
			continue
		}
		count := b.pairs.Size()
		out = append(out, model.CategoryPointsBreakdown{
			Category:        b.name,
			TotalPoints:     b.total,
			EventCount:      b.events,
			AttendanceCount: count,
			AveragePoints:   Ratio(b.total, float64(count)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AveragePoints > out[j].AveragePoints
	})
	return out
}
