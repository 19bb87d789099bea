// Package dedupe collapses repeated records before they are aggregated.
//
// The chapter store does not enforce uniqueness of attendance rows, so every
// aggregation that touches attendance must run it through Attendance first.
package dedupe

import (
	"sync"

	"github.com/okian/chapterboard/internal/domain/model"
)

// Tracker records keys to ensure at-most-once processing.
type Tracker interface {
	// SeenAndRecord reports whether key was already recorded, recording it
	// if not.
	SeenAndRecord(key string) bool

	// Unrecord forgets key.
	Unrecord(key string)

	Size() int
}

// setTracker is a mutex-guarded set. Callers may share one across goroutines.
type setTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewTracker returns an empty Tracker sized for about capacity keys.
func NewTracker(capacity int) Tracker {
	if capacity < 0 {
		capacity = 0
	}
	return &setTracker{seen: make(map[string]struct{}, capacity)}
}

func (t *setTracker) SeenAndRecord(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[key]; ok {
		return true
	}
	t.seen[key] = struct{}{}
	return false
}

func (t *setTracker) Unrecord(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.seen, key)
}

func (t *setTracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// Result is the outcome of deduplicating attendance rows.
type Result struct {
	Rows       []model.AttendanceRecord
	Duplicates int
}

// Attendance keeps the first row for each (user, event) pair, preserving
// input order. The input is not modified. Applying it twice is a no-op.
func Attendance(rows []model.AttendanceRecord) []model.AttendanceRecord {
	return AttendanceWhere(rows, nil).Rows
}

// AttendanceWhere deduplicates the rows for which keep returns true; a nil
// keep accepts every row. Filtering happens before deduplication, so a
// rejected row never shadows a later accepted one. keep should only judge
// the user and event of a row; filtering on per-row fields such as Attended
// changes which row of a pair comes first.
func AttendanceWhere(rows []model.AttendanceRecord, keep func(model.AttendanceRecord) bool) Result {
	tracker := NewTracker(len(rows))
	out := make([]model.AttendanceRecord, 0, len(rows))
	var dupes int
	for _, r := range rows {
		if keep != nil && !keep(r) {
			continue
		}
		if tracker.SeenAndRecord(r.Key()) {
			dupes++
			continue
		}
		out = append(out, r)
	}
	return Result{Rows: out, Duplicates: dupes}
}

// Members drops repeated user ids, keeping the first row.
func Members(members []model.Member) []model.Member {
	seen := NewTracker(len(members))
	out := make([]model.Member, 0, len(members))
	for _, m := range members {
		if seen.SeenAndRecord(m.UserID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Events drops repeated event ids, keeping the first row.
func Events(events []model.Event) []model.Event {
	seen := NewTracker(len(events))
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if seen.SeenAndRecord(e.ID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Count returns the number of duplicate rows Attendance would drop.
func Count(rows []model.AttendanceRecord) int {
	return AttendanceWhere(rows, nil).Duplicates
}
