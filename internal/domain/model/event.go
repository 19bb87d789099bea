// Package model contains the records loaded from the chapter data store and
// the derived views computed from them.
package model

import "time"

// Event is a chapter event that awards points to attendees.
// StartTime < EndTime is assumed, not enforced.
type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	PointValue float64   `json:"point_value"` // non-negative
	PointType  string    `json:"point_type"`  // free-text category label
	CreatorID  string    `json:"creator_id"`  // references Member.UserID
}

// AttendanceRecord links a member to an event. The store may hold several
// rows for the same (UserID, EventID) pair; see dedupe.Attendance.
type AttendanceRecord struct {
	UserID   string `json:"user_id"`
	EventID  string `json:"event_id"`
	RSVP     bool   `json:"rsvp"`
	Attended bool   `json:"attended"`
}

// Key returns the (user, event) identity of the row.
func (a AttendanceRecord) Key() string {
	return a.UserID + "\x00" + a.EventID
}

// DateRange bounds event loading by start time, both ends inclusive.
// A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// LastDays returns the range covering the days before now, ending at now.
func LastDays(now time.Time, days int) DateRange {
	return DateRange{Start: now.AddDate(0, 0, -days), End: now}
}

// Page is one page of rows plus the total row count reported by the store.
type Page[T any] struct {
	Rows  []T
	Total int
}
