// Package lookup builds id-keyed indices over loaded records so joins run in
// linear time.
package lookup

import "github.com/okian/chapterboard/internal/domain/model"

// MembersByID indexes members by user id. When ids repeat the first row wins.
func MembersByID(members []model.Member) map[string]model.Member {
	idx := make(map[string]model.Member, len(members))
	for _, m := range members {
		if _, ok := idx[m.UserID]; !ok {
			idx[m.UserID] = m
		}
	}
	return idx
}

// EventsByID indexes events by id. When ids repeat the first row wins.
func EventsByID(events []model.Event) map[string]model.Event {
	idx := make(map[string]model.Event, len(events))
	for _, e := range events {
		if _, ok := idx[e.ID]; !ok {
			idx[e.ID] = e
		}
	}
	return idx
}

// EventIDs returns the ids of events in order.
func EventIDs(events []model.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
