package source

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/domain/model"
)

var _ loader.Source = (*Memory)(nil)

// Memory serves records held in memory with the same ordering, filtering
// and pagination as Postgres.
type Memory struct {
	mu         sync.RWMutex
	members    []model.Member
	events     []model.Event
	attendance []model.AttendanceRecord
}

// NewMemory returns a Memory source seeded with the given records.
func NewMemory(members []model.Member, events []model.Event, attendance []model.AttendanceRecord) *Memory {
	m := &Memory{}
	m.Replace(members, events, attendance)
	return m
}

// Replace swaps the served records.
func (m *Memory) Replace(members []model.Member, events []model.Event, attendance []model.AttendanceRecord) {
	ms := append([]model.Member(nil), members...)
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].LastName != ms[j].LastName {
			return ms[i].LastName < ms[j].LastName
		}
		return ms[i].FirstName < ms[j].FirstName
	})

	es := append([]model.Event(nil), events...)
	sort.SliceStable(es, func(i, j int) bool {
		return es[i].StartTime.After(es[j].StartTime)
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.members = ms
	m.events = es
	m.attendance = append([]model.AttendanceRecord(nil), attendance...)
}

// FetchMembers returns a page of members ordered by last name.
func (m *Memory) FetchMembers(ctx context.Context, page, pageSize int) (model.Page[model.Member], error) {
	if err := ctx.Err(); err != nil {
		return model.Page[model.Member]{}, err
	}
	if _, _, err := pageBounds(page, pageSize); err != nil {
		return model.Page[model.Member]{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.Page[model.Member]{Rows: paginate(m.members, page, pageSize), Total: len(m.members)}, nil
}

// FetchEvents returns a page of events starting within r, newest first.
func (m *Memory) FetchEvents(ctx context.Context, page, pageSize int, r model.DateRange) (model.Page[model.Event], error) {
	if err := ctx.Err(); err != nil {
		return model.Page[model.Event]{}, err
	}
	if _, _, err := pageBounds(page, pageSize); err != nil {
		return model.Page[model.Event]{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		if r.Contains(e.StartTime) {
			matched = append(matched, e)
		}
	}
	return model.Page[model.Event]{Rows: paginate(matched, page, pageSize), Total: len(matched)}, nil
}

// FetchAttendance returns attendance rows for the given events.
func (m *Memory) FetchAttendance(ctx context.Context, eventIDs []string) ([]model.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.AttendanceRecord
	for _, a := range m.attendance {
		if _, ok := want[a.EventID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func paginate[T any](rows []T, page, pageSize int) []T {
	lo := page * pageSize
	if lo >= len(rows) {
		return []T{}
	}
	hi := lo + pageSize
	if hi > len(rows) {
		hi = len(rows)
	}
	out := make([]T, hi-lo)
	copy(out, rows[lo:hi])
	return out
}
