package aggregate

import (
	"sort"

	"github.com/okian/chapterboard/internal/domain/model"
)

// Houses groups active brothers' points by house membership, highest total
// first. Brothers without a house fall under "Not Specified".
func Houses(members []model.Member, events []model.Event, attendance []model.AttendanceRecord) []model.GroupPoints {
	out := groupPoints(members, events, attendance, func(m model.Member) string {
		return model.OrDefault(m.HouseMembership, model.NotSpecified)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalPoints > out[j].TotalPoints
	})
	return out
}

// PledgeClasses groups active brothers' points by pledge class, ordered by
// class name. Brothers without a class fall under "Unknown".
func PledgeClasses(members []model.Member, events []model.Event, attendance []model.AttendanceRecord) []model.GroupPoints {
	out := groupPoints(members, events, attendance, func(m model.Member) string {
		return model.OrDefault(m.PledgeClass, model.Unknown)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Group < out[j].Group
	})
	return out
}

func groupPoints(members []model.Member, events []model.Event, attendance []model.AttendanceRecord, key func(model.Member) string) []model.GroupPoints {
	bt := activeBrotherPoints(members, events, attendance)

	idx := make(map[string]int)
	var out []model.GroupPoints
	for _, m := range bt.brothers {
		g := key(m)
		i, ok := idx[g]
		if !ok {
			i = len(out)
			idx[g] = i
			out = append(out, model.GroupPoints{Group: g})
		}
		out[i].TotalPoints += bt.points[m.UserID]
		out[i].MemberCount++
	}
	for i := range out {
		out[i].AvgPointsPerMember = Ratio(out[i].TotalPoints, float64(out[i].MemberCount))
	}
	if out == nil {
		out = []model.GroupPoints{}
	}
	return out
}
