package diversity

import (
	"fmt"
	"time"

	"github.com/okian/chapterboard/internal/domain/model"
)

// Insight thresholds, in percent of members.
const (
	genderDominance = 70
	raceDominance   = 60
	majorDominance  = 40
)

// Score tiers.
const (
	tierExcellent = 70
	tierGood      = 50
	tierModerate  = 30
)

// Insights returns the informational messages for dm, in a fixed order:
// gender, race, majors, living type, succession planning, score tier.
// Exactly one score-tier message is always present.
func Insights(dm model.DiversityMetrics, members []model.Member, now time.Time) []string {
	var out []string

	if top, ok := first(dm.Gender); ok && top.Percentage > genderDominance {
		out = append(out, fmt.Sprintf(
			"%s members make up %.1f%% of the chapter; broaden recruitment outreach to improve gender diversity.",
			top.Label, top.Percentage))
	}
	if top, ok := first(dm.Race); ok && top.Percentage > raceDominance {
		out = append(out, fmt.Sprintf(
			"%.1f%% of members identify as %s; consider recruiting from a wider range of communities.",
			top.Percentage, top.Label))
	}
	if top, ok := first(dm.Majors); ok && top.Percentage > majorDominance {
		out = append(out, fmt.Sprintf(
			"%.1f%% of members study %s; recruiting across more majors would broaden the chapter's perspectives.",
			top.Percentage, top.Label))
	}
	if top, ok := first(dm.LivingType); ok {
		out = append(out, fmt.Sprintf(
			"The most common living arrangement is %s (%.1f%% of members).",
			top.Label, top.Percentage))
	}
	if n := graduatingSoon(members, now.Year()); n > 0 {
		out = append(out, fmt.Sprintf(
			"%d members expect to graduate in %d or %d; start succession planning for their roles.",
			n, now.Year(), now.Year()+1))
	}

	switch score := dm.DiversityScore; {
	case score > tierExcellent:
		out = append(out, fmt.Sprintf("Excellent diversity: the chapter scores %.1f.", score))
	case score > tierGood:
		out = append(out, fmt.Sprintf("Good diversity: the chapter scores %.1f.", score))
	case score > tierModerate:
		out = append(out, fmt.Sprintf("Moderate diversity: the chapter scores %.1f; there is room to grow.", score))
	default:
		out = append(out, fmt.Sprintf("Low diversity: the chapter scores %.1f; make diverse recruitment a priority.", score))
	}
	return out
}

func first(dist []model.DistributionEntry) (model.DistributionEntry, bool) {
	if len(dist) == 0 {
		return model.DistributionEntry{}, false
	}
	return dist[0], true
}

// graduatingSoon counts members graduating this calendar year or next.
func graduatingSoon(members []model.Member, year int) int {
	n := 0
	for _, m := range members {
		if y, ok := m.GraduationYear(); ok && (y == year || y == year+1) {
			n++
		}
	}
	return n
}
