// Package diversity computes demographic distributions over chapter members,
// a weighted Simpson's diversity score and threshold-driven insights.
package diversity

import (
	"sort"
	"strconv"
	"time"

	"github.com/okian/chapterboard/internal/domain/dedupe"
	"github.com/okian/chapterboard/internal/domain/model"
)

// Composite score weights. Fixed for output parity; they sum to 1.
const (
	weightGender      = 0.25
	weightRace        = 0.35
	weightOrientation = 0.20
	weightMajors      = 0.20
)

// topMajors bounds the majors distribution returned to consumers.
const topMajors = 10

// Compute builds every distribution, the composite score and the insights
// over distinct members. now supplies the calendar year for graduation-based
// insights.
func Compute(members []model.Member, now time.Time) model.DiversityMetrics {
	members = dedupe.Members(members)
	majors := Majors(members)

	dm := model.DiversityMetrics{
		Gender:            Distribution(members, func(m model.Member) string { return m.Gender }),
		Pronouns:          Distribution(members, func(m model.Member) string { return m.Pronouns }),
		Race:              Distribution(members, func(m model.Member) string { return m.Race }),
		SexualOrientation: Distribution(members, func(m model.Member) string { return m.SexualOrientation }),
		LivingType:        Distribution(members, func(m model.Member) string { return m.LivingType }),
		HouseMembership:   Distribution(members, func(m model.Member) string { return m.HouseMembership }),
		PledgeClass:       Distribution(members, func(m model.Member) string { return m.PledgeClass }),
		GraduationYear:    GraduationYears(members),
		Majors:            truncate(majors, topMajors),
	}
	dm.DiversityScore = Score(dm.Gender, dm.Race, dm.SexualOrientation, majors)
	dm.Insights = Insights(dm, members, now)
	return dm
}

// Distribution counts members by the value key returns, bucketing blanks as
// "Not Specified". Entries are ordered by count descending, then label.
func Distribution(members []model.Member, key func(model.Member) string) []model.DistributionEntry {
	counts := make(map[string]int)
	for _, m := range members {
		counts[model.OrDefault(key(m), model.NotSpecified)]++
	}
	out := entries(counts, len(members))
	sortByCount(out)
	return out
}

// Majors counts each listed major independently, so one member can appear
// in several buckets and percentages may sum past 100. Members listing no
// major count once under "Not Specified".
func Majors(members []model.Member) []model.DistributionEntry {
	counts := make(map[string]int)
	for _, m := range members {
		list := m.MajorList()
		if len(list) == 0 {
			counts[model.NotSpecified]++
			continue
		}
		seen := make(map[string]struct{}, len(list))
		for _, major := range list {
			if _, ok := seen[major]; ok {
				continue
			}
			seen[major] = struct{}{}
			counts[major]++
		}
	}
	out := entries(counts, len(members))
	sortByCount(out)
	return out
}

// GraduationYears counts members by expected graduation year, ordered by
// year ascending with "Not Specified" last.
func GraduationYears(members []model.Member) []model.DistributionEntry {
	counts := make(map[string]int)
	for _, m := range members {
		label := model.NotSpecified
		if year, ok := m.GraduationYear(); ok {
			label = strconv.Itoa(year)
		}
		counts[label]++
	}
	out := entries(counts, len(members))
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Label == model.NotSpecified) != (out[j].Label == model.NotSpecified) {
			return out[j].Label == model.NotSpecified
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// SimpsonIndex returns (1 - Σ p²) * 100 over the entry counts, where p is
// each count's share of the summed counts. Empty input scores 0.
func SimpsonIndex(dist []model.DistributionEntry) float64 {
	total := 0
	for _, e := range dist {
		total += e.Count
	}
	if total == 0 {
		return 0
	}
	var sumSquares float64
	for _, e := range dist {
		p := float64(e.Count) / float64(total)
		sumSquares += p * p
	}
	return (1 - sumSquares) * 100
}

// Score combines the per-dimension Simpson indices into the composite
// diversity score.
func Score(gender, race, orientation, majors []model.DistributionEntry) float64 {
	return weightGender*SimpsonIndex(gender) +
		weightRace*SimpsonIndex(race) +
		weightOrientation*SimpsonIndex(orientation) +
		weightMajors*SimpsonIndex(majors)
}

func entries(counts map[string]int, total int) []model.DistributionEntry {
	out := make([]model.DistributionEntry, 0, len(counts))
	for label, n := range counts {
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		out = append(out, model.DistributionEntry{Label: label, Count: n, Percentage: pct})
	}
	return out
}

func sortByCount(out []model.DistributionEntry) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
}

func truncate(dist []model.DistributionEntry, n int) []model.DistributionEntry {
	if len(dist) > n {
		return dist[:n]
	}
	return dist
}
