package model

import (
	"fmt"
	"strings"
	"time"
)

// HealthMetrics summarizes chapter engagement.
type HealthMetrics struct {
	TotalMembers      int     `json:"total_members"`
	ActiveMembers     int     `json:"active_members"`
	RetentionRate     float64 `json:"retention_rate"`
	AvgAttendanceRate float64 `json:"avg_attendance_rate"`
	AvgPoints         float64 `json:"avg_points"`
}

// MemberPerformance is one leaderboard row.
type MemberPerformance struct {
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	PledgeClass    string  `json:"pledge_class"`
	Points         float64 `json:"points"`
	EventsAttended int     `json:"events_attended"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// EventAnalytics describes turnout for a single event.
type EventAnalytics struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	AttendanceCount int      `json:"attendance_count"`
	AttendanceRate  float64  `json:"attendance_rate"`
	RSVPCount       int      `json:"rsvp_count"`
	NoShowRate      float64  `json:"no_show_rate"`
	TopAttendees    []string `json:"top_attendees"`
	Creator         string   `json:"creator"`
}

// CategoryPointsBreakdown totals points per canonical category.
type CategoryPointsBreakdown struct {
	Category        string  `json:"category"`
	TotalPoints     float64 `json:"total_points"`
	EventCount      int     `json:"event_count"`
	AttendanceCount int     `json:"attendance_count"`
	AveragePoints   float64 `json:"average_points"`
}

// GroupPoints totals member points for a house or pledge class.
type GroupPoints struct {
	Group              string  `json:"group"`
	TotalPoints        float64 `json:"total_points"`
	MemberCount        int     `json:"member_count"`
	AvgPointsPerMember float64 `json:"avg_points_per_member"`
}

// DistributionEntry is one bucket of a demographic distribution.
type DistributionEntry struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DiversityMetrics holds the demographic distributions, the composite
// diversity score and the generated insights.
type DiversityMetrics struct {
	Gender            []DistributionEntry `json:"gender"`
	Pronouns          []DistributionEntry `json:"pronouns"`
	Race              []DistributionEntry `json:"race"`
	SexualOrientation []DistributionEntry `json:"sexual_orientation"`
	LivingType        []DistributionEntry `json:"living_type"`
	HouseMembership   []DistributionEntry `json:"house_membership"`
	PledgeClass       []DistributionEntry `json:"pledge_class"`
	GraduationYear    []DistributionEntry `json:"graduation_year"`
	Majors            []DistributionEntry `json:"majors"`
	DiversityScore    float64             `json:"diversity_score"`
	Insights          []string            `json:"insights"`
}

// Metric selects the primary dashboard view.
type Metric string

// Selectable dashboard views.
const (
	MetricHealth      Metric = "health"
	MetricPerformance Metric = "performance"
	MetricEvents      Metric = "events"
	MetricCategories  Metric = "categories"
	MetricDiversity   Metric = "diversity"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MetricHealth, MetricPerformance, MetricEvents, MetricCategories, MetricDiversity:
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Dashboard bundles every derived view for one state of the loaded data.
type Dashboard struct {
	Fingerprint    string                    `json:"fingerprint"`
	GeneratedAt    time.Time                 `json:"generated_at"`
	SelectedMetric Metric                    `json:"selected_metric"`
	Health         HealthMetrics             `json:"health"`
	Leaderboard    []MemberPerformance       `json:"leaderboard"`
	Events         []EventAnalytics          `json:"events"`
	Categories     []CategoryPointsBreakdown `json:"categories"`
	Houses         []GroupPoints             `json:"houses"`
	PledgeClasses  []GroupPoints             `json:"pledge_classes"`
	Diversity      DiversityMetrics          `json:"diversity"`
}
