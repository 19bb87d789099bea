// Package export writes dashboards as XLSX workbooks, one sheet per view.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/chapterboard/internal/domain/model"
)

// Sheet names, in workbook order.
const (
	SheetHealth        = "Health"
	SheetLeaderboard   = "Leaderboard"
	SheetEvents        = "Events"
	SheetCategories    = "Categories"
	SheetHouses        = "Houses"
	SheetPledgeClasses = "Pledge Classes"
	SheetDiversity     = "Diversity"
)

// ErrWrite wraps workbook construction failures.
var ErrWrite = errors.New("export failed")

const defaultSheet = "Sheet1"

// Write renders d as a workbook and streams it to w.
func Write(w io.Writer, d model.Dashboard) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// WriteFile renders d to the file at path.
func WriteFile(path string, d model.Dashboard) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("%w: %w", ErrWrite, cerr)
		}
	}()
	return Write(out, d)
}

// Build returns the workbook for d. The caller owns the file and must Close it.
func Build(d model.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()
	b := &builder{f: f}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	b.header = header

	b.health(d)
	b.leaderboard(d.Leaderboard)
	b.events(d.Events)
	b.categories(d.Categories)
	b.groups(SheetHouses, "House", d.Houses)
	b.groups(SheetPledgeClasses, "Pledge Class", d.PledgeClasses)
	b.diversity(d.Diversity)

	if b.err == nil {
		b.err = f.DeleteSheet(defaultSheet)
	}
	if b.err == nil {
		f.SetActiveSheet(0)
	}
	if b.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrWrite, b.err)
	}
	return f, nil
}

// builder accumulates the first error so sheet writers stay linear.
type builder struct {
	f      *excelize.File
	header int
	sheet  string
	row    int
	err    error
}

func (b *builder) start(sheet string, columns ...interface{}) {
	if b.err != nil {
		return
	}
	if _, b.err = b.f.NewSheet(sheet); b.err != nil {
		return
	}
	b.sheet, b.row = sheet, 0
	b.put(columns...)
	if b.err == nil {
		b.err = b.f.SetRowStyle(sheet, 1, 1, b.header)
	}
	if b.err == nil {
		b.err = b.f.SetColWidth(sheet, "A", "A", 28)
	}
}

func (b *builder) put(values ...interface{}) {
	if b.err != nil {
		return
	}
	b.row++
	cell, err := excelize.CoordinatesToCellName(1, b.row)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetSheetRow(b.sheet, cell, &values)
}

func (b *builder) health(d model.Dashboard) {
	h := d.Health
	b.start(SheetHealth, "Metric", "Value")
	b.put("Generated At", d.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	b.put("Total Members", h.TotalMembers)
	b.put("Active Members", h.ActiveMembers)
	b.put("Retention Rate (%)", h.RetentionRate)
	b.put("Avg Attendance Rate (%)", h.AvgAttendanceRate)
	b.put("Avg Points", h.AvgPoints)
}

func (b *builder) leaderboard(rows []model.MemberPerformance) {
	b.start(SheetLeaderboard, "Rank", "Name", "Pledge Class", "Points", "Events Attended", "Attendance Rate (%)")
	for i, r := range rows {
		b.put(i+1, r.Name, r.PledgeClass, r.Points, r.EventsAttended, r.AttendanceRate)
	}
}

func (b *builder) events(rows []model.EventAnalytics) {
	b.start(SheetEvents, "Title", "Attendance", "Attendance Rate (%)", "RSVPs", "No-Show Rate (%)", "Top Attendees", "Creator")
	for _, r := range rows {
		b.put(r.Title, r.AttendanceCount, r.AttendanceRate, r.RSVPCount, r.NoShowRate, strings.Join(r.TopAttendees, ", "), r.Creator)
	}
}

func (b *builder) categories(rows []model.CategoryPointsBreakdown) {
	b.start(SheetCategories, "Category", "Total Points", "Events", "Attendance", "Average Points")
	for _, r := range rows {
		b.put(r.Category, r.TotalPoints, r.EventCount, r.AttendanceCount, r.AveragePoints)
	}
}

func (b *builder) groups(sheet, label string, rows []model.GroupPoints) {
	b.start(sheet, label, "Total Points", "Members", "Avg Points per Member")
	for _, r := range rows {
		b.put(r.Group, r.TotalPoints, r.MemberCount, r.AvgPointsPerMember)
	}
}

func (b *builder) diversity(dm model.DiversityMetrics) {
	b.start(SheetDiversity, "Dimension", "Label", "Count", "Percentage (%)")
	dims := []struct {
		name string
		dist []model.DistributionEntry
	}{
		{"Gender", dm.Gender},
		{"Pronouns", dm.Pronouns},
		{"Race", dm.Race},
		{"Sexual Orientation", dm.SexualOrientation},
		{"Living Type", dm.LivingType},
		{"House", dm.HouseMembership},
		{"Pledge Class", dm.PledgeClass},
		{"Graduation Year", dm.GraduationYear},
		{"Majors", dm.Majors},
	}
	for _, dim := range dims {
		for _, e := range dim.dist {
			b.put(dim.name, e.Label, e.Count, e.Percentage)
		}
	}
	b.put()
	b.put("Diversity Score", "", "", dm.DiversityScore)
	for _, insight := range dm.Insights {
		b.put("Insight", insight)
	}
}
