// Package synth generates a deterministic synthetic chapter for demo mode
// and tests.
package synth

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/pkg/logger"
)

// Defaults for Config fields left at zero.
const (
	DefaultMembers = 60
	DefaultEvents  = 40
	DefaultDays    = 365
	DefaultSeed    = 7
)

// Probabilities, in percent.
const (
	rsvpChance      = 70
	attendIfRSVP    = 80
	attendNoRSVP    = 25
	duplicateChance = 10
	blankChance     = 15
	eventHours      = 2
)

// namespace scopes generated IDs so the same seed always yields the same
// UUIDs.
var namespace = uuid.MustParse("6f1c1d5e-9a43-4e8e-9d7a-3b1f0c2a8e55")

var (
	firstNames   = []string{"Alex", "Ben", "Carlos", "Devin", "Eli", "Femi", "Gabe", "Hiro", "Isaac", "Jamal", "Kai", "Liam", "Mateo", "Noah", "Omar", "Priya", "Quinn", "Ravi", "Sam", "Theo"}
	lastNames    = []string{"Adams", "Brooks", "Chen", "Diaz", "Evans", "Fischer", "Garcia", "Hughes", "Ito", "Johnson", "Kim", "Lopez", "Murphy", "Nguyen", "Okafor", "Patel", "Reyes", "Smith", "Tran", "Walker"}
	roles        = []model.Role{model.RoleBrother, model.RoleBrother, model.RoleBrother, model.RoleBrother, model.RoleBrother, model.RoleOfficer, model.RolePledge, model.RoleInactive, model.RoleAlumni, model.RoleAbroad}
	pledgeNames  = []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"}
	genders      = []string{"Male", "Male", "Male", "Female", "Non-binary"}
	pronouns     = []string{"he/him", "he/him", "she/her", "they/them"}
	races        = []string{"White", "Asian", "Black", "Hispanic or Latino", "Two or More Races"}
	orientations = []string{"Heterosexual", "Heterosexual", "Gay", "Bisexual", "Prefer not to say"}
	majors       = []string{"Computer Science", "Economics", "Biology", "Mechanical Engineering", "Political Science", "Finance", "Psychology", "Mathematics"}
	livingTypes  = []string{"On Campus", "Off Campus", "Chapter House"}
	houses       = []string{"North House", "South House", "East House"}
	pointTypes   = []string{"Brotherhood", "Community Service", "Professional Development", "Study Hours", "DEI Workshop", "Wellness", "Philanthropy", "Chapter Meeting", ""}
	eventNames   = []string{"Mixer", "Workshop", "Drive", "Retreat", "Meeting", "Social", "Fundraiser", "Panel"}
)

// Config controls the size and shape of a generated chapter.
type Config struct {
	Members int       // number of members
	Events  int       // number of events
	Days    int       // events are spread over this many days before Now
	Seed    uint64    // PRNG seed
	Now     time.Time // anchor for event times and graduation years
}

// Chapter is a generated data set.
type Chapter struct {
	Members    []model.Member
	Events     []model.Event
	Attendance []model.AttendanceRecord
	Duplicates int // attendance rows that repeat an earlier (user, event) pair
}

func (c *Config) applyDefaults() {
	if c.Members <= 0 {
		c.Members = DefaultMembers
	}
	if c.Events <= 0 {
		c.Events = DefaultEvents
	}
	if c.Days <= 0 {
		c.Days = DefaultDays
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
}

// Generate builds a chapter from cfg. The same Config always yields the same
// chapter.
func Generate(ctx context.Context, cfg Config) Chapter {
	cfg.applyDefaults()
	g := &generator{
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		cfg: cfg,
	}

	var ch Chapter
	ch.Members = g.members()
	ch.Events = g.events(ch.Members)
	ch.Attendance, ch.Duplicates = g.attendance(ch.Members, ch.Events)

	logger.Get().Named("synth").Info(ctx, "generated synthetic chapter",
		logger.Int("members", len(ch.Members)),
		logger.Int("events", len(ch.Events)),
		logger.Int("attendance", len(ch.Attendance)),
		logger.Int("duplicates", ch.Duplicates),
	)
	return ch
}

type generator struct {
	rng *rand.Rand
	cfg Config
}

func (g *generator) id(kind string, i int) string {
	return uuid.NewSHA1(namespace, []byte(kind+"-"+strconv.FormatUint(g.cfg.Seed, 10)+"-"+strconv.Itoa(i))).String()
}

func (g *generator) chance(percent int) bool {
	return g.rng.IntN(100) < percent
}

func pick[T any](g *generator, values []T) T {
	return values[g.rng.IntN(len(values))]
}

// optional returns a random value or blank, so demographics exercise the
// "Not Specified" buckets.
func (g *generator) optional(values []string) string {
	if g.chance(blankChance) {
		return ""
	}
	return pick(g, values)
}

func (g *generator) members() []model.Member {
	out := make([]model.Member, g.cfg.Members)
	year := g.cfg.Now.Year()
	for i := range out {
		first, last := pick(g, firstNames), pick(g, lastNames)
		m := model.Member{
			UserID:            g.id("member", i),
			FirstName:         first,
			LastName:          last,
			Email:             fmt.Sprintf("%s.%s%d@example.edu", first, last, i),
			Role:              pick(g, roles),
			PledgeClass:       g.optional(pledgeNames),
			Gender:            g.optional(genders),
			Pronouns:          g.optional(pronouns),
			Race:              g.optional(races),
			SexualOrientation: g.optional(orientations),
			LivingType:        g.optional(livingTypes),
			HouseMembership:   g.optional(houses),
		}
		if !g.chance(blankChance) {
			m.Majors = pick(g, majors)
			if g.chance(20) {
				m.Majors += ", " + pick(g, majors)
			}
		}
		if g.chance(30) {
			m.Minors = pick(g, majors)
		}
		if !g.chance(blankChance) {
			m.ExpectedGraduation = fmt.Sprintf("May %d", year+g.rng.IntN(4))
		}
		out[i] = m
	}
	return out
}

func (g *generator) events(members []model.Member) []model.Event {
	out := make([]model.Event, g.cfg.Events)
	window := time.Duration(g.cfg.Days) * 24 * time.Hour
	for i := range out {
		offset := time.Duration(g.rng.Int64N(int64(window))).Truncate(time.Hour)
		start := g.cfg.Now.Add(-offset)
		pointType := pick(g, pointTypes)
		title := pointType
		if title == "" {
			title = "Chapter"
		}
		e := model.Event{
			ID:         g.id("event", i),
			Title:      title + " " + pick(g, eventNames),
			StartTime:  start,
			EndTime:    start.Add(eventHours * time.Hour),
			PointValue: float64(1 + g.rng.IntN(10)),
			PointType:  pointType,
		}
		if len(members) > 0 {
			e.CreatorID = pick(g, members).UserID
		}
		out[i] = e
	}
	return out
}

func (g *generator) attendance(members []model.Member, events []model.Event) ([]model.AttendanceRecord, int) {
	var out []model.AttendanceRecord
	duplicates := 0
	for _, e := range events {
		for _, m := range members {
			if !m.IsActive() {
				continue
			}
			rsvp := g.chance(rsvpChance)
			attended := g.chance(attendNoRSVP)
			if rsvp {
				attended = g.chance(attendIfRSVP)
			}
			if !rsvp && !attended {
				continue
			}
			r := model.AttendanceRecord{UserID: m.UserID, EventID: e.ID, RSVP: rsvp, Attended: attended}
			out = append(out, r)
			if g.chance(duplicateChance) {
				out = append(out, r)
				duplicates++
			}
		}
	}
	return out, duplicates
}
