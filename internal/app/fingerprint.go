package service

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/chapterboard/internal/app/loader"
)

// fingerprint hashes every record field a dashboard depends on, plus the
// calendar year the diversity insights are computed for, so equal data
// yields equal cache keys across processes.
func fingerprint(st loader.State, year int) string {
	h := xxhash.New()
	w := func(parts ...string) {
		for _, p := range parts {
			_, _ = h.WriteString(p)
			_, _ = h.WriteString("\x00")
		}
		_, _ = h.WriteString("\x1e")
	}

	w("members", strconv.Itoa(len(st.Members)))
	for _, m := range st.Members {
		w(m.UserID, m.FirstName, m.LastName, m.Email, string(m.Role), m.PledgeClass,
			m.Gender, m.Pronouns, m.Race, m.SexualOrientation, m.Majors, m.Minors,
			m.ExpectedGraduation, m.LivingType, m.HouseMembership)
	}
	w("events", strconv.Itoa(len(st.Events)))
	for _, e := range st.Events {
		w(e.ID, e.Title, e.StartTime.UTC().Format(time.RFC3339Nano), e.EndTime.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(e.PointValue, 'g', -1, 64), e.PointType, e.CreatorID)
	}
	w("attendance", strconv.Itoa(len(st.Attendance)))
	for _, a := range st.Attendance {
		w(a.UserID, a.EventID, strconv.FormatBool(a.RSVP), strconv.FormatBool(a.Attended))
	}
	w("year", strconv.Itoa(year))

	return strconv.FormatUint(h.Sum64(), 16)
}
