package model

import (
	"strconv"
	"strings"
	"unicode"
)

// Role is a member's standing in the chapter. Open-ended in practice.
type Role string

// Known roles.
const (
	RoleBrother   Role = "brother"
	RolePledge    Role = "pledge"
	RoleOfficer   Role = "officer"
	RolePresident Role = "president"
	RoleInactive  Role = "inactive"
	RoleAlumni    Role = "alumni"
	RoleAbroad    Role = "abroad"
)

// Normalize lower-cases and trims the role.
func (r Role) Normalize() Role {
	return Role(strings.ToLower(strings.TrimSpace(string(r))))
}

// Member is a chapter member. Demographic fields are optional: an empty
// string means "not provided" and is bucketed as NotSpecified by consumers.
type Member struct {
	UserID             string `json:"user_id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Role               Role   `json:"role"`
	PledgeClass        string `json:"pledge_class,omitempty"`
	Gender             string `json:"gender,omitempty"`
	Pronouns           string `json:"pronouns,omitempty"`
	Race               string `json:"race,omitempty"`
	SexualOrientation  string `json:"sexual_orientation,omitempty"`
	Majors             string `json:"majors,omitempty"` // comma-separated
	Minors             string `json:"minors,omitempty"` // comma-separated
	ExpectedGraduation string `json:"expected_graduation,omitempty"`
	LivingType         string `json:"living_type,omitempty"`
	HouseMembership    string `json:"house_membership,omitempty"`
}

// Bucket labels for missing values.
const (
	NotSpecified = "Not Specified"
	Unknown      = "Unknown"
)

// DisplayName joins first and last name, falling back to Unknown.
func (m Member) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(m.FirstName) + " " + strings.TrimSpace(m.LastName))
	if name == "" {
		return Unknown
	}
	return name
}

// IsActive reports whether the member is not inactive.
func (m Member) IsActive() bool {
	return m.Role.Normalize() != RoleInactive
}

// IsActiveBrother reports whether the member counts toward attendance and
// point statistics: brother, officer or president.
func (m Member) IsActiveBrother() bool {
	switch m.Role.Normalize() {
	case RoleBrother, RoleOfficer, RolePresident:
		return true
	default:
		return false
	}
}

// IsBrother reports whether the role is exactly brother.
func (m Member) IsBrother() bool {
	return m.Role.Normalize() == RoleBrother
}

// MajorList splits the comma-separated majors, dropping blanks.
func (m Member) MajorList() []string {
	return splitList(m.Majors)
}

// MinorList splits the comma-separated minors, dropping blanks.
func (m Member) MinorList() []string {
	return splitList(m.Minors)
}

// GraduationYear extracts the first four-digit year from ExpectedGraduation,
// so "2027", "May 2027" and "2027-05-15" all yield 2027.
func (m Member) GraduationYear() (int, bool) {
	s := m.ExpectedGraduation
	for i := 0; i+4 <= len(s); i++ {
		if !isDigits(s[i : i+4]) {
			continue
		}
		if i > 0 && unicode.IsDigit(rune(s[i-1])) {
			continue
		}
		if i+4 < len(s) && unicode.IsDigit(rune(s[i+4])) {
			continue
		}
		year, err := strconv.Atoi(s[i : i+4])
		if err == nil {
			return year, true
		}
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// OrDefault returns the trimmed value or def when it is blank.
func OrDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
