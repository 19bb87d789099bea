// Package category maps free-text event point types onto the chapter's
// canonical point categories.
package category

import "strings"

// Canonical categories.
const (
	Brotherhood     = "Brotherhood"
	Service         = "Service"
	Professionalism = "Professionalism"
	Scholarship     = "Scholarship"
	DEI             = "DEI"
	HealthWellness  = "H&W"
	Fundraising     = "Fundraising"
)

// Uncategorized labels events whose point type is blank.
const Uncategorized = "Uncategorized"

// Canonical lists the canonical categories in display order.
var Canonical = []string{
	Brotherhood,
	Service,
	Professionalism,
	Scholarship,
	DEI,
	HealthWellness,
	Fundraising,
}

type rule struct {
	category string
	needles  []string
}

// Rules are tested in order; the first match wins. Labels routinely match
// more than one rule, so reordering changes aggregated totals.
var rules = []rule{
	{Brotherhood, []string{"brother"}},
	{Scholarship, []string{"scholar"}},
	{HealthWellness, []string{"h&w", "health", "wellness"}},
	{Fundraising, []string{"fund"}},
	{DEI, []string{"dei", "diversity"}},
	{Professionalism, []string{"professional"}},
	{Service, []string{"service"}},
}

// Normalize returns the canonical category for label. Labels matching no
// rule are returned trimmed, as their own category.
func Normalize(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return Uncategorized
	}
	lower := strings.ToLower(trimmed)
	for _, r := range rules {
		for _, needle := range r.needles {
			if strings.Contains(lower, needle) {
				return r.category
			}
		}
	}
	return trimmed
}

// IsCanonical reports whether name is one of the canonical categories.
func IsCanonical(name string) bool {
	for _, c := range Canonical {
		if c == name {
			return true
		}
	}
	return false
}
