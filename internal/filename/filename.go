// Package filename derives best-guess event hints from a quote's display name,
// e.g. "CONF 15_10 Compleanno Sara (Menu 747).xlsx".
package filename

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/quote-sync/internal/model"
)

// Hints are the values recoverable from a file name alone.
type Hints struct {
	// Date is YYYY-MM-DD, or "" when the name carries no valid day_month token.
	Date         string       `json:"date,omitempty"`
	EventType    string       `json:"event_type"`
	MenuTier     string       `json:"menu_tier"`
	MenuExplicit bool         `json:"menu_explicit"`
	Status       model.Status `json:"status"`
}

// statusPrefixes maps leading markers to a status; names without one are active.
var statusPrefixes = []struct {
	prefix string
	status model.Status
}{
	{"CONF ", model.StatusConfirmed},
	{"NO ", model.StatusCancelled},
}

var (
	dateToken = regexp.MustCompile(`(?:^|\D)((\d{1,2})_(\d{1,2})(?:_(\d{4}|\d{2}))?)(?:\D|$)`)
	menuToken = regexp.MustCompile(`(?i)\(\s*menu\s*(\d+)\s*\)`)
	spaces    = regexp.MustCompile(`\s+`)
)

// Parse extracts hints from name. Dates without a year take now's year.
// Parse never fails; missing hints are left at their defaults.
func Parse(name string, now time.Time) Hints {
	base := strings.TrimSpace(strings.TrimSuffix(name, path.Ext(name)))
	h := Hints{
		Status:   model.StatusActive,
		MenuTier: model.DefaultMenuTier(),
	}

	rest := base
	for _, sp := range statusPrefixes {
		if strings.HasPrefix(rest, sp.prefix) {
			h.Status = sp.status
			rest = rest[len(sp.prefix):]
			break
		}
	}

	if m := menuToken.FindStringSubmatch(rest); m != nil {
		h.MenuTier = m[1]
		h.MenuExplicit = true
	}
	rest = menuToken.ReplaceAllString(rest, " ")

	for _, m := range dateToken.FindAllStringSubmatchIndex(rest, -1) {
		date, ok := resolveDate(rest, m, now)
		if !ok {
			continue
		}
		h.Date = date
		rest = rest[:m[2]] + " " + rest[m[3]:]
		break
	}

	rest = strings.ReplaceAll(rest, "_", " ")
	rest = spaces.ReplaceAllString(rest, " ")
	h.EventType = strings.Trim(rest, " -.,")
	return h
}

// resolveDate validates a day_month[_year] match given as submatch indexes.
func resolveDate(s string, m []int, now time.Time) (string, bool) {
	day, _ := strconv.Atoi(s[m[4]:m[5]])
	month, _ := strconv.Atoi(s[m[6]:m[7]])
	year := now.Year()
	if m[8] >= 0 {
		year, _ = strconv.Atoi(s[m[8]:m[9]])
		if year < 100 {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return t.Format(model.DateLayout), true
}
