package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/textfold"
)

// Coerced is the outcome of a coercion: the typed value, whether the cell
// carried usable data, and a note describing the path taken.
type Coerced[T any] struct {
	Value T
	OK    bool
	Note  string
}

var (
	epoch1900 = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// maxSerial is 9999-12-31 in the 1900 date system.
const maxSerial = 2958465

// FromSerial converts a spreadsheet day-serial into a UTC time.
func FromSerial(serial float64, date1904 bool) time.Time {
	base := epoch1900
	if date1904 {
		base = epoch1904
	} else if serial < 61 {
		// Serials before 1900-03-01 are offset by the fictitious 1900-02-29.
		base = base.AddDate(0, 0, 1)
	}
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 86400)
	return base.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
}

// ToSerial converts a time into a spreadsheet day-serial.
func ToSerial(t time.Time, date1904 bool) float64 {
	base := epoch1900
	if date1904 {
		base = epoch1904
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	return t.Sub(base).Hours() / 24
}

// italianMonths maps month names to English so time.Parse can read them.
var italianMonths = strings.NewReplacer(
	"gennaio", "january",
	"febbraio", "february",
	"marzo", "march",
	"aprile", "april",
	"maggio", "may",
	"giugno", "june",
	"luglio", "july",
	"agosto", "august",
	"settembre", "september",
	"ottobre", "october",
	"novembre", "november",
	"dicembre", "december",
)

var weekdays = []string{
	"lunedi", "martedi", "mercoledi", "giovedi", "venerdi", "sabato", "domenica",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// dateLayouts are tried in order; numeric forms are day-first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2.1.06",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// ParseDateText parses free-text dates such as "15/10/2025", "2025-10-15"
// or "sabato 15 ottobre 2025".
func ParseDateText(s string) (time.Time, bool) {
	s = textfold.Fold(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, false
	}
	s = italianMonths.Replace(s)
	s = strings.NewReplacer(",", " ", " del ", " ", " di ", " ").Replace(s)
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !isWeekday(f) {
			kept = append(kept, f)
		}
	}
	s = strings.Join(kept, " ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isWeekday(s string) bool {
	for _, w := range weekdays {
		if s == w {
			return true
		}
	}
	return false
}

// CoerceDate resolves a cell into a calendar date formatted as YYYY-MM-DD.
// Native dates are formatted directly, numbers are read as day-serials and
// text goes through ParseDateText.
func CoerceDate(v Value) Coerced[string] {
	switch v.Kind {
	case KindDate:
		return Coerced[string]{Value: v.Time.Format(model.DateLayout), OK: true, Note: "native date"}
	case KindNumber:
		if v.Number < 1 || v.Number > maxSerial {
			return Coerced[string]{Note: fmt.Sprintf("number %v outside day-serial range", v.Number)}
		}
		t := FromSerial(v.Number, v.Date1904)
		return Coerced[string]{Value: t.Format(model.DateLayout), OK: true, Note: fmt.Sprintf("day-serial %v", v.Number)}
	case KindText:
		if t, ok := ParseDateText(v.Text); ok {
			return Coerced[string]{Value: t.Format(model.DateLayout), OK: true, Note: fmt.Sprintf("parsed text %q", v.Text)}
		}
		return Coerced[string]{Note: fmt.Sprintf("unparseable text %q", v.Text)}
	case KindEmpty:
		return Coerced[string]{Note: "empty"}
	default:
		return Coerced[string]{Note: "unsupported " + v.Kind.String() + " value"}
	}
}

// CoerceNumber reads an amount or count. Empty, non-numeric, negative and
// non-finite inputs yield 0; the result is never negative.
func CoerceNumber(v Value) Coerced[float64] {
	var f float64
	var note string
	switch v.Kind {
	case KindNumber, KindDate:
		f, note = v.Number, "number"
	case KindText:
		n, ok := ParseNumberText(v.Text)
		if !ok {
			return Coerced[float64]{Note: fmt.Sprintf("non-numeric text %q", v.Text)}
		}
		f, note = n, fmt.Sprintf("parsed text %q", v.Text)
	case KindEmpty:
		return Coerced[float64]{Note: "empty"}
	default:
		return Coerced[float64]{Note: "unsupported " + v.Kind.String() + " value"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Coerced[float64]{Note: "non-finite number"}
	}
	if f < 0 {
		return Coerced[float64]{Note: fmt.Sprintf("negative %v clamped to 0", f)}
	}
	return Coerced[float64]{Value: f, OK: f > 0, Note: note}
}

// ParseNumberText parses amounts written with currency symbols and either
// Italian ("1.250,50") or English ("1,250.50") separators. A single dot
// followed by exactly three digits is a thousands separator.
func ParseNumberText(s string) (float64, bool) {
	s = textfold.Fold(s)
	s = strings.NewReplacer(
		"€", "", "euro", "", "eur", "", "$", "",
		" ", "", "\u00a0", "", "'", "",
	).Replace(s)
	s = strings.TrimSuffix(s, ",-")
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return 0, false
	}

	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	for _, r := range digits {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return 0, false
		}
	}

	dots := strings.Count(digits, ".")
	commas := strings.Count(digits, ",")
	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(digits, ",") > strings.LastIndex(digits, ".") {
			digits = strings.ReplaceAll(digits, ".", "")
			digits = strings.Replace(digits, ",", ".", 1)
		} else {
			digits = strings.ReplaceAll(digits, ",", "")
		}
	case commas == 1:
		digits = strings.Replace(digits, ",", ".", 1)
	case commas > 1:
		digits = strings.ReplaceAll(digits, ",", "")
	case dots > 1:
		digits = strings.ReplaceAll(digits, ".", "")
	case dots == 1:
		i := strings.Index(digits, ".")
		if i > 0 && i <= 3 && digits[0] != '0' && len(digits)-i-1 == 3 {
			digits = strings.Replace(digits, ".", "", 1)
		}
	}

	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// TimeRange is a raw time range and its halves.
type TimeRange struct {
	Raw   string
	Start string
	End   string
}

var rangeSeparators = []string{" - ", " – "}

// CoerceTimeRange splits "19:30 - 23:00" into halves. Time-of-day serials
// become a single HH:MM start; other text is kept verbatim as the start.
func CoerceTimeRange(v Value) Coerced[TimeRange] {
	switch v.Kind {
	case KindText:
		for _, sep := range rangeSeparators {
			if start, end, ok := strings.Cut(v.Text, sep); ok {
				return Coerced[TimeRange]{
					Value: TimeRange{Raw: v.Text, Start: strings.TrimSpace(start), End: strings.TrimSpace(end)},
					OK:    true,
					Note:  "split text range",
				}
			}
		}
		return Coerced[TimeRange]{Value: TimeRange{Raw: v.Text, Start: v.Text}, OK: true, Note: "verbatim text"}
	case KindDate:
		hm := v.Time.Format("15:04")
		return Coerced[TimeRange]{Value: TimeRange{Raw: hm, Start: hm}, OK: true, Note: "native time"}
	case KindNumber:
		if v.Number >= 0 && v.Number < 1 {
			mins := int(math.Round(v.Number * 24 * 60))
			hm := fmt.Sprintf("%02d:%02d", (mins/60)%24, mins%60)
			return Coerced[TimeRange]{Value: TimeRange{Raw: hm, Start: hm}, OK: true, Note: fmt.Sprintf("time serial %v", v.Number)}
		}
		return Coerced[TimeRange]{Value: TimeRange{Raw: v.Text, Start: v.Text}, OK: true, Note: "verbatim number"}
	case KindEmpty:
		return Coerced[TimeRange]{Note: "empty"}
	default:
		return Coerced[TimeRange]{Note: "unsupported " + v.Kind.String() + " value"}
	}
}

// CoerceText returns the trimmed cell text.
func CoerceText(v Value) Coerced[string] {
	if v.Kind == KindEmpty || v.Kind == KindError {
		return Coerced[string]{Note: v.Kind.String()}
	}
	return Coerced[string]{Value: v.Text, OK: v.Text != "", Note: v.Kind.String()}
}
