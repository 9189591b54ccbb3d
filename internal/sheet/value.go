// Package sheet provides a typed, read-only view of spreadsheet cells and the
// coercion rules that turn untyped cell contents into dates, amounts and
// time ranges.
package sheet

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the representation a cell value was stored in.
type Kind int

// Cell value kinds.
const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
	KindBool
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Value is the content of one cell.
type Value struct {
	Kind Kind
	// Text is the raw cell text, trimmed. Set for every non-empty kind.
	Text string
	// Number holds the numeric value, including the day-serial behind a KindDate.
	Number float64
	// Time is set for KindDate.
	Time time.Time
	// Date1904 selects the 1904 epoch for day-serial conversion.
	Date1904 bool
}

// Empty returns an empty value.
func Empty() Value {
	return Value{}
}

// Text returns a text value, or an empty value when s is blank.
func Text(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindText, Text: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Number: f, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Date returns a native date/time value.
func Date(t time.Time) Value {
	return Value{Kind: KindDate, Time: t, Number: ToSerial(t, false), Text: t.Format(time.RFC3339)}
}

// IsEmpty reports whether the cell holds nothing.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// String returns the cell text, used for label matching and verbatim fields.
func (v Value) String() string {
	return v.Text
}
