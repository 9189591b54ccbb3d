package extract

import (
	"fmt"
	"math"

	"github.com/sells-group/quote-sync/internal/sheet"
	"github.com/sells-group/quote-sync/internal/trace"
)

// reader reads single fields and records exactly one trace step per read.
// Unreadable cells degrade to the field's zero value.
type reader struct {
	s  sheet.Sheet
	tr *trace.Collector
}

func (r reader) value(field, ref string) (sheet.Value, bool) {
	v, err := sheet.At(r.s, ref)
	if err != nil {
		r.tr.Step("%s [%s]: unreadable (%v), using default", field, ref, err)
		return sheet.Value{}, false
	}
	return v, true
}

func (r reader) text(field, ref string) string {
	v, ok := r.value(field, ref)
	if !ok {
		return ""
	}
	c := sheet.CoerceText(v)
	r.tr.Step("%s [%s]: %q (%s)", field, ref, c.Value, c.Note)
	return c.Value
}

func (r reader) number(field, ref string) float64 {
	v, ok := r.value(field, ref)
	if !ok {
		return 0
	}
	c := sheet.CoerceNumber(v)
	r.tr.Step("%s [%s]: %v (%s)", field, ref, c.Value, c.Note)
	return c.Value
}

func (r reader) date(field, ref string) string {
	v, ok := r.value(field, ref)
	if !ok {
		return ""
	}
	c := sheet.CoerceDate(v)
	if c.OK {
		r.tr.Step("%s [%s]: %s (%s)", field, ref, c.Value, c.Note)
	} else {
		r.tr.Step("%s [%s]: unresolved (%s)", field, ref, c.Note)
	}
	return c.Value
}

func (r reader) timeRange(field, ref string) sheet.TimeRange {
	v, ok := r.value(field, ref)
	if !ok {
		return sheet.TimeRange{}
	}
	c := sheet.CoerceTimeRange(v)
	r.tr.Step("%s [%s]: start=%q end=%q (%s)", field, ref, c.Value.Start, c.Value.End, c.Note)
	return c.Value
}

func cellRef(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// maxGuests bounds guest counts; larger cell values are treated as unknown.
const maxGuests = math.MaxInt32

// guestCount rounds a coerced guest number, mapping out-of-range values to 0.
func guestCount(x float64, tr *trace.Collector) int {
	if x > maxGuests {
		tr.Step("guest_count: %g out of range, using 0", x)
		return 0
	}
	return int(math.Round(x))
}
