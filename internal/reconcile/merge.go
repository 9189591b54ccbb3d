// Package reconcile merges freshly extracted records into persisted ones
// without regressing known-good values.
package reconcile

import (
	"strings"
	"time"

	"github.com/sells-group/quote-sync/internal/model"
)

// Policy names how a field decides whether to take the incoming value.
type Policy string

// Field policies.
const (
	// PreferFresh takes any non-empty incoming value.
	PreferFresh Policy = "fresh"
	// PreferPositive takes a positive incoming value over a non-positive stored one.
	PreferPositive Policy = "positive"
	// PreferLonger takes incoming text that is strictly longer once trimmed.
	PreferLonger Policy = "longer"
	// PreferMore takes an incoming list with more items.
	PreferMore Policy = "more"
	// FillMissing takes the incoming value only when nothing is stored.
	FillMissing Policy = "fill"
)

// Rule merges one field of src into dst and reports whether dst changed.
type Rule struct {
	Field  string
	Policy Policy
	merge  func(dst *model.ExtractedRecord, src model.ExtractedRecord) bool
}

// Rules is the per-field merge table.
var Rules = []Rule{
	{"template_kind", PreferFresh, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return fresh(&d.TemplateKind, s.TemplateKind)
	}},
	{"event_date", PreferFresh, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return fresh(&d.EventDate, s.EventDate)
	}},
	{"source_modified_at", PreferFresh, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return freshTime(&d.SourceModifiedAt, s.SourceModifiedAt)
	}},
	{"status", PreferFresh, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return fresh(&d.Status, s.Status)
	}},
	{"menu_tier", PreferFresh, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return fresh(&d.MenuTier, s.MenuTier)
	}},

	{"guest_count", PreferPositive, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return positive(&d.GuestCount, s.GuestCount)
	}},
	{"total_amount", PreferPositive, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return positive(&d.TotalAmount, s.TotalAmount)
	}},
	{"deposit_amount", PreferPositive, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return positive(&d.DepositAmount, s.DepositAmount)
	}},
	{"balance_due", PreferPositive, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return positive(&d.BalanceDue, s.BalanceDue)
	}},

	{"event_type", PreferLonger, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return longer(&d.EventType, s.EventType)
	}},
	{"time_range_raw", PreferLonger, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return longer(&d.TimeRangeRaw, s.TimeRangeRaw)
	}},
	{"time_start", PreferLonger, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return longer(&d.TimeStart, s.TimeStart)
	}},
	{"time_end", PreferLonger, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return longer(&d.TimeEnd, s.TimeEnd)
	}},
	{"contact_first_name", PreferLonger, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return longer(&d.ContactFirstName, s.ContactFirstName)
	}},
	{"contact_last_name", PreferLonger, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return longer(&d.ContactLastName, s.ContactLastName)
	}},
	{"phone", PreferLonger, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return longer(&d.Phone, s.Phone)
	}},
	{"email", PreferLonger, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return longer(&d.Email, s.Email)
	}},
	{"source_file_name", PreferLonger, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return longer(&d.SourceFileName, s.SourceFileName)
	}},

	{"gift_items", PreferMore, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return more(&d.GiftItems, s.GiftItems)
	}},
	{"addon_items", PreferMore, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		return more(&d.AddonItems, s.AddonItems)
	}},

	{"source_file_id", FillMissing, func(d *model.ExtractedRecord, s model.ExtractedRecord) bool {
		if d.SourceFileID != "" || s.SourceFileID == "" {
			return false
		}
		d.SourceFileID = s.SourceFileID
		return true
	}},
}

// Merge applies Rules to dst and returns the names of the fields it changed.
func Merge(dst *model.ExtractedRecord, src model.ExtractedRecord) []string {
	var changed []string
	for _, r := range Rules {
		if r.merge(dst, src) {
			changed = append(changed, r.Field)
		}
	}
	return changed
}

func fresh[T ~string](dst *T, src T) bool {
	if src == "" || *dst == src {
		return false
	}
	*dst = src
	return true
}

func freshTime(dst **time.Time, src *time.Time) bool {
	if src == nil || (*dst != nil && (*dst).Equal(*src)) {
		return false
	}
	t := *src
	*dst = &t
	return true
}

func positive[T int | float64](dst *T, src T) bool {
	if src <= 0 || *dst > 0 {
		return false
	}
	*dst = src
	return true
}

func longer(dst *string, src string) bool {
	src = strings.TrimSpace(src)
	if len([]rune(src)) <= len([]rune(strings.TrimSpace(*dst))) {
		return false
	}
	*dst = src
	return true
}

func more[T any](dst *[]T, src []T) bool {
	if len(src) <= len(*dst) {
		return false
	}
	*dst = append([]T(nil), src...)
	return true
}
