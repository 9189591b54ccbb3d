package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/sheet"
	"github.com/sells-group/quote-sync/internal/trace"
)

var quoted = regexp.MustCompile(`["“”«»]([^"“”«»]+)["“”«»]`)

// Legacy reads a legacy-layout sheet. Total and guest count fall back to a
// bounded label search when their fixed cells yield nothing.
func Legacy(s sheet.Sheet, entry model.RemoteEntry, tr *trace.Collector) model.ExtractedRecord {
	r := reader{s: s, tr: tr}
	c := legacyCells
	rec := model.ExtractedRecord{
		TemplateKind: model.TemplateLegacy,
		GiftItems:    []string{},
		AddonItems:   []model.AddonItem{},

		SourceFileID:     entry.ID,
		SourceFileName:   entry.Name,
		SourceModifiedAt: entry.ModifiedAt,
	}

	rec.EventDate = r.date("event_date", c.EventDate)
	rec.EventType = r.text("event_type", c.EventType)

	guests := r.number("guest_count", c.Guests)
	if guests == 0 {
		guests, _ = SearchLabeled(s, legacyWindow, guestLabels, "guest_count", tr)
	}
	rec.GuestCount = guestCount(guests, tr)

	rec.MenuTier = MatchMenuTier(r.text("menu", c.Menu))
	if rec.MenuTier != "" {
		tr.Step("menu_tier: matched %s", rec.MenuTier)
	}

	tm := r.timeRange("time_range", c.TimeRange)
	rec.TimeRangeRaw, rec.TimeStart, rec.TimeEnd = tm.Raw, tm.Start, tm.End

	rec.ContactFirstName, rec.ContactLastName = SplitName(r.text("contact_name", c.Contact))
	rec.Phone = r.text("phone", c.Phone)
	rec.Email = r.text("email", c.Email)

	rec.TotalAmount = r.number("total_amount", c.Total)
	if rec.TotalAmount == 0 {
		rec.TotalAmount, _ = SearchLabeled(s, legacyWindow, totalLabels, "total_amount", tr)
	}
	rec.DepositAmount = r.number("deposit_amount", c.Deposit)
	return rec
}

// MatchMenuTier finds a known tier token inside the quoted parts of a
// free-text menu description, or the whole text when nothing is quoted.
func MatchMenuTier(text string) string {
	candidates := []string{}
	for _, m := range quoted.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	if len(candidates) == 0 {
		candidates = append(candidates, text)
	}
	for _, cand := range candidates {
		for _, tier := range model.MenuTiers {
			if strings.Contains(cand, tier) {
				return tier
			}
		}
	}
	return ""
}

// SplitName splits a contact name on its first space.
func SplitName(name string) (first, last string) {
	name = strings.Join(strings.Fields(name), " ")
	first, last, _ = strings.Cut(name, " ")
	return first, last
}
