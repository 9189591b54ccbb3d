package extract

import (
	"regexp"

	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/sheet"
	"github.com/sells-group/quote-sync/internal/trace"
)

var anchorTier = regexp.MustCompile(`(?i)menu\D*(\d+)`)

// Current reads a current-layout sheet by fixed coordinates. Every field
// read adds one trace step; unreadable fields keep their zero value.
func Current(s sheet.Sheet, tr *trace.Collector) model.ExtractedRecord {
	r := reader{s: s, tr: tr}
	c := currentCells
	rec := model.ExtractedRecord{TemplateKind: model.TemplateCurrent}

	if m := anchorTier.FindStringSubmatch(r.text("menu", c.Menu)); m != nil {
		rec.MenuTier = m[1]
	}
	rec.EventDate = r.date("event_date", c.EventDate)
	rec.EventType = r.text("event_type", c.EventType)

	tm := r.timeRange("time_range", c.TimeRange)
	rec.TimeRangeRaw, rec.TimeStart, rec.TimeEnd = tm.Raw, tm.Start, tm.End

	rec.GuestCount = guestCount(r.number("guest_count", c.Guests), tr)
	rec.ContactFirstName = r.text("contact_first_name", c.FirstName)
	rec.ContactLastName = r.text("contact_last_name", c.LastName)
	rec.Phone = r.text("phone", c.Phone)
	rec.Email = r.text("email", c.Email)

	rec.GiftItems = []string{}
	for _, ref := range c.Gifts {
		if g := r.text("gift", ref); g != "" {
			rec.GiftItems = append(rec.GiftItems, g)
		}
	}

	rec.TotalAmount = r.number("total_amount", c.Total)
	rec.DepositAmount = r.number("deposit_amount", c.Deposit)
	rec.BalanceDue = r.number("balance_due", c.Balance)

	rec.AddonItems = []model.AddonItem{}
	for row := c.AddonFirstRow; row <= c.AddonLastRow; row++ {
		desc := r.text("addon_description", cellRef(c.AddonDescCol, row))
		price := r.number("addon_price", cellRef(c.AddonPriceCol, row))
		if desc == "" && price == 0 {
			continue
		}
		rec.AddonItems = append(rec.AddonItems, model.AddonItem{Description: desc, Price: price})
	}
	return rec
}
