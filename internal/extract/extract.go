// Package extract turns an opened quote spreadsheet into an ExtractedRecord.
// Both known layouts are read by coordinate maps; values missing from cells
// are filled from file-name hints, then derived fields are computed.
package extract

import (
	"time"

	"github.com/sells-group/quote-sync/internal/filename"
	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/sheet"
	"github.com/sells-group/quote-sync/internal/trace"
)

// Extract detects the layout of s and reads it into a record for entry.
func Extract(s sheet.Sheet, entry model.RemoteEntry, now time.Time, tr *trace.Collector) model.ExtractedRecord {
	hints := filename.Parse(entry.Name, now)
	tr.Step("filename hints: date=%q event_type=%q menu=%s status=%s", hints.Date, hints.EventType, hints.MenuTier, hints.Status)

	var rec model.ExtractedRecord
	switch Detect(s, tr) {
	case model.TemplateCurrent:
		rec = Current(s, tr)
	default:
		rec = Legacy(s, entry, tr)
	}
	Finalize(&rec, entry, hints, tr)
	return rec
}

// FromFilename builds a partial legacy record from file-name hints alone,
// used when the document itself cannot be opened.
func FromFilename(entry model.RemoteEntry, now time.Time, tr *trace.Collector) model.ExtractedRecord {
	hints := filename.Parse(entry.Name, now)
	rec := model.ExtractedRecord{
		TemplateKind: model.TemplateLegacy,
		GiftItems:    []string{},
		AddonItems:   []model.AddonItem{},
	}
	Finalize(&rec, entry, hints, tr)
	return rec
}

// Finalize fills gaps from hints, derives balance and status, and stamps the
// source fields.
func Finalize(rec *model.ExtractedRecord, entry model.RemoteEntry, hints filename.Hints, tr *trace.Collector) {
	if rec.EventDate == "" && hints.Date != "" {
		rec.EventDate = hints.Date
		tr.Step("event_date: %s from filename", hints.Date)
	}
	if rec.EventType == "" && hints.EventType != "" {
		rec.EventType = hints.EventType
		tr.Step("event_type: %q from filename", hints.EventType)
	}
	if rec.MenuTier == "" {
		rec.MenuTier = hints.MenuTier
		tr.Step("menu_tier: %s from filename (explicit=%t)", hints.MenuTier, hints.MenuExplicit)
	}
	if rec.BalanceDue == 0 && rec.TotalAmount > 0 {
		rec.BalanceDue = max(rec.TotalAmount-rec.DepositAmount, 0)
		tr.Step("balance_due: derived %v", rec.BalanceDue)
	}
	rec.Status = DeriveStatus(hints.Status, rec.DepositAmount)
	tr.Step("status: %s", rec.Status)

	if rec.GiftItems == nil {
		rec.GiftItems = []string{}
	}
	if rec.AddonItems == nil {
		rec.AddonItems = []model.AddonItem{}
	}
	rec.SourceFileID = entry.ID
	rec.SourceFileName = entry.Name
	rec.SourceModifiedAt = entry.ModifiedAt
}

// DeriveStatus combines the file-name marker with the deposit. A cancel
// marker always wins; a deposit or a confirm marker means confirmed.
func DeriveStatus(hint model.Status, deposit float64) model.Status {
	switch {
	case hint == model.StatusCancelled:
		return model.StatusCancelled
	case hint == model.StatusConfirmed || deposit > 0:
		return model.StatusConfirmed
	default:
		return model.StatusActive
	}
}
