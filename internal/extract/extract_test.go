package extract

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/sheet"
	"github.com/sells-group/quote-sync/internal/trace"
)

var now = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTrace() *trace.Collector {
	return trace.New("test", trace.WithClock(func() time.Time { return now }))
}

// panicSheet panics on every read.
type panicSheet struct{}

func (panicSheet) Cell(int, int) (sheet.Value, error) { panic("corrupt") }
func (panicSheet) Dims() (int, int)                   { return 10, 10 }

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		s    sheet.Sheet
		want model.TemplateKind
	}{
		{"menu anchor", sheet.NewGrid().Set(AnchorRef, sheet.Text("Menu 747")), model.TemplateCurrent},
		{"uppercase", sheet.NewGrid().Set(AnchorRef, sheet.Text("MENÙ DEGUSTAZIONE")), model.TemplateCurrent},
		{"unrelated", sheet.NewGrid().Set(AnchorRef, sheet.Text("Preventivo")), model.TemplateLegacy},
		{"empty sheet", sheet.NewGrid(), model.TemplateLegacy},
		{"numeric anchor", sheet.NewGrid().Set(AnchorRef, sheet.Number(747)), model.TemplateLegacy},
		{"error cell", sheet.NewGrid().SetError(AnchorRef, errors.New("#REF!")), model.TemplateLegacy},
		{"panicking reader", panicSheet{}, model.TemplateLegacy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTrace()
			assert.Equal(t, tt.want, Detect(tt.s, tr))
			assert.Equal(t, 1, tr.Len())
		})
	}
}

func currentSheet() *sheet.Grid {
	return sheet.NewGrid().
		Set("B3", sheet.Text("Menu 757")).
		Set("C5", sheet.Number(45945)).
		Set("C6", sheet.Text("Matrimonio")).
		Set("C7", sheet.Text("19:30 - 23:30")).
		Set("C8", sheet.Number(80)).
		Set("C10", sheet.Text("Giulia")).
		Set("C11", sheet.Text("Rossi")).
		Set("C12", sheet.Number(3331234567)).
		Set("C13", sheet.Text("giulia@example.com")).
		Set("B16", sheet.Text("Confetti")).
		Set("B18", sheet.Text("Torta")).
		Set("F20", sheet.Text("€ 4.800,00")).
		Set("F21", sheet.Number(1000)).
		Set("B25", sheet.Text("Open bar")).
		Set("F25", sheet.Number(600)).
		Set("F27", sheet.Number(150))
}

func TestCurrent(t *testing.T) {
	tr := newTrace()
	rec := Current(currentSheet(), tr)

	assert.Equal(t, model.TemplateCurrent, rec.TemplateKind)
	assert.Equal(t, "757", rec.MenuTier)
	assert.Equal(t, "2025-10-15", rec.EventDate)
	assert.Equal(t, "Matrimonio", rec.EventType)
	assert.Equal(t, "19:30", rec.TimeStart)
	assert.Equal(t, "23:30", rec.TimeEnd)
	assert.Equal(t, 80, rec.GuestCount)
	assert.Equal(t, "Giulia Rossi", rec.ContactName())
	assert.Equal(t, "3331234567", rec.Phone)
	assert.Equal(t, []string{"Confetti", "Torta"}, rec.GiftItems)
	assert.InDelta(t, 4800, rec.TotalAmount, 0.001)
	assert.InDelta(t, 1000, rec.DepositAmount, 0.001)
	assert.Zero(t, rec.BalanceDue)
	assert.Equal(t, []model.AddonItem{
		{Description: "Open bar", Price: 600},
		{Description: "", Price: 150},
	}, rec.AddonItems)

	// menu, date, type, time, guests, 4 contact fields, 3 gifts,
	// 3 amounts and 5 add-on rows of two cells each.
	assert.Equal(t, 1+1+1+1+1+4+3+3+10, tr.Len())
}

func TestCurrent_UnreadableCellDegrades(t *testing.T) {
	g := currentSheet().SetError("C8", errors.New("#VALUE!"))
	tr := newTrace()
	rec := Current(g, tr)

	assert.Zero(t, rec.GuestCount)
	assert.Equal(t, "Matrimonio", rec.EventType)

	var found bool
	for _, l := range tr.Lines() {
		if strings.Contains(l, "guest_count [C8]: unreadable") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGuestCount_OutOfRangeIsUnknown(t *testing.T) {
	tr := newTrace()
	rec := Current(currentSheet().Set("C8", sheet.Number(1e20)), tr)
	assert.Zero(t, rec.GuestCount)

	var found bool
	for _, l := range tr.Lines() {
		if strings.Contains(l, "guest_count: 1e+20 out of range") {
			found = true
		}
	}
	assert.True(t, found)

	legacy := Legacy(sheet.NewGrid().Set("B5", sheet.Number(5e12)), model.RemoteEntry{}, newTrace())
	assert.Zero(t, legacy.GuestCount)

	assert.Equal(t, 120, guestCount(119.6, newTrace()))
	assert.Equal(t, int(math.MaxInt32), guestCount(math.MaxInt32, newTrace()))
}

func TestLegacy(t *testing.T) {
	g := sheet.NewGrid().
		Set("B2", sheet.Text("15/10/2025")).
		Set("B4", sheet.Text("Comunione")).
		Set("B5", sheet.Text("45")).
		Set("B6", sheet.Text(`Scelta: "Menu Gold 747" con aperitivo`)).
		Set("B7", sheet.Number(0.8125)).
		Set("B9", sheet.Text("Anna Maria Bianchi")).
		Set("B10", sheet.Text("+39 333 000")).
		Set("B11", sheet.Text("anna@example.com")).
		Set("E18", sheet.Number(2250)).
		Set("E20", sheet.Number(500))

	entry := model.RemoteEntry{ID: "f1", Name: "Comunione Anna.xlsx"}
	rec := Legacy(g, entry, newTrace())

	assert.Equal(t, model.TemplateLegacy, rec.TemplateKind)
	assert.Equal(t, "2025-10-15", rec.EventDate)
	assert.Equal(t, "Comunione", rec.EventType)
	assert.Equal(t, 45, rec.GuestCount)
	assert.Equal(t, "747", rec.MenuTier)
	assert.Equal(t, "19:30", rec.TimeStart)
	assert.Empty(t, rec.TimeEnd)
	assert.Equal(t, "Anna", rec.ContactFirstName)
	assert.Equal(t, "Maria Bianchi", rec.ContactLastName)
	assert.InDelta(t, 2250, rec.TotalAmount, 0.001)
	assert.InDelta(t, 500, rec.DepositAmount, 0.001)
	assert.Equal(t, "f1", rec.SourceFileID)
}

func TestLegacy_TotalFallbackSearch(t *testing.T) {
	g := sheet.NewGrid().
		Set("D30", sheet.Text("Totale")).
		Set("E30", sheet.Number(3100))

	rec := Legacy(g, model.RemoteEntry{}, newTrace())
	assert.InDelta(t, 3100, rec.TotalAmount, 0.001)
}

func TestLegacy_GuestFallbackBelowLabel(t *testing.T) {
	g := sheet.NewGrid().
		Set("C12", sheet.Text("N. Ospiti")).
		Set("D12", sheet.Text("tanti")).
		Set("C13", sheet.Number(62))

	rec := Legacy(g, model.RemoteEntry{}, newTrace())
	assert.Equal(t, 62, rec.GuestCount)
}

func TestSearchLabeled(t *testing.T) {
	tests := []struct {
		name string
		g    *sheet.Grid
		want float64
		ok   bool
	}{
		{
			name: "right wins over below",
			g:    sheet.NewGrid().Set("A1", sheet.Text("TOTAL")).Set("B1", sheet.Number(10)).Set("A2", sheet.Number(20)),
			want: 10, ok: true,
		},
		{
			name: "non-positive right falls to below",
			g:    sheet.NewGrid().Set("A1", sheet.Text("total")).Set("B1", sheet.Number(0)).Set("A2", sheet.Number(20)),
			want: 20, ok: true,
		},
		{
			name: "first label in row order wins",
			g: sheet.NewGrid().
				Set("C2", sheet.Text("Totale")).Set("D2", sheet.Number(5)).
				Set("A3", sheet.Text("Totale")).Set("B3", sheet.Number(7)),
			want: 5, ok: true,
		},
		{
			name: "outside window is ignored",
			g:    sheet.NewGrid().Set("A41", sheet.Text("Totale")).Set("B41", sheet.Number(9)),
		},
		{
			name: "no label",
			g:    sheet.NewGrid().Set("A1", sheet.Number(99)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SearchLabeled(tt.g, legacyWindow, totalLabels, "total_amount", newTrace())
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestMatchMenuTier(t *testing.T) {
	assert.Equal(t, "767", MatchMenuTier(`Menu "767 Deluxe"`))
	assert.Equal(t, "737", MatchMenuTier(`menu 737 base`))
	assert.Equal(t, "", MatchMenuTier(`"speciale" 999`))
	assert.Equal(t, "", MatchMenuTier(""))
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("  Mario   Rossi ")
	assert.Equal(t, "Mario", first)
	assert.Equal(t, "Rossi", last)

	first, last = SplitName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Empty(t, last)
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, model.StatusCancelled, DeriveStatus(model.StatusCancelled, 500))
	assert.Equal(t, model.StatusConfirmed, DeriveStatus(model.StatusActive, 500))
	assert.Equal(t, model.StatusConfirmed, DeriveStatus(model.StatusConfirmed, 0))
	assert.Equal(t, model.StatusActive, DeriveStatus(model.StatusActive, 0))
}

func TestExtract_FilenameOnly(t *testing.T) {
	entry := model.RemoteEntry{ID: "abc", Name: "CONF 15_10 Compleanno Sara (Menu 747).xlsx"}
	rec := Extract(sheet.NewGrid(), entry, now, newTrace())

	assert.Equal(t, model.TemplateLegacy, rec.TemplateKind)
	assert.Equal(t, "2025-10-15", rec.EventDate)
	assert.Equal(t, model.StatusConfirmed, rec.Status)
	assert.Equal(t, "747", rec.MenuTier)
	assert.Equal(t, "Compleanno Sara", rec.EventType)
	assert.Equal(t, "abc", rec.SourceFileID)
	assert.NotNil(t, rec.GiftItems)
	assert.NotNil(t, rec.AddonItems)
}

func TestFromFilename(t *testing.T) {
	entry := model.RemoteEntry{ID: "abc", Name: "NO 01_02 Cena.xlsx"}
	tr := newTrace()
	rec := FromFilename(entry, now, tr)
	assert.Equal(t, model.StatusCancelled, rec.Status)
	assert.Equal(t, "2025-02-01", rec.EventDate)
	assert.Equal(t, model.DefaultMenuTier(), rec.MenuTier)
	assert.Positive(t, tr.Len())
}

func TestExtract_CellDatePreferredOverFilename(t *testing.T) {
	g := currentSheet()
	entry := model.RemoteEntry{Name: "01_01 Matrimonio.xlsx"}
	rec := Extract(g, entry, now, newTrace())

	assert.Equal(t, model.TemplateCurrent, rec.TemplateKind)
	assert.Equal(t, "2025-10-15", rec.EventDate)
	assert.Equal(t, "757", rec.MenuTier)
	assert.InDelta(t, 3800, rec.BalanceDue, 0.001)
	assert.Equal(t, model.StatusConfirmed, rec.Status)
}

func TestExtract_PanicRecoveredByRun(t *testing.T) {
	// Detect survives a panicking sheet; the legacy reader is guarded by the
	// caller's trace.Run boundary.
	res := trace.Run(newTrace(), func(rec *model.ExtractedRecord) error {
		*rec = Extract(panicSheet{}, model.RemoteEntry{Name: "x.xlsx"}, now, newTrace())
		return nil
	})
	require.False(t, res.OK)
	assert.Contains(t, res.Error, "corrupt")
}
