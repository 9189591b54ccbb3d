package extract

import (
	"github.com/sells-group/quote-sync/internal/model"
	"github.com/sells-group/quote-sync/internal/sheet"
	"github.com/sells-group/quote-sync/internal/textfold"
	"github.com/sells-group/quote-sync/internal/trace"
)

// Detect classifies a sheet by its anchor cell: text containing "menu" means
// the current layout, anything else (including read failures) means legacy.
func Detect(s sheet.Sheet, tr *trace.Collector) (kind model.TemplateKind) {
	defer func() {
		if r := recover(); r != nil {
			tr.Step("template: anchor %s read panicked (%v), defaulting to legacy", AnchorRef, r)
			kind = model.TemplateLegacy
		}
	}()

	v, err := sheet.At(s, AnchorRef)
	if err != nil {
		tr.Step("template: anchor %s unreadable (%v), defaulting to legacy", AnchorRef, err)
		return model.TemplateLegacy
	}
	if textfold.Contains(v.Text, "menu") {
		tr.Step("template: anchor %s = %q, current layout", AnchorRef, v.Text)
		return model.TemplateCurrent
	}
	tr.Step("template: anchor %s = %q, legacy layout", AnchorRef, v.Text)
	return model.TemplateLegacy
}
