package extract

import (
	"github.com/sells-group/quote-sync/internal/sheet"
	"github.com/sells-group/quote-sync/internal/textfold"
	"github.com/sells-group/quote-sync/internal/trace"
)

// SearchLabeled scans w row by row for a text cell containing one of labels,
// then probes the cell to its right and the cell below it for a positive
// number. The first hit wins. Unreadable cells are skipped.
func SearchLabeled(s sheet.Sheet, w Window, labels []string, field string, tr *trace.Collector) (float64, bool) {
	rows, cols := s.Dims()
	lastRow, lastCol := min(w.LastRow, rows-1), min(w.LastCol, cols-1)

	for row := w.FirstRow; row <= lastRow; row++ {
		for col := w.FirstCol; col <= lastCol; col++ {
			v, err := s.Cell(row, col)
			if err != nil || v.Kind != sheet.KindText || !textfold.ContainsAny(v.Text, labels...) {
				continue
			}
			for _, p := range [][2]int{{row, col + 1}, {row + 1, col}} {
				pv, err := s.Cell(p[0], p[1])
				if err != nil {
					continue
				}
				if n := sheet.CoerceNumber(pv); n.OK {
					tr.Step("%s: label %q at %s, value %v at %s", field, v.Text,
						sheet.RefName(row, col), n.Value, sheet.RefName(p[0], p[1]))
					return n.Value, true
				}
			}
		}
	}
	tr.Step("%s: no labeled value found in search window", field)
	return 0, false
}
