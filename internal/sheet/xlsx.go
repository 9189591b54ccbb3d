package sheet

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions selects the worksheet to read.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

type xlsxSheet struct {
	sheet    *xlsx.Sheet
	date1904 bool
	rows     int
	cols     int
}

// OpenXLSX opens a workbook from disk and returns the selected worksheet.
func OpenXLSX(path string, opts XLSXOptions) (Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	return fromFile(f, opts)
}

// OpenXLSXBinary parses a workbook held in memory.
func OpenXLSXBinary(data []byte, opts XLSXOptions) (Sheet, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open binary")
	}
	return fromFile(f, opts)
}

func fromFile(f *xlsx.File, opts XLSXOptions) (Sheet, error) {
	sh, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	s := &xlsxSheet{sheet: sh, date1904: f.Date1904, rows: len(sh.Rows)}
	for _, row := range sh.Rows {
		if row != nil && len(row.Cells) > s.cols {
			s.cols = len(row.Cells)
		}
	}
	return s, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

// Dims implements Sheet.
func (s *xlsxSheet) Dims() (int, int) {
	return s.rows, s.cols
}

// Cell implements Sheet. It never panics; decoding failures surface as errors.
func (s *xlsxSheet) Cell(row, col int) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = Value{Kind: KindError}, eris.Errorf("xlsx: read %s: %v", RefName(row, col), r)
		}
	}()

	if row < 0 || col < 0 || row >= len(s.sheet.Rows) {
		return Value{}, nil
	}
	r := s.sheet.Rows[row]
	if r == nil || col >= len(r.Cells) || r.Cells[col] == nil {
		return Value{}, nil
	}
	return cellValue(r.Cells[col], s.date1904)
}

// cellValue maps a tealeg cell onto a tagged Value. Numeric cells carrying a
// date or time number format become KindDate.
func cellValue(c *xlsx.Cell, date1904 bool) (Value, error) {
	raw := strings.TrimSpace(c.Value)
	if raw == "" {
		return Value{}, nil
	}

	switch c.Type() {
	case xlsx.CellTypeNumeric:
		f, err := c.Float()
		if err != nil {
			return Value{Kind: KindText, Text: raw, Date1904: date1904}, nil
		}
		if isDateFormat(c.NumFmt) {
			return Value{
				Kind:     KindDate,
				Text:     raw,
				Number:   f,
				Time:     FromSerial(f, date1904),
				Date1904: date1904,
			}, nil
		}
		return Value{Kind: KindNumber, Text: raw, Number: f, Date1904: date1904}, nil
	case xlsx.CellTypeBool:
		return Value{Kind: KindBool, Text: raw}, nil
	case xlsx.CellTypeError:
		return Value{Kind: KindError, Text: raw}, eris.Errorf("xlsx: cell holds error %s", raw)
	case xlsx.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return Value{Kind: KindDate, Text: raw, Time: t, Number: ToSerial(t, date1904), Date1904: date1904}, nil
		}
		return Value{Kind: KindText, Text: raw, Date1904: date1904}, nil
	default:
		return Value{Kind: KindText, Text: raw, Date1904: date1904}, nil
	}
}

// isDateFormat reports whether a number format renders dates or times.
// Quoted literals, escapes and bracketed sections are ignored.
func isDateFormat(numFmt string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range strings.ToLower(numFmt) {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	f := b.String()
	if f == "general" || f == "@" {
		return false
	}
	return strings.ContainsAny(f, "dyhs")
}
