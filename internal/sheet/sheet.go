package sheet

// Sheet is a read-only grid of cells. Reads outside the populated area return
// an empty value; an error means the cell exists but could not be decoded.
type Sheet interface {
	Cell(row, col int) (Value, error)
	Dims() (rows, cols int)
}

// At reads the cell at an A1-style reference.
func At(s Sheet, ref string) (Value, error) {
	row, col, err := ParseRef(ref)
	if err != nil {
		return Value{}, err
	}
	return s.Cell(row, col)
}

type cellKey struct {
	row, col int
}

// Grid is an in-memory Sheet. It backs documents whose file could not be
// opened and is convenient for building fixtures.
type Grid struct {
	cells  map[cellKey]Value
	errs   map[cellKey]error
	rows   int
	cols   int
	epoch4 bool
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{
		cells: make(map[cellKey]Value),
		errs:  make(map[cellKey]error),
	}
}

// Set stores v at an A1-style reference.
func (g *Grid) Set(ref string, v Value) *Grid {
	row, col := MustRef(ref)
	return g.SetAt(row, col, v)
}

// SetAt stores v at zero-based indexes.
func (g *Grid) SetAt(row, col int, v Value) *Grid {
	g.grow(row, col)
	v.Date1904 = g.epoch4
	g.cells[cellKey{row, col}] = v
	return g
}

// SetError marks the cell at ref as undecodable.
func (g *Grid) SetError(ref string, err error) *Grid {
	row, col := MustRef(ref)
	g.grow(row, col)
	g.errs[cellKey{row, col}] = err
	return g
}

// Use1904 switches day-serial conversion to the 1904 epoch for cells set afterwards.
func (g *Grid) Use1904() *Grid {
	g.epoch4 = true
	return g
}

func (g *Grid) grow(row, col int) {
	if row+1 > g.rows {
		g.rows = row + 1
	}
	if col+1 > g.cols {
		g.cols = col + 1
	}
}

// Cell implements Sheet.
func (g *Grid) Cell(row, col int) (Value, error) {
	k := cellKey{row, col}
	if err, ok := g.errs[k]; ok {
		return Value{Kind: KindError}, err
	}
	return g.cells[k], nil
}

// Dims implements Sheet.
func (g *Grid) Dims() (int, int) {
	return g.rows, g.cols
}
