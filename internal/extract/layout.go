package extract

// AnchorRef is the cell whose text classifies a document's layout.
const AnchorRef = "B3"

// currentCells is the coordinate map of the current layout.
var currentCells = struct {
	Menu      string
	EventDate string
	EventType string
	TimeRange string
	Guests    string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Gifts     []string
	Total     string
	Deposit   string
	Balance   string

	AddonFirstRow int // 1-based, inclusive
	AddonLastRow  int
	AddonDescCol  string
	AddonPriceCol string
}{
	Menu:      AnchorRef,
	EventDate: "C5",
	EventType: "C6",
	TimeRange: "C7",
	Guests:    "C8",
	FirstName: "C10",
	LastName:  "C11",
	Phone:     "C12",
	Email:     "C13",
	Gifts:     []string{"B16", "B17", "B18"},
	Total:     "F20",
	Deposit:   "F21",
	Balance:   "F22",

	AddonFirstRow: 25,
	AddonLastRow:  29,
	AddonDescCol:  "B",
	AddonPriceCol: "F",
}

// legacyCells is the coordinate map of the legacy layout.
var legacyCells = struct {
	EventDate string
	EventType string
	Guests    string
	Menu      string
	TimeRange string
	Contact   string
	Phone     string
	Email     string
	Total     string
	Deposit   string
}{
	EventDate: "B2",
	EventType: "B4",
	Guests:    "B5",
	Menu:      "B6",
	TimeRange: "B7",
	Contact:   "B9",
	Phone:     "B10",
	Email:     "B11",
	Total:     "E18",
	Deposit:   "E20",
}

// Window is a rectangular, zero-based, inclusive block of cells.
type Window struct {
	FirstRow, LastRow int
	FirstCol, LastCol int
}

// legacyWindow covers rows 1-40 and columns A-J.
var legacyWindow = Window{FirstRow: 0, LastRow: 39, FirstCol: 0, LastCol: 9}

// Label substrings that anchor the fallback search, matched accent- and
// case-insensitively.
var (
	totalLabels = []string{"total"}
	guestLabels = []string{"guests", "ospiti", "persone"}
)
