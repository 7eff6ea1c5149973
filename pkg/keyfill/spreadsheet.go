package keyfill

// Spreadsheet is the read-side contract the resolver depends on. Values
// come back as formatted strings: the backend owns number formatting, the
// core only routes and substitutes. An empty string means an empty cell;
// whitespace-only content is a value, not a gap.
type Spreadsheet interface {
	// SheetNames returns the workbook's sheet names in order. The first
	// sheet is the default for keywords that omit an explicit sheet.
	SheetNames() ([]string, error)

	// ReadCell returns the formatted value of a single cell.
	ReadCell(sheet, ref string) (string, error)

	// ReadRange returns a 2D grid for an A1:B5-style or named range.
	ReadRange(sheet, ref string) ([][]string, error)

	// ReadLastValue walks down from ref and returns the last non-empty
	// value before the first empty cell.
	ReadLastValue(sheet, ref string) (string, error)

	// ReadTitleLastValue scans the row at ref for the leftmost column
	// whose header matches title (case-insensitive), then walks down from
	// below it like ReadLastValue.
	ReadTitleLastValue(sheet, ref, title string) (string, error)

	// ReadItems collects the non-empty run of values walking down from
	// ref, then drops the last offset entries. An offset at or beyond the
	// collected length yields an empty slice, not an error.
	ReadItems(sheet, ref string, offset int) ([]string, error)

	// ReadColumns assembles the requested columns side by side,
	// row-aligned, headers first. With byTitle the refs are column titles
	// matched (case-insensitively) in startRow; otherwise they are header
	// cell references and values are collected from the cell below each.
	ReadColumns(sheet string, refs []string, byTitle bool, startRow int) ([][]string, error)
}
