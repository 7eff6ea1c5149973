// Package xlsx backs spreadsheet keywords with .xlsx workbooks via
// excelize. Cell values come back as excelize formats them, so what the
// workbook displays is what substitutes into the text.
package xlsx

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fillio/go-keyfill/pkg/keyfill"
)

// Workbook adapts an excelize file to the keyfill Spreadsheet interface.
// Not safe for concurrent use.
type Workbook struct {
	file *excelize.File
	path string
}

// Open loads a workbook from disk.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, keyfill.NewCollaboratorError("open workbook", path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

// New creates an empty in-memory workbook with one default sheet.
func New() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// Close releases the underlying file handles.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return keyfill.NewCollaboratorError("save workbook", path, err)
	}
	return nil
}

// WriteCell sets one cell value.
func (w *Workbook) WriteCell(sheet, ref string, value interface{}) error {
	if err := w.file.SetCellValue(sheet, ref, value); err != nil {
		return keyfill.NewCollaboratorError("write cell", sheet+"!"+ref, err)
	}
	return nil
}

// DefineName registers a workbook-scoped named range, e.g.
// DefineName("totals", "Sheet1!$B$2:$B$9").
func (w *Workbook) DefineName(name, refersTo string) error {
	err := w.file.SetDefinedName(&excelize.DefinedName{Name: name, RefersTo: refersTo})
	if err != nil {
		return keyfill.NewCollaboratorError("define name", name, err)
	}
	return nil
}

func (w *Workbook) SheetNames() ([]string, error) {
	return w.file.GetSheetList(), nil
}

func (w *Workbook) ReadCell(sheet, ref string) (string, error) {
	value, err := w.file.GetCellValue(sheet, ref)
	if err != nil {
		return "", keyfill.NewLookupError(sheet+"!"+ref, err.Error())
	}
	return value, nil
}

// ReadLastValue walks down from ref and returns the last value before the
// first empty cell. A bare column letter starts at row 1.
func (w *Workbook) ReadLastValue(sheet, ref string) (string, error) {
	items, err := w.ReadItems(sheet, ref, 0)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", keyfill.NewLookupError(sheet+"!"+ref, "no values at or below reference")
	}
	return items[len(items)-1], nil
}

// ReadTitleLastValue scans right from ref for a column titled title, then
// returns the last value below that title. Title matching ignores case.
func (w *Workbook) ReadTitleLastValue(sheet, ref, title string) (string, error) {
	col, row, err := w.anchor(sheet, ref)
	if err != nil {
		return "", err
	}
	rows, err := w.rows(sheet)
	if err != nil {
		return "", err
	}
	for c := col; ; c++ {
		cell := cellAt(rows, row, c)
		if cell == "" {
			break
		}
		if strings.EqualFold(strings.TrimSpace(cell), strings.TrimSpace(title)) {
			items := walkDownRows(rows, row+1, c)
			if len(items) == 0 {
				return "", keyfill.NewLookupError(sheet+"!"+title, "column has no values below its title")
			}
			return items[len(items)-1], nil
		}
	}
	return "", keyfill.NewLookupError(sheet+"!"+title, "no column with this title")
}

// ReadItems collects values walking down from ref until the first empty
// cell, dropping the last offset values from the run.
func (w *Workbook) ReadItems(sheet, ref string, offset int) ([]string, error) {
	col, row, err := w.anchor(sheet, ref)
	if err != nil {
		return nil, err
	}
	items, err := w.walkDown(sheet, col, row)
	if err != nil {
		return nil, err
	}
	if offset >= len(items) {
		return nil, nil
	}
	return items[:len(items)-offset], nil
}

// ReadRange reads a rectangular block. ref is A1:B5 notation, a defined
// name, or a single cell.
func (w *Workbook) ReadRange(sheet, ref string) ([][]string, error) {
	if !strings.Contains(ref, ":") {
		if namedSheet, namedRef, ok := w.resolveDefinedName(ref); ok {
			sheet, ref = namedSheet, namedRef
		}
	}
	if !strings.Contains(ref, ":") {
		value, err := w.ReadCell(sheet, ref)
		if err != nil {
			return nil, err
		}
		return [][]string{{value}}, nil
	}

	corners := strings.SplitN(ref, ":", 2)
	c1, r1, err := excelize.CellNameToCoordinates(corners[0])
	if err != nil {
		return nil, keyfill.NewLookupError(sheet+"!"+ref, err.Error())
	}
	c2, r2, err := excelize.CellNameToCoordinates(corners[1])
	if err != nil {
		return nil, keyfill.NewLookupError(sheet+"!"+ref, err.Error())
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}

	rows, err := w.rows(sheet)
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, r2-r1+1)
	for r := r1; r <= r2; r++ {
		rowOut := make([]string, 0, c2-c1+1)
		for c := c1; c <= c2; c++ {
			rowOut = append(rowOut, cellAt(rows, r, c))
		}
		out = append(out, rowOut)
	}
	return out, nil
}

// ReadColumns reads the given columns and returns them transposed into
// rows, padded to equal length. With byTitle the refs are column titles
// searched case-insensitively along startRow, each result column headed by
// the matched title. Otherwise the refs are cells or bare column letters,
// read downward as-is.
func (w *Workbook) ReadColumns(sheet string, refs []string, byTitle bool, startRow int) ([][]string, error) {
	rows, err := w.rows(sheet)
	if err != nil {
		return nil, err
	}

	var columns [][]string
	for _, ref := range refs {
		var column []string
		if byTitle {
			col, found := findTitle(rows, startRow, ref)
			if !found {
				continue
			}
			column = append([]string{cellAt(rows, startRow, col)}, walkDownRows(rows, startRow+1, col)...)
		} else {
			col, row, err := w.anchor(sheet, ref)
			if err != nil {
				return nil, err
			}
			column = walkDownRows(rows, row, col)
		}
		columns = append(columns, column)
	}
	if len(columns) == 0 {
		return nil, keyfill.NewLookupError(sheet, "none of the requested columns exist")
	}

	height := 0
	for _, column := range columns {
		if len(column) > height {
			height = len(column)
		}
	}
	out := make([][]string, height)
	for r := 0; r < height; r++ {
		out[r] = make([]string, len(columns))
		for c, column := range columns {
			if r < len(column) {
				out[r][c] = column[r]
			}
		}
	}
	return out, nil
}

// anchor turns a cell reference or bare column letter into 1-based
// coordinates. A bare letter anchors at row 1.
func (w *Workbook) anchor(sheet, ref string) (col, row int, err error) {
	trimmed := strings.TrimSpace(ref)
	if isLetters(trimmed) {
		col, err = excelize.ColumnNameToNumber(trimmed)
		if err != nil {
			return 0, 0, keyfill.NewLookupError(sheet+"!"+ref, err.Error())
		}
		return col, 1, nil
	}
	col, row, err = excelize.CellNameToCoordinates(trimmed)
	if err != nil {
		return 0, 0, keyfill.NewLookupError(sheet+"!"+ref, err.Error())
	}
	return col, row, nil
}

func (w *Workbook) rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, keyfill.NewLookupError(sheet, err.Error())
	}
	return rows, nil
}

func (w *Workbook) walkDown(sheet string, col, row int) ([]string, error) {
	rows, err := w.rows(sheet)
	if err != nil {
		return nil, err
	}
	return walkDownRows(rows, row, col), nil
}

// resolveDefinedName looks ref up among the workbook's defined names and
// returns the sheet and range it refers to.
func (w *Workbook) resolveDefinedName(ref string) (sheet, rangeRef string, ok bool) {
	for _, dn := range w.file.GetDefinedName() {
		if !strings.EqualFold(dn.Name, ref) {
			continue
		}
		refersTo := strings.ReplaceAll(dn.RefersTo, "$", "")
		parts := strings.SplitN(refersTo, "!", 2)
		if len(parts) != 2 {
			return "", "", false
		}
		return strings.Trim(parts[0], "'"), parts[1], true
	}
	return "", "", false
}

// walkDownRows collects values going down column col from row until the
// first empty cell. Coordinates are 1-based.
func walkDownRows(rows [][]string, row, col int) []string {
	var items []string
	for r := row; ; r++ {
		value := cellAt(rows, r, col)
		if value == "" {
			return items
		}
		items = append(items, value)
	}
}

// cellAt returns the value at 1-based (row, col), or "" outside the used
// range.
func cellAt(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) {
		return ""
	}
	r := rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

func findTitle(rows [][]string, row int, title string) (col int, found bool) {
	want := strings.TrimSpace(title)
	if row < 1 || row > len(rows) {
		return 0, false
	}
	for c := range rows[row-1] {
		if strings.EqualFold(strings.TrimSpace(rows[row-1][c]), want) {
			return c + 1, true
		}
	}
	return 0, false
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
