package xlsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fillio/go-keyfill/pkg/keyfill"
)

// invoiceWorkbook builds the fixture used across these tests:
//
//	    A        B       C
//	1   Item     Qty     Price
//	2   Widget   3       10
//	3   Gadget   4       20
//	4   Doohick  5       30
//	5   (empty)
//	6   Stray    9
func invoiceWorkbook(t *testing.T) *Workbook {
	t.Helper()
	wb := New()
	cells := map[string]interface{}{
		"A1": "Item", "B1": "Qty", "C1": "Price",
		"A2": "Widget", "B2": 3, "C2": 10,
		"A3": "Gadget", "B3": 4, "C3": 20,
		"A4": "Doohick", "B4": 5, "C4": 30,
		"A6": "Stray", "B6": 9,
	}
	for ref, value := range cells {
		require.NoError(t, wb.WriteCell("Sheet1", ref, value))
	}
	t.Cleanup(func() { wb.Close() })
	return wb
}

func TestSheetNames(t *testing.T) {
	wb := invoiceWorkbook(t)
	names, err := wb.SheetNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1"}, names)
}

func TestReadCell(t *testing.T) {
	wb := invoiceWorkbook(t)

	value, err := wb.ReadCell("Sheet1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Widget", value)

	value, err = wb.ReadCell("Sheet1", "B3")
	require.NoError(t, err)
	assert.Equal(t, "4", value)

	value, err = wb.ReadCell("Sheet1", "Z99")
	require.NoError(t, err)
	assert.Equal(t, "", value, "an unset cell reads as empty")
}

func TestReadCellRoundTrip(t *testing.T) {
	wb := New()
	defer wb.Close()

	require.NoError(t, wb.WriteCell("Sheet1", "D4", 20))
	value, err := wb.ReadCell("Sheet1", "D4")
	require.NoError(t, err)
	assert.Equal(t, "20", value)
}

func TestReadLastValue(t *testing.T) {
	wb := invoiceWorkbook(t)

	// Walks down from B1 and stops at the gap in row 5, so the stray
	// value in row 6 never counts.
	value, err := wb.ReadLastValue("Sheet1", "B")
	require.NoError(t, err)
	assert.Equal(t, "5", value)

	value, err = wb.ReadLastValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Doohick", value)

	_, err = wb.ReadLastValue("Sheet1", "E1")
	assert.True(t, keyfill.IsLookupError(err), "empty start cell should be a lookup error")
}

func TestReadTitleLastValue(t *testing.T) {
	wb := invoiceWorkbook(t)

	value, err := wb.ReadTitleLastValue("Sheet1", "A1", "Price")
	require.NoError(t, err)
	assert.Equal(t, "30", value)

	value, err = wb.ReadTitleLastValue("Sheet1", "A1", "qty")
	require.NoError(t, err)
	assert.Equal(t, "5", value, "titles match case-insensitively")

	_, err = wb.ReadTitleLastValue("Sheet1", "A1", "Margin")
	assert.True(t, keyfill.IsLookupError(err))
}

func TestReadItems(t *testing.T) {
	wb := invoiceWorkbook(t)

	items, err := wb.ReadItems("Sheet1", "A1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Item", "Widget", "Gadget", "Doohick"}, items)

	items, err = wb.ReadItems("Sheet1", "A1", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Item", "Widget", "Gadget"}, items, "offset trims from the end of the run")

	items, err = wb.ReadItems("Sheet1", "A1", 10)
	require.NoError(t, err)
	assert.Empty(t, items, "offset past the end yields nothing")
}

func TestReadRange(t *testing.T) {
	wb := invoiceWorkbook(t)

	rows, err := wb.ReadRange("Sheet1", "A1:B3")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Item", "Qty"},
		{"Widget", "3"},
		{"Gadget", "4"},
	}, rows)

	// Reversed corners normalize.
	rows, err = wb.ReadRange("Sheet1", "B3:A1")
	require.NoError(t, err)
	assert.Equal(t, 3, len(rows))
	assert.Equal(t, "Item", rows[0][0])

	rows, err = wb.ReadRange("Sheet1", "C4")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"30"}}, rows, "a single cell reads as a 1x1 grid")

	// Cells outside the used area come back empty, not as an error.
	rows, err = wb.ReadRange("Sheet1", "A6:B7")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Stray", "9"}, {"", ""}}, rows)
}

func TestReadRangeDefinedName(t *testing.T) {
	wb := invoiceWorkbook(t)
	require.NoError(t, wb.DefineName("quantities", "Sheet1!$B$2:$B$4"))

	rows, err := wb.ReadRange("Sheet1", "quantities")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"3"}, {"4"}, {"5"}}, rows)
}

func TestReadColumnsByTitle(t *testing.T) {
	wb := invoiceWorkbook(t)

	rows, err := wb.ReadColumns("Sheet1", []string{"Item", "Price"}, true, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Item", "Price"},
		{"Widget", "10"},
		{"Gadget", "20"},
		{"Doohick", "30"},
	}, rows)
}

func TestReadColumnsSkipsMissingTitles(t *testing.T) {
	wb := invoiceWorkbook(t)

	rows, err := wb.ReadColumns("Sheet1", []string{"Margin", "Qty"}, true, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Qty"}, {"3"}, {"4"}, {"5"}}, rows)

	_, err = wb.ReadColumns("Sheet1", []string{"Margin", "Discount"}, true, 1)
	assert.True(t, keyfill.IsLookupError(err), "all titles missing should fail the keyword")
}

func TestReadColumnsByRefPadsShortColumns(t *testing.T) {
	wb := invoiceWorkbook(t)

	// Column A stops at row 4, column C likewise; starting C at row 3
	// makes it shorter, so it pads with empties.
	rows, err := wb.ReadColumns("Sheet1", []string{"A2", "C3"}, false, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Widget", "20"},
		{"Gadget", "30"},
		{"Doohick", ""},
	}, rows)
}

func TestReadColumnsBareLetter(t *testing.T) {
	wb := invoiceWorkbook(t)

	rows, err := wb.ReadColumns("Sheet1", []string{"B"}, false, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Qty"}, {"3"}, {"4"}, {"5"}}, rows)
}

func TestWorkbookWithEngine(t *testing.T) {
	wb := invoiceWorkbook(t)
	engine := keyfill.New(
		keyfill.WithConfig(keyfill.DefaultConfig()),
		keyfill.WithSpreadsheet(wb),
	)

	out, warnings, err := engine.Render("{{XL!CELL!A2}}: {{XL!CELL!B2}} at {{XL!CELL!C2}} (sum {{SUM!B2:B4}})", nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "Widget: 3 at 10 (sum 12)", out)
}
