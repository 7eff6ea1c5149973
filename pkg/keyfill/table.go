package keyfill

import "strings"

// ResultKind distinguishes the two shapes a resolved keyword can take.
type ResultKind int

const (
	ScalarResult ResultKind = iota
	TableResult
)

// Result is the outcome of resolving one keyword: either plain text or a
// table destined for structured insertion.
type Result struct {
	Kind  ResultKind
	Text  string
	Table *TableData
}

func scalarResult(text string) Result {
	return Result{Kind: ScalarResult, Text: text}
}

func tableResult(t *TableData) Result {
	return Result{Kind: TableResult, Table: t}
}

// TableData is a resolved 2D grid. Range lookups always produce one, even
// for a single cell. HasHeader marks the first row as a header for styled
// insertion.
type TableData struct {
	Rows      [][]string
	HasHeader bool
}

// ColumnCount returns the widest row's cell count.
func (t *TableData) ColumnCount() int {
	max := 0
	for _, row := range t.Rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// FormatText renders the grid as an aligned plain-text table: columns
// padded to their widest cell, numeric cells right-aligned, and a rule
// under the first row when there is more than one.
func (t *TableData) FormatText() string {
	if t == nil || len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, t.ColumnCount())
	for _, row := range t.Rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var lines []string
	for rowIdx, row := range t.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if _, numeric := toNumber(cell); numeric && cell != "" {
				cells[i] = strings.Repeat(" ", widths[i]-len(cell)) + cell
			} else {
				cells[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
			}
		}
		lines = append(lines, strings.Join(cells, " | "))

		if rowIdx == 0 && len(t.Rows) > 1 {
			rules := make([]string, len(widths))
			for i, w := range widths {
				rules[i] = strings.Repeat("-", w)
			}
			lines = append(lines, strings.Join(rules, "-+-"))
		}
	}
	return strings.Join(lines, "\n")
}

// Reduce computes an aggregate over the grid's numeric cells. Non-numeric
// and empty cells are skipped, never counted as zero; a grid with no
// numeric cell at all is a type mismatch.
func (t *TableData) Reduce(mean bool) (float64, error) {
	var total float64
	count := 0
	for _, row := range t.Rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			if n, ok := toNumber(cell); ok {
				total += n
				count++
			}
		}
	}
	op := "SUM"
	if mean {
		op = "AVG"
	}
	if count == 0 {
		return 0, NewTypeMismatchError(op, t, "range contains no numeric cells")
	}
	if mean {
		return total / float64(count), nil
	}
	return total, nil
}
