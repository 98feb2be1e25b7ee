package blocks

import "slices"

// NewTable returns an empty rows×cols table with a header row.
func NewTable(rows, cols int) Table {
	t := Table{HasHeader: true, Rows: make([][]string, max(rows, 1))}
	for i := range t.Rows {
		t.Rows[i] = make([]string, max(cols, 1))
	}
	return t
}

// Width is the number of columns, taken from the first row.
func (t Table) Width() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

func (t Table) clone() Table {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = slices.Clone(row)
	}
	return Table{Rows: rows, HasHeader: t.HasHeader}
}

// Normalize pads or trims every row to the width of the first one. An empty
// table becomes a single empty cell.
func (t Table) Normalize() Table {
	if len(t.Rows) == 0 || len(t.Rows[0]) == 0 {
		return Table{Rows: [][]string{{""}}, HasHeader: t.HasHeader}
	}
	width := t.Width()
	result := t.clone()
	for i, row := range result.Rows {
		switch {
		case len(row) < width:
			result.Rows[i] = append(row, make([]string, width-len(row))...)
		case len(row) > width:
			result.Rows[i] = row[:width]
		}
	}
	return result
}

func (t Table) AddRow() Table {
	result := t.Normalize()
	result.Rows = append(result.Rows, make([]string, result.Width()))
	return result
}

// DeleteRow removes row i. The last remaining row is never deleted.
func (t Table) DeleteRow(i int) Table {
	result := t.Normalize()
	if len(result.Rows) <= 1 || i < 0 || i >= len(result.Rows) {
		return result
	}
	result.Rows = slices.Delete(result.Rows, i, i+1)
	return result
}

func (t Table) AddColumn() Table {
	result := t.Normalize()
	for i := range result.Rows {
		result.Rows[i] = append(result.Rows[i], "")
	}
	return result
}

// DeleteColumn removes column i from every row. The last remaining column
// is never deleted.
func (t Table) DeleteColumn(i int) Table {
	result := t.Normalize()
	if result.Width() <= 1 || i < 0 || i >= result.Width() {
		return result
	}
	for r := range result.Rows {
		result.Rows[r] = slices.Delete(result.Rows[r], i, i+1)
	}
	return result
}

// SetCell writes one cell, ignoring positions outside the table.
func (t Table) SetCell(row, col int, value string) Table {
	result := t.Normalize()
	if row < 0 || row >= len(result.Rows) || col < 0 || col >= result.Width() {
		return result
	}
	result.Rows[row][col] = value
	return result
}

// Header returns the header row, if the table has one.
func (t Table) Header() []string {
	if !t.HasHeader || len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Body returns the rows below the header.
func (t Table) Body() [][]string {
	if t.HasHeader && len(t.Rows) > 0 {
		return t.Rows[1:]
	}
	return t.Rows
}
