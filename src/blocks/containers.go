package blocks

import "slices"

// AddColumn appends an empty column, up to MaxColumnCount.
func (c Columns) AddColumn() Columns {
	result := copyPayload(c, false).(Columns)
	if len(result.Columns) >= MaxColumnCount {
		return result
	}
	result.Columns = append(result.Columns, Column{ID: NewID()})
	return result
}

// RemoveColumn deletes column i with its blocks. The last column stays.
func (c Columns) RemoveColumn(i int) Columns {
	result := copyPayload(c, false).(Columns)
	if len(result.Columns) <= 1 || i < 0 || i >= len(result.Columns) {
		return result
	}
	result.Columns = slices.Delete(result.Columns, i, i+1)
	return result
}

func (ib Infobox) AddRow() Infobox {
	result := copyPayload(ib, false).(Infobox)
	result.Rows = append(result.Rows, InfoboxRow{})
	return result
}

func (ib Infobox) RemoveRow(i int) Infobox {
	result := copyPayload(ib, false).(Infobox)
	if i < 0 || i >= len(result.Rows) {
		return result
	}
	result.Rows = slices.Delete(result.Rows, i, i+1)
	return result
}

// List returns nested list j of the container block at index i.
func List(content []Block, i, j int) ([]Block, bool) {
	if i < 0 || i >= len(content) {
		return nil, false
	}
	c, ok := content[i].Data.(Container)
	if !ok {
		return nil, false
	}
	lists := c.Lists()
	if j < 0 || j >= len(lists) {
		return nil, false
	}
	return lists[j], true
}

// WithList returns a copy of content where nested list j of block i is
// replaced by list.
func WithList(content []Block, i, j int, list []Block) ([]Block, bool) {
	if _, ok := List(content, i, j); !ok {
		return content, false
	}
	c := content[i].Data.(Container)
	lists := slices.Clone(c.Lists())
	lists[j] = list

	result := slices.Clone(content)
	result[i] = Block{ID: content[i].ID, Data: c.WithLists(lists)}
	return result, true
}
