package blocks

import "slices"

// Clone deep-copies b, giving the copy and everything nested in it
// (columns and their blocks, infobox blocks) fresh ids.
func Clone(b Block) Block {
	return Block{ID: NewID(), Data: copyPayload(b.Data, true)}
}

// Copy deep-copies b keeping every id.
func Copy(b Block) Block {
	return Block{ID: b.ID, Data: copyPayload(b.Data, false)}
}

func copyList(list []Block, freshIDs bool) []Block {
	if list == nil {
		return nil
	}
	result := make([]Block, len(list))
	for i, b := range list {
		if freshIDs {
			result[i] = Clone(b)
		} else {
			result[i] = Copy(b)
		}
	}
	return result
}

func copyPayload(p Payload, freshIDs bool) Payload {
	switch data := p.(type) {
	case Table:
		return data.clone()
	case PageList:
		data.PageIDs = slices.Clone(data.PageIDs)
		return data
	case Columns:
		cols := make([]Column, len(data.Columns))
		for i, col := range data.Columns {
			id := col.ID
			if freshIDs {
				id = NewID()
			}
			cols[i] = Column{ID: id, Blocks: copyList(col.Blocks, freshIDs)}
		}
		return Columns{Columns: cols}
	case Infobox:
		data.Rows = slices.Clone(data.Rows)
		data.Blocks = copyList(data.Blocks, freshIDs)
		return data
	case Unknown:
		data.Raw = slices.Clone(data.Raw)
		return data
	default:
		// the remaining payloads only hold strings and numbers
		return p
	}
}
