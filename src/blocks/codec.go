package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type blockHeader struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`
}

// MarshalJSON writes the flat wire form: {"id":..., "type":..., ...payload}.
func (b Block) MarshalJSON() ([]byte, error) {
	var fields map[string]json.RawMessage
	switch data := b.Data.(type) {
	case nil:
		return nil, fmt.Errorf("block %s has no payload", b.ID)
	case Unknown:
		if err := json.Unmarshal(data.Raw, &fields); err != nil {
			return nil, fmt.Errorf("block %s: %w", b.ID, err)
		}
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}

	id, _ := json.Marshal(b.ID)
	typ, _ := json.Marshal(b.Type())
	fields["id"] = id
	fields["type"] = typ
	return json.Marshal(fields)
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var header blockHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}

	// A payload that doesn't fit its type is kept raw so the rest of the
	// document still loads. Validate reports it.
	payload, err := decodePayload(header.Type, data)
	if err != nil {
		payload = Unknown{TypeName: string(header.Type), Raw: bytes.Clone(data)}
	}
	b.ID = header.ID
	b.Data = payload
	return nil
}

func decodePayload(t Type, data []byte) (Payload, error) {
	switch t {
	case TypeContent:
		return decodeInto[Content](data)
	case TypeMedia:
		return decodeInto[Media](data)
	case TypeCallout:
		return decodeInto[Callout](data)
	case TypeDivider:
		return Divider{}, nil
	case TypeCode:
		return decodeInto[Code](data)
	case TypeQuote:
		return decodeInto[Quote](data)
	case TypeTable:
		return decodeInto[Table](data)
	case TypeTableOfContents:
		return decodeInto[TableOfContents](data)
	case TypeRecentPages:
		return decodeInto[RecentPages](data)
	case TypePageList:
		return decodeInto[PageList](data)
	case TypeAssetPrice:
		return decodeInto[AssetPrice](data)
	case TypeColumns:
		return decodeInto[Columns](data)
	case TypeInfobox:
		return decodeInto[Infobox](data)
	case TypeRSSFeed:
		return decodeInto[RSSFeed](data)
	default:
		return Unknown{TypeName: string(t), Raw: bytes.Clone(data)}, nil
	}
}

func decodeInto[P Payload](data []byte) (Payload, error) {
	var p P
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseDocument decodes stored content. Empty input is an empty document.
// Blocks and columns missing an id get a fresh one.
func ParseDocument(data []byte) ([]Block, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Block{}, nil
	}
	var content []Block
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, err
	}
	return EnsureIDs(content), nil
}

func EnsureIDs(content []Block) []Block {
	return mapBlocks(content, func(b Block) Block {
		if b.ID == "" {
			b.ID = NewID()
		}
		if cols, ok := b.Data.(Columns); ok {
			fixed := make([]Column, len(cols.Columns))
			for i, col := range cols.Columns {
				if col.ID == "" {
					col.ID = NewID()
				}
				fixed[i] = col
			}
			b.Data = Columns{Columns: fixed}
		}
		return b
	})
}

// mapBlocks applies fn to every block, nested ones first, returning a new tree.
func mapBlocks(content []Block, fn func(Block) Block) []Block {
	result := make([]Block, len(content))
	for i, b := range content {
		if c, ok := b.Data.(Container); ok {
			lists := c.Lists()
			mapped := make([][]Block, len(lists))
			for j, list := range lists {
				mapped[j] = mapBlocks(list, fn)
			}
			b.Data = c.WithLists(mapped)
		}
		result[i] = fn(b)
	}
	return result
}
