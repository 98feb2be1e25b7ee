package blocks

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnknownType   = errors.New("unknown block type")
	ErrNotAtomic     = errors.New("container blocks cannot be nested")
	ErrInvalidTarget = errors.New("no block at that position")
)

// Entry describes one block type for the editor's insert menu.
type Entry struct {
	Type      Type
	Label     string
	Icon      string
	Container bool
	New       func() Payload
}

const (
	DefaultRecentPagesLimit = 5
	DefaultRSSLimit         = 5
	DefaultTOCDepth         = 3
	DefaultColumnCount      = 2
	MaxColumnCount          = 4
)

// In insert-menu order.
var registry = []Entry{
	{Type: TypeContent, Label: "Text", Icon: "¶", New: func() Payload { return Content{} }},
	{Type: TypeMedia, Label: "Media", Icon: "🖼", New: func() Payload { return Media{Kind: MediaImage} }},
	{Type: TypeCallout, Label: "Callout", Icon: "💡", New: func() Payload { return Callout{Variant: CalloutInfo} }},
	{Type: TypeDivider, Label: "Divider", Icon: "―", New: func() Payload { return Divider{} }},
	{Type: TypeCode, Label: "Code", Icon: "⌨", New: func() Payload { return Code{Language: "plaintext"} }},
	{Type: TypeQuote, Label: "Quote", Icon: "❝", New: func() Payload { return Quote{} }},
	{Type: TypeTable, Label: "Table", Icon: "▦", New: func() Payload { return NewTable(2, 2) }},
	{Type: TypeTableOfContents, Label: "Table of contents", Icon: "☰", New: func() Payload {
		return TableOfContents{Title: "Contents", MaxDepth: DefaultTOCDepth}
	}},
	{Type: TypeRecentPages, Label: "Recent pages", Icon: "🕑", New: func() Payload {
		return RecentPages{Limit: DefaultRecentPagesLimit}
	}},
	{Type: TypePageList, Label: "Page list", Icon: "📄", New: func() Payload { return PageList{} }},
	{Type: TypeAssetPrice, Label: "Asset price", Icon: "💲", New: func() Payload { return AssetPrice{} }},
	{Type: TypeRSSFeed, Label: "RSS feed", Icon: "📰", New: func() Payload { return RSSFeed{Limit: DefaultRSSLimit} }},
	{Type: TypeColumns, Label: "Columns", Icon: "▥", Container: true, New: func() Payload {
		cols := make([]Column, DefaultColumnCount)
		for i := range cols {
			cols[i] = Column{ID: NewID()}
		}
		return Columns{Columns: cols}
	}},
	{Type: TypeInfobox, Label: "Infobox", Icon: "ℹ", Container: true, New: func() Payload { return Infobox{} }},
}

var registryByType = func() map[Type]Entry {
	m := make(map[Type]Entry, len(registry))
	for _, e := range registry {
		m[e.Type] = e
	}
	return m
}()

func Lookup(t Type) (Entry, bool) {
	e, ok := registryByType[t]
	return e, ok
}

// Entries lists every block type.
func Entries() []Entry {
	return append([]Entry(nil), registry...)
}

// AtomicEntries lists the types allowed inside columns and infoboxes.
func AtomicEntries() []Entry {
	var result []Entry
	for _, e := range registry {
		if !e.Container {
			result = append(result, e)
		}
	}
	return result
}

func NewID() string {
	return uuid.NewString()
}

// CreateFunc builds a fresh block of type t, or refuses it.
type CreateFunc func(t Type) (Block, error)

// New creates a block of any registered type with its default payload.
func New(t Type) (Block, error) {
	e, ok := Lookup(t)
	if !ok {
		return Block{}, fmt.Errorf("%w %q", ErrUnknownType, t)
	}
	return Block{ID: NewID(), Data: e.New()}, nil
}

// NewAtomic is New restricted to non-container types.
func NewAtomic(t Type) (Block, error) {
	e, ok := Lookup(t)
	if !ok {
		return Block{}, fmt.Errorf("%w %q", ErrUnknownType, t)
	}
	if e.Container {
		return Block{}, fmt.Errorf("%w: %s", ErrNotAtomic, t)
	}
	return Block{ID: NewID(), Data: e.New()}, nil
}

// DefaultDocument is the content of a new page: one empty text block.
func DefaultDocument() []Block {
	return []Block{{ID: NewID(), Data: Content{}}}
}
