/*
Package blocks is the page content model: an ordered list of typed blocks,
where the container types (columns, infobox) hold one level of atomic blocks.

Blocks are values. Every operation in this package returns new slices and
payloads instead of modifying its input, so a document held by one request
can be edited into a draft without touching the original.
*/
package blocks

type Type string

const (
	TypeContent         Type = "content"
	TypeMedia           Type = "media"
	TypeCallout         Type = "callout"
	TypeDivider         Type = "divider"
	TypeCode            Type = "code"
	TypeQuote           Type = "quote"
	TypeTable           Type = "table"
	TypeTableOfContents Type = "tableOfContents"
	TypeRecentPages     Type = "recentPages"
	TypePageList        Type = "pageList"
	TypeAssetPrice      Type = "assetPrice"
	TypeColumns         Type = "columns"
	TypeInfobox         Type = "infobox"
	TypeRSSFeed         Type = "rssFeed"
)

type Block struct {
	ID   string
	Data Payload
}

func (b Block) Type() Type {
	if b.Data == nil {
		return ""
	}
	return b.Data.BlockType()
}

// Payload is implemented by the variant types in this package only.
type Payload interface {
	BlockType() Type
	isPayload()
}

// Container payloads hold lists of atomic blocks: one per column, or the
// single list of an infobox.
type Container interface {
	Payload
	Lists() [][]Block
	// WithLists returns a copy holding lists, which must have the same
	// length as Lists().
	WithLists(lists [][]Block) Container
}

type Content struct {
	Text string `json:"text"` // sanitized HTML
}

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaEmbed MediaKind = "embed"
)

type Media struct {
	URL     string    `json:"url"`
	Kind    MediaKind `json:"kind"`
	Caption string    `json:"caption"`
	Alt     string    `json:"alt"`
}

type CalloutVariant string

const (
	CalloutInfo    CalloutVariant = "info"
	CalloutWarning CalloutVariant = "warning"
	CalloutSuccess CalloutVariant = "success"
	CalloutDanger  CalloutVariant = "danger"
)

var CalloutVariants = []CalloutVariant{CalloutInfo, CalloutWarning, CalloutSuccess, CalloutDanger}

type Callout struct {
	Variant CalloutVariant `json:"variant"`
	Title   string         `json:"title"`
	Text    string         `json:"text"`
}

type Divider struct{}

type Code struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type Quote struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
}

type Table struct {
	Rows      [][]string `json:"rows"`
	HasHeader bool       `json:"hasHeader"`
}

type TableOfContents struct {
	Title    string `json:"title"`
	MaxDepth int    `json:"maxDepth"`
}

type RecentPages struct {
	Title   string `json:"title"`
	TagPath string `json:"tagPath"`
	Limit   int    `json:"limit"`
}

type PageList struct {
	Title   string   `json:"title"`
	PageIDs []string `json:"pageIds"`
}

type AssetPrice struct {
	ResourceAddress string `json:"resourceAddress"`
	Label           string `json:"label"`
}

type Columns struct {
	Columns []Column `json:"columns"`
}

type Column struct {
	ID     string  `json:"id"`
	Blocks []Block `json:"blocks"`
}

type InfoboxRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Infobox struct {
	Title  string       `json:"title"`
	Image  string       `json:"image"`
	Rows   []InfoboxRow `json:"rows"`
	Blocks []Block      `json:"blocks"`
}

type RSSFeed struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Limit int    `json:"limit"`
}

// Unknown keeps a block whose type this version does not recognize, or
// whose fields don't decode, as raw JSON so loading a document never drops it.
type Unknown struct {
	TypeName string
	Raw      []byte
}

// Malformed reports whether the type is one we know, meaning the stored
// fields could not be decoded into it.
func (u Unknown) Malformed() bool {
	_, ok := Lookup(Type(u.TypeName))
	return ok
}

func (Content) BlockType() Type         { return TypeContent }
func (Media) BlockType() Type           { return TypeMedia }
func (Callout) BlockType() Type         { return TypeCallout }
func (Divider) BlockType() Type         { return TypeDivider }
func (Code) BlockType() Type            { return TypeCode }
func (Quote) BlockType() Type           { return TypeQuote }
func (Table) BlockType() Type           { return TypeTable }
func (TableOfContents) BlockType() Type { return TypeTableOfContents }
func (RecentPages) BlockType() Type     { return TypeRecentPages }
func (PageList) BlockType() Type        { return TypePageList }
func (AssetPrice) BlockType() Type      { return TypeAssetPrice }
func (Columns) BlockType() Type         { return TypeColumns }
func (Infobox) BlockType() Type         { return TypeInfobox }
func (RSSFeed) BlockType() Type         { return TypeRSSFeed }
func (u Unknown) BlockType() Type       { return Type(u.TypeName) }

func (Content) isPayload()         {}
func (Media) isPayload()           {}
func (Callout) isPayload()         {}
func (Divider) isPayload()         {}
func (Code) isPayload()            {}
func (Quote) isPayload()           {}
func (Table) isPayload()           {}
func (TableOfContents) isPayload() {}
func (RecentPages) isPayload()     {}
func (PageList) isPayload()        {}
func (AssetPrice) isPayload()      {}
func (Columns) isPayload()         {}
func (Infobox) isPayload()         {}
func (RSSFeed) isPayload()         {}
func (Unknown) isPayload()         {}

func (c Columns) Lists() [][]Block {
	lists := make([][]Block, len(c.Columns))
	for i, col := range c.Columns {
		lists[i] = col.Blocks
	}
	return lists
}

func (c Columns) WithLists(lists [][]Block) Container {
	cols := make([]Column, len(c.Columns))
	for i, col := range c.Columns {
		cols[i] = Column{ID: col.ID, Blocks: lists[i]}
	}
	return Columns{Columns: cols}
}

func (ib Infobox) Lists() [][]Block {
	return [][]Block{ib.Blocks}
}

func (ib Infobox) WithLists(lists [][]Block) Container {
	ib.Rows = append([]InfoboxRow(nil), ib.Rows...)
	ib.Blocks = lists[0]
	return ib
}

// IsContainer reports whether b holds nested blocks.
func (b Block) IsContainer() bool {
	_, ok := b.Data.(Container)
	return ok
}
