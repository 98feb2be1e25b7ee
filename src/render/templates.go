package render

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/Masterminds/sprig"
	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/feeds"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/parsing"
	"github.com/radixwiki/wiki/src/prices"
	"github.com/radixwiki/wiki/src/wikiurl"
	"github.com/teacat/noire"
)

//go:embed tmpl
var templateFS embed.FS

var blockTemplates = template.Must(loadBlockTemplates())

func loadBlockTemplates() (*template.Template, error) {
	return template.New("blocks").
		Funcs(sprig.FuncMap()).
		Funcs(blockFuncs).
		ParseFS(templateFS, "tmpl/*.html")
}

type blockData struct {
	ID    string
	Type  string
	Path  string
	Field string
	Data  blocks.Payload

	// Pre-rendered, already safe markup for the block body.
	HTML     template.HTML
	Safe     bool
	Options  []string
	Colors   calloutColors
	Headings []parsing.Heading
	Lists    []childList
	CanGrow  bool
	Sandbox  string

	Pages []*models.PageSummary
	Quote *prices.Quote
	Items []feeds.Item
	Err   string
}

type childList struct {
	ID         string
	Blocks     []template.HTML
	InsertPath string
	Entries    []blocks.Entry
}

type viewWrapperData struct {
	ID    string
	Type  string
	Inner template.HTML
}

type editWrapperData struct {
	ID       string
	Label    string
	Icon     string
	Path     string
	Known    bool
	First    bool
	Last     bool
	Selected bool
	Inner    template.HTML
	Insert   insertMenuData
}

type insertMenuData struct {
	Path    string
	Entries []blocks.Entry
	Label   string
}

type calloutColors struct {
	Background template.CSS
	Border     template.CSS
	Text       template.CSS
}

var calloutBase = map[blocks.CalloutVariant]string{
	blocks.CalloutInfo:    "2f6fde",
	blocks.CalloutWarning: "d99a06",
	blocks.CalloutSuccess: "1f9d55",
	blocks.CalloutDanger:  "d1343b",
}

func calloutColorsFor(v blocks.CalloutVariant) calloutColors {
	hex, ok := calloutBase[v]
	if !ok {
		hex = calloutBase[blocks.CalloutInfo]
	}
	base := noire.NewHex(hex)
	return calloutColors{
		Background: template.CSS(base.Tint(0.88).HTML()),
		Border:     template.CSS(base.HTML()),
		Text:       template.CSS(base.Shade(0.55).HTML()),
	}
}

func calloutVariantNames() []string {
	names := make([]string, len(blocks.CalloutVariants))
	for i, v := range blocks.CalloutVariants {
		names[i] = string(v)
	}
	return names
}

var blockFuncs = template.FuncMap{
	"field": func(prefix string, name ...any) string {
		parts := []string{prefix}
		for _, n := range name {
			parts = append(parts, fmt.Sprint(n))
		}
		return strings.Join(parts, ".")
	},
	"pageurl": func(p *models.PageSummary) string {
		return wikiurl.BuildPage(p.TagPath, p.Slug)
	},
	"categoryurl": func(tagPath string) string {
		if tagPath == "" {
			return wikiurl.BuildWikiIndex()
		}
		return wikiurl.BuildCategory(tagPath, 1)
	},
	"pricelive": func(address string) string {
		return wikiurl.BuildApiPriceLive(address)
	},
	"usd":     FormatUSD,
	"pct":     FormatChange,
	"linkify": parsing.Linkify,
	"shortdate": func(i feeds.Item) string {
		if i.Date.IsZero() {
			return i.RawDate
		}
		return i.Date.Format("Jan 2, 2006")
	},
	"pageids": func(ids []string) string {
		return strings.Join(ids, "\n")
	},
	"tocdepths": func() []int {
		return []int{1, 2, 3, 4, 5, 6}
	},
}

// Prices under a dollar get more digits so small-cap tokens don't all read
// as $0.00.
func FormatUSD(v float64) string {
	switch {
	case v == 0:
		return "$0"
	case math.Abs(v) >= 1:
		return "$" + addThousands(strconv.FormatFloat(v, 'f', 2, 64))
	default:
		digits := int(-math.Floor(math.Log10(math.Abs(v)))) + 3
		return "$" + strconv.FormatFloat(v, 'f', digits, 64)
	}
}

func addThousands(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	result := b.String()
	if frac != "" {
		result += "." + frac
	}
	if neg {
		result = "-" + result
	}
	return result
}

func FormatChange(v float64) string {
	sign := ""
	if v > 0 {
		sign = "+"
	}
	return sign + strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
