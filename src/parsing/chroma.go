package parsing

import (
	"html/template"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
)

var ChromaOptions = []html.Option{
	html.WithClasses(true),
	html.WithPreWrapper(nopPreWrapper{}),
}

type nopPreWrapper struct{}

var _ html.PreWrapper = nopPreWrapper{}

func (w nopPreWrapper) Start(code bool, styleAttr string) string {
	return ""
}

func (w nopPreWrapper) End(code bool) string {
	return ""
}

var chromaFormatter = html.New(ChromaOptions...)

// HighlightCode renders code as class-annotated spans, without the
// surrounding <pre>. Unknown languages fall back to plain text.
func HighlightCode(language, code string) template.HTML {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(code))
	}

	var b strings.Builder
	if err := chromaFormatter.Format(&b, styles.Fallback, iterator); err != nil {
		return template.HTML(template.HTMLEscapeString(code))
	}
	return template.HTML(b.String())
}

// Languages offered in the code block editor.
func CodeLanguages() []string {
	return []string{
		"plaintext", "bash", "go", "rust", "javascript", "typescript",
		"python", "json", "yaml", "sql", "html", "css", "toml",
	}
}

const DefaultChromaStyle = "github"

// ChromaCSS returns the stylesheet for the classes emitted by HighlightCode.
func ChromaCSS(styleName string) string {
	style := styles.Get(styleName)
	var b strings.Builder
	if err := chromaFormatter.WriteCSS(&b, style); err != nil {
		return ""
	}
	return b.String()
}
