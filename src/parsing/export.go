package parsing

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ToMarkdown converts rendered page HTML to markdown for export.
func ToMarkdown(s string) (string, error) {
	return htmltomarkdown.ConvertString(s)
}
