package render

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/parsing"
)

// Edit form fields are named FieldPrefix + path + "." + field, for example
// blk.2.title or blk.1.0.3.cell.0.2.
const FieldPrefix = "blk."

type fieldSet map[string]string

func (f fieldSet) str(name string, dst *string) {
	if v, ok := f[name]; ok {
		*dst = v
	}
}

func (f fieldSet) trimmed(name string, dst *string) {
	if v, ok := f[name]; ok {
		*dst = strings.TrimSpace(v)
	}
}

// Unparseable numbers leave the old value.
func (f fieldSet) integer(name string, dst *int) {
	if v, ok := f[name]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func (f fieldSet) boolean(name string, dst *bool) {
	if v, ok := f[name]; ok {
		*dst = v == "true" || v == "on"
	}
}

// indexed collects fields of the form name.<i>.<rest>.
func (f fieldSet) indexed(name string) map[int]fieldSet {
	result := map[int]fieldSet{}
	for key, v := range f {
		rest, ok := strings.CutPrefix(key, name+".")
		if !ok {
			continue
		}
		idx, sub, _ := strings.Cut(rest, ".")
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 {
			continue
		}
		if result[i] == nil {
			result[i] = fieldSet{}
		}
		result[i][sub] = v
	}
	return result
}

// ApplyForm returns a copy of content with the values of a submitted edit
// form written into the blocks they belong to. Fields for blocks that no
// longer exist are ignored. Each changed block is committed through
// Editor.Update, so content itself is never modified.
func ApplyForm(content []blocks.Block, form url.Values) []blocks.Block {
	groups := map[string]fieldSet{}
	paths := map[string]blocks.Path{}
	for key, values := range form {
		rest, ok := strings.CutPrefix(key, FieldPrefix)
		if !ok || len(values) == 0 {
			continue
		}
		path, field, ok := splitFieldName(rest)
		if !ok {
			continue
		}
		ps := path.String()
		if groups[ps] == nil {
			groups[ps] = fieldSet{}
			paths[ps] = path
		}
		// Checkboxes follow a hidden "false" input, so the last value wins.
		groups[ps][field] = values[len(values)-1]
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := paths[k]
		b, ok := blocks.Get(content, path)
		if !ok {
			continue
		}
		content, _ = blocks.Set(content, path, applyFields(b, groups[k]))
	}
	return content
}

// splitFieldName separates "1.0.3.cell.0.2" into the path 1.0.3 and the
// field "cell.0.2". Field names never start with a digit.
func splitFieldName(s string) (blocks.Path, string, bool) {
	parts := strings.Split(s, ".")
	for _, n := range []int{3, 1} {
		if len(parts) <= n {
			continue
		}
		path, err := blocks.ParsePath(strings.Join(parts[:n], "."))
		if err != nil {
			continue
		}
		return path, strings.Join(parts[n:], "."), true
	}
	return nil, "", false
}

func applyFields(b blocks.Block, f fieldSet) blocks.Block {
	switch data := b.Data.(type) {
	case blocks.Content:
		if text, ok := f["text"]; ok {
			if f["markdown"] == "true" {
				data.Text = parsing.MarkdownToHTML(text)
			} else {
				data.Text = parsing.SanitizeHTML(text)
			}
		}
		b.Data = data
	case blocks.Media:
		f.trimmed("url", &data.URL)
		if kind, ok := f["kind"]; ok {
			data.Kind = blocks.MediaKind(kind)
		}
		f.str("caption", &data.Caption)
		f.str("alt", &data.Alt)
		b.Data = data
	case blocks.Callout:
		if v, ok := f["variant"]; ok {
			data.Variant = blocks.CalloutVariant(v)
		}
		f.str("title", &data.Title)
		f.str("text", &data.Text)
		b.Data = data
	case blocks.Code:
		f.str("language", &data.Language)
		f.str("code", &data.Code)
		b.Data = data
	case blocks.Quote:
		f.str("text", &data.Text)
		f.str("attribution", &data.Attribution)
		b.Data = data
	case blocks.Table:
		data = data.Normalize()
		f.boolean("hasHeader", &data.HasHeader)
		for r, cols := range f.indexed("cell") {
			for c, v := range cols {
				if col, err := strconv.Atoi(c); err == nil {
					data = data.SetCell(r, col, v)
				}
			}
		}
		b.Data = data
	case blocks.TableOfContents:
		f.str("title", &data.Title)
		f.integer("maxDepth", &data.MaxDepth)
		b.Data = data
	case blocks.RecentPages:
		f.str("title", &data.Title)
		f.trimmed("tagPath", &data.TagPath)
		f.integer("limit", &data.Limit)
		b.Data = data
	case blocks.PageList:
		f.str("title", &data.Title)
		if ids, ok := f["pageIds"]; ok {
			data.PageIDs = strings.FieldsFunc(ids, func(r rune) bool {
				return r == ',' || r == ' ' || r == '\n' || r == '\r' || r == '\t'
			})
		}
		b.Data = data
	case blocks.AssetPrice:
		f.trimmed("resourceAddress", &data.ResourceAddress)
		f.str("label", &data.Label)
		b.Data = data
	case blocks.RSSFeed:
		f.str("title", &data.Title)
		f.trimmed("url", &data.URL)
		f.integer("limit", &data.Limit)
		b.Data = data
	case blocks.Infobox:
		data = blocks.Copy(b).Data.(blocks.Infobox)
		f.str("title", &data.Title)
		f.trimmed("image", &data.Image)
		for i, row := range f.indexed("row") {
			if i >= len(data.Rows) {
				continue
			}
			row.str("key", &data.Rows[i].Key)
			row.str("value", &data.Rows[i].Value)
		}
		b.Data = data
	}
	return b
}
