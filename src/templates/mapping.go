package templates

import (
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/ideas"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/wikidata"
	"github.com/radixwiki/wiki/src/wikiurl"
)

func UserToTemplate(u *models.User) User {
	if u == nil {
		return User{Name: "Anonymous"}
	}
	return User{
		ID:           u.ID.String(),
		Name:         u.BestName(),
		RadixAddress: u.RadixAddress,
		IsAdmin:      u.IsAdmin,
	}
}

func CategoryToTemplate(c config.Category) Category {
	return Category{
		Path:        c.Path,
		Name:        c.Name,
		Description: c.Description,
		AuthorOnly:  c.AuthorOnly,

		Url:        wikiurl.BuildCategory(c.Path, 1),
		NewPageUrl: wikiurl.BuildNewPage(c.Path),
	}
}

// CategoriesToTemplate is every configured category, in path order.
func CategoriesToTemplate() []Category {
	result := make([]Category, 0, len(config.Categories))
	for _, c := range config.Categories {
		result = append(result, CategoryToTemplate(c))
	}
	return result
}

// CategoryName falls back to the last segment of the tag path for paths with
// no configured category.
func CategoryName(tagPath string) string {
	if cat, ok := config.FindCategory(tagPath); ok && cat.Name != "" {
		return cat.Name
	}
	for i := len(tagPath) - 1; i >= 0; i-- {
		if tagPath[i] == '/' {
			return tagPath[i+1:]
		}
	}
	return tagPath
}

func PageSummaryToTemplate(p *models.PageSummary) PageSummary {
	return PageSummary{
		ID:           p.ID.String(),
		Title:        p.Title,
		Slug:         p.Slug,
		TagPath:      p.TagPath,
		CategoryName: CategoryName(p.TagPath),
		Excerpt:      p.Excerpt,
		BannerImage:  p.BannerImage,
		Metadata:     p.Metadata,
		Version:      p.Version,

		Url:         wikiurl.BuildPage(p.TagPath, p.Slug),
		CategoryUrl: wikiurl.BuildCategory(p.TagPath, 1),

		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func PageSummariesToTemplate(pages []*models.PageSummary) []PageSummary {
	result := make([]PageSummary, 0, len(pages))
	for _, p := range pages {
		result = append(result, PageSummaryToTemplate(p))
	}
	return result
}

func PageToTemplate(p *models.Page, canEdit bool) Page {
	summary := p.Summary()
	return Page{
		PageSummary: PageSummaryToTemplate(&summary),

		EditUrl:    wikiurl.BuildEditPage(p.TagPath, p.Slug),
		HistoryUrl: wikiurl.BuildPageHistory(p.TagPath, p.Slug),
		DeleteUrl:  wikiurl.BuildDeletePage(p.TagPath, p.Slug),
		ExportUrl:  wikiurl.BuildExportPage(p.TagPath, p.Slug),

		CanEdit: canEdit,
	}
}

// MetadataFields lists the page's values for the keys its category
// recognizes, in config order. Unset keys are skipped.
func MetadataFields(p *models.Page) []MetadataField {
	cat, ok := config.FindCategory(p.TagPath)
	if !ok {
		return nil
	}
	var result []MetadataField
	for _, key := range cat.Metadata {
		if v := p.Meta(key.Key); v != "" {
			result = append(result, MetadataField{
				Key:   key.Key,
				Label: key.Label,
				Value: v,
			})
		}
	}
	return result
}

func RevisionToTemplate(r *wikidata.RevisionSummary, page *models.Page) Revision {
	authorName := "Anonymous"
	if r.AuthorName != nil && *r.AuthorName != "" {
		authorName = *r.AuthorName
	}
	return Revision{
		Version:     r.Version,
		Title:       r.Title,
		AuthorName:  authorName,
		ContentHash: r.ContentHash,
		CreatedAt:   r.CreatedAt,
		IsCurrent:   r.Version == page.Version,

		Url: wikiurl.BuildPageRevision(page.TagPath, page.Slug, r.Version),
	}
}

func IdeaToTemplate(idea ideas.Idea) Idea {
	return Idea{
		Page:     PageSummaryToTemplate(idea.Page),
		Status:   string(idea.Status),
		Category: idea.Category,
	}
}

func IdeasToTemplate(list []ideas.Idea) []Idea {
	result := make([]Idea, 0, len(list))
	for _, idea := range list {
		result = append(result, IdeaToTemplate(idea))
	}
	return result
}

func IdeaBoardToTemplate(board []ideas.Column) []IdeaColumn {
	result := make([]IdeaColumn, 0, len(board))
	for _, col := range board {
		result = append(result, IdeaColumn{
			Status: string(col.Status),
			Ideas:  IdeasToTemplate(col.Ideas),
		})
	}
	return result
}
