package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/radixwiki/wiki/src/blocks"
)

type Page struct {
	ID          uuid.UUID         `db:"id"`
	Slug        string            `db:"slug"`
	Title       string            `db:"title"`
	TagPath     string            `db:"tag_path"`
	Content     []blocks.Block    `db:"content"`
	Excerpt     string            `db:"excerpt"`
	BannerImage string            `db:"banner_image"`
	Metadata    map[string]string `db:"metadata"`
	Version     int               `db:"version"`
	AuthorID    *uuid.UUID        `db:"author_id"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
}

func (p *Page) Meta(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(p.Metadata[key])
}

func (p *Page) IsAuthor(u *User) bool {
	return u != nil && p.AuthorID != nil && *p.AuthorID == u.ID
}

// PageSummary is a page without its content, for listings.
type PageSummary struct {
	ID          uuid.UUID         `db:"id"`
	Slug        string            `db:"slug"`
	Title       string            `db:"title"`
	TagPath     string            `db:"tag_path"`
	Excerpt     string            `db:"excerpt"`
	BannerImage string            `db:"banner_image"`
	Metadata    map[string]string `db:"metadata"`
	Version     int               `db:"version"`
	AuthorID    *uuid.UUID        `db:"author_id"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
}

func (p *PageSummary) Meta(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(p.Metadata[key])
}

func (p *Page) Summary() PageSummary {
	return PageSummary{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		TagPath:     p.TagPath,
		Excerpt:     p.Excerpt,
		BannerImage: p.BannerImage,
		Metadata:    p.Metadata,
		Version:     p.Version,
		AuthorID:    p.AuthorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// A Revision is written alongside every save of a page and never changed
// afterwards.
type Revision struct {
	ID          uuid.UUID      `db:"id"`
	PageID      uuid.UUID      `db:"page_id"`
	Title       string         `db:"title"`
	Content     []blocks.Block `db:"content"`
	Version     int            `db:"version"`
	AuthorID    *uuid.UUID     `db:"author_id"`
	ContentHash string         `db:"content_hash"`
	CreatedAt   time.Time      `db:"created_at"`
}
