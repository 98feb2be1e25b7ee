package templates

import (
	"html/template"
	"time"
)

type BaseData struct {
	Title       string
	Breadcrumbs []Breadcrumb
	Notices     []Notice

	CurrentUrl string
	LoginUrl   string

	User      *User
	CSRFToken string

	Header Header
}

type Header struct {
	HomepageUrl  string
	WikiIndexUrl string
	IdeasUrl     string
	NewPageUrl   string
	LogoutUrl    string
}

// Classes are "success", "warn" and "failure".
type Notice struct {
	Content template.HTML
	Class   string
}

type Breadcrumb struct {
	Name, Url string
}

type Pagination struct {
	Current int
	Total   int

	FirstUrl    string
	LastUrl     string
	PreviousUrl string
	NextUrl     string
}

type User struct {
	ID           string
	Name         string
	RadixAddress string
	IsAdmin      bool
}

type Category struct {
	Path        string
	Name        string
	Description string
	AuthorOnly  bool

	Url        string
	NewPageUrl string
}

type PageSummary struct {
	ID           string
	Title        string
	Slug         string
	TagPath      string
	CategoryName string
	Excerpt      string
	BannerImage  string
	Metadata     map[string]string
	Version      int

	Url         string
	CategoryUrl string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Page struct {
	PageSummary

	EditUrl    string
	HistoryUrl string
	DeleteUrl  string
	ExportUrl  string

	CanEdit bool
}

// A metadata field for the page header, labelled from the category config.
type MetadataField struct {
	Key   string
	Label string
	Value string
}

type Revision struct {
	Version     int
	Title       string
	AuthorName  string
	ContentHash string
	CreatedAt   time.Time
	IsCurrent   bool

	Url string
}

type Idea struct {
	Page     PageSummary
	Status   string
	Category string
}

type IdeaColumn struct {
	Status string
	Ideas  []Idea
}
