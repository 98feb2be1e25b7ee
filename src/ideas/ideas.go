// Package ideas arranges the pages of the ideas category into a kanban board
// and a filterable list.
package ideas

import (
	"sort"
	"strings"

	"github.com/radixwiki/wiki/src/models"
)

const TagPath = "ideas"

type Status string

const (
	StatusDiscussion Status = "Discussion"
	StatusProposed   Status = "Proposed"
	StatusApproved   Status = "Approved"
	StatusInProgress Status = "In Progress"
	StatusTesting    Status = "Testing"
	StatusDone       Status = "Done"
)

// In board order.
var Statuses = []Status{
	StatusDiscussion,
	StatusProposed,
	StatusApproved,
	StatusInProgress,
	StatusTesting,
	StatusDone,
}

// ParseStatus matches case-insensitively. Anything unrecognized, including a
// missing status, is a discussion.
func ParseStatus(s string) Status {
	s = strings.TrimSpace(s)
	for _, status := range Statuses {
		if strings.EqualFold(s, string(status)) {
			return status
		}
	}
	return StatusDiscussion
}

type Idea struct {
	Page     *models.PageSummary
	Status   Status
	Category string
}

func FromPage(p *models.PageSummary) Idea {
	return Idea{
		Page:     p,
		Status:   ParseStatus(p.Meta("status")),
		Category: p.Meta("category"),
	}
}

func FromPages(pages []*models.PageSummary) []Idea {
	result := make([]Idea, len(pages))
	for i, p := range pages {
		result[i] = FromPage(p)
	}
	return result
}

type Column struct {
	Status Status
	Ideas  []Idea
}

// Board has one column per status, in board order, each keeping the order
// of the given ideas.
func Board(ideas []Idea) []Column {
	columns := make([]Column, len(Statuses))
	index := make(map[Status]int, len(Statuses))
	for i, status := range Statuses {
		columns[i] = Column{Status: status}
		index[status] = i
	}
	for _, idea := range ideas {
		i := index[idea.Status]
		columns[i].Ideas = append(columns[i].Ideas, idea)
	}
	return columns
}

type Sort string

const (
	SortNewest  Sort = "newest"
	SortUpdated Sort = "updated"
	SortTitle   Sort = "title"
)

func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortTitle:
		return SortTitle
	case SortUpdated:
		return SortUpdated
	default:
		return SortNewest
	}
}

type Filter struct {
	Status   string
	Category string
	Sort     Sort
}

// List filters ideas by case-insensitive substring matches on status and
// category, then sorts them. The input is not modified.
func List(ideas []Idea, f Filter) []Idea {
	status := strings.ToLower(strings.TrimSpace(f.Status))
	category := strings.ToLower(strings.TrimSpace(f.Category))

	var result []Idea
	for _, idea := range ideas {
		if status != "" && !strings.Contains(strings.ToLower(string(idea.Status)), status) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(idea.Category), category) {
			continue
		}
		result = append(result, idea)
	}

	switch f.Sort {
	case SortTitle:
		sort.SliceStable(result, func(i, j int) bool {
			return strings.ToLower(result[i].Page.Title) < strings.ToLower(result[j].Page.Title)
		})
	case SortUpdated:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Page.UpdatedAt.After(result[j].Page.UpdatedAt)
		})
	default:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Page.CreatedAt.After(result[j].Page.CreatedAt)
		})
	}
	return result
}

// Categories lists the distinct categories in use, sorted.
func Categories(ideas []Idea) []string {
	seen := map[string]bool{}
	var result []string
	for _, idea := range ideas {
		if idea.Category != "" && !seen[idea.Category] {
			seen[idea.Category] = true
			result = append(result, idea.Category)
		}
	}
	sort.Strings(result)
	return result
}
