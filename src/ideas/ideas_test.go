package ideas

import (
	"testing"
	"time"

	"github.com/radixwiki/wiki/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func page(title, status, category string, created, updated int) *models.PageSummary {
	meta := map[string]string{}
	if status != "" {
		meta["status"] = status
	}
	if category != "" {
		meta["category"] = category
	}
	return &models.PageSummary{
		Title:     title,
		TagPath:   TagPath,
		Metadata:  meta,
		CreatedAt: base.Add(time.Duration(created) * time.Hour),
		UpdatedAt: base.Add(time.Duration(updated) * time.Hour),
	}
}

func titles(ideas []Idea) []string {
	var result []string
	for _, idea := range ideas {
		result = append(result, idea.Page.Title)
	}
	return result
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusInProgress, ParseStatus("in progress"))
	assert.Equal(t, StatusDone, ParseStatus(" Done "))
	assert.Equal(t, StatusDiscussion, ParseStatus(""))
	assert.Equal(t, StatusDiscussion, ParseStatus("Someday"))
}

func TestBoard(t *testing.T) {
	ideas := FromPages([]*models.PageSummary{
		page("A", "Proposed", "", 0, 0),
		page("B", "", "", 1, 1),
		page("C", "bogus", "", 2, 2),
		page("D", "Proposed", "", 3, 3),
	})
	board := Board(ideas)
	require.Len(t, board, len(Statuses))
	for i, col := range board {
		assert.Equal(t, Statuses[i], col.Status)
	}
	assert.Equal(t, []string{"B", "C"}, titles(board[0].Ideas))
	assert.Equal(t, []string{"A", "D"}, titles(board[1].Ideas))
	assert.Empty(t, board[5].Ideas)
}

func TestList(t *testing.T) {
	ideas := FromPages([]*models.PageSummary{
		page("banana", "Proposed", "Wallets", 0, 5),
		page("Apple", "In Progress", "DeFi", 1, 1),
		page("cherry", "Testing", "defi tools", 2, 2),
	})

	t.Run("newest by default", func(t *testing.T) {
		assert.Equal(t, []string{"cherry", "Apple", "banana"}, titles(List(ideas, Filter{})))
	})
	t.Run("title ignores case", func(t *testing.T) {
		assert.Equal(t, []string{"Apple", "banana", "cherry"}, titles(List(ideas, Filter{Sort: SortTitle})))
	})
	t.Run("recently updated", func(t *testing.T) {
		assert.Equal(t, []string{"banana", "cherry", "Apple"}, titles(List(ideas, Filter{Sort: SortUpdated})))
	})
	t.Run("category substring", func(t *testing.T) {
		assert.Equal(t, []string{"cherry", "Apple"}, titles(List(ideas, Filter{Category: "DEFI"})))
	})
	t.Run("status substring", func(t *testing.T) {
		assert.Equal(t, []string{"Apple"}, titles(List(ideas, Filter{Status: "progress"})))
	})
	t.Run("input untouched", func(t *testing.T) {
		List(ideas, Filter{Sort: SortTitle})
		assert.Equal(t, "banana", ideas[0].Page.Title)
	})
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortTitle, ParseSort("Title"))
	assert.Equal(t, SortUpdated, ParseSort("updated"))
	assert.Equal(t, SortNewest, ParseSort("whatever"))
}

func TestCategories(t *testing.T) {
	ideas := FromPages([]*models.PageSummary{
		page("a", "", "Wallets", 0, 0),
		page("b", "", "DeFi", 0, 0),
		page("c", "", "Wallets", 0, 0),
		page("d", "", "", 0, 0),
	})
	assert.Equal(t, []string{"DeFi", "Wallets"}, Categories(ideas))
}
