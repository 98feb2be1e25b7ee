package website

import (
	"strconv"

	"github.com/radixwiki/wiki/src/templates"
	"github.com/radixwiki/wiki/src/utils"
)

// getPageInfo parses a page number query parameter. There is always at least
// one page, even with nothing on it.
func getPageInfo(
	pageParam string,
	totalItems int,
	itemsPerPage int,
) (
	page int,
	totalPages int,
	ok bool,
) {
	totalPages = utils.NumPages(totalItems, itemsPerPage)
	ok = true

	page = 1
	if pageParam != "" {
		if pageParsed, err := strconv.Atoi(pageParam); err == nil {
			page = pageParsed
		} else {
			return 0, 0, false
		}
	}
	if page < 1 || totalPages < page {
		return 0, 0, false
	}

	return
}

func buildPagination(current, total int, urlFor func(page int) string) templates.Pagination {
	p := templates.Pagination{
		Current:  current,
		Total:    total,
		FirstUrl: urlFor(1),
		LastUrl:  urlFor(total),
	}
	if current > 1 {
		p.PreviousUrl = urlFor(current - 1)
	}
	if current < total {
		p.NextUrl = urlFor(current + 1)
	}
	return p
}
