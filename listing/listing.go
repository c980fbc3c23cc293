// Package listing implements the pure filtering and pagination rules used by
// the public review index. Everything here is deterministic over an
// already-fetched, ordered slice of posts; no I/O.
package listing

import (
	"strings"

	"github.com/healthyfries/reviewsite/models"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 12

// CategoryAll is the sentinel category that matches every post.
const CategoryAll = "All"

// Categories is the predefined vocabulary offered by the filter bar. Posts may
// additionally carry arbitrary custom labels.
var Categories = []string{
	CategoryAll,
	"Supplements",
	"Nutrition",
	"Protein",
	"Low Calorie",
	"Health Tips",
	"Recipes",
}

// Result is one page of a filtered listing.
type Result struct {
	Items     []models.Post `json:"items"`
	Page      int           `json:"page"`
	PageCount int           `json:"page_count"`
	Total     int           `json:"total"`
}

// KnownCategory reports whether the label belongs to the predefined
// vocabulary.
func KnownCategory(c string) bool {
	for _, have := range Categories {
		if have == c {
			return true
		}
	}
	return false
}

// Filter keeps posts that match both the category and the search query.
// The category CategoryAll (or "") passes everything; otherwise a post
// matches iff the category is a member of its set. The query is matched
// verbatim as a case-insensitive substring of the title only; an empty
// query matches all. Input order is preserved.
func Filter(posts []models.Post, category, query string) []models.Post {
	needle := strings.ToLower(query)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if !matchesCategory(&p, category) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesCategory(p *models.Post, category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return p.HasCategory(category)
}

// PageCount returns ceil(n/PageSize); zero items means zero pages.
func PageCount(n int) int {
	return (n + PageSize - 1) / PageSize
}

// ClampPage forces page into [1, max(pageCount,1)] so a shrinking filter
// result can never leave the current page referencing an out-of-range slice.
func ClampPage(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	if page < 1 {
		return 1
	}
	if page > pageCount {
		return pageCount
	}
	return page
}

// Page slices one page out of the filtered set. The returned page number is
// the clamped one actually served.
func Page(filtered []models.Post, page int) ([]models.Post, int) {
	page = ClampPage(page, PageCount(len(filtered)))
	lo := (page - 1) * PageSize
	hi := lo + PageSize
	if lo > len(filtered) {
		lo = len(filtered)
	}
	if hi > len(filtered) {
		hi = len(filtered)
	}
	return filtered[lo:hi], page
}

// Apply runs the full pipeline: filter by category AND query, then paginate.
func Apply(posts []models.Post, category, query string, page int) Result {
	filtered := Filter(posts, category, query)
	items, page := Page(filtered, page)
	return Result{
		Items:     items,
		Page:      page,
		PageCount: PageCount(len(filtered)),
		Total:     len(filtered),
	}
}
