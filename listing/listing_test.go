package listing_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/healthyfries/reviewsite/listing"
	"github.com/healthyfries/reviewsite/models"
)

func post(id uint, title string, categories ...string) models.Post {
	return models.Post{
		ID:         id,
		Title:      title,
		Categories: datatypes.NewJSONSlice(categories),
	}
}

func ids(posts []models.Post) []uint {
	out := make([]uint, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestFilterCategory(t *testing.T) {
	posts := []models.Post{
		post(1, "Whey Protein Deep Dive", "Protein", "Supplements"),
		post(2, "Oat Bars Ranked", "Nutrition"),
		post(3, "Creatine Basics", "Supplements"),
	}

	assert.Equal(t, []uint{1, 2, 3}, ids(listing.Filter(posts, "All", "")))
	assert.Equal(t, []uint{1, 2, 3}, ids(listing.Filter(posts, "", "")))
	assert.Equal(t, []uint{1, 3}, ids(listing.Filter(posts, "Supplements", "")))
	assert.Empty(t, listing.Filter(posts, "Recipes", ""))
}

func TestFilterSearchTitleOnly(t *testing.T) {
	posts := []models.Post{
		post(1, "Whey Protein Deep Dive", "Protein"),
		post(2, "Oat Bars Ranked", "Nutrition"),
	}
	posts[1].Excerpt = "contains whey in the excerpt"

	// Case-insensitive substring match against the title, never the excerpt.
	assert.Equal(t, []uint{1}, ids(listing.Filter(posts, "All", "WHEY")))
	assert.Equal(t, []uint{1, 2}, ids(listing.Filter(posts, "All", "")))

	// The query is matched verbatim, whitespace included.
	assert.Equal(t, []uint{1}, ids(listing.Filter(posts, "All", "whey ")))
	assert.Empty(t, listing.Filter(posts, "All", "dive "))
}

func TestKnownCategory(t *testing.T) {
	assert.True(t, listing.KnownCategory("All"))
	assert.True(t, listing.KnownCategory("Supplements"))
	assert.False(t, listing.KnownCategory("Keto"))
	assert.False(t, listing.KnownCategory(""))
}

func TestFilterCategoryAndSearchCombine(t *testing.T) {
	posts := []models.Post{
		post(1, "Whey Protein Deep Dive", "Supplements"),
		post(2, "Whey Isolate Showdown", "Nutrition"),
		post(3, "Creatine Basics", "Supplements"),
	}

	// Both conditions must hold at once.
	assert.Equal(t, []uint{1}, ids(listing.Filter(posts, "Supplements", "whey")))
}

func TestFilterPreservesOrder(t *testing.T) {
	posts := []models.Post{
		post(9, "B", "Recipes"),
		post(4, "A", "Recipes"),
		post(7, "C", "Recipes"),
	}
	assert.Equal(t, []uint{9, 4, 7}, ids(listing.Filter(posts, "Recipes", "")))
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, listing.PageCount(0))
	assert.Equal(t, 1, listing.PageCount(1))
	assert.Equal(t, 1, listing.PageCount(listing.PageSize))
	assert.Equal(t, 2, listing.PageCount(listing.PageSize+1))
	assert.Equal(t, 2, listing.PageCount(2*listing.PageSize))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, listing.ClampPage(0, 3))
	assert.Equal(t, 1, listing.ClampPage(-5, 3))
	assert.Equal(t, 2, listing.ClampPage(2, 3))
	assert.Equal(t, 3, listing.ClampPage(99, 3))
	// Zero pages still serves page 1 (empty).
	assert.Equal(t, 1, listing.ClampPage(5, 0))
}

func TestPageSlicing(t *testing.T) {
	posts := make([]models.Post, 0, 13)
	for i := 1; i <= 13; i++ {
		posts = append(posts, post(uint(i), fmt.Sprintf("Post %d", i)))
	}

	page1, n1 := listing.Page(posts, 1)
	page2, n2 := listing.Page(posts, 2)

	assert.Equal(t, 1, n1)
	assert.Equal(t, 2, n2)
	assert.Len(t, page1, listing.PageSize)
	assert.Len(t, page2, 1)

	// Pages are disjoint and their union is the filtered set, in order.
	assert.Equal(t, []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, ids(page1))
	assert.Equal(t, []uint{13}, ids(page2))
}

func TestApplyClampsOutOfRangePage(t *testing.T) {
	posts := make([]models.Post, 0, 13)
	for i := 1; i <= 13; i++ {
		posts = append(posts, post(uint(i), fmt.Sprintf("Post %d", i)))
	}

	res := listing.Apply(posts, "All", "", 9)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 2, res.PageCount)
	assert.Equal(t, 13, res.Total)
	assert.Equal(t, []uint{13}, ids(res.Items))
}

func TestApplyEmptyResult(t *testing.T) {
	posts := []models.Post{post(1, "Only Post", "Nutrition")}

	res := listing.Apply(posts, "Recipes", "", 1)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 0, res.PageCount)
	assert.Equal(t, 0, res.Total)
}

func TestApplyShrinkingFilterResetsPage(t *testing.T) {
	posts := make([]models.Post, 0, 14)
	for i := 1; i <= 14; i++ {
		p := post(uint(i), fmt.Sprintf("Post %d", i), "Nutrition")
		posts = append(posts, p)
	}
	posts[0].Title = "Unique Whey Review"

	// Page 2 exists unfiltered, but the search narrows to a single page.
	res := listing.Apply(posts, "All", "whey", 2)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, []uint{1}, ids(res.Items))
}
