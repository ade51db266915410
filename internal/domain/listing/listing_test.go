package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

func articleIDs(items []entity.Article) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

func groupIDs(items []entity.Group) []string {
	out := make([]string, 0, len(items))
	for _, g := range items {
		out = append(out, g.ID)
	}
	return out
}

var articles = []entity.Article{
	{ID: "1", Title: "Sourdough starter", Category: "Cooking", AuthorName: "Rina"},
	{ID: "2", Title: "Five knitting tips", Category: "Tips", Content: "purl", AuthorName: "Omar"},
	{ID: "3", Title: "Plain notes", AuthorName: "Rina"},
	{ID: "4", Title: "Tape measure", Category: "tips", ShortDescription: "Sewing basics", AuthorName: "Lee"},
}

func TestFilterArticles(t *testing.T) {
	cases := []struct {
		name string
		f    ArticleFilter
		want []string
	}{
		{"no filter", ArticleFilter{}, []string{"1", "2", "3", "4"}},
		{"All is no filter", ArticleFilter{Category: "All"}, []string{"1", "2", "3", "4"}},
		{"category ignores case", ArticleFilter{Category: "Tips"}, []string{"2", "4"}},
		{"unset category is General", ArticleFilter{Category: "General"}, []string{"3"}},
		{"query matches author", ArticleFilter{Query: "rina"}, []string{"1", "3"}},
		{"query matches short description", ArticleFilter{Query: "SEWING"}, []string{"4"}},
		{"category and query", ArticleFilter{Category: "Tips", Query: "purl"}, []string{"2"}},
		{"no match", ArticleFilter{Query: "pottery"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, articleIDs(FilterArticles(articles, tc.f)))
		})
	}
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Cooking", "General", "Tips"}, Categories(articles))
	assert.Empty(t, Categories(nil))
}

func TestFilterGroups_UpcomingUsesDayBoundary(t *testing.T) {
	now := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)
	groups := []entity.Group{
		{ID: "yesterday", FormattedDate: "2024-05-09"},
		{ID: "today", FormattedDate: "2024-05-10"},
		{ID: "tomorrow", FormattedDate: "May 11, 2024"},
		{ID: "undated"},
	}
	got := FilterGroups(groups, GroupFilter{UpcomingOnly: true, Now: now})
	assert.Equal(t, []string{"today", "tomorrow"}, groupIDs(got))

	all := FilterGroups(groups, GroupFilter{Now: now})
	assert.Len(t, all, 4)
}

func TestFilterGroups_QueryAndCategory(t *testing.T) {
	groups := []entity.Group{
		{ID: "a", GroupName: "Trail runners", Location: "Bandung", Category: "Sports"},
		{ID: "b", GroupName: "Board games", CreatorName: "Sari"},
		{ID: "c", GroupName: "Night ride", Description: "cycling in bandung", Category: "sports"},
	}
	assert.Equal(t, []string{"a", "c"}, groupIDs(FilterGroups(groups, GroupFilter{Query: "Bandung"})))
	assert.Equal(t, []string{"b"}, groupIDs(FilterGroups(groups, GroupFilter{Query: "sari"})))
	assert.Equal(t, []string{"b"}, groupIDs(FilterGroups(groups, GroupFilter{Category: "general"})))
}

func TestSortArticlesNewest(t *testing.T) {
	items := []entity.Article{
		{ID: "old", PublishDate: "2023-01-01T00:00:00Z"},
		{ID: "bad", PublishDate: "soon"},
		{ID: "new", PublishDate: "2024-05-01"},
		{ID: "mid", PublishDate: "March 3, 2024"},
	}
	SortArticlesNewest(items)
	assert.Equal(t, []string{"new", "mid", "old", "bad"}, articleIDs(items))
}

func TestSortGroupsByDate(t *testing.T) {
	items := []entity.Group{
		{ID: "none"},
		{ID: "late", FormattedDate: "2024-12-01"},
		{ID: "early", FormattedDate: "06/01/2024"},
	}
	SortGroupsByDate(items)
	assert.Equal(t, []string{"early", "late", "none"}, groupIDs(items))
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	for _, s := range []string{
		"2024-05-10",
		"2024-05-10T09:30:00Z",
		"2024-05-10T09:30:00.123Z",
		"2024-05-10T09:30",
		"05/10/2024",
		"May 10, 2024",
		"Friday, May 10, 2024",
	} {
		t.Run(s, func(t *testing.T) {
			got, ok := ParseDate(s, loc)
			assert.True(t, ok)
			assert.Equal(t, 2024, got.Year())
			assert.Equal(t, time.May, got.Month())
		})
	}
	_, ok := ParseDate("", loc)
	assert.False(t, ok)
	_, ok = ParseDate("next tuesday", loc)
	assert.False(t, ok)

	local, _ := ParseDate("2024-05-10", loc)
	assert.Equal(t, loc, local.Location())
}

func TestIsUpcoming_InCallerZone(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	now := time.Date(2024, 5, 10, 0, 30, 0, 0, loc)
	assert.True(t, IsUpcoming("2024-05-10", now))
	assert.False(t, IsUpcoming("2024-05-09", now))
	assert.False(t, IsUpcoming("", now))
}
