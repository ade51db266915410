// Package listing holds the pure filter and sort functions applied to fetched
// collections before they are rendered.
package listing

import (
	"sort"
	"strings"
	"time"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

// AllCategories disables the category filter, as does an empty category.
const AllCategories = "All"

type ArticleFilter struct {
	Category string
	Query    string
}

type GroupFilter struct {
	Category     string
	Query        string
	UpcomingOnly bool
	Now          time.Time
}

func categoryActive(c string) bool {
	c = strings.TrimSpace(c)
	return c != "" && !strings.EqualFold(c, AllCategories)
}

func categoryOf(c string) string {
	if strings.TrimSpace(c) == "" {
		return entity.DefaultCategory
	}
	return c
}

// containsFold reports whether any field contains q, ignoring case.
func containsFold(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// FilterArticles keeps the articles matching the category and the free-text query.
func FilterArticles(items []entity.Article, f ArticleFilter) []entity.Article {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]entity.Article, 0, len(items))
	for _, a := range items {
		if categoryActive(f.Category) && !strings.EqualFold(a.CategoryOrDefault(), strings.TrimSpace(f.Category)) {
			continue
		}
		if q != "" && !containsFold(q, a.Title, a.ShortDescription, a.Content, a.AuthorName) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// FilterGroups keeps the groups matching the category, query and date constraints.
func FilterGroups(items []entity.Group, f GroupFilter) []entity.Group {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	out := make([]entity.Group, 0, len(items))
	for _, g := range items {
		if categoryActive(f.Category) && !strings.EqualFold(categoryOf(g.Category), strings.TrimSpace(f.Category)) {
			continue
		}
		if q != "" && !containsFold(q, g.GroupName, g.Description, g.Location, g.CreatorName) {
			continue
		}
		if f.UpcomingOnly && !IsUpcoming(g.FormattedDate, now) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Categories returns the distinct categories present, sorted, with unset
// categories reported as entity.DefaultCategory.
func Categories(items []entity.Article) []string {
	seen := map[string]string{}
	for _, a := range items {
		c := a.CategoryOrDefault()
		key := strings.ToLower(c)
		if _, ok := seen[key]; !ok {
			seen[key] = c
		}
	}
	out := make([]string, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

// SortArticlesNewest orders articles by publish date, newest first. Articles
// without a parseable date go last.
func SortArticlesNewest(items []entity.Article) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, iok := ParseDate(items[i].PublishDate, time.UTC)
		tj, jok := ParseDate(items[j].PublishDate, time.UTC)
		if iok != jok {
			return iok
		}
		return ti.After(tj)
	})
}

// SortGroupsByDate orders groups by event date, soonest first.
func SortGroupsByDate(items []entity.Group) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, iok := ParseDate(items[i].FormattedDate, time.UTC)
		tj, jok := ParseDate(items[j].FormattedDate, time.UTC)
		if iok != jok {
			return iok
		}
		return ti.Before(tj)
	})
}
