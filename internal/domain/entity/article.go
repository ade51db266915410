package entity

import "strings"

// DefaultCategory is assumed for articles and groups stored without a category.
const DefaultCategory = "General"

type Article struct {
	ID               string `json:"_id,omitempty"`
	Title            string `json:"title" validate:"required"`
	ShortDescription string `json:"shortDescription,omitempty"`
	Content          string `json:"content" validate:"required"`
	CoverImage       string `json:"coverImage,omitempty"`
	Category         string `json:"category,omitempty"`
	AuthorName       string `json:"authorName,omitempty"`
	AuthorEmail      string `json:"authorEmail,omitempty"`
	AuthorImage      string `json:"authorImage,omitempty"`
	PublishDate      string `json:"publishDate,omitempty"`
}

func (a Article) Key() string { return a.ID }

func (a Article) OwnedBy(email string) bool {
	return email != "" && strings.EqualFold(a.AuthorEmail, email)
}

// CategoryOrDefault returns the article category, falling back to DefaultCategory.
func (a Article) CategoryOrDefault() string {
	if strings.TrimSpace(a.Category) == "" {
		return DefaultCategory
	}
	return a.Category
}

type Comment struct {
	ID          string `json:"_id,omitempty"`
	ArticleID   string `json:"articleId"`
	Text        string `json:"text" validate:"required"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail,omitempty"`
	AuthorImage string `json:"authorImage,omitempty"`
	Timestamp   string `json:"timestamp"`
}

func (c Comment) Key() string { return c.ID }

func (c Comment) OwnedBy(email string) bool {
	return email != "" && strings.EqualFold(c.AuthorEmail, email)
}
