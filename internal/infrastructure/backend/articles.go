package backend

import (
	"context"
	"net/url"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/internal/domain/repository"
)

type ArticleRepository struct {
	articles *Resource[entity.Article]
}

func NewArticleRepository(c *Client, cache *ListCache) *ArticleRepository {
	return &ArticleRepository{
		articles: &Resource[entity.Article]{
			Client:     c,
			Name:       "articles",
			Collection: "/articles",
			Cache:      cache,
		},
	}
}

func (r *ArticleRepository) List(ctx context.Context) ([]entity.Article, error) {
	return r.articles.List(ctx)
}

func (r *ArticleRepository) Get(ctx context.Context, id string) (*entity.Article, error) {
	return r.articles.Get(ctx, id)
}

func (r *ArticleRepository) Create(ctx context.Context, user *entity.User, a *entity.Article) error {
	res, err := r.articles.Create(ctx, user, a)
	if err != nil {
		return err
	}
	if id := res.NewID(); id != "" {
		a.ID = id
	}
	return nil
}

type articleEdit struct {
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	Content          string `json:"content"`
	CoverImage       string `json:"coverImage,omitempty"`
	Category         string `json:"category"`
	AuthorName       string `json:"authorName,omitempty"`
	AuthorEmail      string `json:"authorEmail,omitempty"`
	AuthorImage      string `json:"authorImage,omitempty"`
	PublishDate      string `json:"publishDate,omitempty"`
}

func (r *ArticleRepository) Update(ctx context.Context, user *entity.User, a *entity.Article) error {
	_, err := r.articles.Update(ctx, user, a.ID, articleEdit{
		Title:            a.Title,
		ShortDescription: a.ShortDescription,
		Content:          a.Content,
		CoverImage:       a.CoverImage,
		Category:         a.Category,
		AuthorName:       a.AuthorName,
		AuthorEmail:      a.AuthorEmail,
		AuthorImage:      a.AuthorImage,
		PublishDate:      a.PublishDate,
	})
	return err
}

func (r *ArticleRepository) Delete(ctx context.Context, user *entity.User, id string) error {
	return r.articles.Delete(ctx, user, id)
}

// CommentRepository serves the comments nested under each article.
type CommentRepository struct {
	client *Client
}

func NewCommentRepository(c *Client) *CommentRepository {
	return &CommentRepository{client: c}
}

func (r *CommentRepository) thread(articleID string) *Resource[entity.Comment] {
	return &Resource[entity.Comment]{
		Client:     r.client,
		Name:       "comments:" + articleID,
		Collection: "/articles/" + url.PathEscape(articleID) + "/comments",
	}
}

func (r *CommentRepository) List(ctx context.Context, articleID string) ([]entity.Comment, error) {
	if articleID == "" {
		return nil, errMissingID
	}
	return r.thread(articleID).List(ctx)
}

func (r *CommentRepository) Create(ctx context.Context, user *entity.User, c *entity.Comment) error {
	if c.ArticleID == "" {
		return errMissingID
	}
	res, err := r.thread(c.ArticleID).Create(ctx, user, c)
	if err != nil {
		return err
	}
	if id := res.NewID(); id != "" {
		c.ID = id
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, user *entity.User, articleID, commentID string) error {
	if articleID == "" {
		return errMissingID
	}
	return r.thread(articleID).Delete(ctx, user, commentID)
}

var (
	_ repository.ArticleRepository = (*ArticleRepository)(nil)
	_ repository.CommentRepository = (*CommentRepository)(nil)
)
