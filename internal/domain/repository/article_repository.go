package repository

import (
	"context"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

type ArticleRepository interface {
	List(ctx context.Context) ([]entity.Article, error)
	Get(ctx context.Context, id string) (*entity.Article, error)
	Create(ctx context.Context, user *entity.User, a *entity.Article) error
	Update(ctx context.Context, user *entity.User, a *entity.Article) error
	Delete(ctx context.Context, user *entity.User, id string) error
}

type CommentRepository interface {
	List(ctx context.Context, articleID string) ([]entity.Comment, error)
	Create(ctx context.Context, user *entity.User, c *entity.Comment) error
	Delete(ctx context.Context, user *entity.User, articleID, commentID string) error
}
