package repository

import (
	"context"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

// GroupRepository defines the operations the REST backend exposes for groups.
type GroupRepository interface {
	List(ctx context.Context) ([]entity.Group, error)
	Get(ctx context.Context, id string) (*entity.Group, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Group, error)
	Create(ctx context.Context, user *entity.User, g *entity.Group) error
	Update(ctx context.Context, user *entity.User, g *entity.Group) error
	Delete(ctx context.Context, user *entity.User, id string) error
	Join(ctx context.Context, user *entity.User, jg entity.JoinedGroup) error
	Leave(ctx context.Context, user *entity.User, groupID string) error
	JoinedBy(ctx context.Context, email string) ([]entity.JoinedGroup, error)
}
