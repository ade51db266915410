package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/internal/domain/repository"
)

type GroupRepository struct {
	client *Client
	groups *Resource[entity.Group]
}

func NewGroupRepository(c *Client, cache *ListCache) *GroupRepository {
	return &GroupRepository{
		client: c,
		groups: &Resource[entity.Group]{
			Client:     c,
			Name:       "groups",
			Collection: "/groups",
			CreatePath: "/createGroup",
			Cache:      cache,
		},
	}
}

func (r *GroupRepository) List(ctx context.Context) ([]entity.Group, error) {
	return r.groups.List(ctx)
}

func (r *GroupRepository) Get(ctx context.Context, id string) (*entity.Group, error) {
	return r.groups.Get(ctx, id)
}

// GetByIDs resolves a batch of group ids in one call.
func (r *GroupRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Group, error) {
	if len(ids) == 0 {
		return []entity.Group{}, nil
	}
	var out []entity.Group
	err := r.client.Do(ctx, http.MethodPost, "/groupsByIds", nil, map[string]any{"ids": ids}, &out)
	if err := r.client.degradeToEmpty(err, "/groupsByIds"); err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.Group{}
	}
	return out, nil
}

func (r *GroupRepository) Create(ctx context.Context, user *entity.User, g *entity.Group) error {
	res, err := r.groups.Create(ctx, user, g)
	if err != nil {
		return err
	}
	if id := res.NewID(); id != "" {
		g.ID = id
	}
	return nil
}

// groupEdit is the PUT body for a group. Editable fields are always present
// so a blank form field clears the stored value.
type groupEdit struct {
	GroupName     string `json:"groupName"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	MaxMembers    int    `json:"maxMembers"`
	Image         string `json:"image,omitempty"`
	FormattedDate string `json:"formattedDate"`
	FormatHour    string `json:"formatHour"`
	Day           string `json:"day"`
	Category      string `json:"category"`
	UserEmail     string `json:"userEmail,omitempty"`
	CreatorName   string `json:"creatorName,omitempty"`
	CreatorImage  string `json:"creatorImage,omitempty"`
}

func (r *GroupRepository) Update(ctx context.Context, user *entity.User, g *entity.Group) error {
	_, err := r.groups.Update(ctx, user, g.ID, groupEdit{
		GroupName:     g.GroupName,
		Description:   g.Description,
		Location:      g.Location,
		MaxMembers:    g.MaxMembers,
		Image:         g.Image,
		FormattedDate: g.FormattedDate,
		FormatHour:    g.FormatHour,
		Day:           g.Day,
		Category:      g.Category,
		UserEmail:     g.UserEmail,
		CreatorName:   g.CreatorName,
		CreatorImage:  g.CreatorImage,
	})
	return err
}

func (r *GroupRepository) Delete(ctx context.Context, user *entity.User, id string) error {
	return r.groups.Delete(ctx, user, id)
}

func (r *GroupRepository) Join(ctx context.Context, user *entity.User, jg entity.JoinedGroup) error {
	_, err := r.client.write(ctx, http.MethodPost, "/joinGroup", user, jg)
	return err
}

// Leave removes the membership. Older backends only accept POST on this route,
// so a 405 on DELETE is retried once as POST. A 404 means already left.
func (r *GroupRepository) Leave(ctx context.Context, user *entity.User, groupID string) error {
	body := map[string]string{"groupId": groupID}
	if user != nil {
		body["userEmail"] = user.Email
	}
	_, err := r.client.write(ctx, http.MethodDelete, "/leaveGroup", user, body)
	if be, ok := AsError(err); ok && be.Status == http.StatusMethodNotAllowed {
		_, err = r.client.write(ctx, http.MethodPost, "/leaveGroup", user, body)
	}
	if err != nil && !IsKind(err, KindNotFound) {
		return err
	}
	return nil
}

func (r *GroupRepository) JoinedBy(ctx context.Context, email string) ([]entity.JoinedGroup, error) {
	path := "/user-joined-groups?email=" + url.QueryEscape(email)
	var out []entity.JoinedGroup
	err := r.client.Do(ctx, http.MethodGet, path, nil, nil, &out)
	if err := r.client.degradeToEmpty(err, path); err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.JoinedGroup{}
	}
	return out, nil
}

var _ repository.GroupRepository = (*GroupRepository)(nil)
