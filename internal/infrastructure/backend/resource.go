package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

// Keyed is implemented by every backend document.
type Keyed interface {
	Key() string
}

// Resource implements the list/get/create/update/delete flows shared by every
// entity type. Collection is the REST path ("/groups"); CreatePath overrides the
// POST target when the backend uses a dedicated creation route.
type Resource[T Keyed] struct {
	Client     *Client
	Name       string
	Collection string
	CreatePath string
	Cache      *ListCache
}

func (r *Resource[T]) itemPath(id string) string {
	return r.Collection + "/" + url.PathEscape(id)
}

// List fetches the whole collection. Non-JSON answers yield an empty slice.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	if items, ok := loadCached[T](ctx, r.Cache, r.Name); ok {
		return items, nil
	}
	var items []T
	err := r.Client.Do(ctx, http.MethodGet, r.Collection, nil, nil, &items)
	if err := r.Client.degradeToEmpty(err, r.Collection); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	if err == nil {
		storeCached(ctx, r.Cache, r.Name, items)
	}
	return items, nil
}

// Get fetches one item. When the single-item endpoint is missing or answers with
// something other than JSON, the full collection is scanned instead.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, errMissingID
	}
	var item T
	err := r.Client.Do(ctx, http.MethodGet, r.itemPath(id), nil, nil, &item)
	if err == nil {
		return &item, nil
	}
	if !IsNonJSON(err) && !IsKind(err, KindNotFound) {
		return nil, err
	}
	r.Client.Logger.WithField("id", id).WithField("collection", r.Collection).Debug("single resource endpoint unavailable; scanning collection")
	items, lerr := r.List(ctx)
	if lerr != nil {
		return nil, lerr
	}
	for i := range items {
		if items[i].Key() == id {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create posts item with the user's auth headers and returns the backend acknowledgement.
func (r *Resource[T]) Create(ctx context.Context, user *entity.User, item *T) (WriteResult, error) {
	path := r.CreatePath
	if path == "" {
		path = r.Collection
	}
	res, err := r.Client.write(ctx, http.MethodPost, path, user, item)
	if err == nil {
		r.Cache.Invalidate(ctx, r.Name)
	}
	return res, err
}

// Update PUTs body to the item path. Callers pass an edit payload rather than
// T so that cleared fields go out as zero values instead of being omitted.
func (r *Resource[T]) Update(ctx context.Context, user *entity.User, id string, body any) (WriteResult, error) {
	if id == "" {
		return WriteResult{}, errMissingID
	}
	res, err := r.Client.write(ctx, http.MethodPut, r.itemPath(id), user, body)
	if err == nil {
		r.Cache.Invalidate(ctx, r.Name)
	}
	return res, err
}

// Delete removes the item. The user's email rides along as a query parameter
// for the backend's identity check, and a 404 counts as already deleted.
func (r *Resource[T]) Delete(ctx context.Context, user *entity.User, id string) error {
	if id == "" {
		return errMissingID
	}
	return r.deletePath(ctx, user, r.itemPath(id))
}

func (r *Resource[T]) deletePath(ctx context.Context, user *entity.User, path string) error {
	if user != nil && user.Email != "" {
		path += "?email=" + url.QueryEscape(user.Email)
	}
	_, err := r.Client.write(ctx, http.MethodDelete, path, user, nil)
	if err != nil && !IsKind(err, KindNotFound) {
		return err
	}
	r.Cache.Invalidate(ctx, r.Name)
	return nil
}

// IsMissing reports whether err means the item does not exist.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNotFound) || IsKind(err, KindNotFound)
}
