package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/tillwork/posadmin/internal/apiclient"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/transform"
)

// Resource is the remote collection behind one list page. W is the wire
// shape the API speaks, T the row the console works with.
type Resource[W any, T domain.Record[T]] struct {
	client   *apiclient.Client
	path     string
	fromWire transform.Func[W, T]
	toWire   func(T) W
}

// NewResource builds a resource rooted at path, e.g. "/branches".
func NewResource[W any, T domain.Record[T]](client *apiclient.Client, path string, from transform.Func[W, T], to func(T) W) *Resource[W, T] {
	return &Resource[W, T]{
		client:   client,
		path:     "/" + strings.Trim(path, "/"),
		fromWire: from,
		toWire:   to,
	}
}

// List fetches the whole collection.
func (r *Resource[W, T]) List(ctx context.Context) ([]T, error) {
	env := apiclient.Get[[]W](ctx, r.client, r.path, nil)
	if err := env.Err(); err != nil {
		return nil, err
	}
	return transform.All(env.Data, r.fromWire), nil
}

// Get fetches one record.
func (r *Resource[W, T]) Get(ctx context.Context, id string) (T, error) {
	env := apiclient.Get[*W](ctx, r.client, r.itemPath(id), nil)
	return r.single(env)
}

// Create posts a new record. When the API answers without a body the
// returned row has an empty id.
func (r *Resource[W, T]) Create(ctx context.Context, item T) (T, error) {
	env := apiclient.Post[*W](ctx, r.client, r.path, r.toWire(item))
	return r.single(env)
}

// Update replaces the record with the given id.
func (r *Resource[W, T]) Update(ctx context.Context, id string, item T) (T, error) {
	env := apiclient.Put[*W](ctx, r.client, r.itemPath(id), r.toWire(item))
	return r.single(env)
}

// Delete removes the record with the given id.
func (r *Resource[W, T]) Delete(ctx context.Context, id string) error {
	return apiclient.Delete[json.RawMessage](ctx, r.client, r.itemPath(id)).Err()
}

// Patch sends a partial update to a sub-path of one record, such as
// "toggle-status".
func (r *Resource[W, T]) Patch(ctx context.Context, id, action string, body any) (T, error) {
	env := apiclient.Call[*W](ctx, r.client, apiclient.Request{
		Method: http.MethodPatch,
		Path:   r.itemPath(id) + "/" + strings.Trim(action, "/"),
		Body:   body,
	})
	return r.single(env)
}

func (r *Resource[W, T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[W, T]) single(env apiclient.Envelope[*W]) (T, error) {
	var zero T
	if err := env.Err(); err != nil {
		return zero, err
	}
	if env.Data == nil {
		return zero, nil
	}
	return r.fromWire(*env.Data, -1), nil
}
