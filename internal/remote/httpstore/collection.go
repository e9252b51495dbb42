package httpstore

import (
	"context"
	"net/http"
	"net/url"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
)

type collection[T any] struct {
	client *Client
	kind   models.Kind
}

func newCollection[T any](c *Client, kind models.Kind) *collection[T] {
	return &collection[T]{client: c, kind: kind}
}

func (c *collection[T]) Kind() models.Kind {
	return c.kind
}

func (c *collection[T]) list(ctx context.Context, query url.Values) ([]T, error) {
	var resp httputil.Response[[]T]
	if err := c.client.do(ctx, http.MethodGet, []string{string(c.kind)}, query, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return []T{}, nil
	}
	return resp.Data, nil
}

func (c *collection[T]) FetchAll(ctx context.Context) ([]T, error) {
	return c.list(ctx, url.Values{})
}

func (c *collection[T]) FetchByOwner(ctx context.Context, owner string) ([]T, error) {
	return c.list(ctx, url.Values{"owner": {owner}})
}

func (c *collection[T]) FetchByOwnerUnordered(ctx context.Context, owner string) ([]T, error) {
	return c.list(ctx, url.Values{"owner": {owner}, "unordered": {"true"}})
}

func (c *collection[T]) Create(ctx context.Context, record T) (T, error) {
	var resp httputil.Response[T]
	if err := c.client.do(ctx, http.MethodPost, []string{string(c.kind)}, nil, record, &resp); err != nil {
		return record, err
	}
	return resp.Data, nil
}

func (c *collection[T]) Update(ctx context.Context, id string, patch models.Patch) error {
	return c.client.do(ctx, http.MethodPatch, []string{string(c.kind), id}, nil, patch, nil)
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	return c.client.do(ctx, http.MethodDelete, []string{string(c.kind), id}, nil, nil, nil)
}

func (c *collection[T]) Subscribe(ctx context.Context, owner string) (remote.Stream[T], error) {
	s, err := subscribe[T](ctx, c.client, c.kind, owner)
	if err != nil {
		return nil, err
	}
	return s, nil
}
