package httpstore

import (
	"context"
	"net/http"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/models"
)

type profiles struct {
	client *Client
}

func (p profiles) Get(ctx context.Context, identity string) (models.UserProfile, error) {
	var resp httputil.Response[models.UserProfile]
	err := p.client.do(ctx, http.MethodGet, []string{string(models.KindUsers), identity}, nil, nil, &resp)
	return resp.Data, err
}

func (p profiles) Create(ctx context.Context, profile models.UserProfile) error {
	return p.client.do(ctx, http.MethodPost, []string{string(models.KindUsers)}, nil, profile, nil)
}

func (p profiles) Update(ctx context.Context, profile models.UserProfile) error {
	return p.client.do(ctx, http.MethodPut, []string{string(models.KindUsers), profile.UserID}, nil, profile, nil)
}
