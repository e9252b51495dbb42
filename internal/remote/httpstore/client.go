// Package httpstore is the client of the document server.
//
// Records are read and written over REST, snapshots are received over one
// websocket per subscription.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrInvalidURL = errors.New("the remote URL must be an absolute http or https URL")

// Client talks to one document server.
type Client struct {
	base   *url.URL
	http   *http.Client
	dialer *websocket.Dialer
	log    zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for REST requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New returns a client for the API at baseURL, e.g. https://sync.example.com/v1.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 30 * time.Second},
		dialer: websocket.DefaultDialer,
		log:    log.Logger,
	}
	for _, o := range opts {
		o(c)
	}

	return c, nil
}

// Gateway returns all collections of the server.
func (c *Client) Gateway() remote.Gateway {
	return remote.Gateway{
		Transactions:          newCollection[models.Transaction](c, models.KindTransactions),
		Budgets:               newCollection[models.Budget](c, models.KindBudgets),
		Goals:                 newCollection[models.Goal](c, models.KindGoals),
		Wallets:               newCollection[models.Wallet](c, models.KindWallets),
		RecurringTransactions: newCollection[models.RecurringTransaction](c, models.KindRecurringTransactions),
		SharedExpenses:        newCollection[models.SharedExpense](c, models.KindSharedExpenses),
		Receipts:              newCollection[models.Receipt](c, models.KindReceipts),
		Notifications:         newCollection[models.Notification](c, models.KindNotifications),
		Categories:            newCollection[models.Category](c, models.KindCategories),
		Profiles:              profiles{client: c},
	}
}

// do sends a request and decodes the data of the response into out, if
// out is not nil.
func (c *Client) do(ctx context.Context, method string, path []string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path...)
	u.RawQuery = query.Encode()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e httputil.HTTPError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return httputil.ErrorFromStatus(resp.StatusCode, e.Error)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response of %s %s: %w", method, u.Path, err)
	}
	return nil
}

// websocketURL returns the websocket URL for path.
func (c *Client) websocketURL(path []string, query url.Values) string {
	u := c.base.JoinPath(path...)
	u.RawQuery = query.Encode()
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	return u.String()
}
