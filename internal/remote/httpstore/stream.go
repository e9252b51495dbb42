package httpstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/gorilla/websocket"
)

// closeTimeout bounds the wait for the server to acknowledge a close.
const closeTimeout = time.Second

type stream[T any] struct {
	ws   *websocket.Conn
	ch   chan []T
	done chan struct{}
	err  error

	once sync.Once
	stop func() bool
}

func subscribe[T any](ctx context.Context, c *Client, kind models.Kind, owner string) (*stream[T], error) {
	u := c.websocketURL([]string{string(kind), "subscribe"}, url.Values{"owner": {owner}})

	ws, resp, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, httputil.ErrorFromStatus(resp.StatusCode, err.Error())
		}
		return nil, fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}

	s := &stream[T]{
		ws:   ws,
		ch:   make(chan []T, 1),
		done: make(chan struct{}),
	}
	s.stop = context.AfterFunc(ctx, s.shutdown)

	go s.read(c, kind, owner)
	return s, nil
}

func (s *stream[T]) Snapshots() <-chan []T {
	return s.ch
}

func (s *stream[T]) Err() error {
	return s.err
}

// Close sends a close frame and waits until the reader ended.
func (s *stream[T]) Close() {
	s.stop()
	s.shutdown()
}

func (s *stream[T]) shutdown() {
	s.once.Do(func() {
		_ = s.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeTimeout))

		select {
		case <-s.done:
		case <-time.After(closeTimeout):
			_ = s.ws.Close()
			<-s.done
		}
	})
}

// read forwards snapshots until the connection ends. Only the latest
// snapshot is kept when the consumer is slower than the server.
func (s *stream[T]) read(c *Client, kind models.Kind, owner string) {
	defer close(s.done)
	defer close(s.ch)
	defer s.ws.Close()

	for {
		var msg httputil.Response[[]T]
		if err := s.ws.ReadJSON(&msg); err != nil {
			s.err = streamError(err)
			if s.err != nil {
				c.log.Warn().Err(s.err).Str("kind", string(kind)).Str("owner", owner).Msg("subscription ended")
			}
			return
		}

		if msg.Data == nil {
			msg.Data = []T{}
		}

		select {
		case <-s.ch:
		default:
		}
		s.ch <- msg.Data
	}
}

// streamError maps the error that ended a connection to the error of the
// stream, nil for a normal close.
func streamError(err error) error {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}

	switch {
	case closeErr.Code == websocket.CloseNormalClosure:
		return nil
	case closeErr.Code >= httputil.CloseCodeOffset:
		return httputil.ErrorFromStatus(closeErr.Code-httputil.CloseCodeOffset, closeErr.Text)
	}
	return fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
}
