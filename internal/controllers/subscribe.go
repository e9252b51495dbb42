package controllers

import (
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var errOwnerRequired = fmt.Errorf("%w: the owner query parameter must be set", models.ErrInvalid)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Subscribe upgrades the connection to a websocket and sends every snapshot
// of the documents of the owner until either side closes.
func (h collection[T]) Subscribe(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		httputil.NewError(c, errOwnerRequired)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Str("request-id", requestid.Get(c)).Err(err).Msg("upgrading to websocket")
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	stream, err := h.c.Subscribe(ctx, owner)
	if err != nil {
		closeWith(ws, err)
		return
	}
	defer stream.Close()

	// The client never sends data. Reading is needed to notice it leaving.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	log.Debug().Str("request-id", requestid.Get(c)).Str("kind", string(h.c.Kind())).Str("owner", owner).Msg("subscription opened")

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-stream.Snapshots():
			if !ok {
				closeWith(ws, stream.Err())
				return
			}

			if err := ws.WriteJSON(httputil.Response[[]T]{Data: snapshot}); err != nil {
				log.Debug().Str("request-id", requestid.Get(c)).Err(err).Msg("writing snapshot")
				return
			}
		}
	}
}

// maxCloseReason is the longest reason that fits into a close frame.
const maxCloseReason = 123

// closeWith sends a close message carrying err.
func closeWith(ws *websocket.Conn, err error) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err != nil {
		msg = websocket.FormatCloseMessage(httputil.CloseCodeOffset+httputil.Status(err), closeReason(err))
	}
	_ = ws.WriteMessage(websocket.CloseMessage, msg)
}

// closeReason returns the message of err, cut to fit into a close frame
// without splitting a rune.
func closeReason(err error) string {
	reason := err.Error()
	if len(reason) <= maxCloseReason {
		return reason
	}

	reason = reason[:maxCloseReason]
	for !utf8.ValidString(reason) {
		reason = reason[:len(reason)-1]
	}
	return reason
}
