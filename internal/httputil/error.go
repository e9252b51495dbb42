package httputil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HTTPError is used for error responses that contain a body.
type HTTPError struct {
	Error string `json:"error" example:"there is no document with this ID"`
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	switch {
	case errors.Is(err, remote.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, remote.ErrIndexMissing):
		return http.StatusPreconditionFailed
	case errors.Is(err, remote.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrInvalid),
		errors.Is(err, models.ErrImmutableField),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrRequestBodyEmpty):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NewError writes err as response with the status code for it.
//
// Internal errors are logged and replaced with a generic message that
// references the request id.
func NewError(c *gin.Context, err error) {
	status := Status(err)

	if status == http.StatusInternalServerError {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		err = fmt.Errorf("an error occurred on the server during your request. The request id is '%v'", requestid.Get(c))
	}

	c.AbortWithStatusJSON(status, HTTPError{
		Error: err.Error(),
	})
}

// ErrorFromStatus is the client side inverse of Status. It returns nil for
// success codes.
func ErrorFromStatus(status int, message string) error {
	if status < http.StatusBadRequest {
		return nil
	}

	var err error
	switch status {
	case http.StatusNotFound:
		err = remote.ErrNotFound
	case http.StatusPreconditionFailed:
		err = remote.ErrIndexMissing
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		err = remote.ErrUnavailable
	case http.StatusBadRequest:
		err = models.ErrInvalid
	default:
		err = models.ErrGeneral
	}

	if message == "" || message == err.Error() {
		return err
	}
	return fmt.Errorf("%w: %s", err, message)
}
