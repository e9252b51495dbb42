package httputil

// Response is the body of all successful responses.
type Response[T any] struct {
	Data T `json:"data"`
}

// CloseCodeOffset is added to the HTTP status of an error to build the
// websocket close code sent when a stream ends with that error.
const CloseCodeOffset = 4000
