// Package test contains helpers shared by the tests of all packages.
package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/envelope-zero/tracker/internal/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TmpFile returns the path to a unique file in a directory that is removed
// when the test ends.
func TmpFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), uuid.New()+".db")
}

// Request sends a request to h and returns the recorded response.
//
// A string body is sent as is, any other non-nil body is encoded as JSON.
func Request(t *testing.T, h http.Handler, method, url string, body any, headers ...map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.Nil(t, err, "request body could not be encoded")
		buf = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, url, buf)
	require.Nil(t, err)

	for _, m := range headers {
		for header, value := range m {
			req.Header.Set(header, value)
		}
	}

	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, req)
	return recorder
}

// DecodeResponse decodes an HTTP response into a target struct.
func DecodeResponse(t *testing.T, r *httptest.ResponseRecorder, target any) {
	t.Helper()

	err := json.Unmarshal(r.Body.Bytes(), target)
	if err != nil {
		assert.FailNow(t, "Parsing error", "Unable to parse response from server %q into %v, '%v', Request ID: %s", r.Body, reflect.TypeOf(target), err, r.Result().Header.Get("x-request-id"))
	}
}

// AssertHTTPStatus verifies that the HTTP response status is correct
func AssertHTTPStatus(t *testing.T, r *httptest.ResponseRecorder, expectedStatus ...int) {
	t.Helper()
	require.Contains(t, expectedStatus, r.Code, "HTTP status is wrong. Request ID: '%s' Response body: %s", r.Result().Header.Get("x-request-id"), r.Body.String())
}
