package apiclient

import (
	"errors"
	"fmt"
)

const maxErrorBody = 256

// HTTPError is returned for a response outside the 2xx range.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an *HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// ResponseBody returns the body carried by err, or nil when err is not an *HTTPError.
func ResponseBody(err error) []byte {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Body
	}
	return nil
}
