package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Void marks operations whose success responses carry no body.
type Void = struct{}

// Result is the uniform envelope every proxy operation returns. Success
// mirrors the HTTP status class: 2xx responses decode into Body, anything
// else decodes into Err. Transport failures never produce a Result; they
// surface as ordinary errors from the calling method.
type Result[T any] struct {
	Body       T
	Err        *ErrorRes
	StatusCode int
	Success    bool
}

// newResult consumes a completed HTTP response and maps it into a Result.
func newResult[T any](resp *http.Response) (Result[T], error) {
	res := Result[T]{
		StatusCode: resp.StatusCode,
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, fmt.Errorf("read response body: %w", err)
	}
	if res.Success {
		if len(bytes.TrimSpace(body)) == 0 {
			return res, nil
		}
		if err := json.Unmarshal(body, &res.Body); err != nil {
			return res, fmt.Errorf("decode response body: %w", err)
		}
		return res, nil
	}
	res.Err = parseErrorRes(body)
	return res, nil
}

// parseErrorRes decodes the proxy error body. It returns nil when the body
// is absent, malformed, or carries no usable detail, so callers can rely on
// Err != nil meaning the proxy actually said something.
func parseErrorRes(body []byte) *ErrorRes {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var er ErrorRes
	if err := json.Unmarshal(body, &er); err != nil {
		return nil
	}
	if er.Message == "" && er.Error == "" && er.Status == 0 {
		return nil
	}
	return &er
}
