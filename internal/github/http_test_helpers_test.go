package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestHTTPClient(fn roundTripFunc) *http.Client {
	return &http.Client{
		Transport: fn,
	}
}

func jsonHTTPResponse(statusCode int, payload any) (*http.Response, error) {
	buf := bytes.NewBuffer(nil)
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode: statusCode,
		Header: http.Header{
			"Content-Type": []string{"application/json"},
		},
		Body: io.NopCloser(buf),
	}, nil
}

// pagedJSONResponse is a 200 response whose Link header points at nextPage
// of the same request. nextPage 0 marks the last page.
func pagedJSONResponse(t *testing.T, req *http.Request, payload any, nextPage int) *http.Response {
	t.Helper()
	resp := mustJSONResponse(t, http.StatusOK, payload)
	if nextPage > 0 {
		next := *req.URL
		q := next.Query()
		q.Set("page", fmt.Sprint(nextPage))
		next.RawQuery = q.Encode()
		resp.Header.Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next.String()))
	}
	return resp
}

func textHTTPResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// requestedResponse carries a request so go-github error types can format
// themselves.
func requestedResponse(statusCode int) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Header:     http.Header{},
		Request:    &http.Request{Method: http.MethodGet, URL: &url.URL{Scheme: "https", Host: "api.test", Path: "/repos/octo/repo/tags"}},
		Body:       io.NopCloser(strings.NewReader("")),
	}
}

func mustJSONResponse(t *testing.T, statusCode int, payload any) *http.Response {
	t.Helper()
	resp, err := jsonHTTPResponse(statusCode, payload)
	if err != nil {
		t.Fatalf("build json response: %v", err)
	}
	return resp
}

func notFoundResponse(path string) *http.Response {
	return textHTTPResponse(http.StatusNotFound, fmt.Sprintf(`{"message":"not found: %s"}`, path))
}
