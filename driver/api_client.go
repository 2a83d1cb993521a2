// ABOUTME: Low-level HTTP transport for the SurfSense backend API
// ABOUTME: Owns the cookie jar, base-origin resolution, and default headers

// Package driver provides implementations for external dependencies.
package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MODSetter/SurfSense-sub002/utils"
)

const userAgent = "surfsense-client/1.0"

// ErrBaseURLNotConfigured is returned before any network traffic when the
// backend origin has not been set.
var ErrBaseURLNotConfigured = errors.New("backend base URL is not configured")

// APIRequest describes one backend call before dispatch.
type APIRequest struct {
	Method  string
	Path    string // relative to the base origin, or absolute on the same origin
	Query   url.Values
	Headers http.Header
	Body    interface{} // JSON-marshaled unless RawBody is set
	RawBody []byte
}

// APIResponse carries the raw outcome of one dispatch.
type APIResponse struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *APIResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusText returns the reason phrase without the numeric code.
func (r *APIResponse) StatusText() string {
	text := strings.TrimSpace(strings.TrimPrefix(r.Status, strconv.Itoa(r.StatusCode)))
	if text == "" {
		return http.StatusText(r.StatusCode)
	}
	return text
}

// APIClient is the transport for all backend requests. It performs exactly
// one network round trip per Do call; retry policy belongs to the caller.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAPIClient creates a client against the given backend origin. The cookie
// jar is shared by every request so Set-Cookie responses from the CSRF
// endpoint become visible to later calls.
func NewAPIClient(baseURL string, timeout time.Duration, logger *slog.Logger) *APIClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		logger.Warn("Failed to create cookie jar, continuing without one", "error", err)
	}

	return &APIClient{
		baseURL: baseURL,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   2,
			},
		},
	}
}

// BaseURL returns the configured backend origin, empty when unset.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Jar returns the cookie jar shared by all requests.
func (c *APIClient) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// SetHTTPClient allows injecting a custom HTTP client (useful for testing
// with proxies). The existing jar is kept when the replacement has none.
func (c *APIClient) SetHTTPClient(client *http.Client) {
	if client.Jar == nil {
		client.Jar = c.httpClient.Jar
	}
	c.httpClient = client
}

// SetTimeout sets the HTTP client timeout for testing purposes.
func (c *APIClient) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// Do dispatches one request and returns the raw response. The base origin
// check happens before any network traffic; URL resolution rejects targets
// off the configured origin.
func (c *APIClient) Do(ctx context.Context, apiReq *APIRequest) (*APIResponse, error) {
	if strings.TrimSpace(c.baseURL) == "" {
		return nil, ErrBaseURLNotConfigured
	}

	target, err := utils.ResolveAgainstBase(c.baseURL, apiReq.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve request URL: %w", err)
	}
	if len(apiReq.Query) > 0 {
		target, err = appendQuery(target, apiReq.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to build query string: %w", err)
		}
	}

	var bodyReader io.Reader
	switch {
	case apiReq.RawBody != nil:
		bodyReader = bytes.NewReader(apiReq.RawBody)
	case apiReq.Body != nil:
		payload, err := json.Marshal(apiReq.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, apiReq.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Defaults first, then caller headers so the caller always wins
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for key, values := range apiReq.Headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Request completed",
		"method", apiReq.Method,
		"path", apiReq.Path,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// appendQuery merges extra query parameters into an already resolved URL.
func appendQuery(target string, query url.Values) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}

	merged := u.Query()
	for key, values := range query {
		for _, value := range values {
			merged.Add(key, value)
		}
	}
	u.RawQuery = merged.Encode()

	return u.String(), nil
}
