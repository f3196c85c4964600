package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	xhttp "FinLiquidity/pkg/http"
)

// HTTPServiceBase centralizes client construction and GET handling for upstream data providers.
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with timeout for baseURL.
func NewHTTPServiceBase(baseURL string, timeout time.Duration) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPServiceBase{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// BaseURL returns the configured base URL without trailing slash.
func (b *HTTPServiceBase) BaseURL() string { return b.baseURL }

// Get fetches path under baseURL and returns the raw body.
// Transport failures, timeouts and non-2xx answers are returned as errors; the body is never parsed here.
func (b *HTTPServiceBase) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if b.client == nil || b.baseURL == "" {
		return nil, fmt.Errorf("upstream http client not initialized")
	}
	var body []byte
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		URL:         b.baseURL + path,
		QueryParams: query,
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return body, nil
}
