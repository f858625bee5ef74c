package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"TeluguNews/internal/ports"
)

const maxPageBytes = 4 << 20

// HTTPPageFetcher downloads article pages over HTTP.
type HTTPPageFetcher struct {
	client *http.Client
}

var _ ports.PageFetcher = (*HTTPPageFetcher)(nil)

// NewHTTPPageFetcher wires an HTTP client; per-request timeouts come from the caller's context.
func NewHTTPPageFetcher(client *http.Client) *HTTPPageFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPPageFetcher{client: client}
}

// FetchPage returns the page body, or an error on transport failure or a non-2xx status.
func (p *HTTPPageFetcher) FetchPage(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return body, nil
}
